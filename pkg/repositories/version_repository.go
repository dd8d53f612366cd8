package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/doctrace/review-engine/pkg/apperrors"
	"github.com/doctrace/review-engine/pkg/database"
	"github.com/doctrace/review-engine/pkg/models"
)

// VersionRepository provides data access for document versions.
type VersionRepository interface {
	// GetLatest returns the unique version flagged is_latest for a document.
	GetLatest(ctx context.Context, documentID string) (*models.DocumentVersion, error)
	// GetByNumber returns the version with an exact version_number match.
	GetByNumber(ctx context.Context, documentID string, versionNumber int) (*models.DocumentVersion, error)
	// ListByDocument returns all versions of a document, newest first.
	ListByDocument(ctx context.Context, documentID string) ([]*models.DocumentVersion, error)
}

type versionRepository struct {
	db *database.DB
}

// NewVersionRepository creates a new VersionRepository.
func NewVersionRepository(db *database.DB) VersionRepository {
	return &versionRepository{db: db}
}

var _ VersionRepository = (*versionRepository)(nil)

const versionColumns = `id, document_id, version_number, is_latest, created_at, created_by, status, storage_ref, notes`

func (r *versionRepository) GetLatest(ctx context.Context, documentID string) (*models.DocumentVersion, error) {
	q := database.QuerierFrom(ctx, r.db)

	query := `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = $1 AND is_latest = TRUE
		LIMIT 1`

	return scanVersion(q.QueryRow(ctx, query, documentID))
}

func (r *versionRepository) GetByNumber(ctx context.Context, documentID string, versionNumber int) (*models.DocumentVersion, error) {
	q := database.QuerierFrom(ctx, r.db)

	query := `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = $1 AND version_number = $2
		LIMIT 1`

	return scanVersion(q.QueryRow(ctx, query, documentID, versionNumber))
}

func (r *versionRepository) ListByDocument(ctx context.Context, documentID string) ([]*models.DocumentVersion, error) {
	q := database.QuerierFrom(ctx, r.db)

	query := `
		SELECT ` + versionColumns + `
		FROM document_versions
		WHERE document_id = $1
		ORDER BY version_number DESC`

	rows, err := q.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.DocumentVersion
	for rows.Next() {
		v := &models.DocumentVersion{}
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.VersionNumber, &v.IsLatest,
			&v.CreatedAt, &v.CreatedBy, &v.Status, &v.StorageRef, &v.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read versions: %w", err)
	}

	return versions, nil
}

func scanVersion(row pgx.Row) (*models.DocumentVersion, error) {
	v := &models.DocumentVersion{}
	err := row.Scan(&v.ID, &v.DocumentID, &v.VersionNumber, &v.IsLatest,
		&v.CreatedAt, &v.CreatedBy, &v.Status, &v.StorageRef, &v.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return v, nil
}
