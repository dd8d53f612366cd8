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

// DocumentRepository provides data access for documents.
type DocumentRepository interface {
	List(ctx context.Context, limit int) ([]*models.Document, error)
	GetByID(ctx context.Context, documentID string) (*models.Document, error)
	// UpdateReviewState advances the document's reviewer-workflow fields,
	// mirrors the target version's storage ref, and recomputes the
	// denormalized current-version pointers from the latest version. Called
	// inside the merge transaction only.
	UpdateReviewState(ctx context.Context, documentID, status, reviewedBy string, storageRef *string, current *models.DocumentVersion) error
}

type documentRepository struct {
	db *database.DB
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *database.DB) DocumentRepository {
	return &documentRepository{db: db}
}

var _ DocumentRepository = (*documentRepository)(nil)

const documentColumns = `id, title, uploaded_at, status, reviewed_by, current_version_id,
		current_version_number, storage_ref, attribute_count, overall_confidence`

func (r *documentRepository) List(ctx context.Context, limit int) ([]*models.Document, error) {
	q := database.QuerierFrom(ctx, r.db)

	if limit <= 0 {
		limit = 1000
	}

	query := `
		SELECT ` + documentColumns + `
		FROM documents
		ORDER BY uploaded_at DESC
		LIMIT $1`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		d := &models.Document{}
		if err := rows.Scan(&d.ID, &d.Title, &d.UploadDate, &d.Status, &d.ReviewedBy,
			&d.CurrentVersionID, &d.CurrentVersionNumber, &d.StorageRef,
			&d.AttributeCount, &d.OverallConfidence); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}

	return docs, nil
}

func (r *documentRepository) GetByID(ctx context.Context, documentID string) (*models.Document, error) {
	q := database.QuerierFrom(ctx, r.db)

	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1`

	d := &models.Document{}
	err := q.QueryRow(ctx, query, documentID).Scan(
		&d.ID, &d.Title, &d.UploadDate, &d.Status, &d.ReviewedBy,
		&d.CurrentVersionID, &d.CurrentVersionNumber, &d.StorageRef,
		&d.AttributeCount, &d.OverallConfidence)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return d, nil
}

func (r *documentRepository) UpdateReviewState(ctx context.Context, documentID, status, reviewedBy string, storageRef *string, current *models.DocumentVersion) error {
	q := database.QuerierFrom(ctx, r.db)

	query := `
		UPDATE documents
		SET status = $2, reviewed_by = $3, storage_ref = $4,
		    current_version_id = $5, current_version_number = $6
		WHERE id = $1`

	tag, err := q.Exec(ctx, query, documentID, status, reviewedBy,
		storageRef, current.ID, current.VersionNumber)
	if err != nil {
		return fmt.Errorf("failed to update document review state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
