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

// AttributeRepository provides data access for extracted attribute rows.
type AttributeRepository interface {
	// ListByVersion returns all attribute rows for one document version,
	// ordered by attribute key.
	ListByVersion(ctx context.Context, documentID, versionID string) ([]*models.AttributeRecord, error)
	// ListHistory returns the full attribute history of a document for
	// versions 1..upTo, ordered (attribute_key ASC, version_number ASC).
	// This is the input to the change-attribution walk.
	ListHistory(ctx context.Context, documentID string, upTo int) ([]models.AttributeHistoryRow, error)
	// GetForAudit reads the extracted and corrected values of one row to
	// capture before-state for the audit trail. Returns ErrNotFound when the
	// row does not exist.
	GetForAudit(ctx context.Context, rowID, versionID string) (extractedValue string, correctedValue *string, err error)
	// UpdateCorrectedValue sets (or clears, when value is nil or empty) the
	// corrected value of one row. Returns the number of rows matched; zero is
	// not an error.
	UpdateCorrectedValue(ctx context.Context, rowID, versionID string, value *string) (int64, error)
}

type attributeRepository struct {
	db *database.DB
}

// NewAttributeRepository creates a new AttributeRepository.
func NewAttributeRepository(db *database.DB) AttributeRepository {
	return &attributeRepository{db: db}
}

var _ AttributeRepository = (*attributeRepository)(nil)

func (r *attributeRepository) ListByVersion(ctx context.Context, documentID, versionID string) ([]*models.AttributeRecord, error) {
	q := database.QuerierFrom(ctx, r.db)

	query := `
		SELECT row_id, attribute_key, document_id, version_id, field_name,
		       category, section, page_number, confidence_score, confidence_level,
		       field_value, corrected_value, highlighted_text, bounding_box
		FROM extracted_fields
		WHERE document_id = $1 AND version_id = $2
		ORDER BY attribute_key`

	rows, err := q.Query(ctx, query, documentID, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}
	defer rows.Close()

	var attrs []*models.AttributeRecord
	for rows.Next() {
		a := &models.AttributeRecord{}
		if err := rows.Scan(&a.RowID, &a.AttributeKey, &a.DocumentID, &a.VersionID,
			&a.Name, &a.Category, &a.Section, &a.Page, &a.ConfidenceScore,
			&a.ConfidenceLevel, &a.ExtractedValue, &a.CorrectedValue,
			&a.HighlightedText, &a.BoundingBox); err != nil {
			return nil, fmt.Errorf("failed to scan attribute: %w", err)
		}
		attrs = append(attrs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attributes: %w", err)
	}

	return attrs, nil
}

func (r *attributeRepository) ListHistory(ctx context.Context, documentID string, upTo int) ([]models.AttributeHistoryRow, error) {
	q := database.QuerierFrom(ctx, r.db)

	query := `
		SELECT dv.version_number, ef.attribute_key, ef.field_value, ef.corrected_value
		FROM extracted_fields ef
		JOIN document_versions dv ON dv.id = ef.version_id
		WHERE ef.document_id = $1 AND dv.version_number <= $2
		ORDER BY ef.attribute_key ASC, dv.version_number ASC`

	rows, err := q.Query(ctx, query, documentID, upTo)
	if err != nil {
		return nil, fmt.Errorf("failed to load attribute history: %w", err)
	}
	defer rows.Close()

	var history []models.AttributeHistoryRow
	for rows.Next() {
		var h models.AttributeHistoryRow
		if err := rows.Scan(&h.VersionNumber, &h.AttributeKey, &h.ExtractedValue, &h.CorrectedValue); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attribute history: %w", err)
	}

	return history, nil
}

func (r *attributeRepository) GetForAudit(ctx context.Context, rowID, versionID string) (string, *string, error) {
	q := database.QuerierFrom(ctx, r.db)

	query := `
		SELECT field_value, corrected_value
		FROM extracted_fields
		WHERE row_id = $1 AND version_id = $2`

	var extracted string
	var corrected *string
	err := q.QueryRow(ctx, query, rowID, versionID).Scan(&extracted, &corrected)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, apperrors.ErrNotFound
		}
		return "", nil, fmt.Errorf("failed to read attribute row: %w", err)
	}

	return extracted, corrected, nil
}

func (r *attributeRepository) UpdateCorrectedValue(ctx context.Context, rowID, versionID string, value *string) (int64, error) {
	q := database.QuerierFrom(ctx, r.db)

	query := `
		UPDATE extracted_fields
		SET corrected_value = $3
		WHERE row_id = $1 AND version_id = $2`

	tag, err := q.Exec(ctx, query, rowID, versionID, value)
	if err != nil {
		return 0, fmt.Errorf("failed to update corrected value: %w", err)
	}

	return tag.RowsAffected(), nil
}
