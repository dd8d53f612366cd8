package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/doctrace/review-engine/pkg/database"
	"github.com/doctrace/review-engine/pkg/models"
)

// ReviewRepository provides data access for the review audit trail. The trail
// is append-only: there are deliberately no update or delete methods.
type ReviewRepository interface {
	// CreateSession inserts one review session row and fills in its ID and
	// timestamps.
	CreateSession(ctx context.Context, session *models.ReviewSession) error
	// AppendField inserts one audit entry for a correction that matched an
	// attribute row.
	AppendField(ctx context.Context, field *models.ReviewedField) error
	// ListFieldsBySession returns the audit entries of one session, oldest
	// first.
	ListFieldsBySession(ctx context.Context, reviewID uuid.UUID) ([]*models.ReviewedField, error)
}

type reviewRepository struct {
	db *database.DB
}

// NewReviewRepository creates a new ReviewRepository.
func NewReviewRepository(db *database.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

var _ ReviewRepository = (*reviewRepository)(nil)

func (r *reviewRepository) CreateSession(ctx context.Context, session *models.ReviewSession) error {
	q := database.QuerierFrom(ctx, r.db)

	if session.ReviewID == uuid.Nil {
		session.ReviewID = uuid.New()
	}
	if session.Status == "" {
		session.Status = models.ReviewStatusCompleted
	}

	query := `
		INSERT INTO review_sessions (review_id, document_id, target_version_id, reviewer, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := q.QueryRow(ctx, query,
		session.ReviewID,
		session.DocumentID,
		session.TargetVersionID,
		session.Reviewer,
		session.Status,
	).Scan(&session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create review session: %w", err)
	}

	return nil
}

func (r *reviewRepository) AppendField(ctx context.Context, field *models.ReviewedField) error {
	q := database.QuerierFrom(ctx, r.db)

	query := `
		INSERT INTO reviewed_fields (review_id, document_id, target_version_id, attribute_key,
			original_value, old_corrected_value, new_corrected_value, corrected_value,
			approved, reviewed_by, reviewed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, TRUE, $8, NOW(), NOW())
		RETURNING reviewed_field_id, reviewed_at`

	err := q.QueryRow(ctx, query,
		field.ReviewID,
		field.DocumentID,
		field.TargetVersionID,
		field.AttributeKey,
		field.OriginalValue,
		field.OldCorrectedValue,
		field.NewCorrectedValue,
		field.ReviewedBy,
	).Scan(&field.ID, &field.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to append reviewed field: %w", err)
	}
	field.Approved = true

	return nil
}

func (r *reviewRepository) ListFieldsBySession(ctx context.Context, reviewID uuid.UUID) ([]*models.ReviewedField, error) {
	q := database.QuerierFrom(ctx, r.db)

	query := `
		SELECT reviewed_field_id, review_id, document_id, target_version_id, attribute_key,
		       original_value, old_corrected_value, new_corrected_value, approved,
		       reviewed_by, reviewed_at
		FROM reviewed_fields
		WHERE review_id = $1
		ORDER BY reviewed_field_id ASC`

	rows, err := q.Query(ctx, query, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviewed fields: %w", err)
	}
	defer rows.Close()

	var fields []*models.ReviewedField
	for rows.Next() {
		f := &models.ReviewedField{}
		if err := rows.Scan(&f.ID, &f.ReviewID, &f.DocumentID, &f.TargetVersionID,
			&f.AttributeKey, &f.OriginalValue, &f.OldCorrectedValue,
			&f.NewCorrectedValue, &f.Approved, &f.ReviewedBy, &f.ReviewedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reviewed field: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reviewed fields: %w", err)
	}

	return fields, nil
}
