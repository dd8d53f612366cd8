package repositories

import (
	"context"
	"fmt"

	"github.com/doctrace/review-engine/pkg/database"
	"github.com/doctrace/review-engine/pkg/models"
)

// DeliveryRepository records outcomes of CLM postback attempts.
type DeliveryRepository interface {
	Record(ctx context.Context, delivery *models.NotificationDelivery) error
	ListByDocument(ctx context.Context, documentID string, limit int) ([]*models.NotificationDelivery, error)
}

type deliveryRepository struct {
	db *database.DB
}

// NewDeliveryRepository creates a new DeliveryRepository.
func NewDeliveryRepository(db *database.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

var _ DeliveryRepository = (*deliveryRepository)(nil)

func (r *deliveryRepository) Record(ctx context.Context, delivery *models.NotificationDelivery) error {
	q := database.QuerierFrom(ctx, r.db)

	query := `
		INSERT INTO notification_deliveries (document_id, version_id, review_session_id,
			success, status_code, attempts, error, mocked, skipped, delivered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id, delivered_at`

	err := q.QueryRow(ctx, query,
		delivery.DocumentID,
		delivery.VersionID,
		delivery.ReviewSessionID,
		delivery.Success,
		delivery.StatusCode,
		delivery.Attempts,
		delivery.Error,
		delivery.Mocked,
		delivery.Skipped,
	).Scan(&delivery.ID, &delivery.DeliveredAt)
	if err != nil {
		return fmt.Errorf("failed to record notification delivery: %w", err)
	}

	return nil
}

func (r *deliveryRepository) ListByDocument(ctx context.Context, documentID string, limit int) ([]*models.NotificationDelivery, error) {
	q := database.QuerierFrom(ctx, r.db)

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, document_id, version_id, review_session_id, success, status_code,
		       attempts, error, mocked, skipped, delivered_at
		FROM notification_deliveries
		WHERE document_id = $1
		ORDER BY delivered_at DESC
		LIMIT $2`

	rows, err := q.Query(ctx, query, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*models.NotificationDelivery
	for rows.Next() {
		d := &models.NotificationDelivery{}
		if err := rows.Scan(&d.ID, &d.DocumentID, &d.VersionID, &d.ReviewSessionID,
			&d.Success, &d.StatusCode, &d.Attempts, &d.Error, &d.Mocked,
			&d.Skipped, &d.DeliveredAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read deliveries: %w", err)
	}

	return deliveries, nil
}
