package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationDelivery records one attempt to hand a merge result to the
// downstream CLM system. Kept separate from the review audit trail: delivery
// outcomes never affect merge state.
type NotificationDelivery struct {
	ID              int64      `json:"id"`
	DocumentID      string     `json:"documentId"`
	VersionID       string     `json:"versionId"`
	ReviewSessionID *uuid.UUID `json:"reviewSessionId,omitempty"`
	Success         bool       `json:"success"`
	StatusCode      *int       `json:"statusCode,omitempty"`
	Attempts        int        `json:"attempts"`
	Error           *string    `json:"error,omitempty"`
	Mocked          bool       `json:"mocked"`
	Skipped         bool       `json:"skipped"`
	DeliveredAt     time.Time  `json:"deliveredAt"`
}
