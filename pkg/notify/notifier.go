// Package notify delivers committed review results to the downstream CLM
// system. Delivery happens strictly after the merge transaction commits and
// its outcome never affects merge state.
package notify

import (
	"context"
	"time"
)

// ReviewNotification is the postback payload contract. Attribute entries echo
// the reviewer's submitted corrections, not the stored rows.
type ReviewNotification struct {
	DocumentID      string                  `json:"documentId"`
	VersionID       string                  `json:"versionId"`
	VersionNumber   int                     `json:"versionNumber"`
	ReviewedBy      string                  `json:"reviewedBy"`
	Status          string                  `json:"status"`
	ReviewSessionID string                  `json:"reviewSessionId"`
	Attributes      []NotificationAttribute `json:"attributes"`
	Timestamp       time.Time               `json:"timestamp"`
}

// NotificationAttribute is one corrected attribute in the postback payload.
type NotificationAttribute struct {
	ID             string  `json:"id"`
	RowID          string  `json:"rowId"`
	CorrectedValue *string `json:"correctedValue"`
}

// DeliveryResult is the acknowledgment a delivery attempt produces. It is
// used only for the notifier's own bookkeeping.
type DeliveryResult struct {
	Success    bool
	Skipped    bool
	Mocked     bool
	StatusCode int
	Attempts   int
	Error      string
}

// Notifier posts a committed review downstream. Implementations must never
// mutate review state; a failed delivery is reported through the result and
// error, not retried at the merge level.
type Notifier interface {
	PostReview(ctx context.Context, payload *ReviewNotification) (*DeliveryResult, error)
}
