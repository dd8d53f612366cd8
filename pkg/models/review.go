package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/doctrace/review-engine/pkg/jsonutil"
)

// Review session status values.
const (
	ReviewStatusCompleted = "COMPLETED"
)

// ReviewSession is one atomic batch of corrections applied by one reviewer.
// One row is created per merge transaction.
type ReviewSession struct {
	ReviewID        uuid.UUID `json:"reviewId"`
	DocumentID      string    `json:"documentId"`
	TargetVersionID string    `json:"targetVersionId"`
	Reviewer        string    `json:"reviewer"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ReviewedField is one append-only audit entry for a correction that matched
// an attribute row. Audit rows are never updated or deleted; they form the
// full history of correction events independent of the mutable corrected
// value on the attribute row.
type ReviewedField struct {
	ID                int64     `json:"id"`
	ReviewID          uuid.UUID `json:"reviewId"`
	DocumentID        string    `json:"documentId"`
	TargetVersionID   string    `json:"targetVersionId"`
	AttributeKey      string    `json:"attributeKey"`
	OriginalValue     *string   `json:"originalValue"`
	OldCorrectedValue *string   `json:"oldCorrectedValue"`
	NewCorrectedValue *string   `json:"newCorrectedValue"`
	Approved          bool      `json:"approved"`
	ReviewedBy        string    `json:"reviewedBy"`
	ReviewedAt        time.Time `json:"reviewedAt"`
}

// Correction is one reviewer-supplied value for an attribute key. A nil or
// empty corrected value clears the correction; that is a valid, idempotent
// operation, not a missing input.
type Correction struct {
	// AttributeKey surfaces as "id" on the wire. Entries with an empty key
	// are skipped by the merge, not rejected.
	AttributeKey   string  `json:"id"`
	CorrectedValue *string `json:"correctedValue"`
	RowID          string  `json:"rowId,omitempty"`
}

// UnmarshalJSON tolerates clients that send numbers or booleans as corrected
// values; null stays nil (clears the correction).
func (c *Correction) UnmarshalJSON(data []byte) error {
	var raw struct {
		AttributeKey   string          `json:"id"`
		CorrectedValue json.RawMessage `json:"correctedValue"`
		RowID          string          `json:"rowId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.AttributeKey = raw.AttributeKey
	c.RowID = raw.RowID
	c.CorrectedValue = jsonutil.FlexibleString(raw.CorrectedValue)
	return nil
}

// ReviewSubmission is the input to the review-merge transaction. An empty
// Corrections list is a status-only review: the merge still creates a session
// and advances the document's workflow state without touching any field.
type ReviewSubmission struct {
	TargetVersionNumber *int         `json:"versionNumber,omitempty" validate:"omitempty,min=1"`
	Reviewer            string       `json:"reviewedBy"`
	Status              string       `json:"status"`
	Corrections         []Correction `json:"attributes" validate:"required"`
}

// ReviewResult is the outcome of a committed merge. FieldsUpdated counts the
// corrections that matched an existing attribute row.
type ReviewResult struct {
	DocumentID      string    `json:"documentId"`
	VersionID       string    `json:"versionId"`
	VersionNumber   int       `json:"versionNumber"`
	ReviewSessionID uuid.UUID `json:"reviewSessionId"`
	FieldsUpdated   int       `json:"fieldsUpdated"`
}
