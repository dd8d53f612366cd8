package models

import (
	"encoding/json"
	"strings"
)

// RowID derives the per-version row identity for an attribute when one was
// not supplied at ingestion: attributeKey + "--" + versionID.
func RowID(attributeKey, versionID string) string {
	return attributeKey + "--" + versionID
}

// AttributeRecord is one extracted field on one document version. The
// attribute key is the stable logical identity of the field across versions;
// the extracted value is immutable, the corrected value is reviewer-supplied.
// The JSON field names mirror what the review UI expects, so attribute_key
// surfaces as "id".
type AttributeRecord struct {
	RowID           string          `json:"rowId"`
	AttributeKey    string          `json:"id"`
	DocumentID      string          `json:"documentId"`
	VersionID       string          `json:"versionId"`
	Name            *string         `json:"name,omitempty"`
	Category        *string         `json:"category,omitempty"`
	Section         *string         `json:"section,omitempty"`
	Page            *int            `json:"page,omitempty"`
	ConfidenceScore *float64        `json:"confidenceScore,omitempty"`
	ConfidenceLevel *string         `json:"confidenceLevel,omitempty"`
	ExtractedValue  string          `json:"extractedValue"`
	CorrectedValue  *string         `json:"correctedValue"`
	HighlightedText *string         `json:"highlightedText,omitempty"`
	BoundingBox     json.RawMessage `json:"boundingBox,omitempty"`
}

// AttributeWithChange decorates an attribute with change-attribution metadata
// for read endpoints.
type AttributeWithChange struct {
	AttributeRecord
	ChangedInVersionNumber int `json:"changedInVersionNumber"`
	LatestVersionNumber    int `json:"latestVersionNumber"`
}

// AttributeHistoryRow is one attribute observation in a document's version
// history, as loaded by the attribution query.
type AttributeHistoryRow struct {
	VersionNumber  int
	AttributeKey   string
	ExtractedValue string
	CorrectedValue *string
}

// EffectiveValue returns the trimmed corrected value when non-empty, else the
// trimmed extracted value. Comparison across versions is exact string equality
// on this value; no case or format normalization.
func (r *AttributeHistoryRow) EffectiveValue() string {
	if r.CorrectedValue != nil {
		if corrected := strings.TrimSpace(*r.CorrectedValue); corrected != "" {
			return corrected
		}
	}
	return strings.TrimSpace(r.ExtractedValue)
}

// ChangeAttribution maps each attribute key to the version number where its
// effective value last changed, computed over versions 1..LatestVersionNumber.
type ChangeAttribution struct {
	ChangedIn           map[string]int `json:"changedIn"`
	LatestVersionNumber int            `json:"latestVersionNumber"`
}
