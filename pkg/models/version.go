package models

import "time"

// DocumentVersion is one snapshot of a document. Version numbers are unique
// per document and strictly increasing; exactly one version per document is
// flagged is_latest, enforced by a partial unique index. Superseded versions
// are never mutated except for reviewer corrections on their attribute rows.
type DocumentVersion struct {
	ID            string     `json:"id"`
	DocumentID    string     `json:"documentId"`
	VersionNumber int        `json:"versionNumber"`
	IsLatest      bool       `json:"isLatest"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	CreatedBy     *string    `json:"createdBy,omitempty"`
	Status        *string    `json:"status,omitempty"`
	StorageRef    *string    `json:"storageRef,omitempty"`
	StorageURL    *string    `json:"storageUrl,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}
