package models

import "time"

// Document represents an ingested document and its reviewer-workflow state.
// Stored in the documents table. Documents are created by ingestion (outside
// this service); reviews mutate status, reviewed_by and the denormalized
// current-version pointers.
type Document struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	UploadDate           *time.Time `json:"uploadDate,omitempty"`
	Status               string     `json:"status"`
	ReviewedBy           *string    `json:"reviewedBy,omitempty"`
	CurrentVersionID     *string    `json:"currentVersionId,omitempty"`
	CurrentVersionNumber *int       `json:"currentVersionNumber,omitempty"`
	StorageRef           *string    `json:"storageRef,omitempty"`
	StorageURL           *string    `json:"storageUrl,omitempty"`
	AttributeCount       *int       `json:"attributeCount,omitempty"`
	OverallConfidence    *float64   `json:"overallConfidence,omitempty"`
}

// DocumentWithVersions is a document together with its full version list,
// newest first.
type DocumentWithVersions struct {
	Document
	Versions []*DocumentVersion `json:"versions"`
}
