package handlers

import (
	"context"

	"github.com/doctrace/review-engine/pkg/models"
	"github.com/doctrace/review-engine/pkg/services"
)

// mockDocumentService is a configurable mock for handler tests.
type mockDocumentService struct {
	documents  []*models.Document
	document   *models.DocumentWithVersions
	versions   []*models.DocumentVersion
	attributes *services.VersionAttributes
	exportRows []*models.AttributeRecord
	err        error
}

func (m *mockDocumentService) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.documents, nil
}

func (m *mockDocumentService) GetDocument(ctx context.Context, documentID string) (*models.DocumentWithVersions, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

func (m *mockDocumentService) ListVersions(ctx context.Context, documentID string) ([]*models.DocumentVersion, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.versions, nil
}

func (m *mockDocumentService) GetAttributes(ctx context.Context, documentID string, versionNumber *int) (*services.VersionAttributes, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.attributes, nil
}

func (m *mockDocumentService) GetAttributesForExport(ctx context.Context, documentID string, versionNumber *int) ([]*models.AttributeRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.exportRows, nil
}

// mockReviewService records submissions for handler tests.
type mockReviewService struct {
	result      *models.ReviewResult
	err         error
	documentID  string
	submissions []*models.ReviewSubmission
}

func (m *mockReviewService) Submit(ctx context.Context, documentID string, submission *models.ReviewSubmission) (*models.ReviewResult, error) {
	m.documentID = documentID
	m.submissions = append(m.submissions, submission)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}
