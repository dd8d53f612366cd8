package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/doctrace/review-engine/pkg/apperrors"
	"github.com/doctrace/review-engine/pkg/models"
	"github.com/doctrace/review-engine/pkg/notify"
)

// mockVersionRepo is a configurable mock for service tests.
type mockVersionRepo struct {
	latest      *models.DocumentVersion
	byNumber    map[int]*models.DocumentVersion
	versions    []*models.DocumentVersion
	latestErr   error
	byNumberErr error
	listErr     error
	latestCalls int
}

func (m *mockVersionRepo) GetLatest(ctx context.Context, documentID string) (*models.DocumentVersion, error) {
	m.latestCalls++
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	if m.latest == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.latest, nil
}

func (m *mockVersionRepo) GetByNumber(ctx context.Context, documentID string, versionNumber int) (*models.DocumentVersion, error) {
	if m.byNumberErr != nil {
		return nil, m.byNumberErr
	}
	if v, ok := m.byNumber[versionNumber]; ok {
		return v, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockVersionRepo) ListByDocument(ctx context.Context, documentID string) ([]*models.DocumentVersion, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.versions, nil
}

// mockAttributeRepo is a configurable mock for service tests.
type mockAttributeRepo struct {
	attributes []*models.AttributeRecord
	history    []models.AttributeHistoryRow
	listErr    error
	historyErr error

	historyCalls int
}

func (m *mockAttributeRepo) ListByVersion(ctx context.Context, documentID, versionID string) ([]*models.AttributeRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.attributes, nil
}

func (m *mockAttributeRepo) ListHistory(ctx context.Context, documentID string, upTo int) ([]models.AttributeHistoryRow, error) {
	m.historyCalls++
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.history, nil
}

func (m *mockAttributeRepo) GetForAudit(ctx context.Context, rowID, versionID string) (string, *string, error) {
	return "", nil, apperrors.ErrNotFound
}

func (m *mockAttributeRepo) UpdateCorrectedValue(ctx context.Context, rowID, versionID string, value *string) (int64, error) {
	return 0, nil
}

// mockDocumentRepo is a configurable mock for service tests.
type mockDocumentRepo struct {
	documents []*models.Document
	document  *models.Document
	err       error
}

func (m *mockDocumentRepo) List(ctx context.Context, limit int) ([]*models.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.documents, nil
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, documentID string) (*models.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.document == nil {
		return nil, apperrors.ErrNotFound
	}
	return m.document, nil
}

func (m *mockDocumentRepo) UpdateReviewState(ctx context.Context, documentID, status, reviewedBy string, storageRef *string, current *models.DocumentVersion) error {
	return m.err
}

// mockReviewRepo records created sessions and appended fields.
type mockReviewRepo struct {
	sessions []*models.ReviewSession
	fields   []*models.ReviewedField
	err      error
}

func (m *mockReviewRepo) CreateSession(ctx context.Context, session *models.ReviewSession) error {
	if m.err != nil {
		return m.err
	}
	if session.ReviewID == uuid.Nil {
		session.ReviewID = uuid.New()
	}
	m.sessions = append(m.sessions, session)
	return nil
}

func (m *mockReviewRepo) AppendField(ctx context.Context, field *models.ReviewedField) error {
	if m.err != nil {
		return m.err
	}
	m.fields = append(m.fields, field)
	return nil
}

func (m *mockReviewRepo) ListFieldsBySession(ctx context.Context, reviewID uuid.UUID) ([]*models.ReviewedField, error) {
	return m.fields, m.err
}

// mockDeliveryRepo records notification delivery outcomes.
type mockDeliveryRepo struct {
	deliveries []*models.NotificationDelivery
	err        error
}

func (m *mockDeliveryRepo) Record(ctx context.Context, delivery *models.NotificationDelivery) error {
	if m.err != nil {
		return m.err
	}
	m.deliveries = append(m.deliveries, delivery)
	return nil
}

func (m *mockDeliveryRepo) ListByDocument(ctx context.Context, documentID string, limit int) ([]*models.NotificationDelivery, error) {
	return m.deliveries, m.err
}

// mockNotifier records posted payloads.
type mockNotifier struct {
	payloads []*notify.ReviewNotification
	result   *notify.DeliveryResult
	err      error
}

func (m *mockNotifier) PostReview(ctx context.Context, payload *notify.ReviewNotification) (*notify.DeliveryResult, error) {
	m.payloads = append(m.payloads, payload)
	if m.result != nil {
		return m.result, m.err
	}
	return &notify.DeliveryResult{Skipped: true}, m.err
}
