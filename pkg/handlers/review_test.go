package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/doctrace/review-engine/pkg/apperrors"
	"github.com/doctrace/review-engine/pkg/models"
)

func TestReviewHandler_Submit_Success(t *testing.T) {
	sessionID := uuid.New()
	mock := &mockReviewService{
		result: &models.ReviewResult{
			DocumentID:      "doc-1",
			VersionID:       "v2-id",
			VersionNumber:   2,
			ReviewSessionID: sessionID,
			FieldsUpdated:   2,
		},
	}
	handler := NewReviewHandler(mock, zap.NewNop())

	body := `{
		"reviewedBy": "alice",
		"status": "Reviewed",
		"attributes": [
			{"id": "rate", "correctedValue": "6%"},
			{"id": "term", "correctedValue": null}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/documents/doc-1/review", bytes.NewBufferString(body))
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response ReviewResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, 2, response.FieldsUpdated)
	assert.Equal(t, sessionID, response.ReviewSessionID)

	assert.Equal(t, "doc-1", mock.documentID)
	require.Len(t, mock.submissions, 1)
	submission := mock.submissions[0]
	assert.Equal(t, "alice", submission.Reviewer)
	require.Len(t, submission.Corrections, 2)
	require.NotNil(t, submission.Corrections[0].CorrectedValue)
	assert.Equal(t, "6%", *submission.Corrections[0].CorrectedValue)
	assert.Nil(t, submission.Corrections[1].CorrectedValue)
}

func TestReviewHandler_Submit_NumericCorrectedValue(t *testing.T) {
	mock := &mockReviewService{result: &models.ReviewResult{}}
	handler := NewReviewHandler(mock, zap.NewNop())

	body := `{"attributes": [{"id": "term_months", "correctedValue": 24}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/documents/doc-1/review", bytes.NewBufferString(body))
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, mock.submissions, 1)
	corr := mock.submissions[0].Corrections[0]
	require.NotNil(t, corr.CorrectedValue)
	assert.Equal(t, "24", *corr.CorrectedValue)
}

func TestReviewHandler_Submit_MalformedBody(t *testing.T) {
	mock := &mockReviewService{}
	handler := NewReviewHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/doc-1/review", bytes.NewBufferString("{not json"))
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, mock.submissions)
}

// A submission with an empty attributes list is a status-only review, not a
// validation error.
func TestReviewHandler_Submit_StatusOnlyReview(t *testing.T) {
	mock := &mockReviewService{
		result: &models.ReviewResult{
			DocumentID:    "doc-1",
			VersionNumber: 2,
			FieldsUpdated: 0,
		},
	}
	handler := NewReviewHandler(mock, zap.NewNop())

	body := `{"reviewedBy": "alice", "status": "Reviewed", "attributes": []}`
	req := httptest.NewRequest(http.MethodPost, "/api/documents/doc-1/review", bytes.NewBufferString(body))
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response ReviewResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, 0, response.FieldsUpdated)

	require.Len(t, mock.submissions, 1)
	assert.Empty(t, mock.submissions[0].Corrections)
}

func TestReviewHandler_Submit_MissingAttributesField(t *testing.T) {
	mock := &mockReviewService{}
	handler := NewReviewHandler(mock, zap.NewNop())

	body := `{"reviewedBy": "alice"}`
	req := httptest.NewRequest(http.MethodPost, "/api/documents/doc-1/review", bytes.NewBufferString(body))
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, mock.submissions)
}

func TestReviewHandler_Submit_DocumentNotFound(t *testing.T) {
	mock := &mockReviewService{err: apperrors.ErrNotFound}
	handler := NewReviewHandler(mock, zap.NewNop())

	body := `{"attributes": [{"id": "rate", "correctedValue": "6%"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/documents/missing/review", bytes.NewBufferString(body))
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "save_review_failed", errResp["error"])
}
