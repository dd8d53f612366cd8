package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/doctrace/review-engine/pkg/models"
	"github.com/doctrace/review-engine/pkg/services"
)

func attributesFixture() *services.VersionAttributes {
	return &services.VersionAttributes{
		DocumentID:          "doc-1",
		LatestVersionNumber: 3,
		Version: &models.DocumentVersion{
			ID:            "v2-id",
			DocumentID:    "doc-1",
			VersionNumber: 2,
		},
		Attributes: []*models.AttributeWithChange{
			{
				AttributeRecord: models.AttributeRecord{
					RowID:          "rate--v2-id",
					AttributeKey:   "rate",
					ExtractedValue: "7%",
				},
				ChangedInVersionNumber: 2,
				LatestVersionNumber:    3,
			},
		},
	}
}

func TestAttributesHandler_Get_VersionedEnvelope(t *testing.T) {
	mock := &mockDocumentService{attributes: attributesFixture()}
	handler := NewAttributesHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/documents/doc-1/attributes?version=2", nil)
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response AttributesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "doc-1", response.DocumentID)
	assert.Equal(t, 2, response.EffectiveVersionNumber)
	assert.Equal(t, 3, response.LatestVersionNumber)
	require.Len(t, response.Attributes, 1)
	assert.Equal(t, "rate", response.Attributes[0].AttributeKey)
	assert.Equal(t, 2, response.Attributes[0].ChangedInVersionNumber)
}

func TestAttributesHandler_Get_BareListWhenVersionExcluded(t *testing.T) {
	mock := &mockDocumentService{attributes: attributesFixture()}
	handler := NewAttributesHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/documents/doc-1/attributes?includeVersion=0", nil)
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var attrs []*models.AttributeWithChange
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&attrs))
	require.Len(t, attrs, 1)
	assert.Equal(t, "rate", attrs[0].AttributeKey)
}

func TestAttributesHandler_Get_InvalidVersionParam(t *testing.T) {
	mock := &mockDocumentService{attributes: attributesFixture()}
	handler := NewAttributesHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/documents/doc-1/attributes?version=zero", nil)
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "invalid_version", errResp["error"])
}

func TestAttributesHandler_Export_CSV(t *testing.T) {
	mock := &mockDocumentService{
		exportRows: []*models.AttributeRecord{
			{AttributeKey: "rate", ExtractedValue: "7%"},
		},
	}
	handler := NewAttributesHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/documents/doc-1/attributes/export?format=csv", nil)
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.Export(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Attribute ID", records[0][0])
	assert.Equal(t, "rate", records[1][0])
}

func TestAttributesHandler_Export_JSON(t *testing.T) {
	mock := &mockDocumentService{
		exportRows: []*models.AttributeRecord{
			{AttributeKey: "rate", ExtractedValue: "7%"},
		},
	}
	handler := NewAttributesHandler(mock, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/documents/doc-1/attributes/export?format=json", nil)
	req.SetPathValue("id", "doc-1")
	rec := httptest.NewRecorder()

	handler.Export(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var attrs []*models.AttributeRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&attrs))
	require.Len(t, attrs, 1)
	assert.Equal(t, "rate", attrs[0].AttributeKey)
}
