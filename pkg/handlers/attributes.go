package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/doctrace/review-engine/pkg/models"
	"github.com/doctrace/review-engine/pkg/services"
)

// AttributesResponse is the versioned attribute payload for
// GET /api/documents/{id}/attributes with includeVersion=1.
type AttributesResponse struct {
	DocumentID             string                        `json:"documentId"`
	EffectiveVersionNumber int                           `json:"effectiveVersionNumber"`
	LatestVersionNumber    int                           `json:"latestVersionNumber"`
	Version                *models.DocumentVersion       `json:"version"`
	Attributes             []*models.AttributeWithChange `json:"attributes"`
}

// AttributesHandler handles attribute read and export requests.
type AttributesHandler struct {
	documentService services.DocumentService
	logger          *zap.Logger
}

// NewAttributesHandler creates a new attributes handler.
func NewAttributesHandler(documentService services.DocumentService, logger *zap.Logger) *AttributesHandler {
	return &AttributesHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// RegisterRoutes registers the attributes handler's routes on the given mux.
func (h *AttributesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/documents/{id}/attributes", h.Get)
	mux.HandleFunc("GET /api/documents/{id}/attributes/export", h.Export)
}

// Get handles GET /api/documents/{id}/attributes?version=latest|<n>&includeVersion=0|1
func (h *AttributesHandler) Get(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")

	versionNumber, err := ParseVersionParam(r)
	if err != nil {
		RespondError(w, h.logger, "invalid_version", err)
		return
	}

	result, err := h.documentService.GetAttributes(r.Context(), documentID, versionNumber)
	if err != nil {
		RespondError(w, h.logger, "get_attributes_failed", err)
		return
	}

	decorateVersion(r, result.Version)

	includeVersion := r.URL.Query().Get("includeVersion")
	if includeVersion != "" && includeVersion != "1" && !strings.EqualFold(includeVersion, "true") {
		// Bare attribute list for clients that only render the table.
		if err := WriteJSON(w, http.StatusOK, result.Attributes); err != nil {
			h.logger.Error("Failed to write response", zap.Error(err))
		}
		return
	}

	response := AttributesResponse{
		DocumentID:             documentID,
		EffectiveVersionNumber: result.Version.VersionNumber,
		LatestVersionNumber:    result.LatestVersionNumber,
		Version:                result.Version,
		Attributes:             result.Attributes,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Export handles GET /api/documents/{id}/attributes/export?format=csv|json&version=latest|<n>
func (h *AttributesHandler) Export(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")

	versionNumber, err := ParseVersionParam(r)
	if err != nil {
		RespondError(w, h.logger, "invalid_version", err)
		return
	}

	attrs, err := h.documentService.GetAttributesForExport(r.Context(), documentID, versionNumber)
	if err != nil {
		RespondError(w, h.logger, "export_attributes_failed", err)
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "json" {
		if err := WriteJSON(w, http.StatusOK, attrs); err != nil {
			h.logger.Error("Failed to write response", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	if err := services.WriteAttributesCSV(w, attrs); err != nil {
		h.logger.Error("Failed to write CSV export", zap.Error(err))
	}
}
