package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/doctrace/review-engine/pkg/services"
)

// DocumentsHandler handles document and version read requests.
type DocumentsHandler struct {
	documentService services.DocumentService
	logger          *zap.Logger
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(documentService services.DocumentService, logger *zap.Logger) *DocumentsHandler {
	return &DocumentsHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// RegisterRoutes registers the documents handler's routes on the given mux.
func (h *DocumentsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/documents", h.List)
	mux.HandleFunc("GET /api/documents/{id}", h.Get)
	mux.HandleFunc("GET /api/documents/{id}/versions", h.Versions)
}

// List handles GET /api/documents
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documentService.ListDocuments(r.Context())
	if err != nil {
		RespondError(w, h.logger, "list_documents_failed", err)
		return
	}

	for _, d := range docs {
		decorateDocument(r, d)
	}

	if err := WriteJSON(w, http.StatusOK, docs); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/documents/{id}
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")

	doc, err := h.documentService.GetDocument(r.Context(), documentID)
	if err != nil {
		RespondError(w, h.logger, "get_document_failed", err)
		return
	}

	decorateDocument(r, &doc.Document)
	for _, v := range doc.Versions {
		decorateVersion(r, v)
	}

	if err := WriteJSON(w, http.StatusOK, doc); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Versions handles GET /api/documents/{id}/versions
func (h *DocumentsHandler) Versions(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")

	versions, err := h.documentService.ListVersions(r.Context(), documentID)
	if err != nil {
		RespondError(w, h.logger, "list_versions_failed", err)
		return
	}

	for _, v := range versions {
		decorateVersion(r, v)
	}

	if err := WriteJSON(w, http.StatusOK, versions); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
