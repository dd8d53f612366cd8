package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/doctrace/review-engine/pkg/apperrors"
	"github.com/doctrace/review-engine/pkg/models"
	"github.com/doctrace/review-engine/pkg/services"
)

// ReviewResponse is the merge outcome returned to the reviewer UI.
type ReviewResponse struct {
	Success bool `json:"success"`
	*models.ReviewResult
}

// ReviewHandler handles review submission requests.
type ReviewHandler struct {
	reviewService services.ReviewService
	validate      *validator.Validate
	logger        *zap.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewService services.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validate:      validator.New(),
		logger:        logger,
	}
}

// RegisterRoutes registers the review handler's routes on the given mux.
func (h *ReviewHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/documents/{id}/review", h.Submit)
}

// Submit handles POST /api/documents/{id}/review
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")

	var submission models.ReviewSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		RespondError(w, h.logger, "invalid_payload",
			fmt.Errorf("%w: malformed request body: %v", apperrors.ErrInvalidInput, err))
		return
	}

	if err := h.validate.Struct(&submission); err != nil {
		RespondError(w, h.logger, "invalid_payload",
			fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}

	result, err := h.reviewService.Submit(r.Context(), documentID, &submission)
	if err != nil {
		RespondError(w, h.logger, "save_review_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ReviewResponse{Success: true, ReviewResult: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
