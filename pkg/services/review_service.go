package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/doctrace/review-engine/pkg/apperrors"
	"github.com/doctrace/review-engine/pkg/database"
	"github.com/doctrace/review-engine/pkg/models"
	"github.com/doctrace/review-engine/pkg/notify"
	"github.com/doctrace/review-engine/pkg/repositories"
)

// Default reviewer and status applied when a submission omits them.
const (
	DefaultReviewer     = "web"
	DefaultReviewStatus = "Reviewed"
)

// ReviewService applies a batch of reviewer corrections to a document version
// as one transaction: session row, per-field corrected-value updates, audit
// entries, and the document's workflow state all commit or roll back together.
// A submission with no corrections is a status-only review: the session is
// still created and the document's workflow state still advances.
type ReviewService interface {
	Submit(ctx context.Context, documentID string, submission *models.ReviewSubmission) (*models.ReviewResult, error)
}

type reviewService struct {
	db            *database.DB
	documentRepo  repositories.DocumentRepository
	versionRepo   repositories.VersionRepository
	attributeRepo repositories.AttributeRepository
	reviewRepo    repositories.ReviewRepository
	deliveryRepo  repositories.DeliveryRepository
	attribution   AttributionService
	notifier      notify.Notifier
	asyncNotify   bool
	logger        *zap.Logger
}

// NewReviewService creates a new ReviewService. The notifier is an explicit
// dependency; asyncNotify selects goroutine vs in-line delivery after commit.
func NewReviewService(
	db *database.DB,
	documentRepo repositories.DocumentRepository,
	versionRepo repositories.VersionRepository,
	attributeRepo repositories.AttributeRepository,
	reviewRepo repositories.ReviewRepository,
	deliveryRepo repositories.DeliveryRepository,
	attribution AttributionService,
	notifier notify.Notifier,
	asyncNotify bool,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		db:            db,
		documentRepo:  documentRepo,
		versionRepo:   versionRepo,
		attributeRepo: attributeRepo,
		reviewRepo:    reviewRepo,
		deliveryRepo:  deliveryRepo,
		attribution:   attribution,
		notifier:      notifier,
		asyncNotify:   asyncNotify,
		logger:        logger.Named("review"),
	}
}

var _ ReviewService = (*reviewService)(nil)

func (s *reviewService) Submit(ctx context.Context, documentID string, submission *models.ReviewSubmission) (*models.ReviewResult, error) {
	reviewer := submission.Reviewer
	if reviewer == "" {
		reviewer = DefaultReviewer
	}
	status := submission.Status
	if status == "" {
		status = DefaultReviewStatus
	}

	// Resolve the target version before opening the transaction; a missing
	// document or version aborts before any write.
	var target *models.DocumentVersion
	var err error
	if submission.TargetVersionNumber != nil {
		target, err = s.versionRepo.GetByNumber(ctx, documentID, *submission.TargetVersionNumber)
	} else {
		target, err = s.versionRepo.GetLatest(ctx, documentID)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve target version: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", apperrors.ErrTransactionFailure, err)
	}
	txCtx := database.WithTx(ctx, tx)
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	session := &models.ReviewSession{
		DocumentID:      documentID,
		TargetVersionID: target.ID,
		Reviewer:        reviewer,
	}
	if err = s.reviewRepo.CreateSession(txCtx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTransactionFailure, err)
	}

	fieldsUpdated := 0
	for i := range submission.Corrections {
		corr := &submission.Corrections[i]
		if strings.TrimSpace(corr.AttributeKey) == "" {
			continue
		}

		rowID := corr.RowID
		if rowID == "" {
			rowID = models.RowID(corr.AttributeKey, target.ID)
		}

		extracted, oldCorrected, auditErr := s.attributeRepo.GetForAudit(txCtx, rowID, target.ID)
		if auditErr != nil {
			if errors.Is(auditErr, apperrors.ErrNotFound) {
				// Row does not exist for this version: the update would match
				// zero rows, so skip silently and write no audit entry.
				s.logger.Debug("Correction skipped, attribute row not found",
					zap.String("document_id", documentID),
					zap.String("row_id", rowID))
				continue
			}
			err = fmt.Errorf("%w: %v", apperrors.ErrTransactionFailure, auditErr)
			return nil, err
		}

		var affected int64
		affected, err = s.attributeRepo.UpdateCorrectedValue(txCtx, rowID, target.ID, corr.CorrectedValue)
		if err != nil {
			err = fmt.Errorf("%w: %v", apperrors.ErrTransactionFailure, err)
			return nil, err
		}
		if affected == 0 {
			continue
		}
		fieldsUpdated++

		// One audit entry per matched row per submission, even when the new
		// value equals the old one.
		field := &models.ReviewedField{
			ReviewID:          session.ReviewID,
			DocumentID:        documentID,
			TargetVersionID:   target.ID,
			AttributeKey:      corr.AttributeKey,
			OriginalValue:     &extracted,
			OldCorrectedValue: oldCorrected,
			NewCorrectedValue: corr.CorrectedValue,
			ReviewedBy:        reviewer,
		}
		if err = s.reviewRepo.AppendField(txCtx, field); err != nil {
			err = fmt.Errorf("%w: %v", apperrors.ErrTransactionFailure, err)
			return nil, err
		}
	}

	// The latest version pointer is derived state; recompute it inside the
	// transaction rather than trusting the denormalized columns.
	latest, latestErr := s.versionRepo.GetLatest(txCtx, documentID)
	if latestErr != nil {
		if !errors.Is(latestErr, apperrors.ErrNotFound) {
			err = fmt.Errorf("%w: %v", apperrors.ErrTransactionFailure, latestErr)
			return nil, err
		}
		latest = target
	}

	if err = s.documentRepo.UpdateReviewState(txCtx, documentID, status, reviewer, target.StorageRef, latest); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		err = fmt.Errorf("%w: %v", apperrors.ErrTransactionFailure, err)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("%w: failed to commit: %v", apperrors.ErrTransactionFailure, err)
		return nil, err
	}

	s.attribution.Invalidate(documentID)

	s.logger.Info("Review merged",
		zap.String("document_id", documentID),
		zap.String("review_session_id", session.ReviewID.String()),
		zap.Int("version_number", target.VersionNumber),
		zap.Int("fields_updated", fieldsUpdated))

	result := &models.ReviewResult{
		DocumentID:      documentID,
		VersionID:       target.ID,
		VersionNumber:   target.VersionNumber,
		ReviewSessionID: session.ReviewID,
		FieldsUpdated:   fieldsUpdated,
	}

	// Delivery is outside the atomicity boundary: the merge is durable at
	// this point and a notification failure must never surface as a merge
	// failure.
	payload := s.buildNotification(documentID, target, reviewer, status, session, submission)
	if s.asyncNotify {
		go s.deliver(context.WithoutCancel(ctx), payload)
	} else {
		s.deliver(ctx, payload)
	}

	return result, nil
}

func (s *reviewService) buildNotification(
	documentID string,
	target *models.DocumentVersion,
	reviewer, status string,
	session *models.ReviewSession,
	submission *models.ReviewSubmission,
) *notify.ReviewNotification {
	attrs := make([]notify.NotificationAttribute, 0, len(submission.Corrections))
	for i := range submission.Corrections {
		corr := &submission.Corrections[i]
		if strings.TrimSpace(corr.AttributeKey) == "" {
			continue
		}
		rowID := corr.RowID
		if rowID == "" {
			rowID = models.RowID(corr.AttributeKey, target.ID)
		}
		attrs = append(attrs, notify.NotificationAttribute{
			ID:             corr.AttributeKey,
			RowID:          rowID,
			CorrectedValue: corr.CorrectedValue,
		})
	}

	return &notify.ReviewNotification{
		DocumentID:      documentID,
		VersionID:       target.ID,
		VersionNumber:   target.VersionNumber,
		ReviewedBy:      reviewer,
		Status:          status,
		ReviewSessionID: session.ReviewID.String(),
		Attributes:      attrs,
		Timestamp:       time.Now().UTC(),
	}
}

// deliver posts the payload downstream and records the outcome. Failures are
// logged and recorded, never propagated.
func (s *reviewService) deliver(ctx context.Context, payload *notify.ReviewNotification) {
	result, err := s.notifier.PostReview(ctx, payload)
	if err != nil {
		s.logger.Warn("Review postback failed",
			zap.String("document_id", payload.DocumentID),
			zap.Error(err))
	}
	if result == nil {
		result = &notify.DeliveryResult{Error: "no delivery result"}
	}

	delivery := &models.NotificationDelivery{
		DocumentID: payload.DocumentID,
		VersionID:  payload.VersionID,
		Success:    result.Success,
		Attempts:   result.Attempts,
		Mocked:     result.Mocked,
		Skipped:    result.Skipped,
	}
	if sessionID, parseErr := parseSessionID(payload.ReviewSessionID); parseErr == nil {
		delivery.ReviewSessionID = sessionID
	}
	if result.StatusCode != 0 {
		code := result.StatusCode
		delivery.StatusCode = &code
	}
	if result.Error != "" {
		msg := result.Error
		delivery.Error = &msg
	}

	if err := s.deliveryRepo.Record(ctx, delivery); err != nil {
		s.logger.Warn("Failed to record notification delivery",
			zap.String("document_id", payload.DocumentID),
			zap.Error(err))
	}
}

func parseSessionID(raw string) (*uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
