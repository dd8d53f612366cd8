package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/doctrace/review-engine/pkg/apperrors"
	"github.com/doctrace/review-engine/pkg/models"
	"github.com/doctrace/review-engine/pkg/repositories"
)

// AttributionService computes, per attribute key, the version number where the
// attribute's effective value last changed.
type AttributionService interface {
	// ChangedInVersions returns the change-attribution map for a document,
	// computed over versions 1..latest. A document without a latest marker
	// degenerates to upTo = 1.
	ChangedInVersions(ctx context.Context, documentID string) (*models.ChangeAttribution, error)

	// Invalidate drops any cached result for the document. Called after every
	// merge: corrections mutate history in place, so a cached attribution
	// must not survive a commit.
	Invalidate(documentID string)
}

type attributionService struct {
	versionRepo   repositories.VersionRepository
	attributeRepo repositories.AttributeRepository
	cache         *gocache.Cache
	logger        *zap.Logger
}

// NewAttributionService creates a new AttributionService. cacheTTL bounds how
// long a computed result may be served; zero disables caching.
func NewAttributionService(
	versionRepo repositories.VersionRepository,
	attributeRepo repositories.AttributeRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) AttributionService {
	var c *gocache.Cache
	if cacheTTL > 0 {
		c = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return &attributionService{
		versionRepo:   versionRepo,
		attributeRepo: attributeRepo,
		cache:         c,
		logger:        logger.Named("attribution"),
	}
}

var _ AttributionService = (*attributionService)(nil)

func (s *attributionService) ChangedInVersions(ctx context.Context, documentID string) (*models.ChangeAttribution, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(documentID); ok {
			return cached.(*models.ChangeAttribution), nil
		}
	}

	upTo := 1
	latest, err := s.versionRepo.GetLatest(ctx, documentID)
	switch {
	case err == nil:
		upTo = latest.VersionNumber
	case errors.Is(err, apperrors.ErrNotFound):
		// No latest marker: degenerate single-version case, upTo stays 1.
	default:
		return nil, fmt.Errorf("failed to resolve latest version: %w", err)
	}

	history, err := s.attributeRepo.ListHistory(ctx, documentID, upTo)
	if err != nil {
		return nil, fmt.Errorf("failed to load attribute history: %w", err)
	}

	result := &models.ChangeAttribution{
		ChangedIn:           computeChangedIn(history),
		LatestVersionNumber: upTo,
	}

	if s.cache != nil {
		s.cache.SetDefault(documentID, result)
	}

	s.logger.Debug("Computed change attribution",
		zap.String("document_id", documentID),
		zap.Int("up_to", upTo),
		zap.Int("attributes", len(result.ChangedIn)))

	return result, nil
}

func (s *attributionService) Invalidate(documentID string) {
	if s.cache != nil {
		s.cache.Delete(documentID)
	}
}

// computeChangedIn walks the history rows, which must be ordered
// (attributeKey ASC, versionNumber ASC), and returns the version number of
// the last effective-value change per key. An attribute seen in exactly one
// version "changed" where it first appeared. Versions where an attribute is
// absent are simply not present in its group; a gap does not reset the
// previous-value baseline.
func computeChangedIn(rows []models.AttributeHistoryRow) map[string]int {
	changedIn := make(map[string]int, len(rows))

	var (
		currentKey  string
		lastChanged int
		prev        string
		open        bool
	)

	flush := func() {
		if open {
			changedIn[currentKey] = lastChanged
		}
	}

	for i := range rows {
		r := &rows[i]
		value := r.EffectiveValue()

		if !open || r.AttributeKey != currentKey {
			flush()
			currentKey = r.AttributeKey
			lastChanged = r.VersionNumber
			prev = value
			open = true
			continue
		}

		if value != prev {
			lastChanged = r.VersionNumber
			prev = value
		}
	}
	flush()

	return changedIn
}
