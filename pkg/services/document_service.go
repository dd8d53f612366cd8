package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/doctrace/review-engine/pkg/models"
	"github.com/doctrace/review-engine/pkg/repositories"
)

// VersionAttributes is the attribute set of one resolved document version,
// decorated with change-attribution metadata.
type VersionAttributes struct {
	DocumentID          string
	Version             *models.DocumentVersion
	LatestVersionNumber int
	Attributes          []*models.AttributeWithChange
}

// DocumentService provides document, version and attribute reads.
type DocumentService interface {
	ListDocuments(ctx context.Context) ([]*models.Document, error)
	// GetDocument returns a document with its versions, newest first.
	GetDocument(ctx context.Context, documentID string) (*models.DocumentWithVersions, error)
	ListVersions(ctx context.Context, documentID string) ([]*models.DocumentVersion, error)
	// GetAttributes resolves versionNumber (nil means latest) and returns its
	// attributes with changedInVersionNumber metadata.
	GetAttributes(ctx context.Context, documentID string, versionNumber *int) (*VersionAttributes, error)
	// GetAttributesForExport returns the raw attribute rows of a resolved
	// version without change metadata.
	GetAttributesForExport(ctx context.Context, documentID string, versionNumber *int) ([]*models.AttributeRecord, error)
}

type documentService struct {
	documentRepo  repositories.DocumentRepository
	versionRepo   repositories.VersionRepository
	attributeRepo repositories.AttributeRepository
	attribution   AttributionService
	logger        *zap.Logger
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	documentRepo repositories.DocumentRepository,
	versionRepo repositories.VersionRepository,
	attributeRepo repositories.AttributeRepository,
	attribution AttributionService,
	logger *zap.Logger,
) DocumentService {
	return &documentService{
		documentRepo:  documentRepo,
		versionRepo:   versionRepo,
		attributeRepo: attributeRepo,
		attribution:   attribution,
		logger:        logger.Named("documents"),
	}
}

var _ DocumentService = (*documentService)(nil)

func (s *documentService) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	return s.documentRepo.List(ctx, 1000)
}

func (s *documentService) GetDocument(ctx context.Context, documentID string) (*models.DocumentWithVersions, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	versions, err := s.versionRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load versions: %w", err)
	}

	return &models.DocumentWithVersions{
		Document: *doc,
		Versions: versions,
	}, nil
}

func (s *documentService) ListVersions(ctx context.Context, documentID string) ([]*models.DocumentVersion, error) {
	return s.versionRepo.ListByDocument(ctx, documentID)
}

func (s *documentService) GetAttributes(ctx context.Context, documentID string, versionNumber *int) (*VersionAttributes, error) {
	version, err := s.resolveVersion(ctx, documentID, versionNumber)
	if err != nil {
		return nil, err
	}

	attribution, err := s.attribution.ChangedInVersions(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute change attribution: %w", err)
	}

	attrs, err := s.attributeRepo.ListByVersion(ctx, documentID, version.ID)
	if err != nil {
		return nil, err
	}

	decorated := make([]*models.AttributeWithChange, 0, len(attrs))
	for _, a := range attrs {
		changedIn, ok := attribution.ChangedIn[a.AttributeKey]
		if !ok {
			changedIn = 1
		}
		decorated = append(decorated, &models.AttributeWithChange{
			AttributeRecord:        *a,
			ChangedInVersionNumber: changedIn,
			LatestVersionNumber:    attribution.LatestVersionNumber,
		})
	}

	return &VersionAttributes{
		DocumentID:          documentID,
		Version:             version,
		LatestVersionNumber: attribution.LatestVersionNumber,
		Attributes:          decorated,
	}, nil
}

func (s *documentService) GetAttributesForExport(ctx context.Context, documentID string, versionNumber *int) ([]*models.AttributeRecord, error) {
	version, err := s.resolveVersion(ctx, documentID, versionNumber)
	if err != nil {
		return nil, err
	}
	return s.attributeRepo.ListByVersion(ctx, documentID, version.ID)
}

func (s *documentService) resolveVersion(ctx context.Context, documentID string, versionNumber *int) (*models.DocumentVersion, error) {
	if versionNumber != nil {
		return s.versionRepo.GetByNumber(ctx, documentID, *versionNumber)
	}
	return s.versionRepo.GetLatest(ctx, documentID)
}
