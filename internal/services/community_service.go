package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/energycommunities/backend/internal/metrics"
	"github.com/energycommunities/backend/internal/models"
	"github.com/energycommunities/backend/internal/storage"
	"go.uber.org/zap"
)

// CommunityRepository is the interface that wraps methods for Communities table data access
type CommunityRepository interface {
	// Method Create inserts a new community application.
	//
	// "community" parameter is filled with the generated id and timestamps on success.
	Create(ctx context.Context, community *models.Community) error
	// Method GetByID retrieves a community application by id.
	//
	// If the application does not exist, models.ErrCommunityNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id string) (*models.Community, error)
	// Method GetAll retrieves all community applications ordered by creation time, newest first.
	GetAll(ctx context.Context) ([]models.Community, error)
	// Method GetByOwner retrieves the community applications of one user ordered by creation time, newest first.
	GetByOwner(ctx context.Context, ownerID string) ([]models.Community, error)
	// Method UpdateStatus moves an application to the given status if the transition table allows it
	// from its current status.
	//
	// Returns models.ErrCommunityNotFound if the application does not exist and
	// models.ErrStatusNotPending if it was already decided.
	UpdateStatus(ctx context.Context, id string, status models.CommunityStatus) error
}

// DocumentStorage defines the interface for document blob operations
type DocumentStorage interface {
	// Create creates a new blob and returns a WriteCloser
	Create(name string, category models.DocumentCategory) (io.WriteCloser, error)
	// Open opens a blob for reading
	Open(name string, category models.DocumentCategory) (io.ReadCloser, error)
	// Delete removes a blob
	Delete(name string, category models.DocumentCategory) error
}

// Notifier is told about applied decisions
type Notifier interface {
	ApplicationDecided(ctx context.Context, community *models.Community) error
}

// allowedDocumentExtensions lists the accepted document file extensions (lower case)
var allowedDocumentExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".xls":  {},
	".xlsx": {},
}

const minDescriptionLength = 10

var administrators = models.NewRoleSet(models.RoleAdministrator)

// communityService implements the community application workflow
type communityService struct {
	repo        CommunityRepository
	storage     DocumentStorage
	notifier    Notifier
	maxFileSize int64
	logger      *zap.Logger
}

// NewCommunityService creates a new community application service
func NewCommunityService(repo CommunityRepository, documentStorage DocumentStorage, notifier Notifier, maxFileSize int64, logger *zap.Logger) *communityService {
	return &communityService{
		repo:        repo,
		storage:     documentStorage,
		notifier:    notifier,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// storedDocument is a blob written during a submission
type storedDocument struct {
	name     string
	category models.DocumentCategory
}

// Submit validates and stores a new application owned by the submitting identity.
//
// Every field and every document is validated before anything is persisted.
// Documents are written to storage first, then the row is inserted.
// If any later step fails, the blobs written for this submission are removed.
func (s *communityService) Submit(ctx context.Context, owner models.Identity, req *models.SubmitCommunityRequest, documents map[models.DocumentCategory]models.DocumentUpload) (*models.Community, error) {
	community, err := validateSubmission(req)
	if err != nil {
		return nil, err
	}
	if err := s.validateDocuments(documents); err != nil {
		return nil, err
	}

	community.OwnerID = owner.ID
	community.Status = models.CommunityStatusPending
	community.Documents = models.Documents{}

	var stored []storedDocument
	for _, category := range models.DocumentCategories {
		upload, ok := documents[category]
		if !ok {
			continue
		}

		name, err := s.storeDocument(category, upload)
		if err != nil {
			s.removeDocuments(stored)
			return nil, err
		}
		stored = append(stored, storedDocument{name: name, category: category})
		community.Documents[category] = storage.Reference(name, category)
	}

	if err := s.repo.Create(ctx, community); err != nil {
		s.removeDocuments(stored)
		return nil, fmt.Errorf("failed to store community application: %w", err)
	}

	metrics.RecordApplicationSubmitted(string(community.Type))
	s.logger.Info("community application submitted",
		zap.String("id", community.ID),
		zap.String("owner_id", owner.ID),
		zap.Int("documents", len(stored)),
	)

	return community, nil
}

// ListVisibleTo returns the applications the identity may see, newest first.
// Administrators see all applications, everyone else only their own.
func (s *communityService) ListVisibleTo(ctx context.Context, identity models.Identity) ([]models.Community, error) {
	if models.Authorize(identity, administrators) {
		return s.repo.GetAll(ctx)
	}
	return s.repo.GetByOwner(ctx, identity.ID)
}

// GetVisible returns one application if the identity may see it
func (s *communityService) GetVisible(ctx context.Context, identity models.Identity, id string) (*models.Community, error) {
	community, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !models.Authorize(identity, administrators) && community.OwnerID != identity.ID {
		return nil, models.NewForbiddenError("you do not have access to this community application")
	}

	return community, nil
}

// OpenDocument opens a document of an application the identity may see.
// Returns the document file name together with its content.
func (s *communityService) OpenDocument(ctx context.Context, identity models.Identity, id string, category models.DocumentCategory) (io.ReadCloser, string, error) {
	if !category.IsValid() {
		return nil, "", models.NewValidationError(fmt.Sprintf("unknown document category: %s", category))
	}

	community, err := s.GetVisible(ctx, identity, id)
	if err != nil {
		return nil, "", err
	}

	reference, ok := community.Documents[category]
	if !ok {
		return nil, "", &models.Error{Kind: models.KindNotFound, Message: "document not found"}
	}

	name := filepath.Base(reference)
	content, err := s.storage.Open(name, category)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open document: %w", err)
	}

	return content, name, nil
}

// Decide applies an administrator decision (approved or rejected) to a pending application.
//
// Only one decision can ever take effect: deciding an already decided application
// fails with models.ErrStatusNotPending. The owner notification is best-effort and
// never fails the decision.
func (s *communityService) Decide(ctx context.Context, id string, decision models.CommunityStatus, actor models.Identity) (*models.Community, error) {
	if !models.Authorize(actor, administrators) {
		return nil, models.NewForbiddenError("only administrators can decide community applications")
	}
	if !decision.IsDecision() {
		return nil, models.NewValidationError("status must be approved or rejected")
	}

	if err := s.repo.UpdateStatus(ctx, id, decision); err != nil {
		return nil, err
	}

	community, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.RecordApplicationDecision(string(decision))
	s.logger.Info("community application decided",
		zap.String("id", id),
		zap.String("status", string(decision)),
		zap.String("actor_id", actor.ID),
	)

	err = s.notifier.ApplicationDecided(ctx, community)
	metrics.RecordNotificationEnqueued(err == nil)
	if err != nil {
		s.logger.Warn("failed to enqueue decision notification", zap.String("id", id), zap.Error(err))
	}

	return community, nil
}

// validateSubmission trims and validates the form fields of a submission
func validateSubmission(req *models.SubmitCommunityRequest) (*models.Community, error) {
	community := &models.Community{
		Name:        strings.TrimSpace(req.Name),
		Type:        models.EnergyType(strings.TrimSpace(string(req.Type))),
		Location:    strings.TrimSpace(req.Location),
		Capacity:    req.Capacity,
		Description: strings.TrimSpace(req.Description),
	}

	switch {
	case community.Name == "":
		return nil, models.NewValidationError("name is required")
	case community.Location == "":
		return nil, models.NewValidationError("location is required")
	case utf8.RuneCountInString(community.Description) < minDescriptionLength:
		return nil, models.NewValidationError(fmt.Sprintf("description must be at least %d characters long", minDescriptionLength))
	case !community.Type.IsValid():
		return nil, models.NewValidationError("type must be one of: solar, wind, hydraulic, biomass, mixed")
	case community.Capacity <= 0:
		return nil, models.NewValidationError("capacity must be a positive number")
	case community.Capacity > maxIntColumn:
		return nil, models.NewValidationError(fmt.Sprintf("capacity must be at most %d", maxIntColumn))
	}

	err := checkLengths(
		fieldLimit{"name", community.Name, maxCommunityNameLength},
		fieldLimit{"location", community.Location, maxLocationLength},
	)
	if err != nil {
		return nil, err
	}
	if err := checkTextBytes("description", community.Description); err != nil {
		return nil, err
	}

	return community, nil
}

// validateDocuments checks every upload before any of them is written
func (s *communityService) validateDocuments(documents map[models.DocumentCategory]models.DocumentUpload) error {
	for category, upload := range documents {
		if !category.IsValid() {
			return models.NewValidationError(fmt.Sprintf("unknown document category: %s", category))
		}
		if upload.Content == nil {
			return models.NewValidationError(fmt.Sprintf("document %s is empty", category))
		}
		if _, ok := allowedDocumentExtensions[strings.ToLower(filepath.Ext(upload.Filename))]; !ok {
			return models.NewValidationError(fmt.Sprintf("document %s must be a PDF, Word or Excel file", category))
		}
		if upload.Size > s.maxFileSize {
			return models.NewValidationError(fmt.Sprintf("document %s exceeds the maximum size of %d bytes", category, s.maxFileSize))
		}
	}
	return nil
}

// storeDocument writes one upload to storage and returns the generated blob name.
// The declared size is checked again while copying.
func (s *communityService) storeDocument(category models.DocumentCategory, upload models.DocumentUpload) (string, error) {
	name := storage.GenerateFileName(strings.ToLower(filepath.Ext(upload.Filename)))

	writeCloser, err := s.storage.Create(name, category)
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}

	sizeWriter := storage.NewSizeWriter()
	_, copyErr := io.Copy(writeCloser, io.TeeReader(io.LimitReader(upload.Content, s.maxFileSize+1), sizeWriter))
	closeErr := writeCloser.Close()

	if err := errors.Join(copyErr, closeErr); err != nil {
		s.deleteDocument(name, category)
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	if sizeWriter.Size() > s.maxFileSize {
		s.deleteDocument(name, category)
		return "", models.NewValidationError(fmt.Sprintf("document %s exceeds the maximum size of %d bytes", category, s.maxFileSize))
	}

	return name, nil
}

func (s *communityService) removeDocuments(stored []storedDocument) {
	for _, doc := range stored {
		s.deleteDocument(doc.name, doc.category)
	}
}

func (s *communityService) deleteDocument(name string, category models.DocumentCategory) {
	if err := s.storage.Delete(name, category); err != nil {
		s.logger.Warn("failed to remove document", zap.String("name", name), zap.String("category", string(category)), zap.Error(err))
	}
}
