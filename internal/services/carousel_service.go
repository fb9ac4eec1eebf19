package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/energycommunities/backend/internal/models"
	"go.uber.org/zap"
)

// CarouselRepository is the interface that wraps methods for CarouselSlides table data access
type CarouselRepository interface {
	// Method GetActive retrieves the active slides ordered by display order ascending.
	GetActive(ctx context.Context) ([]models.CarouselSlide, error)
	// Method Create inserts a new slide.
	Create(ctx context.Context, slide *models.CarouselSlide) error
}

type carouselService struct {
	repo   CarouselRepository
	logger *zap.Logger
}

// NewCarouselService creates a new carousel service
func NewCarouselService(repo CarouselRepository, logger *zap.Logger) *carouselService {
	return &carouselService{
		repo:   repo,
		logger: logger,
	}
}

// ListActive returns the active slides in display order
func (s *carouselService) ListActive(ctx context.Context) ([]models.CarouselSlide, error) {
	return s.repo.GetActive(ctx)
}

// Create adds an active slide
func (s *carouselService) Create(ctx context.Context, actor models.Identity, req *models.CreateCarouselSlideRequest) (*models.CarouselSlide, error) {
	if !models.Authorize(actor, administrators) {
		return nil, models.NewForbiddenError("only administrators can manage the carousel")
	}

	slide := &models.CarouselSlide{
		Title:           strings.TrimSpace(req.Title),
		Content:         strings.TrimSpace(req.Content),
		Icon:            strings.TrimSpace(req.Icon),
		BackgroundColor: strings.TrimSpace(req.BackgroundColor),
		IsActive:        true,
	}
	if slide.Title == "" || slide.Content == "" || slide.Icon == "" || slide.BackgroundColor == "" || req.Order == nil {
		return nil, models.NewValidationError("title, content, icon, backgroundColor and order are required")
	}
	if *req.Order < 0 || *req.Order > maxIntColumn {
		return nil, models.NewValidationError(fmt.Sprintf("order must be between 0 and %d", maxIntColumn))
	}

	err := checkLengths(
		fieldLimit{"title", slide.Title, maxTitleLength},
		fieldLimit{"icon", slide.Icon, maxIconLength},
		fieldLimit{"backgroundColor", slide.BackgroundColor, maxBackgroundColorLength},
	)
	if err != nil {
		return nil, err
	}
	if err := checkTextBytes("content", slide.Content); err != nil {
		return nil, err
	}
	slide.Order = *req.Order

	if err := s.repo.Create(ctx, slide); err != nil {
		return nil, err
	}

	s.logger.Info("carousel slide created", zap.String("id", slide.ID), zap.Int("order", slide.Order))
	return slide, nil
}
