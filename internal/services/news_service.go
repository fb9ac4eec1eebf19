package services

import (
	"context"
	"strings"

	"github.com/energycommunities/backend/internal/models"
	"go.uber.org/zap"
)

// NewsRepository is the interface that wraps methods for News table data access
type NewsRepository interface {
	// Method GetAll retrieves all news articles, newest first.
	GetAll(ctx context.Context) ([]models.News, error)
	// Method GetByID retrieves a news article by id.
	//
	// If the article does not exist, models.ErrNewsNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id string) (*models.News, error)
	// Method Create inserts a new news article.
	Create(ctx context.Context, article *models.News) error
}

type newsService struct {
	repo   NewsRepository
	logger *zap.Logger
}

// NewNewsService creates a new news service
func NewNewsService(repo NewsRepository, logger *zap.Logger) *newsService {
	return &newsService{
		repo:   repo,
		logger: logger,
	}
}

// List returns all news articles, newest first
func (s *newsService) List(ctx context.Context) ([]models.News, error) {
	return s.repo.GetAll(ctx)
}

// GetByID returns a single news article
func (s *newsService) GetByID(ctx context.Context, id string) (*models.News, error) {
	return s.repo.GetByID(ctx, id)
}

// Create publishes a news article authored by an administrator
func (s *newsService) Create(ctx context.Context, author models.Identity, req *models.CreateNewsRequest) (*models.News, error) {
	if !models.Authorize(author, administrators) {
		return nil, models.NewForbiddenError("only administrators can publish news")
	}

	article := &models.News{
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		Excerpt:  strings.TrimSpace(req.Excerpt),
		Category: strings.TrimSpace(req.Category),
		AuthorID: author.ID,
	}
	if article.Title == "" || article.Content == "" || article.Excerpt == "" || article.Category == "" {
		return nil, models.NewValidationError("title, content, excerpt and category are required")
	}
	if req.ImageURL != nil {
		if imageURL := strings.TrimSpace(*req.ImageURL); imageURL != "" {
			article.ImageURL = &imageURL
		}
	}

	limits := []fieldLimit{
		{"title", article.Title, maxTitleLength},
		{"excerpt", article.Excerpt, maxExcerptLength},
		{"category", article.Category, maxCategoryLength},
	}
	if article.ImageURL != nil {
		limits = append(limits, fieldLimit{"imageUrl", *article.ImageURL, maxImageURLLength})
	}
	if err := checkLengths(limits...); err != nil {
		return nil, err
	}
	if err := checkTextBytes("content", article.Content); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, article); err != nil {
		return nil, err
	}

	s.logger.Info("news published", zap.String("id", article.ID), zap.String("author_id", author.ID))
	return article, nil
}
