package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/energycommunities/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type newsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNewsRepository creates a new news repository
func NewNewsRepository(db *sql.DB, logger *zap.Logger) *newsRepository {
	return &newsRepository{
		db:     db,
		logger: logger,
	}
}

const newsColumns = `id, title, content, excerpt, category, image_url, author_id, created_at, updated_at`

// GetAll retrieves all news articles, newest first
func (r *newsRepository) GetAll(ctx context.Context) ([]models.News, error) {
	query := fmt.Sprintf(`SELECT %s FROM news ORDER BY created_at DESC`, newsColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query news", zap.Error(err))
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()

	articles := make([]models.News, 0)
	for rows.Next() {
		article, err := scanNews(rows)
		if err != nil {
			r.logger.Error("failed to scan news", zap.Error(err))
			return nil, fmt.Errorf("failed to scan news: %w", err)
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating news: %w", err)
	}

	return articles, nil
}

// GetByID retrieves a single news article
func (r *newsRepository) GetByID(ctx context.Context, id string) (*models.News, error) {
	query := fmt.Sprintf(`SELECT %s FROM news WHERE id = ?`, newsColumns)

	article, err := scanNews(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrNewsNotFound
	}
	if err != nil {
		r.logger.Error("failed to get news", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get news: %w", err)
	}

	return article, nil
}

// Create inserts a new news article
func (r *newsRepository) Create(ctx context.Context, article *models.News) error {
	query := `
		INSERT INTO news (id, title, content, excerpt, category, image_url, author_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id := uuid.New().String()
	now := time.Now().UTC().Truncate(time.Second)

	var imageURL sql.NullString
	if article.ImageURL != nil {
		imageURL = sql.NullString{String: *article.ImageURL, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		id,
		article.Title,
		article.Content,
		article.Excerpt,
		article.Category,
		imageURL,
		article.AuthorID,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("failed to create news", zap.Error(err))
		return fmt.Errorf("failed to create news: %w", err)
	}

	article.ID = id
	article.CreatedAt = now
	article.UpdatedAt = now
	return nil
}

func scanNews(row rowScanner) (*models.News, error) {
	article := &models.News{}
	var imageURL sql.NullString
	err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.Excerpt,
		&article.Category,
		&imageURL,
		&article.AuthorID,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if imageURL.Valid {
		article.ImageURL = &imageURL.String
	}
	return article, nil
}
