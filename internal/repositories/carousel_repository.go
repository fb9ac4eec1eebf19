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

type carouselRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCarouselRepository creates a new carousel slide repository
func NewCarouselRepository(db *sql.DB, logger *zap.Logger) *carouselRepository {
	return &carouselRepository{
		db:     db,
		logger: logger,
	}
}

// GetActive retrieves the active slides ordered by display order
func (r *carouselRepository) GetActive(ctx context.Context) ([]models.CarouselSlide, error) {
	query := `
		SELECT id, title, content, icon, background_color, display_order, is_active, created_at
		FROM carousel_slides
		WHERE is_active = TRUE
		ORDER BY display_order ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query carousel slides", zap.Error(err))
		return nil, fmt.Errorf("failed to query carousel slides: %w", err)
	}
	defer rows.Close()

	slides := make([]models.CarouselSlide, 0)
	for rows.Next() {
		var slide models.CarouselSlide
		if err := rows.Scan(
			&slide.ID,
			&slide.Title,
			&slide.Content,
			&slide.Icon,
			&slide.BackgroundColor,
			&slide.Order,
			&slide.IsActive,
			&slide.CreatedAt,
		); err != nil {
			r.logger.Error("failed to scan carousel slide", zap.Error(err))
			return nil, fmt.Errorf("failed to scan carousel slide: %w", err)
		}
		slides = append(slides, slide)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating carousel slides: %w", err)
	}

	return slides, nil
}

// Create inserts a new carousel slide
func (r *carouselRepository) Create(ctx context.Context, slide *models.CarouselSlide) error {
	query := `
		INSERT INTO carousel_slides (id, title, content, icon, background_color, display_order, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	id := uuid.New().String()
	now := time.Now().UTC().Truncate(time.Second)

	_, err := r.db.ExecContext(ctx, query,
		id,
		slide.Title,
		slide.Content,
		slide.Icon,
		slide.BackgroundColor,
		slide.Order,
		slide.IsActive,
		now,
	)
	if err != nil {
		r.logger.Error("failed to create carousel slide", zap.Error(err))
		return fmt.Errorf("failed to create carousel slide: %w", err)
	}

	slide.ID = id
	slide.CreatedAt = now
	return nil
}
