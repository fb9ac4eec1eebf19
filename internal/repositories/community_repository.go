package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/energycommunities/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type communityRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCommunityRepository creates a new community application repository
func NewCommunityRepository(db *sql.DB, logger *zap.Logger) *communityRepository {
	return &communityRepository{
		db:     db,
		logger: logger,
	}
}

const communityColumns = `id, name, type, location, capacity, description, status, owner_id, documents, created_at, updated_at`

// Method Create is a CommunityRepository implementation for storing a new application.
// The id and timestamps are assigned here, status is stored as given.
func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	documents, err := json.Marshal(documentsOrEmpty(community.Documents))
	if err != nil {
		return fmt.Errorf("failed to encode documents: %w", err)
	}

	query := `
		INSERT INTO communities (id, name, type, location, capacity, description, status, owner_id, documents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id := uuid.New().String()
	now := time.Now().UTC().Truncate(time.Second)

	_, err = r.db.ExecContext(ctx, query,
		id,
		community.Name,
		community.Type,
		community.Location,
		community.Capacity,
		community.Description,
		community.Status,
		community.OwnerID,
		documents,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("failed to create community", zap.Error(err), zap.String("owner_id", community.OwnerID))
		return fmt.Errorf("failed to create community: %w", err)
	}

	community.ID = id
	community.CreatedAt = now
	community.UpdatedAt = now
	return nil
}

// Method GetByID is a CommunityRepository implementation for retrieving a single application.
func (r *communityRepository) GetByID(ctx context.Context, id string) (*models.Community, error) {
	query := fmt.Sprintf(`SELECT %s FROM communities WHERE id = ?`, communityColumns)

	community, err := scanCommunity(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrCommunityNotFound
	}
	if err != nil {
		r.logger.Error("failed to get community", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get community: %w", err)
	}

	return community, nil
}

// Method GetAll is a CommunityRepository implementation for retrieving every application, newest first.
func (r *communityRepository) GetAll(ctx context.Context) ([]models.Community, error) {
	query := fmt.Sprintf(`SELECT %s FROM communities ORDER BY created_at DESC`, communityColumns)
	return r.list(ctx, query)
}

// Method GetByOwner is a CommunityRepository implementation for retrieving the applications of one user, newest first.
func (r *communityRepository) GetByOwner(ctx context.Context, ownerID string) ([]models.Community, error) {
	query := fmt.Sprintf(`SELECT %s FROM communities WHERE owner_id = ? ORDER BY created_at DESC`, communityColumns)
	return r.list(ctx, query, ownerID)
}

func (r *communityRepository) list(ctx context.Context, query string, args ...any) ([]models.Community, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query communities", zap.Error(err))
		return nil, fmt.Errorf("failed to query communities: %w", err)
	}
	defer rows.Close()

	communities := make([]models.Community, 0)
	for rows.Next() {
		community, err := scanCommunity(rows)
		if err != nil {
			r.logger.Error("failed to scan community", zap.Error(err))
			return nil, fmt.Errorf("failed to scan community: %w", err)
		}
		communities = append(communities, *community)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating communities", zap.Error(err))
		return nil, fmt.Errorf("error iterating communities: %w", err)
	}

	return communities, nil
}

// Method UpdateStatus is a CommunityRepository implementation for applying a decision.
//
// The update is conditional on the current status being one the transition table allows,
// so concurrent decisions on the same application cannot both succeed.
// When no row is updated, the current status is read back to tell a missing application
// (ErrCommunityNotFound) from an already decided one (ErrStatusNotPending).
func (r *communityRepository) UpdateStatus(ctx context.Context, id string, status models.CommunityStatus) error {
	from := models.DecidableFrom(status)
	if len(from) == 0 {
		return fmt.Errorf("%w: cannot move to status %s", models.ErrInvalidTransition, status)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(from)), ", ")
	query := fmt.Sprintf(`UPDATE communities SET status = ?, updated_at = ? WHERE id = ? AND status IN (%s)`, placeholders)

	args := []any{status, time.Now().UTC().Truncate(time.Second), id}
	for _, s := range from {
		args = append(args, s)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to update community status", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to update community status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var current models.CommunityStatus
	err = r.db.QueryRowContext(ctx, `SELECT status FROM communities WHERE id = ?`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return models.ErrCommunityNotFound
	}
	if err != nil {
		r.logger.Error("failed to read community status", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to read community status: %w", err)
	}

	return models.ErrStatusNotPending
}

// Method CountByStatus is a CommunityRepository implementation for counting applications in a status.
func (r *communityRepository) CountByStatus(ctx context.Context, status models.CommunityStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM communities WHERE status = ?`, status).Scan(&count)
	if err != nil {
		r.logger.Error("failed to count communities", zap.Error(err), zap.String("status", string(status)))
		return 0, fmt.Errorf("failed to count communities: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCommunity(row rowScanner) (*models.Community, error) {
	community := &models.Community{}
	var documents []byte
	err := row.Scan(
		&community.ID,
		&community.Name,
		&community.Type,
		&community.Location,
		&community.Capacity,
		&community.Description,
		&community.Status,
		&community.OwnerID,
		&documents,
		&community.CreatedAt,
		&community.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	community.Documents = models.Documents{}
	if len(documents) > 0 {
		if err := json.Unmarshal(documents, &community.Documents); err != nil {
			return nil, fmt.Errorf("failed to decode documents: %w", err)
		}
	}

	return community, nil
}

func documentsOrEmpty(documents models.Documents) models.Documents {
	if documents == nil {
		return models.Documents{}
	}
	return documents
}
