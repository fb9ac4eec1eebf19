package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/energycommunities/backend/internal/models"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation
const mysqlDuplicateEntry = 1062

// userRepository implements UserRepository
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, username, email, password_hash, role, name, created_at`

// Create inserts a new user into the database.
// The id and creation time are assigned here.
// A unique key violation is reported as ErrDuplicateUsername or ErrDuplicateEmail.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, role, name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	id := uuid.New().String()
	createdAt := time.Now().UTC().Truncate(time.Second)

	_, err := r.db.ExecContext(ctx, query, id, user.Username, user.Email, user.PasswordHash, user.Role, user.Name, createdAt)
	if err != nil {
		if dupErr := duplicateUserError(err); dupErr != nil {
			return dupErr
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "username", username)
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email", email)
}

// GetByID retrieves a user by id
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "id", id)
}

// getOne retrieves a single user by a unique column.
// column is always one of the constants passed by the methods above.
func (r *userRepository) getOne(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = ? LIMIT 1`, userColumns, column)

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Name,
		&user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user", zap.Error(err), zap.String("by", column))
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return user, nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// ExistsByUsername checks if a user exists with the given username
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE username = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, username).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check username existence", zap.Error(err), zap.String("username", username))
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// ListEmailsByRole returns the email addresses of all users with the given role
func (r *userRepository) ListEmailsByRole(ctx context.Context, role models.Role) ([]string, error) {
	query := `SELECT email FROM users WHERE role = ? ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		r.logger.Error("failed to query user emails", zap.Error(err))
		return nil, fmt.Errorf("failed to query user emails: %w", err)
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan user email: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user emails: %w", err)
	}

	return emails, nil
}

// duplicateUserError maps a MySQL unique key violation to the matching conflict error.
// Returns nil when err is not a duplicate entry error.
func duplicateUserError(err error) error {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlDuplicateEntry {
		return nil
	}
	if strings.Contains(mysqlErr.Message, "uq_users_email") {
		return models.ErrDuplicateEmail
	}
	return models.ErrDuplicateUsername
}
