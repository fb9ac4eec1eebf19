package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/energycommunities/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is filled with the generated id and creation time on success.
	//
	// A unique key violation is reported as models.ErrDuplicateUsername or models.ErrDuplicateEmail.
	Create(ctx context.Context, user *models.User) error
	// Method GetByUsername retrieves a user by username.
	//
	// If user with such username does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Method GetByEmail retrieves a user by email.
	//
	// If user with such email does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method ExistsByUsername checks if a user with such username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// credentialStore owns user accounts and password verification
type credentialStore struct {
	userRepo   UserRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewCredentialStore creates a new credential store.
// A bcrypt cost outside the supported range falls back to bcrypt.DefaultCost.
func NewCredentialStore(userRepo UserRepository, bcryptCost int, logger *zap.Logger) *credentialStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &credentialStore{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Create validates and stores a new user.
// The plaintext password is hashed with a per-record salt and never stored.
func (s *credentialStore) Create(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	username, email, name, err := normalizeRegistration(req)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleCommunityMember
	}
	if !role.IsValid() {
		return nil, models.NewValidationError("role must be one of: administrator, community-member")
	}

	if err := s.checkUniqueness(ctx, email, username); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
		Name:         name,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Authenticate returns the user when the password matches the stored hash.
// An unknown username and a wrong password both yield models.ErrInvalidCredentials.
func (s *credentialStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}

// FindByUsername retrieves a user by username
func (s *credentialStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
}

// FindByEmail retrieves a user by email
func (s *credentialStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// FindByID retrieves a user by id
func (s *credentialStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// normalizeRegistration trims the registration fields, lower-cases the email and validates them
func normalizeRegistration(req *models.RegisterRequest) (string, string, string, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)

	switch {
	case len([]rune(username)) < minUsernameLength:
		return "", "", "", models.NewValidationError(fmt.Sprintf("username must be at least %d characters long", minUsernameLength))
	case !emailRegex.MatchString(email):
		return "", "", "", models.NewValidationError("invalid email format")
	case len(req.Password) < minPasswordLength:
		return "", "", "", models.NewValidationError(fmt.Sprintf("password must be at least %d characters long", minPasswordLength))
	case len(req.Password) > maxPasswordBytes:
		return "", "", "", models.NewValidationError(fmt.Sprintf("password must be at most %d bytes long", maxPasswordBytes))
	case name == "":
		return "", "", "", models.NewValidationError("name is required")
	}

	err := checkLengths(
		fieldLimit{"username", username, maxUsernameLength},
		fieldLimit{"email", email, maxEmailLength},
		fieldLimit{"name", name, maxPersonNameLength},
	)
	if err != nil {
		return "", "", "", err
	}

	return username, email, name, nil
}

// checkUniqueness checks username and email uniqueness.
//
// The checks do not depend on each other, so they run in parallel.
// The unique indexes still catch a concurrent registration that slips between the check and the insert.
func (s *credentialStore) checkUniqueness(ctx context.Context, email, username string) error {
	results := make(chan error, 2)

	go func() {
		exists, err := s.userRepo.ExistsByUsername(ctx, username)
		switch {
		case err != nil:
			results <- fmt.Errorf("failed to check username: %w", err)
		case exists:
			results <- models.ErrDuplicateUsername
		default:
			results <- nil
		}
	}()

	go func() {
		exists, err := s.userRepo.ExistsByEmail(ctx, email)
		switch {
		case err != nil:
			results <- fmt.Errorf("failed to check email: %w", err)
		case exists:
			results <- models.ErrDuplicateEmail
		default:
			results <- nil
		}
	}()

	// Username conflicts are reported before email conflicts regardless of arrival order
	var usernameErr, otherErr error
	for n := 0; n < 2; n++ {
		err := <-results
		switch {
		case err == nil:
		case errors.Is(err, models.ErrDuplicateUsername):
			usernameErr = err
		case otherErr == nil:
			otherErr = err
		}
	}
	if usernameErr != nil {
		return usernameErr
	}
	return otherErr
}
