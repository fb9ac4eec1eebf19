package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/energycommunities/backend/internal/models"
	"github.com/energycommunities/backend/internal/notifications"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// CommunityRepository defines the interface for community application repository
type CommunityRepository interface {
	// GetByID retrieves a community application by its ID
	//
	// If the application does not exist, models.ErrCommunityNotFound is returned.
	GetByID(ctx context.Context, id string) (*models.Community, error)
	// CountByStatus counts community applications with the given status
	//
	// If some error occurs during data retrieve, the error will be returned together with 0.
	CountByStatus(ctx context.Context, status models.CommunityStatus) (int, error)
}

// UserRepository defines the interface for user repository
type UserRepository interface {
	// GetByID retrieves a user by its ID
	//
	// If the user does not exist, models.ErrUserNotFound is returned.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// ListEmailsByRole retrieves the email addresses of every user with the given role
	//
	// If some error occurs during data retrieve, the error will be returned together with "nil" value.
	ListEmailsByRole(ctx context.Context, role models.Role) ([]string, error)
}

// Mailer sends rendered emails
type Mailer interface {
	Send(email *notifications.Email) error
}

// Worker handles task processing
type Worker struct {
	logger        *zap.Logger
	communityRepo CommunityRepository
	userRepo      UserRepository
	mailer        Mailer
}

// NewWorker creates a new worker instance
func NewWorker(
	logger *zap.Logger,
	communityRepo CommunityRepository,
	userRepo UserRepository,
	mailer Mailer,
) *Worker {
	return &Worker{
		logger:        logger,
		communityRepo: communityRepo,
		userRepo:      userRepo,
		mailer:        mailer,
	}
}

// HandleApplicationDecided emails the owner of a decided community application
func (w *Worker) HandleApplicationDecided(ctx context.Context, t *asynq.Task) error {
	payload, err := notifications.ParseApplicationDecidedPayload(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	community, err := w.communityRepo.GetByID(ctx, payload.ApplicationID)
	if err != nil {
		// Application was removed before processing, nothing to notify
		if errors.Is(err, models.ErrCommunityNotFound) {
			w.logger.Warn("Decided application not found", zap.String("application_id", payload.ApplicationID))
			return nil
		}
		return err
	}

	if !community.Status.IsDecision() {
		w.logger.Warn("Application is not decided, skipping notification",
			zap.String("application_id", community.ID),
			zap.String("status", string(community.Status)),
		)
		return nil
	}

	owner, err := w.userRepo.GetByID(ctx, community.OwnerID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			w.logger.Warn("Application owner not found", zap.String("owner_id", community.OwnerID))
			return nil
		}
		return err
	}

	email, err := notifications.DecisionEmail(owner, community)
	if err != nil {
		return err
	}
	if err := w.mailer.Send(email); err != nil {
		return err
	}

	w.logger.Info("Decision notification sent",
		zap.String("application_id", community.ID),
		zap.String("status", string(community.Status)),
	)
	return nil
}

// RunPendingDigest emails administrators the number of applications awaiting review
func (w *Worker) RunPendingDigest(ctx context.Context) error {
	pending, err := w.communityRepo.CountByStatus(ctx, models.CommunityStatusPending)
	if err != nil {
		return err
	}
	if pending == 0 {
		w.logger.Debug("No pending applications, digest skipped")
		return nil
	}

	recipients, err := w.userRepo.ListEmailsByRole(ctx, models.RoleAdministrator)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		w.logger.Warn("No administrators to receive the pending digest", zap.Int("pending", pending))
		return nil
	}

	email, err := notifications.PendingDigestEmail(recipients, pending)
	if err != nil {
		return err
	}
	if err := w.mailer.Send(email); err != nil {
		return err
	}

	w.logger.Info("Pending digest sent", zap.Int("pending", pending), zap.Int("recipients", len(recipients)))
	return nil
}
