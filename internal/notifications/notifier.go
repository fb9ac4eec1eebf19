package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/energycommunities/backend/internal/models"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	// TypeApplicationDecided is the task type enqueued after a decision
	TypeApplicationDecided = "application:decided"
	// QueueNotifications is the queue decision tasks are enqueued on
	QueueNotifications = "notifications"

	maxRetry    = 5
	taskTimeout = 30 * time.Second
)

// ApplicationDecidedPayload is the JSON payload of an application:decided task
type ApplicationDecidedPayload struct {
	ApplicationID string `json:"applicationId"`
}

// NewApplicationDecidedTask creates the task announcing a decision on an application
func NewApplicationDecidedTask(applicationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ApplicationDecidedPayload{ApplicationID: applicationID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return asynq.NewTask(TypeApplicationDecided, payload), nil
}

// ParseApplicationDecidedPayload decodes the payload of an application:decided task
func ParseApplicationDecidedPayload(t *asynq.Task) (ApplicationDecidedPayload, error) {
	var payload ApplicationDecidedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to decode payload: %w", err)
	}
	if payload.ApplicationID == "" {
		return payload, fmt.Errorf("payload has no applicationId")
	}
	return payload, nil
}

// Enqueuer is the part of *asynq.Client used to enqueue tasks
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// queueNotifier enqueues decision tasks for the worker
type queueNotifier struct {
	client Enqueuer
	logger *zap.Logger
}

// NewQueueNotifier creates a notifier backed by the asynq task queue
func NewQueueNotifier(client Enqueuer, logger *zap.Logger) *queueNotifier {
	return &queueNotifier{
		client: client,
		logger: logger,
	}
}

// ApplicationDecided enqueues an application:decided task for the community application
func (n *queueNotifier) ApplicationDecided(ctx context.Context, community *models.Community) error {
	task, err := NewApplicationDecidedTask(community.ID)
	if err != nil {
		return err
	}

	info, err := n.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueNotifications),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(taskTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", TypeApplicationDecided, err)
	}

	n.logger.Debug("decision notification enqueued",
		zap.String("application_id", community.ID),
		zap.String("task_id", info.ID),
	)
	return nil
}

// nopNotifier drops every notification
type nopNotifier struct{}

// NewNopNotifier creates a notifier used when notifications are disabled
func NewNopNotifier() nopNotifier {
	return nopNotifier{}
}

// ApplicationDecided does nothing
func (nopNotifier) ApplicationDecided(context.Context, *models.Community) error {
	return nil
}
