package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/energycommunities/backend/internal/models"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockEnqueuer records enqueued tasks
type mockEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.tasks = append(m.tasks, task)
	m.opts = append(m.opts, opts)
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueNotifications}, nil
}

func TestQueueNotifier_ApplicationDecided(t *testing.T) {
	enqueuer := &mockEnqueuer{}
	notifier := NewQueueNotifier(enqueuer, zap.NewNop())

	err := notifier.ApplicationDecided(context.Background(), &models.Community{ID: "c-1", Status: models.CommunityStatusApproved})
	require.NoError(t, err)

	require.Len(t, enqueuer.tasks, 1)
	task := enqueuer.tasks[0]
	assert.Equal(t, TypeApplicationDecided, task.Type())
	assert.JSONEq(t, `{"applicationId":"c-1"}`, string(task.Payload()))

	var queue string
	for _, opt := range enqueuer.opts[0] {
		if opt.Type() == asynq.QueueOpt {
			queue = opt.Value().(string)
		}
	}
	assert.Equal(t, QueueNotifications, queue)
}

func TestQueueNotifier_EnqueueError(t *testing.T) {
	notifier := NewQueueNotifier(&mockEnqueuer{err: errors.New("redis down")}, zap.NewNop())

	err := notifier.ApplicationDecided(context.Background(), &models.Community{ID: "c-1"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestNopNotifier(t *testing.T) {
	assert.NoError(t, NewNopNotifier().ApplicationDecided(context.Background(), &models.Community{ID: "c-1"}))
}

func TestParseApplicationDecidedPayload(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		expectedID  string
		expectError bool
	}{
		{"valid", `{"applicationId":"c-1"}`, "c-1", false},
		{"missing id", `{}`, "", true},
		{"not json", `c-1`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := ParseApplicationDecidedPayload(asynq.NewTask(TypeApplicationDecided, []byte(tt.payload)))
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, payload.ApplicationID)
		})
	}
}

func TestDecisionEmail(t *testing.T) {
	owner := &models.User{Name: "María <script>", Email: "maria@example.com"}

	tests := []struct {
		name    string
		status  models.CommunityStatus
		outcome string
	}{
		{"approved", models.CommunityStatusApproved, "aprobada"},
		{"rejected", models.CommunityStatusRejected, "rechazada"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, err := DecisionEmail(owner, &models.Community{Name: "Solar Valle", Location: "Valle", Status: tt.status})
			require.NoError(t, err)

			assert.Equal(t, []string{"maria@example.com"}, email.To)
			assert.Contains(t, email.Subject, tt.outcome)
			assert.Contains(t, email.Subject, "Solar Valle")
			assert.Contains(t, email.Body, tt.outcome)
			assert.NotContains(t, email.Body, "<script>")
		})
	}
}

func TestPendingDigestEmail(t *testing.T) {
	email, err := PendingDigestEmail([]string{"a@example.com", "b@example.com"}, 4)
	require.NoError(t, err)

	assert.Len(t, email.To, 2)
	assert.Contains(t, email.Subject, "4")
	assert.Contains(t, email.Body, "<strong>4</strong>")
}
