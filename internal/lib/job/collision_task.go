package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deppfellow/crashmap/internal/model"
	"github.com/hibiken/asynq"
)

const (
	TaskCollisionUpdated = "collision:updated"

	QueueEvents = "events"
)

// NewCollisionUpdatedTask wraps update in a task retried up to 5 times.
func NewCollisionUpdatedTask(update model.CollisionUpdate) (*asynq.Task, error) {
	payload, err := json.Marshal(update)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskCollisionUpdated,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(QueueEvents),
		asynq.Timeout(10*time.Second),
	), nil
}

func (j *JobService) handleCollisionUpdatedTask(ctx context.Context, t *asynq.Task) error {
	var update model.CollisionUpdate
	if err := json.Unmarshal(t.Payload(), &update); err != nil {
		// A payload that does not decode will never succeed.
		return fmt.Errorf("unmarshal collision update: %v: %w", err, asynq.SkipRetry)
	}

	if err := j.publisher.PublishCollisionUpdate(ctx, update); err != nil {
		j.logger.Error().
			Err(err).
			Str("intersection", update.Name).
			Str("kind", string(update.Kind)).
			Msg("failed to publish collision update")
		return err
	}

	j.logger.Debug().
		Str("intersection", update.Name).
		Int32("num_collisions", update.NumCollisions).
		Msg("published collision update")
	return nil
}

// Enqueuer is the part of *asynq.Client the queued publisher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueuedPublisher implements events.Publisher by enqueuing a task per update.
type QueuedPublisher struct {
	client Enqueuer
}

func NewQueuedPublisher(client Enqueuer) *QueuedPublisher {
	return &QueuedPublisher{client: client}
}

func (p *QueuedPublisher) PublishCollisionUpdate(ctx context.Context, update model.CollisionUpdate) error {
	task, err := NewCollisionUpdatedTask(update)
	if err != nil {
		return fmt.Errorf("build collision update task: %w", err)
	}

	if _, err := p.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue collision update: %w", err)
	}
	return nil
}
