package job

import (
	"context"
	"fmt"
)

// Notify enqueues a notification and returns once it is stored in Redis.
// Delivery happens on a worker.
func (j *JobService) Notify(ctx context.Context, p NotificationPayload) error {
	task, err := NewNotificationTask(p)
	if err != nil {
		return fmt.Errorf("failed to build notification task: %w", err)
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("type", string(p.Type)).
		Msg("notification enqueued")
	return nil
}
