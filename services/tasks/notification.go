package tasks

import (
	"encoding/json"
	"time"

	"easybook/models"

	"github.com/hibiken/asynq"
)

const TypeNotificationDeliver = "notification:deliver"

// NewNotificationTask wraps a notification for the delivery worker. The task
// ID is the notification's dedup key, so a transition enqueues at most once.
func NewNotificationTask(n models.Notification, maxRetry int, timeout time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotificationDeliver, b)
	opts := []asynq.Option{
		asynq.TaskID(n.DedupKey()),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(timeout),
		asynq.Retention(24 * time.Hour),
	}
	return task, opts, nil
}

// ParseNotificationTask decodes the payload written by NewNotificationTask.
func ParseNotificationTask(task *asynq.Task) (models.Notification, error) {
	var n models.Notification
	err := json.Unmarshal(task.Payload(), &n)
	return n, err
}
