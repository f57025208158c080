package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"easybook/models"
	"easybook/services/tasks"
	"easybook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueDispatcher enqueues notifications on the asynq delivery queue.
type QueueDispatcher struct {
	client   *asynq.Client
	maxRetry int
	timeout  time.Duration
}

func NewQueueDispatcher(client *asynq.Client, maxRetry int, timeout time.Duration) *QueueDispatcher {
	return &QueueDispatcher{client: client, maxRetry: maxRetry, timeout: timeout}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, n models.Notification) models.DeliveryResult {
	task, opts, err := tasks.NewNotificationTask(n, d.maxRetry, d.timeout)
	if err != nil {
		return models.DeliveryResult{Success: false, Error: err.Error()}
	}
	if _, err := d.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return models.DeliveryResult{Success: true}
		}
		return models.DeliveryResult{Success: false, Error: err.Error()}
	}
	return models.DeliveryResult{Success: true}
}

// InlineDispatcher delivers on a background goroutine in this process. It
// never blocks the caller on the push or email gateways.
type InlineDispatcher struct {
	svc     NotificationService
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewInlineDispatcher(svc NotificationService, timeout time.Duration) *InlineDispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &InlineDispatcher{svc: svc, timeout: timeout}
}

func (d *InlineDispatcher) Dispatch(_ context.Context, n models.Notification) models.DeliveryResult {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.svc.Deliver(ctx, n); err != nil {
			utils.GetLogger().Warn("notification delivery failed",
				zap.String("notificationId", n.ID),
				zap.String("userId", n.UserID),
				zap.Error(err))
		}
	}()
	return models.DeliveryResult{Success: true}
}

// Wait blocks until every in-flight delivery has finished.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}
