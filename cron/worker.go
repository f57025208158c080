package cron

import (
	"context"
	"fmt"
	"time"

	"easybook/models"
	"easybook/services/tasks"
	"easybook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Deliverer performs one notification delivery.
type Deliverer interface {
	Deliver(ctx context.Context, n models.Notification) error
}

// NotificationWorker consumes notification:deliver tasks.
type NotificationWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	redis  *redis.Client
	cancel context.CancelFunc
}

func NewNotificationWorker(opts asynq.RedisClientOpt, svc Deliverer, concurrency int) *NotificationWorker {
	srv := asynq.NewServer(opts, asynq.Config{
		Concurrency:  concurrency,
		Queues:       map[string]int{"default": 1},
		Logger:       utils.GetLogger().Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(logTaskError),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationDeliver, HandleNotificationTask(svc))

	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &NotificationWorker{srv: srv, mux: mux, redis: rdb}
}

// Start launches the worker, retrying a few times while Redis comes up.
func (w *NotificationWorker) Start() error {
	const maxAttempts = 5
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = w.srv.Start(w.mux); err == nil {
			break
		}
		utils.GetLogger().Warn("Notification worker failed to start",
			zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
		time.Sleep(time.Duration(attempt*2) * time.Second)
	}
	if err != nil {
		return fmt.Errorf("notification worker: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.monitorRedis(ctx)
	utils.GetLogger().Info("Notification worker started")
	return nil
}

// Shutdown waits for in-flight tasks and stops the worker.
func (w *NotificationWorker) Shutdown() {
	if w.cancel != nil {
		w.cancel()
	}
	w.srv.Shutdown()
	_ = w.redis.Close()
}

// HandleNotificationTask delivers one queued notification. Malformed payloads are
// not retried; delivery errors are, up to the task's MaxRetry.
func HandleNotificationTask(svc Deliverer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := tasks.ParseNotificationTask(task)
		if err != nil {
			utils.GetLogger().Error("Invalid notification payload", zap.Error(err))
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}
		if n.UserID == "" {
			return fmt.Errorf("notification %s has no recipient: %w", n.ID, asynq.SkipRetry)
		}
		if err := svc.Deliver(ctx, n); err != nil {
			return fmt.Errorf("deliver notification %s: %w", n.ID, err)
		}
		return nil
	}
}

func logTaskError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	utils.GetLogger().Warn("Notification task failed",
		zap.String("type", task.Type()),
		zap.Int("retry", retried),
		zap.Int("maxRetry", maxRetry),
		zap.Error(err))
}

// monitorRedis pings the queue database so a lost connection shows up in the logs.
func (w *NotificationWorker) monitorRedis(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.redis.Ping(ctx).Err(); err != nil && ctx.Err() == nil {
				utils.GetLogger().Warn("Queue Redis connection lost", zap.Error(err))
			}
		}
	}
}
