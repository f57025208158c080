package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"easybook/models"
	"easybook/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDeliverer struct {
	delivered []models.Notification
	err       error
}

func (d *recordingDeliverer) Deliver(_ context.Context, n models.Notification) error {
	d.delivered = append(d.delivered, n)
	return d.err
}

func TestHandleNotificationTaskDelivers(t *testing.T) {
	d := &recordingDeliverer{}
	task, _, err := tasks.NewNotificationTask(models.Notification{ID: "n-1", UserID: "u-1", BookingID: "bk-1", Type: models.NotifyBookingAccepted, Title: "Booking Accepted"}, 3, time.Minute)
	require.NoError(t, err)

	require.NoError(t, HandleNotificationTask(d)(context.Background(), task))
	require.Len(t, d.delivered, 1)
	assert.Equal(t, "Booking Accepted", d.delivered[0].Title)
}

func TestHandleNotificationTaskSkipsBadPayload(t *testing.T) {
	d := &recordingDeliverer{}
	err := HandleNotificationTask(d)(context.Background(), asynq.NewTask(tasks.TypeNotificationDeliver, []byte("{not json")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, d.delivered)
}

func TestHandleNotificationTaskRetriesDeliveryErrors(t *testing.T) {
	d := &recordingDeliverer{err: errors.New("fcm unavailable")}
	task, _, err := tasks.NewNotificationTask(models.Notification{ID: "n-1", UserID: "u-1"}, 3, time.Minute)
	require.NoError(t, err)

	err = HandleNotificationTask(d)(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
