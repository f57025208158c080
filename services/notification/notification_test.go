package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"easybook/database/repository/memory"
	"easybook/models"
	"easybook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPush struct {
	mu     sync.Mutex
	tokens []string
	err    error
}

func (p *recordingPush) Send(_ context.Context, token, _, _ string, _ map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.tokens = append(p.tokens, token)
	return nil
}

type recordingEmail struct {
	mu   sync.Mutex
	sent []models.EmailMessage
}

func (e *recordingEmail) Send(_ context.Context, msg models.EmailMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, msg)
	return nil
}

func newTestService(t *testing.T, push PushSender, email EmailSender) (*DefaultNotificationService, *memory.UserRepo, *memory.NotificationRepo) {
	t.Helper()
	users := memory.NewUserRepo()
	inbox := memory.NewNotificationRepo()
	svc, err := NewDefaultNotificationService(users, inbox, push, email)
	require.NoError(t, err)
	return svc, users, inbox
}

func bookingNotification(userID string) models.Notification {
	return models.Notification{
		ID:        "n-1",
		UserID:    userID,
		Type:      models.NotifyBookingAccepted,
		Title:     "Booking Accepted",
		Body:      "Your booking for Deep Clean has been accepted",
		BookingID: "b-1",
		Data:      map[string]string{"bookingId": "b-1", "bookingNumber": "BK-1"},
		CreatedAt: time.Now().UTC(),
	}
}

func TestDeliverPushesEmailsAndStores(t *testing.T) {
	push := &recordingPush{}
	email := &recordingEmail{}
	svc, users, inbox := newTestService(t, push, email)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{
		ID:        "customer-1",
		FirstName: "Ada",
		Email:     "ada@example.com",
		Role:      models.RoleCustomer,
		FCMToken:  "token-1",
		CustomerInfo: &models.CustomerInfo{
			Preferences: models.Preferences{Notifications: true, EmailUpdates: true},
		},
	}))

	require.NoError(t, svc.Deliver(ctx, bookingNotification("customer-1")))

	assert.Equal(t, []string{"token-1"}, push.tokens)
	require.Len(t, email.sent, 1)
	assert.Equal(t, "ada@example.com", email.sent[0].To)
	assert.Contains(t, email.sent[0].HTML, "BK-1")

	stored := inbox.All("customer-1")
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Pushed)
	assert.True(t, stored[0].Emailed)
	assert.False(t, stored[0].Read)
}

func TestDeliverRespectsPreferencesAndPushFailures(t *testing.T) {
	push := &recordingPush{err: errors.New("unregistered token")}
	email := &recordingEmail{}
	svc, users, inbox := newTestService(t, push, email)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{
		ID:       "customer-2",
		Email:    "bo@example.com",
		Role:     models.RoleCustomer,
		FCMToken: "token-2",
		CustomerInfo: &models.CustomerInfo{
			Preferences: models.Preferences{Notifications: true, EmailUpdates: false},
		},
	}))

	require.NoError(t, svc.Deliver(ctx, bookingNotification("customer-2")))

	assert.Empty(t, email.sent)
	stored := inbox.All("customer-2")
	require.Len(t, stored, 1)
	assert.False(t, stored[0].Pushed)
	assert.False(t, stored[0].Emailed)
}

// flakyInbox fails the first Insert, the way a Mongo blip would.
type flakyInbox struct {
	*memory.NotificationRepo
	failures int
}

func (f *flakyInbox) Insert(ctx context.Context, n *models.Notification) (models.Notification, error) {
	if f.failures > 0 {
		f.failures--
		return models.Notification{}, errors.New("connection reset")
	}
	return f.NotificationRepo.Insert(ctx, n)
}

func TestRedeliveryDoesNotRepeatChannels(t *testing.T) {
	push := &recordingPush{}
	email := &recordingEmail{}
	users := memory.NewUserRepo()
	inbox := &flakyInbox{NotificationRepo: memory.NewNotificationRepo(), failures: 1}
	svc, err := NewDefaultNotificationService(users, inbox, push, email)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{
		ID:        "customer-3",
		FirstName: "Cy",
		Email:     "cy@example.com",
		Role:      models.RoleCustomer,
		FCMToken:  "token-3",
		CustomerInfo: &models.CustomerInfo{
			Preferences: models.Preferences{Notifications: true, EmailUpdates: true},
		},
	}))
	n := bookingNotification("customer-3")

	// storage failure: nothing goes out, the task is retried
	require.Error(t, svc.Deliver(ctx, n))
	assert.Empty(t, push.tokens)
	assert.Empty(t, email.sent)

	require.NoError(t, svc.Deliver(ctx, n))
	require.NoError(t, svc.Deliver(ctx, n))

	assert.Equal(t, []string{"token-3"}, push.tokens)
	assert.Len(t, email.sent, 1)
	stored := inbox.All("customer-3")
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Pushed)
	assert.True(t, stored[0].Emailed)
}

func TestDeliverUnknownRecipient(t *testing.T) {
	svc, _, _ := newTestService(t, nil, nil)
	err := svc.Deliver(context.Background(), bookingNotification("ghost"))
	assert.Error(t, err)
}

func TestInlineDispatcherDeliversInBackground(t *testing.T) {
	svc, users, inbox := newTestService(t, nil, nil)
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{ID: "provider-1", Email: "p@example.com", Role: models.RoleProvider}))

	dispatcher := NewInlineDispatcher(svc, time.Second)
	result := dispatcher.Dispatch(ctx, bookingNotification("provider-1"))
	dispatcher.Wait()

	assert.True(t, result.Success)
	assert.Len(t, inbox.All("provider-1"), 1)
}

func TestInboxReadFlow(t *testing.T) {
	svc, users, _ := newTestService(t, nil, nil)
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{ID: "u-1", Email: "u@example.com", Role: models.RoleCustomer}))

	result, err := svc.Send(ctx, SendRequest{UserID: "u-1", Title: "Welcome", Body: "Thanks for joining"})
	require.NoError(t, err)
	assert.True(t, result.Success)

	items, total, err := svc.List(ctx, "u-1", true, models.Page{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, models.NotifyGeneral, items[0].Type)

	err = svc.MarkAsRead(ctx, "someone-else", items[0].ID)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
	require.NoError(t, svc.MarkAsRead(ctx, "u-1", items[0].ID))

	unread, err := svc.CountUnread(ctx, "u-1")
	require.NoError(t, err)
	assert.Zero(t, unread)

	_, err = svc.Send(ctx, SendRequest{UserID: "ghost", Title: "Hi", Body: "there"})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
	_, err = svc.Send(ctx, SendRequest{UserID: "u-1"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestSendBulkReportsEachRecipient(t *testing.T) {
	svc, users, inbox := newTestService(t, nil, nil)
	ctx := context.Background()
	for _, id := range []string{"u-1", "u-2"} {
		require.NoError(t, users.Create(ctx, &models.User{ID: id, FirstName: id, Email: id + "@example.com", Role: models.RoleCustomer}))
	}

	result, err := svc.SendBulk(ctx, BulkRequest{
		UserIDs: []string{"u-1", "ghost", "u-2"},
		Title:   "Holiday hours",
		Body:    "We are closed on Monday",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 3)
	assert.Equal(t, "ghost", result.Results[1].UserID)
	assert.False(t, result.Results[1].Success)
	assert.Equal(t, "User not found", result.Results[1].Error)
	assert.Len(t, inbox.All("u-1"), 1)
	assert.Len(t, inbox.All("u-2"), 1)

	_, err = svc.SendBulk(ctx, BulkRequest{Title: "x", Body: "y"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	_, err = svc.SendBulk(ctx, BulkRequest{UserIDs: []string{"u-1"}, Title: "x", Body: "y", Type: "marketing"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}
