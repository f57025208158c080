package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"easybook/database/repository"
	notificationRepo "easybook/database/repository/notification"
	"easybook/models"
)

// NotificationRepo is an in-memory notificationRepo.NotificationRepository.
type NotificationRepo struct {
	mu    sync.RWMutex
	items map[string]models.Notification
}

func NewNotificationRepo() *NotificationRepo {
	return &NotificationRepo{items: make(map[string]models.Notification)}
}

var _ notificationRepo.NotificationRepository = (*NotificationRepo)(nil)

func (r *NotificationRepo) Insert(_ context.Context, notif *models.Notification) (models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.items[notif.ID]; ok {
		return stored, nil
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now().UTC()
	}
	r.items[notif.ID] = *notif
	return *notif, nil
}

func (r *NotificationRepo) MarkSent(_ context.Context, id string, pushed, emailed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	item.Pushed = item.Pushed || pushed
	item.Emailed = item.Emailed || emailed
	r.items[id] = item
	return nil
}

func (r *NotificationRepo) List(_ context.Context, userID string, unreadOnly bool, page models.Page) ([]models.Notification, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []models.Notification{}
	for _, n := range r.items {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			matched = append(matched, n)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return paginate(matched, page), int64(len(matched)), nil
}

func (r *NotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, item := range r.items {
		if item.UserID == userID && !item.Read {
			n++
		}
	}
	return n, nil
}

func (r *NotificationRepo) MarkAsRead(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return repository.ErrNotFound
	}
	item.Read = true
	r.items[id] = item
	return nil
}

// All returns every stored notification for a user, oldest first.
func (r *NotificationRepo) All(userID string) []models.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
