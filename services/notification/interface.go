package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"easybook/database/repository"
	notificationRepo "easybook/database/repository/notification"
	userRepo "easybook/database/repository/user"
	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PushSender delivers a single push message to a device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// EmailSender delivers a single email.
type EmailSender interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// Dispatcher hands a notification off for delivery. Callers only learn
// whether the hand-off succeeded; delivery itself happens later.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification) models.DeliveryResult
}

// NotificationService delivers notifications and serves the user inbox.
type NotificationService interface {
	// Deliver stores n in the recipient's inbox and fans it out to push and email.
	Deliver(ctx context.Context, n models.Notification) error
	List(ctx context.Context, userID string, unreadOnly bool, page models.Page) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID, id string) error
	// Send lets an admin address a general notification to one user.
	Send(ctx context.Context, req SendRequest) (models.DeliveryResult, error)
	// SendBulk sends the same notification to each listed user. One user's
	// failure is reported in the result and does not stop the others.
	SendBulk(ctx context.Context, req BulkRequest) (*BulkResult, error)
}

// SendRequest is the body of POST /notifications/send.
type SendRequest struct {
	UserID string            `json:"userId" validate:"required"`
	Title  string            `json:"title" validate:"required,max=120"`
	Body   string            `json:"body" validate:"required,max=1000"`
	Type   string            `json:"type" validate:"omitempty,max=40"`
	Data   map[string]string `json:"data"`
}

// BulkRequest is the body of POST /notifications/bulk.
type BulkRequest struct {
	UserIDs []string          `json:"userIds" validate:"required,min=1,max=500,dive,required"`
	Title   string            `json:"title" validate:"required,max=120"`
	Body    string            `json:"body" validate:"required,max=1000"`
	Type    string            `json:"type" validate:"omitempty,oneof=booking payment review general"`
	Data    map[string]string `json:"data"`
}

// BulkOutcome is the result for one recipient of a bulk send.
type BulkOutcome struct {
	UserID  string `json:"userId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type BulkResult struct {
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Results    []BulkOutcome `json:"results"`
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	users      userRepo.UserRepository
	inbox      notificationRepo.NotificationRepository
	push       PushSender
	email      EmailSender
	dispatcher Dispatcher
}

// NewDefaultNotificationService builds the deliverer. push and email may be nil
// when the corresponding gateway is not configured.
func NewDefaultNotificationService(
	users userRepo.UserRepository,
	inbox notificationRepo.NotificationRepository,
	push PushSender,
	email EmailSender,
) (*DefaultNotificationService, error) {
	if users == nil || inbox == nil {
		return nil, fmt.Errorf("notification service initialization error: user or inbox repository is nil")
	}
	return &DefaultNotificationService{users: users, inbox: inbox, push: push, email: email}, nil
}

// UseDispatcher sets the dispatcher used by Send.
func (s *DefaultNotificationService) UseDispatcher(d Dispatcher) {
	s.dispatcher = d
}

func (s *DefaultNotificationService) Deliver(ctx context.Context, n models.Notification) error {
	logger := utils.GetLogger().With(zap.String("notificationId", n.ID), zap.String("userId", n.UserID))

	u, err := s.users.GetByID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("could not find recipient %s: %w", n.UserID, err)
	}

	// The inbox entry goes first: a failure here is retried before any
	// channel fires, and a redelivery sees which channels already went out.
	n, err = s.inbox.Insert(ctx, &n)
	if err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	var pushed, emailed bool
	if s.push != nil && u.WantsPush() && !n.Pushed {
		data := map[string]string{"type": string(n.Type), "notificationId": n.ID}
		for k, v := range n.Data {
			data[k] = v
		}
		if err := s.push.Send(ctx, u.FCMToken, n.Title, n.Body, data); err != nil {
			logger.Warn("push delivery failed", zap.Error(err))
		} else {
			pushed = true
		}
	}

	if s.email != nil && u.WantsEmail() && !n.Emailed && n.BookingID != "" {
		msg := models.EmailMessage{
			To:      u.Email,
			Subject: n.Title,
			Text:    n.Body,
			HTML:    renderEmail(u.FirstName, n),
		}
		if err := s.email.Send(ctx, msg); err != nil {
			logger.Warn("email delivery failed", zap.Error(err))
		} else {
			emailed = true
		}
	}

	if pushed || emailed {
		if err := s.inbox.MarkSent(ctx, n.ID, pushed, emailed); err != nil {
			logger.Warn("failed to record delivered channels", zap.Error(err))
		}
	}
	logger.Debug("notification delivered", zap.Bool("pushed", n.Pushed || pushed), zap.Bool("emailed", n.Emailed || emailed))
	return nil
}

func (s *DefaultNotificationService) List(ctx context.Context, userID string, unreadOnly bool, page models.Page) ([]models.Notification, int64, error) {
	items, total, err := s.inbox.List(ctx, userID, unreadOnly, page.Normalize(20, 100))
	if err != nil {
		return nil, 0, utils.NewInternalError("Failed to list notifications", err)
	}
	return items, total, nil
}

func (s *DefaultNotificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	n, err := s.inbox.CountUnread(ctx, userID)
	if err != nil {
		return 0, utils.NewInternalError("Failed to count notifications", err)
	}
	return n, nil
}

// MarkAsRead only touches the caller's own notifications.
func (s *DefaultNotificationService) MarkAsRead(ctx context.Context, userID, id string) error {
	if err := s.inbox.MarkAsRead(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NewNotFoundError("Notification not found")
		}
		return utils.NewInternalError("Failed to update notification", err)
	}
	return nil
}

func (s *DefaultNotificationService) Send(ctx context.Context, req SendRequest) (models.DeliveryResult, error) {
	if err := validation.Struct(&req); err != nil {
		return models.DeliveryResult{}, err
	}
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.DeliveryResult{}, utils.NewNotFoundError("User not found")
		}
		return models.DeliveryResult{}, utils.NewInternalError("Failed to load user", err)
	}
	kind := models.NotificationType(req.Type)
	if kind == "" {
		kind = models.NotifyGeneral
	}
	n := models.Notification{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Type:      kind,
		Title:     req.Title,
		Body:      req.Body,
		Data:      req.Data,
		CreatedAt: time.Now().UTC(),
	}
	if s.dispatcher == nil {
		if err := s.Deliver(ctx, n); err != nil {
			return models.DeliveryResult{Success: false, Error: err.Error()}, nil
		}
		return models.DeliveryResult{Success: true}, nil
	}
	return s.dispatcher.Dispatch(ctx, n), nil
}
