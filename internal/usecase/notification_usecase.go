package usecase

import (
	"context"
	"errors"

	"github.com/NasaVasa/partprice/internal/domain"
	"go.uber.org/zap"
)

var ErrNotificationNotFound = errors.New("notification not found")

const (
	maxNotificationTitle   = 200
	maxNotificationMessage = 500
	defaultInboxLimit      = 20
	maxInboxLimit          = 100
)

// Sink pushes a stored notification to a live channel.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, notification domain.Notification) error
}

type NotificationUsecase struct {
	inbox  domain.NotificationRepository
	sinks  []Sink
	logger *zap.Logger
}

func NewNotificationUsecase(inbox domain.NotificationRepository, logger *zap.Logger, sinks ...Sink) *NotificationUsecase {
	return &NotificationUsecase{inbox: inbox, sinks: sinks, logger: logger}
}

// Notify stores the notification and fans it out. Failures are logged only.
func (u *NotificationUsecase) Notify(ctx context.Context, userID uint, kind domain.NotificationType, title, message, link string) {
	notification := domain.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   truncateRunes(title, maxNotificationTitle),
		Message: truncateRunes(message, maxNotificationMessage),
		LinkURL: link,
	}
	if err := u.inbox.Create(ctx, &notification); err != nil {
		u.logger.Warn("failed to store notification", zap.Uint("user_id", userID), zap.Error(err))
	}

	for _, sink := range u.sinks {
		if err := sink.Deliver(ctx, notification); err != nil {
			u.logger.Warn("failed to deliver notification",
				zap.String("sink", sink.Name()),
				zap.Uint("user_id", userID),
				zap.Error(err),
			)
		}
	}
}

func (u *NotificationUsecase) List(ctx context.Context, userID uint, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultInboxLimit
	}
	if limit > maxInboxLimit {
		limit = maxInboxLimit
	}
	return u.inbox.ListByUser(ctx, userID, limit)
}

func (u *NotificationUsecase) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return u.inbox.CountUnread(ctx, userID)
}

func (u *NotificationUsecase) MarkRead(ctx context.Context, userID, notificationID uint) error {
	if err := u.inbox.MarkRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (u *NotificationUsecase) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return u.inbox.MarkAllRead(ctx, userID)
}
