package db

import (
	"context"

	"github.com/NasaVasa/partprice/internal/domain"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	model := notificationModel{
		UserID:  notification.UserID,
		Type:    string(notification.Type),
		Title:   notification.Title,
		Message: notification.Message,
		LinkURL: notification.LinkURL,
		IsRead:  notification.Read,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	notification.ID = model.ID
	notification.CreatedAt = model.CreatedAt
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]domain.Notification, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []notificationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	notifications := make([]domain.Notification, 0, len(models))
	for _, model := range models {
		notifications = append(notifications, domain.Notification{
			ID:        model.ID,
			UserID:    model.UserID,
			Type:      domain.NotificationType(model.Type),
			Title:     model.Title,
			Message:   model.Message,
			LinkURL:   model.LinkURL,
			Read:      model.IsRead,
			CreatedAt: model.CreatedAt,
		})
	}
	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID uint, notificationID uint) error {
	result := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
