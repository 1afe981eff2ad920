package db

import (
	"context"
	"errors"
	"time"

	"github.com/NasaVasa/partprice/internal/domain"
	"gorm.io/gorm"
)

type PriceAlertRepository struct {
	db *gorm.DB
}

func NewPriceAlertRepository(db *gorm.DB) *PriceAlertRepository {
	return &PriceAlertRepository{db: db}
}

func (r *PriceAlertRepository) Create(ctx context.Context, alert *domain.PriceAlert) error {
	model := mapAlertToModel(*alert)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	alert.ID = model.ID
	alert.CreatedAt = model.CreatedAt
	alert.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *PriceAlertRepository) GetByID(ctx context.Context, alertID uint) (*domain.PriceAlert, error) {
	var model priceAlertModel
	if err := r.db.WithContext(ctx).First(&model, alertID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	alert := mapAlertToDomain(model)
	return &alert, nil
}

func (r *PriceAlertRepository) ListActiveByUser(ctx context.Context, userID uint) ([]domain.PriceAlert, error) {
	var models []priceAlertModel
	if err := r.db.WithContext(ctx).Where("user_id = ? AND is_active = ?", userID, true).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models), nil
}

func (r *PriceAlertRepository) ListPendingByPart(ctx context.Context, partID uint) ([]domain.PriceAlert, error) {
	var models []priceAlertModel
	err := r.db.WithContext(ctx).
		Where("part_id = ? AND is_active = ? AND is_triggered = ?", partID, true, false).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models), nil
}

func (r *PriceAlertRepository) Deactivate(ctx context.Context, alertID uint) error {
	result := r.db.WithContext(ctx).Model(&priceAlertModel{}).Where("id = ?", alertID).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PriceAlertRepository) MarkTriggered(ctx context.Context, alertID uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&priceAlertModel{}).
		Where("id = ? AND is_active = ? AND is_triggered = ?", alertID, true, false).
		Updates(map[string]interface{}{
			"is_triggered": true,
			"is_active":    false,
			"triggered_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func mapAlertsToDomain(models []priceAlertModel) []domain.PriceAlert {
	alerts := make([]domain.PriceAlert, 0, len(models))
	for _, model := range models {
		alerts = append(alerts, mapAlertToDomain(model))
	}
	return alerts
}

func mapAlertToDomain(model priceAlertModel) domain.PriceAlert {
	return domain.PriceAlert{
		ID:          model.ID,
		UserID:      model.UserID,
		PartID:      model.PartID,
		TargetPrice: model.TargetPrice,
		Active:      model.IsActive,
		Triggered:   model.IsTriggered,
		TriggeredAt: model.TriggeredAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func mapAlertToModel(alert domain.PriceAlert) priceAlertModel {
	return priceAlertModel{
		ID:          alert.ID,
		UserID:      alert.UserID,
		PartID:      alert.PartID,
		TargetPrice: alert.TargetPrice,
		IsActive:    alert.Active,
		IsTriggered: alert.Triggered,
		TriggeredAt: alert.TriggeredAt,
		CreatedAt:   alert.CreatedAt,
		UpdatedAt:   alert.UpdatedAt,
	}
}
