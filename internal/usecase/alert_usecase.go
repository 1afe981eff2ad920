package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NasaVasa/partprice/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrAlertNotFound      = errors.New("alert not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTargetPrice = errors.New("target price must be positive")
)

type AlertView struct {
	ID                 uint      `json:"id"`
	PartID             uint      `json:"partId"`
	PartName           string    `json:"partName"`
	TargetPrice        int       `json:"targetPrice"`
	CurrentLowestPrice *int      `json:"currentLowestPrice"`
	IsActive           bool      `json:"isActive"`
	IsTriggered        bool      `json:"isTriggered"`
	CreatedAt          time.Time `json:"createdAt"`
}

type AlertUsecase struct {
	parts    domain.PartRepository
	alerts   domain.PriceAlertRepository
	tx       domain.TxManager
	notifier Notifier
	now      Clock
	logger   *zap.Logger
}

func NewAlertUsecase(parts domain.PartRepository, alerts domain.PriceAlertRepository, tx domain.TxManager, notifier Notifier, now Clock, logger *zap.Logger) *AlertUsecase {
	return &AlertUsecase{parts: parts, alerts: alerts, tx: tx, notifier: notifier, now: now, logger: logger}
}

func (u *AlertUsecase) CreateAlert(ctx context.Context, userID, partID uint, targetPrice int) (*AlertView, error) {
	if targetPrice <= 0 {
		return nil, ErrInvalidTargetPrice
	}

	part, err := u.parts.GetByID(ctx, partID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrPartNotFound
		}
		return nil, err
	}

	alert := &domain.PriceAlert{
		UserID:      userID,
		PartID:      part.ID,
		TargetPrice: targetPrice,
		Active:      true,
	}
	if err := u.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	view := newAlertView(*alert, part)
	return &view, nil
}

// GetMyAlerts annotates each active alert with the part's lowest price as it
// is now, not as it was when the alert was created.
func (u *AlertUsecase) GetMyAlerts(ctx context.Context, userID uint) ([]AlertView, error) {
	alerts, err := u.alerts.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	partIDs := make([]uint, 0, len(alerts))
	for _, alert := range alerts {
		partIDs = append(partIDs, alert.PartID)
	}
	parts, err := u.parts.GetByIDs(ctx, partIDs)
	if err != nil {
		return nil, err
	}

	views := make([]AlertView, 0, len(alerts))
	for _, alert := range alerts {
		var part *domain.Part
		if found, ok := parts[alert.PartID]; ok {
			part = &found
		}
		views = append(views, newAlertView(alert, part))
	}
	return views, nil
}

func (u *AlertUsecase) DeactivateAlert(ctx context.Context, userID, alertID uint) error {
	alert, err := u.alerts.GetByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrAlertNotFound
		}
		return err
	}
	if alert.UserID != userID {
		return ErrForbidden
	}

	if err := u.alerts.Deactivate(ctx, alertID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrAlertNotFound
		}
		return err
	}
	return nil
}

// CheckAndTriggerAlerts fires every pending alert on the part whose target is
// at or above currentLowest. It returns the number of alerts fired.
func (u *AlertUsecase) CheckAndTriggerAlerts(ctx context.Context, partID uint, currentLowest *int) (int, error) {
	if currentLowest == nil {
		return 0, nil
	}

	var fired []domain.PriceAlert
	err := u.tx.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		fired, err = u.EvaluateWithin(ctx, repos.Alerts, partID, currentLowest)
		return err
	})
	if err != nil {
		return 0, err
	}

	partName := fmt.Sprintf("part #%d", partID)
	if len(fired) > 0 {
		if part, err := u.parts.GetByID(ctx, partID); err == nil {
			partName = part.Name
		}
	}
	u.NotifyTriggered(ctx, partID, partName, *currentLowest, fired)
	return len(fired), nil
}

// EvaluateWithin runs the trigger pass against a transaction-bound alert
// store. Notifications are left to the caller so they go out after commit.
func (u *AlertUsecase) EvaluateWithin(ctx context.Context, alerts domain.PriceAlertRepository, partID uint, currentLowest *int) ([]domain.PriceAlert, error) {
	if currentLowest == nil {
		return nil, nil
	}

	pending, err := alerts.ListPendingByPart(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("list pending alerts for part %d: %w", partID, err)
	}

	at := u.now()
	var fired []domain.PriceAlert
	for _, alert := range pending {
		if !alert.Matches(*currentLowest) {
			continue
		}
		ok, err := alerts.MarkTriggered(ctx, alert.ID, at)
		if err != nil {
			return nil, fmt.Errorf("trigger alert %d: %w", alert.ID, err)
		}
		if !ok {
			continue
		}

		alert.Active = false
		alert.Triggered = true
		alert.TriggeredAt = &at
		fired = append(fired, alert)

		u.logger.Info("price alert triggered",
			zap.Uint("alert_id", alert.ID),
			zap.Uint("part_id", partID),
			zap.Int("target_price", alert.TargetPrice),
			zap.Int("current_price", *currentLowest),
		)
	}
	return fired, nil
}

func (u *AlertUsecase) NotifyTriggered(ctx context.Context, partID uint, partName string, currentLowest int, fired []domain.PriceAlert) {
	for _, alert := range fired {
		u.notifier.Notify(ctx,
			alert.UserID,
			domain.NotificationPriceAlert,
			"Price alert",
			fmt.Sprintf("%s is now %d KRW, at or below your target of %d KRW.", partName, currentLowest, alert.TargetPrice),
			fmt.Sprintf("/parts/%d", partID),
		)
	}
}

func newAlertView(alert domain.PriceAlert, part *domain.Part) AlertView {
	view := AlertView{
		ID:          alert.ID,
		PartID:      alert.PartID,
		TargetPrice: alert.TargetPrice,
		IsActive:    alert.Active,
		IsTriggered: alert.Triggered,
		CreatedAt:   alert.CreatedAt,
	}
	if part != nil {
		view.PartName = part.Name
		view.CurrentLowestPrice = part.LowestPrice
	}
	return view
}
