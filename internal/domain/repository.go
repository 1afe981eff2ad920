package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type PartRepository interface {
	GetByID(ctx context.Context, partID uint) (*Part, error)
	GetByIDs(ctx context.Context, partIDs []uint) (map[uint]Part, error)
	Exists(ctx context.Context, partID uint) (bool, error)
	// FindByName matches the full name case-insensitively within a category.
	FindByName(ctx context.Context, category Category, name string) (*Part, error)
	// CreateIfAbsent inserts the part unless one with the same (category, name)
	// already exists, in which case part is overwritten with the stored row.
	CreateIfAbsent(ctx context.Context, part *Part) (bool, error)
	UpdatePriceRange(ctx context.Context, partID uint, lowest, highest *int) error
	ListBySeller(ctx context.Context, sellerID uint, limit int) ([]Part, error)
}

type SellerRepository interface {
	GetByName(ctx context.Context, name string) (*Seller, error)
	CreateIfAbsent(ctx context.Context, seller *Seller) (bool, error)
	ListByStatus(ctx context.Context, status SellerStatus) ([]Seller, error)
}

type PriceEntryRepository interface {
	Create(ctx context.Context, entry *PriceEntry) error
	ListAvailableByPart(ctx context.Context, partID uint) ([]PriceOffer, error)
	CountByPart(ctx context.Context, partID uint) (int64, error)
}

type PriceHistoryRepository interface {
	Create(ctx context.Context, history *PriceHistory) error
	// ListByPartBetween returns rows with from <= record_date <= to, oldest first.
	ListByPartBetween(ctx context.Context, partID uint, from, to time.Time) ([]PriceHistory, error)
}

type PriceAlertRepository interface {
	Create(ctx context.Context, alert *PriceAlert) error
	GetByID(ctx context.Context, alertID uint) (*PriceAlert, error)
	ListActiveByUser(ctx context.Context, userID uint) ([]PriceAlert, error)
	// ListPendingByPart returns alerts that are active and not yet triggered.
	ListPendingByPart(ctx context.Context, partID uint) ([]PriceAlert, error)
	Deactivate(ctx context.Context, alertID uint) error
	// MarkTriggered flips a pending alert to triggered and inactive. It reports
	// false when the alert was no longer pending.
	MarkTriggered(ctx context.Context, alertID uint, at time.Time) (bool, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, userID uint, notificationID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

// Repositories is the set of stores bound to one unit of work.
type Repositories struct {
	Parts         PartRepository
	Sellers       SellerRepository
	Entries       PriceEntryRepository
	History       PriceHistoryRepository
	Alerts        PriceAlertRepository
	Notifications NotificationRepository
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
