package db

import (
	"context"

	"github.com/NasaVasa/partprice/internal/domain"
	"gorm.io/gorm"
)

// NewRepositories binds every repository to the same connection or transaction.
func NewRepositories(db *gorm.DB) domain.Repositories {
	return domain.Repositories{
		Parts:         NewPartRepository(db),
		Sellers:       NewSellerRepository(db),
		Entries:       NewPriceEntryRepository(db),
		History:       NewPriceHistoryRepository(db),
		Alerts:        NewPriceAlertRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	})
}
