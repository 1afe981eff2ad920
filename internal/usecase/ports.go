package usecase

import (
	"context"
	"time"

	"github.com/NasaVasa/partprice/internal/domain"
)

// PriceCache is best effort: callers treat every error as a miss.
type PriceCache interface {
	GetComparison(ctx context.Context, partID uint) (*domain.PriceComparison, bool, error)
	SetComparison(ctx context.Context, comparison *domain.PriceComparison, ttl time.Duration) error
	Evict(ctx context.Context, partID uint) error
}

// Notifier delivers a user notification. It never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, userID uint, kind domain.NotificationType, title, message, link string)
}

// RunLocker guards a named job. ok is false when another run holds the key.
type RunLocker interface {
	TryLock(ctx context.Context, key string) (unlock func(), ok bool, err error)
}

// OpsReporter posts run summaries to operators.
type OpsReporter interface {
	Report(ctx context.Context, text string)
}

type Clock func() time.Time

type nopReporter struct{}

func (nopReporter) Report(context.Context, string) {}
