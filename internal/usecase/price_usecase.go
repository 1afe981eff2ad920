package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/NasaVasa/partprice/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrPartNotFound = errors.New("part not found")

const defaultHistoryDays = 30

type PriceUsecase struct {
	parts    domain.PartRepository
	sellers  domain.SellerRepository
	entries  domain.PriceEntryRepository
	history  domain.PriceHistoryRepository
	cache    PriceCache
	cacheTTL time.Duration
	now      Clock
	loc      *time.Location
	logger   *zap.Logger
}

func NewPriceUsecase(repos domain.Repositories, cache PriceCache, cacheTTL time.Duration, now Clock, loc *time.Location, logger *zap.Logger) *PriceUsecase {
	return &PriceUsecase{
		parts:    repos.Parts,
		sellers:  repos.Sellers,
		entries:  repos.Entries,
		history:  repos.History,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      now,
		loc:      loc,
		logger:   logger,
	}
}

// GetPriceComparison reads through the cache. A cache error is a miss.
func (u *PriceUsecase) GetPriceComparison(ctx context.Context, partID uint) (*domain.PriceComparison, error) {
	part, err := u.getPart(ctx, partID)
	if err != nil {
		return nil, err
	}

	cached, found, err := u.cache.GetComparison(ctx, partID)
	switch {
	case err != nil:
		u.logger.Debug("price cache read failed", zap.Uint("part_id", partID), zap.Error(err))
	case found:
		return cached, nil
	}

	offers, err := u.entries.ListAvailableByPart(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("list offers for part %d: %w", partID, err)
	}
	sort.SliceStable(offers, func(i, j int) bool {
		if offers[i].Price != offers[j].Price {
			return offers[i].Price < offers[j].Price
		}
		return offers[i].EntryID < offers[j].EntryID
	})

	comparison := &domain.PriceComparison{
		PartID:   part.ID,
		PartName: part.Name,
		Prices:   make([]domain.PriceOfferItem, 0, len(offers)),
	}
	for _, offer := range offers {
		comparison.Prices = append(comparison.Prices, domain.PriceOfferItem{
			SellerID:    offer.SellerID,
			SellerName:  offer.SellerName,
			SiteURL:     offer.SiteURL,
			Price:       offer.Price,
			ProductURL:  offer.ProductURL,
			IsAvailable: offer.Available,
		})
	}
	if len(offers) > 0 {
		lowest := offers[0].Price
		highest := offers[len(offers)-1].Price
		comparison.LowestPrice = &lowest
		comparison.HighestPrice = &highest
	}

	if err := u.cache.SetComparison(ctx, comparison, u.cacheTTL); err != nil {
		u.logger.Debug("price cache write failed", zap.Uint("part_id", partID), zap.Error(err))
	}
	return comparison, nil
}

// GetPriceHistory aggregates every sample of a day into one point regardless
// of seller. A malformed period falls back to 30 days.
func (u *PriceUsecase) GetPriceHistory(ctx context.Context, partID uint, period string) (*domain.PriceHistoryView, error) {
	part, err := u.getPart(ctx, partID)
	if err != nil {
		return nil, err
	}

	days := ParsePeriod(period)
	today := domain.DateOf(u.now().In(u.loc))
	from := today.AddDate(0, 0, -days)

	rows, err := u.history.ListByPartBetween(ctx, partID, from, today)
	if err != nil {
		return nil, fmt.Errorf("list history for part %d: %w", partID, err)
	}

	return &domain.PriceHistoryView{
		PartID:   part.ID,
		PartName: part.Name,
		Period:   fmt.Sprintf("%dd", days),
		History:  aggregateDaily(rows),
	}, nil
}

func (u *PriceUsecase) GetActiveSellers(ctx context.Context) ([]domain.Seller, error) {
	return u.sellers.ListByStatus(ctx, domain.SellerActive)
}

func (u *PriceUsecase) getPart(ctx context.Context, partID uint) (*domain.Part, error) {
	part, err := u.parts.GetByID(ctx, partID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrPartNotFound
		}
		return nil, err
	}
	return part, nil
}

// ParsePeriod reads "<N>d". Blank, unparsable or non-positive input yields 30.
func ParsePeriod(period string) int {
	trimmed := strings.TrimSuffix(strings.TrimSpace(period), "d")
	days, err := strconv.Atoi(trimmed)
	if err != nil || days <= 0 {
		return defaultHistoryDays
	}
	return days
}

func aggregateDaily(rows []domain.PriceHistory) []domain.DailyPricePoint {
	byDate := make(map[time.Time][]int)
	dates := make([]time.Time, 0)
	for _, row := range rows {
		date := domain.DateOf(row.RecordDate)
		if _, seen := byDate[date]; !seen {
			dates = append(dates, date)
		}
		byDate[date] = append(byDate[date], row.Price)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	points := make([]domain.DailyPricePoint, 0, len(dates))
	for _, date := range dates {
		prices := byDate[date]
		lowest, highest := prices[0], prices[0]
		sum := decimal.Zero
		for _, price := range prices {
			if price < lowest {
				lowest = price
			}
			if price > highest {
				highest = price
			}
			sum = sum.Add(decimal.NewFromInt(int64(price)))
		}
		average, _ := sum.QuoRem(decimal.NewFromInt(int64(len(prices))), 0)

		points = append(points, domain.DailyPricePoint{
			Date:         date.Format("2006-01-02"),
			LowestPrice:  lowest,
			HighestPrice: highest,
			AveragePrice: int(average.IntPart()),
		})
	}
	return points
}
