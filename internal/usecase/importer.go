package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/NasaVasa/partprice/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	searchStart             = 1
	searchSort              = "sim"
	maxPartNameLength       = 200
	maxManufacturerLength   = 100
	defaultReliabilityScore = 3.0
	defaultSellerSiteURL    = "https://shopping.naver.com"
)

var errRetiredPart = errors.New("part is soft-deleted")

type KeywordResult struct {
	PartsCreated        int `json:"partsCreated"`
	PriceEntriesCreated int `json:"priceEntriesCreated"`
	SellersCreated      int `json:"sellersCreated"`
	AlertsTriggered     int `json:"alertsTriggered"`
	Skipped             int `json:"skipped"`
}

func (r *KeywordResult) add(other KeywordResult) {
	r.PartsCreated += other.PartsCreated
	r.PriceEntriesCreated += other.PriceEntriesCreated
	r.SellersCreated += other.SellersCreated
	r.AlertsTriggered += other.AlertsTriggered
	r.Skipped += other.Skipped
}

// Importer turns marketplace listings into catalog rows. Every marketplace
// call waits on a shared limiter; every listing is written in its own
// transaction together with the alert evaluation it provokes.
type Importer struct {
	client  domain.MarketplaceClient
	tx      domain.TxManager
	alerts  *AlertUsecase
	cache   PriceCache
	limiter *rate.Limiter
	display int
	now     Clock
	loc     *time.Location
	logger  *zap.Logger
}

func NewImporter(client domain.MarketplaceClient, tx domain.TxManager, alerts *AlertUsecase, cache PriceCache, callDelay time.Duration, display int, now Clock, loc *time.Location, logger *zap.Logger) *Importer {
	limit := rate.Inf
	if callDelay > 0 {
		limit = rate.Every(callDelay)
	}
	return &Importer{
		client:  client,
		tx:      tx,
		alerts:  alerts,
		cache:   cache,
		limiter: rate.NewLimiter(limit, 1),
		display: display,
		now:     now,
		loc:     loc,
		logger:  logger,
	}
}

func (i *Importer) Configured() bool {
	return i.client.Configured()
}

// ImportKeyword searches one keyword and ingests the results into category.
// A failed or empty search is not an error.
func (i *Importer) ImportKeyword(ctx context.Context, keyword string, category domain.Category) (KeywordResult, error) {
	items, err := i.search(ctx, keyword)
	if err != nil || len(items) == 0 {
		return KeywordResult{}, err
	}

	result, err := i.ingest(ctx, category, items, nil)
	i.logger.Info("keyword imported",
		zap.String("keyword", keyword),
		zap.String("category", string(category)),
		zap.Int("parts", result.PartsCreated),
		zap.Int("prices", result.PriceEntriesCreated),
		zap.Int("sellers", result.SellersCreated),
		zap.Int("skipped", result.Skipped),
	)
	return result, err
}

// RefreshSellerOffers re-searches a part by name and records only the
// listings sold by seller.
func (i *Importer) RefreshSellerOffers(ctx context.Context, seller domain.Seller, part domain.Part) (KeywordResult, error) {
	items, err := i.search(ctx, part.Name)
	if err != nil || len(items) == 0 {
		return KeywordResult{}, err
	}

	return i.ingest(ctx, part.Category, items, func(item domain.SearchItem) bool {
		return item.SellerName() == seller.Name
	})
}

func (i *Importer) search(ctx context.Context, query string) ([]domain.SearchItem, error) {
	if err := i.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	response := i.client.Search(ctx, query, i.display, searchStart, searchSort)
	if response == nil {
		i.logger.Warn("marketplace search returned nothing", zap.String("query", query))
		return nil, nil
	}
	if len(response.Items) == 0 {
		i.logger.Warn("marketplace search returned no items", zap.String("query", query), zap.Int("total", response.Total))
		return nil, nil
	}
	return response.Items, nil
}

func (i *Importer) ingest(ctx context.Context, category domain.Category, items []domain.SearchItem, accept func(domain.SearchItem) bool) (KeywordResult, error) {
	var result KeywordResult
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if accept != nil && !accept(item) {
			continue
		}

		title := item.CleanTitle()
		if title == "" || item.LowPrice == nil || *item.LowPrice <= 0 {
			result.Skipped++
			continue
		}
		if IsBlacklisted(category, title) {
			i.logger.Debug("listing blacklisted", zap.String("category", string(category)), zap.String("title", title))
			result.Skipped++
			continue
		}

		outcome, err := i.ingestItem(ctx, category, title, item)
		if errors.Is(err, errRetiredPart) {
			result.Skipped++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("ingest %q: %w", title, err)
		}

		result.PriceEntriesCreated++
		if outcome.partCreated {
			result.PartsCreated++
		}
		if outcome.sellerCreated {
			result.SellersCreated++
		}
		result.AlertsTriggered += len(outcome.fired)

		if err := i.cache.Evict(ctx, outcome.part.ID); err != nil {
			i.logger.Debug("price cache evict failed", zap.Uint("part_id", outcome.part.ID), zap.Error(err))
		}
		if len(outcome.fired) > 0 && outcome.part.LowestPrice != nil {
			i.alerts.NotifyTriggered(ctx, outcome.part.ID, outcome.part.Name, *outcome.part.LowestPrice, outcome.fired)
		}
	}
	return result, nil
}

type itemOutcome struct {
	part          domain.Part
	partCreated   bool
	sellerCreated bool
	fired         []domain.PriceAlert
}

func (i *Importer) ingestItem(ctx context.Context, category domain.Category, title string, item domain.SearchItem) (itemOutcome, error) {
	name := strings.TrimSpace(truncateRunes(title, maxPartNameLength))
	low := *item.LowPrice
	today := domain.DateOf(i.now().In(i.loc))

	var out itemOutcome
	err := i.tx.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		seller := &domain.Seller{
			Name:             item.SellerName(),
			SiteURL:          siteURL(item.Link),
			Status:           domain.SellerActive,
			ReliabilityScore: defaultReliabilityScore,
		}
		created, err := repos.Sellers.CreateIfAbsent(ctx, seller)
		if err != nil {
			return fmt.Errorf("resolve seller %q: %w", seller.Name, err)
		}
		out.sellerCreated = created

		part, created, err := resolvePart(ctx, repos.Parts, category, name, item)
		if err != nil {
			return err
		}
		out.partCreated = created

		entry := &domain.PriceEntry{
			PartID:     part.ID,
			SellerID:   seller.ID,
			Price:      low,
			ProductURL: item.Link,
			Available:  true,
		}
		if err := repos.Entries.Create(ctx, entry); err != nil {
			return fmt.Errorf("create price entry: %w", err)
		}

		history := &domain.PriceHistory{
			PartID:     part.ID,
			SellerID:   seller.ID,
			Price:      low,
			RecordDate: today,
		}
		if err := repos.History.Create(ctx, history); err != nil {
			return fmt.Errorf("create price history: %w", err)
		}

		out.fired, err = i.alerts.EvaluateWithin(ctx, repos.Alerts, part.ID, part.LowestPrice)
		if err != nil {
			return err
		}
		out.part = *part
		return nil
	})
	return out, err
}

// resolvePart finds the part by exact case-insensitive name within category,
// creating it or widening its price range.
func resolvePart(ctx context.Context, parts domain.PartRepository, category domain.Category, name string, item domain.SearchItem) (*domain.Part, bool, error) {
	low := *item.LowPrice

	existing, err := parts.FindByName(ctx, category, name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("find part: %w", err)
	}

	if existing == nil {
		part := &domain.Part{
			Name:         name,
			Category:     category,
			Manufacturer: truncateRunes(item.EffectiveMaker(), maxManufacturerLength),
			ImageURL:     item.Image,
		}
		part.WidenPriceRange(low, item.HighPrice)

		created, err := parts.CreateIfAbsent(ctx, part)
		if err != nil {
			return nil, false, fmt.Errorf("create part: %w", err)
		}
		if created {
			return part, true, nil
		}
		existing = part
	}

	if existing.DeletedAt != nil {
		return nil, false, errRetiredPart
	}

	lowest, highest := existing.LowestPrice, existing.HighestPrice
	existing.WidenPriceRange(low, item.HighPrice)
	if !sameInt(lowest, existing.LowestPrice) || !sameInt(highest, existing.HighestPrice) {
		if err := parts.UpdatePriceRange(ctx, existing.ID, existing.LowestPrice, existing.HighestPrice); err != nil {
			return nil, false, fmt.Errorf("update price range: %w", err)
		}
	}
	return existing, false, nil
}

func siteURL(link string) string {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return defaultSellerSiteURL
	}
	return parsed.Scheme + "://" + parsed.Host
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
