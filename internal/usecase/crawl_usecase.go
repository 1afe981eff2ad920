package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NasaVasa/partprice/internal/domain"
	"go.uber.org/zap"
)

var ErrCrawlInProgress = errors.New("crawl already in progress")

const crawlLockKey = "crawl"

// Crawler refreshes the offers of one seller.
type Crawler interface {
	Name() string
	Supports(sellerName string) bool
	Crawl(ctx context.Context, seller domain.Seller) error
}

type CrawlReport struct {
	Sellers     int `json:"sellers"`
	Crawled     int `json:"crawled"`
	Failed      int `json:"failed"`
	Unsupported int `json:"unsupported"`
}

type CrawlScheduler struct {
	sellers    domain.SellerRepository
	crawlers   []Crawler
	locker     RunLocker
	interval   time.Duration
	runOnStart bool
	reporter   OpsReporter
	logger     *zap.Logger
}

func NewCrawlScheduler(sellers domain.SellerRepository, locker RunLocker, interval time.Duration, runOnStart bool, reporter OpsReporter, logger *zap.Logger, crawlers ...Crawler) *CrawlScheduler {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &CrawlScheduler{
		sellers:    sellers,
		crawlers:   crawlers,
		locker:     locker,
		interval:   interval,
		runOnStart: runOnStart,
		reporter:   reporter,
		logger:     logger,
	}
}

// Run crawls on every tick until ctx is done.
func (s *CrawlScheduler) Run(ctx context.Context) {
	s.logger.Info("crawl scheduler started", zap.Duration("interval", s.interval))
	if s.runOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("crawl scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *CrawlScheduler) tick(ctx context.Context) {
	report, err := s.CrawlOnce(ctx)
	if err != nil {
		s.logger.Warn("scheduled crawl skipped", zap.Error(err))
		return
	}
	s.reporter.Report(context.WithoutCancel(ctx), fmt.Sprintf(
		"Crawl finished: %d sellers, %d crawled, %d failed, %d unsupported",
		report.Sellers, report.Crawled, report.Failed, report.Unsupported,
	))
}

// CrawlOnce dispatches every active seller to the first crawler that
// supports it. A failing seller never stops the batch.
func (s *CrawlScheduler) CrawlOnce(ctx context.Context) (CrawlReport, error) {
	unlock, ok, err := s.locker.TryLock(ctx, crawlLockKey)
	if err != nil {
		return CrawlReport{}, fmt.Errorf("lock crawl: %w", err)
	}
	if !ok {
		return CrawlReport{}, ErrCrawlInProgress
	}
	defer unlock()

	sellers, err := s.sellers.ListByStatus(ctx, domain.SellerActive)
	if err != nil {
		return CrawlReport{}, fmt.Errorf("list active sellers: %w", err)
	}

	report := CrawlReport{Sellers: len(sellers)}
	for _, seller := range sellers {
		if ctx.Err() != nil {
			break
		}

		crawler := s.crawlerFor(seller.Name)
		if crawler == nil {
			report.Unsupported++
			continue
		}

		if err := crawlSafely(ctx, crawler, seller); err != nil {
			report.Failed++
			s.logger.Error("seller crawl failed",
				zap.Uint("seller_id", seller.ID),
				zap.String("seller", seller.Name),
				zap.String("crawler", crawler.Name()),
				zap.Error(err),
			)
			continue
		}
		report.Crawled++
	}

	s.logger.Info("crawl finished",
		zap.Int("sellers", report.Sellers),
		zap.Int("crawled", report.Crawled),
		zap.Int("failed", report.Failed),
		zap.Int("unsupported", report.Unsupported),
	)
	return report, nil
}

func (s *CrawlScheduler) crawlerFor(sellerName string) Crawler {
	for _, crawler := range s.crawlers {
		if crawler.Supports(sellerName) {
			return crawler
		}
	}
	return nil
}

func crawlSafely(ctx context.Context, crawler Crawler, seller domain.Seller) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("crawler %s panicked: %v", crawler.Name(), r)
		}
	}()
	return crawler.Crawl(ctx, seller)
}

// MarketplaceCrawler refreshes a seller by searching the marketplace again
// for each part it offers. It takes the category import lock so it never
// writes a category that an import run is writing.
type MarketplaceCrawler struct {
	importer *Importer
	parts    domain.PartRepository
	locker   RunLocker
	maxParts int
	logger   *zap.Logger
}

func NewMarketplaceCrawler(importer *Importer, parts domain.PartRepository, locker RunLocker, maxParts int, logger *zap.Logger) *MarketplaceCrawler {
	return &MarketplaceCrawler{importer: importer, parts: parts, locker: locker, maxParts: maxParts, logger: logger}
}

func (c *MarketplaceCrawler) Name() string { return "marketplace" }

func (c *MarketplaceCrawler) Supports(sellerName string) bool {
	return strings.TrimSpace(sellerName) != "" && c.importer.Configured()
}

func (c *MarketplaceCrawler) Crawl(ctx context.Context, seller domain.Seller) error {
	parts, err := c.parts.ListBySeller(ctx, seller.ID, c.maxParts)
	if err != nil {
		return fmt.Errorf("list parts: %w", err)
	}

	byCategory := make(map[domain.Category][]domain.Part)
	var order []domain.Category
	for _, part := range parts {
		if _, seen := byCategory[part.Category]; !seen {
			order = append(order, part.Category)
		}
		byCategory[part.Category] = append(byCategory[part.Category], part)
	}

	var total KeywordResult
	var errs []error
	for _, category := range order {
		counts, err := c.crawlCategory(ctx, seller, category, byCategory[category])
		total.add(counts)
		if err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}

	c.logger.Info("seller crawled",
		zap.String("seller", seller.Name),
		zap.Int("parts", len(parts)),
		zap.Int("prices", total.PriceEntriesCreated),
		zap.Int("alerts", total.AlertsTriggered),
	)
	return errors.Join(errs...)
}

func (c *MarketplaceCrawler) crawlCategory(ctx context.Context, seller domain.Seller, category domain.Category, parts []domain.Part) (KeywordResult, error) {
	unlock, ok, err := c.locker.TryLock(ctx, importLockKey(category))
	if err != nil {
		return KeywordResult{}, fmt.Errorf("lock %s: %w", category, err)
	}
	if !ok {
		c.logger.Info("category busy, crawl deferred", zap.String("seller", seller.Name), zap.String("category", string(category)))
		return KeywordResult{}, nil
	}
	defer unlock()

	var total KeywordResult
	var errs []error
	for _, part := range parts {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		counts, err := c.importer.RefreshSellerOffers(ctx, seller, part)
		total.add(counts)
		if err != nil {
			errs = append(errs, fmt.Errorf("part %d: %w", part.ID, err))
		}
	}
	return total, errors.Join(errs...)
}
