package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/NasaVasa/partprice/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrMarketplaceNotConfigured = errors.New("naver shopping api is not configured: set NAVER_CLIENT_ID and NAVER_CLIENT_SECRET")
	ErrInvalidCategory          = errors.New("invalid category")
	ErrNoKeywords               = errors.New("no keywords registered for category")
	ErrImportInProgress         = errors.New("import already in progress")
)

type ImportResult struct {
	Success              bool           `json:"success"`
	Message              string         `json:"message"`
	RunID                string         `json:"runId,omitempty"`
	TotalParts           int            `json:"totalParts"`
	TotalPriceEntries    int            `json:"totalPriceEntries"`
	TotalSellers         int            `json:"totalSellers"`
	TotalAlertsTriggered int            `json:"totalAlertsTriggered"`
	CategoryResults      map[string]int `json:"categoryResults"`
	Skipped              []string       `json:"skipped,omitempty"`

	// Err classifies a failed result for transport mapping.
	Err error `json:"-"`
}

func failedImport(err error, message string) ImportResult {
	return ImportResult{Success: false, Message: message, CategoryResults: map[string]int{}, Err: err}
}

func (r *ImportResult) add(category domain.Category, counts KeywordResult) {
	r.TotalParts += counts.PartsCreated
	r.TotalPriceEntries += counts.PriceEntriesCreated
	r.TotalSellers += counts.SellersCreated
	r.TotalAlertsTriggered += counts.AlertsTriggered
	r.CategoryResults[string(category)] = counts.PartsCreated
}

func (r *ImportResult) summarize(interrupted bool) {
	r.Message = fmt.Sprintf("naver import complete: %d parts, %d price entries, %d sellers",
		r.TotalParts, r.TotalPriceEntries, r.TotalSellers)
	if interrupted {
		r.Message += " (interrupted)"
	}
}

type keywordImporter interface {
	Configured() bool
	ImportKeyword(ctx context.Context, keyword string, category domain.Category) (KeywordResult, error)
}

type ImportUsecase struct {
	importer keywordImporter
	locker   RunLocker
	reporter OpsReporter
	logger   *zap.Logger
}

func NewImportUsecase(importer keywordImporter, locker RunLocker, reporter OpsReporter, logger *zap.Logger) *ImportUsecase {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &ImportUsecase{importer: importer, locker: locker, reporter: reporter, logger: logger}
}

// ImportAll walks every category keyword table in order. Categories already
// being imported by another run are skipped and listed in the result.
func (u *ImportUsecase) ImportAll(ctx context.Context) ImportResult {
	if !u.importer.Configured() {
		return failedImport(ErrMarketplaceNotConfigured, ErrMarketplaceNotConfigured.Error())
	}

	runID := uuid.NewString()
	logger := u.logger.With(zap.String("run_id", runID))
	logger.Info("import started", zap.Int("categories", len(importKeywords)))

	result := ImportResult{Success: true, RunID: runID, CategoryResults: make(map[string]int)}
	for _, entry := range importKeywords {
		if ctx.Err() != nil {
			break
		}
		counts, err := u.importCategory(ctx, logger, entry.Category, entry.Keywords)
		if err != nil {
			logger.Warn("category skipped", zap.String("category", string(entry.Category)), zap.Error(err))
			result.Skipped = append(result.Skipped, string(entry.Category))
			continue
		}
		result.add(entry.Category, counts)
	}
	result.summarize(ctx.Err() != nil)

	logger.Info("import finished",
		zap.Int("parts", result.TotalParts),
		zap.Int("prices", result.TotalPriceEntries),
		zap.Int("sellers", result.TotalSellers),
		zap.Int("alerts", result.TotalAlertsTriggered),
		zap.Strings("skipped", result.Skipped),
	)
	u.report(ctx, result)
	return result
}

func (u *ImportUsecase) ImportCategory(ctx context.Context, name string) ImportResult {
	if !u.importer.Configured() {
		return failedImport(ErrMarketplaceNotConfigured, ErrMarketplaceNotConfigured.Error())
	}

	category, ok := domain.ParseCategory(name)
	if !ok {
		return failedImport(ErrInvalidCategory, fmt.Sprintf("unknown category: %s", name))
	}
	keywords, ok := keywordsFor(category)
	if !ok {
		return failedImport(ErrNoKeywords, fmt.Sprintf("unsupported category: %s", category))
	}

	runID := uuid.NewString()
	logger := u.logger.With(zap.String("run_id", runID))

	counts, err := u.importCategory(ctx, logger, category, keywords)
	if err != nil {
		if errors.Is(err, ErrImportInProgress) {
			return failedImport(ErrImportInProgress, fmt.Sprintf("import already running for %s", category))
		}
		return failedImport(err, err.Error())
	}

	result := ImportResult{Success: true, RunID: runID, CategoryResults: make(map[string]int)}
	result.add(category, counts)
	result.summarize(ctx.Err() != nil)
	u.report(ctx, result)
	return result
}

func (u *ImportUsecase) importCategory(ctx context.Context, logger *zap.Logger, category domain.Category, keywords []string) (KeywordResult, error) {
	unlock, ok, err := u.locker.TryLock(ctx, importLockKey(category))
	if err != nil {
		return KeywordResult{}, fmt.Errorf("lock %s: %w", category, err)
	}
	if !ok {
		return KeywordResult{}, ErrImportInProgress
	}
	defer unlock()

	var total KeywordResult
	for _, keyword := range keywords {
		if ctx.Err() != nil {
			logger.Warn("import interrupted", zap.String("category", string(category)), zap.String("next_keyword", keyword))
			break
		}

		counts, err := u.importKeyword(ctx, keyword, category)
		total.add(counts)
		if err != nil && ctx.Err() == nil {
			logger.Error("keyword import failed",
				zap.String("category", string(category)),
				zap.String("keyword", keyword),
				zap.Error(err),
			)
		}
	}

	logger.Info("category imported",
		zap.String("category", string(category)),
		zap.Int("parts", total.PartsCreated),
		zap.Int("prices", total.PriceEntriesCreated),
	)
	return total, nil
}

func (u *ImportUsecase) importKeyword(ctx context.Context, keyword string, category domain.Category) (result KeywordResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic importing %q: %v", keyword, r)
		}
	}()
	return u.importer.ImportKeyword(ctx, keyword, category)
}

func (u *ImportUsecase) report(ctx context.Context, result ImportResult) {
	text := fmt.Sprintf("Import %s: %s", result.RunID, result.Message)
	if len(result.Skipped) > 0 {
		text += fmt.Sprintf(" Skipped: %v", result.Skipped)
	}
	u.reporter.Report(context.WithoutCancel(ctx), text)
}

func importLockKey(category domain.Category) string {
	return "import:" + string(category)
}
