package telegram

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/NasaVasa/partprice/internal/domain"
	"github.com/NasaVasa/partprice/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type importRunner interface {
	ImportAll(ctx context.Context) usecase.ImportResult
	ImportCategory(ctx context.Context, name string) usecase.ImportResult
}

type crawlRunner interface {
	CrawlOnce(ctx context.Context) (usecase.CrawlReport, error)
}

type priceReader interface {
	GetPriceComparison(ctx context.Context, partID uint) (*domain.PriceComparison, error)
	GetPriceHistory(ctx context.Context, partID uint, period string) (*domain.PriceHistoryView, error)
}

type Handlers struct {
	api     sender
	imports importRunner
	crawls  crawlRunner
	prices  priceReader
	admins  map[int64]struct{}
	logger  *zap.Logger
}

func NewHandlers(api sender, imports importRunner, crawls crawlRunner, prices priceReader, adminChatIDs []int64, logger *zap.Logger) *Handlers {
	admins := make(map[int64]struct{}, len(adminChatIDs))
	for _, id := range adminChatIDs {
		admins[id] = struct{}{}
	}
	return &Handlers{api: api, imports: imports, crawls: crawls, prices: prices, admins: admins, logger: logger}
}

func (h *Handlers) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return
	}
	if update.Message.IsCommand() {
		h.handleCommand(ctx, update)
	}
}

func (h *Handlers) handleCommand(ctx context.Context, update tgbotapi.Update) {
	command := update.Message.Command()
	args := update.Message.CommandArguments()
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	h.logger.Info(
		"telegram command received",
		zap.Int64("chat_id", chatID),
		zap.Int64("telegram_user_id", userID),
		zap.String("username", update.Message.From.UserName),
		zap.String("command", command),
		zap.String("args", args),
	)

	if _, ok := h.admins[chatID]; !ok {
		h.logger.Warn("telegram command from non-admin chat", zap.Int64("chat_id", chatID), zap.String("command", command))
		h.reply(chatID, "This bot is restricted to operators.")
		return
	}

	switch command {
	case "start", "help":
		h.reply(chatID, HelpText)
	case "import_all":
		h.reply(chatID, "Import started for every category. This takes a while.")
		result := h.imports.ImportAll(ctx)
		h.logger.Info("import_all complete", zap.String("run_id", result.RunID), zap.Bool("success", result.Success))
		h.reply(chatID, formatImportResult(result))
	case "import":
		category, err := ParseCategory(args)
		if err != nil {
			h.reply(chatID, "Usage: /import <category>")
			return
		}
		result := h.imports.ImportCategory(ctx, category)
		h.logger.Info("import complete", zap.String("category", category), zap.Bool("success", result.Success))
		h.reply(chatID, formatImportResult(result))
	case "crawl":
		report, err := h.crawls.CrawlOnce(ctx)
		if err != nil {
			h.logger.Warn("crawl command failed", zap.Error(err))
			h.reply(chatID, h.errorMessage(err))
			return
		}
		h.reply(chatID, formatCrawlReport(report))
	case "price":
		partID, err := ParsePartID(args)
		if err != nil {
			h.reply(chatID, "Usage: /price <part_id>")
			return
		}
		comparison, err := h.prices.GetPriceComparison(ctx, partID)
		if err != nil {
			h.reply(chatID, h.errorMessage(err))
			return
		}
		h.reply(chatID, formatComparison(comparison))
	case "history":
		partID, period, err := ParseHistoryArgs(args)
		if err != nil {
			h.reply(chatID, "Usage: /history <part_id> [period]")
			return
		}
		view, err := h.prices.GetPriceHistory(ctx, partID, period)
		if err != nil {
			h.reply(chatID, h.errorMessage(err))
			return
		}
		h.reply(chatID, formatHistory(view))
	default:
		h.logger.Warn("unknown command", zap.Int64("chat_id", chatID), zap.String("command", command))
		h.reply(chatID, "Unknown command.\n\n"+HelpText)
	}
}

func (h *Handlers) errorMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrPartNotFound):
		return "Part not found."
	case errors.Is(err, usecase.ErrCrawlInProgress):
		return "A crawl is already running."
	}

	h.logger.Warn("unhandled error", zap.Error(err))
	return "Something went wrong. Please try again."
}

func formatImportResult(result usecase.ImportResult) string {
	if !result.Success {
		return "Import failed: " + result.Message
	}
	var builder strings.Builder
	builder.WriteString(result.Message)
	builder.WriteString("\n")
	for _, category := range sortedKeys(result.CategoryResults) {
		builder.WriteString(fmt.Sprintf("%s: %d new parts\n", category, result.CategoryResults[category]))
	}
	if result.TotalAlertsTriggered > 0 {
		builder.WriteString(fmt.Sprintf("Alerts triggered: %d\n", result.TotalAlertsTriggered))
	}
	if len(result.Skipped) > 0 {
		builder.WriteString("Skipped (busy): " + strings.Join(result.Skipped, ", ") + "\n")
	}
	return builder.String()
}

func formatCrawlReport(report usecase.CrawlReport) string {
	return fmt.Sprintf("Crawl finished: %d sellers, %d crawled, %d failed, %d unsupported",
		report.Sellers, report.Crawled, report.Failed, report.Unsupported)
}

func formatComparison(comparison *domain.PriceComparison) string {
	if len(comparison.Prices) == 0 {
		return fmt.Sprintf("%s (#%d)\nNo offers yet.", comparison.PartName, comparison.PartID)
	}

	header := fmt.Sprintf("%s (#%d)\nLowest %s, highest %s\n",
		comparison.PartName, comparison.PartID, formatWon(comparison.LowestPrice), formatWon(comparison.HighestPrice))
	var builder strings.Builder
	builder.WriteString(header)
	for i, offer := range comparison.Prices {
		line := fmt.Sprintf("%d) %s %s\n%s\n", i+1, offer.SellerName, formatWon(&offer.Price), offer.ProductURL)
		if builder.Len()+len(line) > maxMessageLen {
			builder.WriteString(fmt.Sprintf("...and %d more offers", len(comparison.Prices)-i))
			break
		}
		builder.WriteString(line)
	}
	return builder.String()
}

func formatHistory(view *domain.PriceHistoryView) string {
	header := fmt.Sprintf("%s (#%d), last %s\n", view.PartName, view.PartID, view.Period)
	if len(view.History) == 0 {
		return header + "No price history in this period."
	}
	var builder strings.Builder
	builder.WriteString(header)
	for _, point := range view.History {
		line := fmt.Sprintf("%s low %s high %s avg %s\n", point.Date,
			formatWon(&point.LowestPrice), formatWon(&point.HighestPrice), formatWon(&point.AveragePrice))
		if builder.Len()+len(line) > maxMessageLen {
			break
		}
		builder.WriteString(line)
	}
	return builder.String()
}

// formatWon renders 1234567 as "1,234,567원".
func formatWon(price *int) string {
	if price == nil {
		return "N/A"
	}
	digits := strconv.Itoa(*price)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	var builder strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(r)
	}
	return sign + builder.String() + "원"
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (h *Handlers) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, truncate(text, maxMessageLen))
	if _, err := h.api.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Error(err))
	}
}
