package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const maxMessageLen = 3800

// sender is the part of the bot API the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api         *tgbotapi.BotAPI
	handlers    *Handlers
	pollTimeout int
}

func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

func NewBot(api *tgbotapi.BotAPI, handlers *Handlers, pollTimeout int) *Bot {
	return &Bot{api: api, handlers: handlers, pollTimeout: pollTimeout}
}

func (b *Bot) Start(ctx context.Context) error {
	config := tgbotapi.NewUpdate(0)
	config.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(config)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handlers.HandleUpdate(ctx, update)
		}
	}
}

// Reporter posts operational summaries to the ops chat.
type Reporter struct {
	api    sender
	chatID int64
	logger *zap.Logger
}

func NewReporter(api sender, chatID int64, logger *zap.Logger) *Reporter {
	return &Reporter{api: api, chatID: chatID, logger: logger}
}

func (r *Reporter) Report(_ context.Context, text string) {
	if r.chatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(r.chatID, truncate(text, maxMessageLen))
	if _, err := r.api.Send(msg); err != nil {
		r.logger.Warn("failed to send ops report", zap.Int64("chat_id", r.chatID), zap.Error(err))
	}
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-3]) + "..."
}
