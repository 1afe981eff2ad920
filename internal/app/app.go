package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/NasaVasa/partprice/internal/config"
	"github.com/NasaVasa/partprice/internal/delivery/rest"
	"github.com/NasaVasa/partprice/internal/delivery/telegram"
	"github.com/NasaVasa/partprice/internal/delivery/ws"
	"github.com/NasaVasa/partprice/internal/infra/cache"
	"github.com/NasaVasa/partprice/internal/infra/db"
	"github.com/NasaVasa/partprice/internal/infra/lock"
	"github.com/NasaVasa/partprice/internal/infra/log"
	"github.com/NasaVasa/partprice/internal/infra/naver"
	"github.com/NasaVasa/partprice/internal/infra/notify"
	"github.com/NasaVasa/partprice/internal/usecase"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	serviceName     = "partprice"
	shutdownTimeout = 15 * time.Second
)

type App struct {
	server    *http.Server
	scheduler *usecase.CrawlScheduler
	bot       *telegram.Bot
	hub       *ws.Hub
	logger    *zap.Logger
	cleanups  []func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel, serviceName)
	if err != nil {
		return nil, err
	}

	a := &App{logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.Shutdown()
		}
	}()

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.onShutdown(func() error {
		sqlDB, err := dbConn.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	repos := db.NewRepositories(dbConn)
	tx := db.NewTxManager(dbConn)

	var priceCache usecase.PriceCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable at startup, reads fall through to the database", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		a.onShutdown(client.Close)
		priceCache = cache.NewRedisPriceCache(client)
	}

	var locker usecase.RunLocker = lock.NewLocal()
	if cfg.DBDriver == db.DriverPostgres {
		pool, err := pgxpool.New(ctx, db.PostgresDSN(cfg))
		if err != nil {
			return nil, err
		}
		a.onShutdown(func() error {
			pool.Close()
			return nil
		})
		locker = lock.NewAdvisory(pool, logger)
	}

	a.hub = ws.NewHub(logger)
	sinks := []usecase.Sink{a.hub}
	if cfg.RabbitMQURL != "" {
		publisher, err := notify.NewPublisher(cfg.RabbitMQURL, cfg.NotifyQueue, logger)
		if err != nil {
			logger.Warn("amqp unavailable, notifications stay in-process", zap.Error(err))
		} else {
			a.onShutdown(publisher.Close)
			sinks = append(sinks, publisher)
		}
	}

	now := time.Now
	loc := cfg.Location()
	inbox := usecase.NewNotificationUsecase(repos.Notifications, logger, sinks...)
	alerts := usecase.NewAlertUsecase(repos.Parts, repos.Alerts, tx, inbox, now, logger)
	naverClient := naver.NewClient(cfg.NaverBaseURL, cfg.NaverClientID, cfg.NaverClientSecret, cfg.NaverTimeout, logger)
	if !naverClient.Configured() {
		logger.Warn("naver shopping credentials missing, imports and crawls are disabled")
	}
	importer := usecase.NewImporter(naverClient, tx, alerts, priceCache, cfg.ImportKeywordDelay, cfg.NaverDisplay, now, loc, logger)

	var reporter usecase.OpsReporter
	var api *tgbotapi.BotAPI
	if cfg.TelegramBotToken != "" {
		api, err = telegram.NewAPI(cfg.TelegramBotToken)
		if err != nil {
			return nil, err
		}
		if cfg.TelegramOpsChatID != 0 {
			reporter = telegram.NewReporter(api, cfg.TelegramOpsChatID, logger)
		}
	}

	imports := usecase.NewImportUsecase(importer, locker, reporter, logger)
	crawler := usecase.NewMarketplaceCrawler(importer, repos.Parts, locker, cfg.CrawlMaxPartsPerSeller, logger)
	a.scheduler = usecase.NewCrawlScheduler(repos.Sellers, locker, cfg.CrawlInterval, cfg.CrawlOnStart, reporter, logger, crawler)
	prices := usecase.NewPriceUsecase(repos, priceCache, cfg.PriceCacheTTL, now, loc, logger)

	if api != nil {
		handlers := telegram.NewHandlers(api, imports, a.scheduler, prices, cfg.TelegramAdminChatIDs, logger)
		a.bot = telegram.NewBot(api, handlers, cfg.TelegramPollTimeout)
	}

	gin.SetMode(cfg.GinMode)
	router := rest.NewRouter(rest.NewHandlers(imports, a.scheduler, prices, alerts, inbox, a.hub, logger), cfg.AdminToken, logger)
	a.server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ok = true
	return a, nil
}

func (a *App) onShutdown(fn func() error) {
	a.cleanups = append(a.cleanups, fn)
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.logger.Info("partprice service starting", zap.String("addr", a.server.Addr))
	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.scheduler.Run(ctx)
	}()

	if a.bot != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.bot.Start(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.logger.Info("partprice service started")
	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		a.logger.Error("service component failed", zap.Error(runErr))
	}
	cancel()

	shutdownCtx, release := context.WithTimeout(context.Background(), shutdownTimeout)
	defer release()
	a.hub.Close()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http server shutdown incomplete", zap.Error(err))
	}
	wg.Wait()
	return runErr
}

func (a *App) Shutdown() {
	a.logger.Info("partprice service shutting down")
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			a.logger.Warn("cleanup failed", zap.Error(err))
		}
	}
	a.cleanups = nil
	_ = a.logger.Sync()
}
