package config

import (
	"context"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	HTTPAddr   string `env:"HTTP_ADDR,default=:8080"`
	GinMode    string `env:"GIN_MODE,default=release"`
	AdminToken string `env:"ADMIN_TOKEN"`
	Timezone   string `env:"TIMEZONE,default=Asia/Seoul"`

	DBDriver          string        `env:"DB_DRIVER,default=postgres"`
	DBHost            string        `env:"DB_HOST,default=localhost"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER,default=partprice"`
	DBPassword        string        `env:"DB_PASSWORD"`
	DBName            string        `env:"DB_NAME,default=partprice"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBSQLitePath      string        `env:"DB_SQLITE_PATH,default=partprice.db"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB,default=0"`
	PriceCacheTTL time.Duration `env:"PRICE_CACHE_TTL,default=30m"`

	NaverClientID     string        `env:"NAVER_CLIENT_ID"`
	NaverClientSecret string        `env:"NAVER_CLIENT_SECRET"`
	NaverBaseURL      string        `env:"NAVER_BASE_URL,default=https://openapi.naver.com"`
	NaverTimeout      time.Duration `env:"NAVER_TIMEOUT,default=10s"`
	NaverDisplay      int           `env:"NAVER_DISPLAY,default=20"`

	ImportKeywordDelay     time.Duration `env:"IMPORT_KEYWORD_DELAY,default=150ms"`
	CrawlInterval          time.Duration `env:"CRAWL_INTERVAL,default=6h"`
	CrawlOnStart           bool          `env:"CRAWL_ON_START,default=false"`
	CrawlMaxPartsPerSeller int           `env:"CRAWL_MAX_PARTS_PER_SELLER,default=20"`

	RabbitMQURL string `env:"RABBITMQ_URL"`
	NotifyQueue string `env:"NOTIFY_QUEUE,default=notifications"`

	TelegramBotToken     string  `env:"TELEGRAM_BOT_TOKEN"`
	TelegramOpsChatID    int64   `env:"TELEGRAM_OPS_CHAT_ID,default=0"`
	TelegramAdminChatIDs []int64 `env:"TELEGRAM_ADMIN_CHAT_IDS"`
	TelegramPollTimeout  int     `env:"TELEGRAM_POLL_TIMEOUT,default=60"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
