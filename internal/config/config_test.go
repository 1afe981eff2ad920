package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "Asia/Seoul", cfg.Timezone)
	assert.Equal(t, 30*time.Minute, cfg.PriceCacheTTL)
	assert.Equal(t, 6*time.Hour, cfg.CrawlInterval)
	assert.Equal(t, 10*time.Second, cfg.NaverTimeout)
	assert.Equal(t, 20, cfg.NaverDisplay)
	assert.Equal(t, "notifications", cfg.NotifyQueue)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CRAWL_INTERVAL", "30m")
	t.Setenv("IMPORT_KEYWORD_DELAY", "1s")
	t.Setenv("TELEGRAM_ADMIN_CHAT_IDS", "11,22")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.CrawlInterval)
	assert.Equal(t, time.Second, cfg.ImportKeywordDelay)
	assert.Equal(t, []int64{11, 22}, cfg.TelegramAdminChatIDs)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "Asia/Seoul", Config{Timezone: "Asia/Seoul"}.Location().String())
	assert.Equal(t, time.UTC, Config{Timezone: "Mars/Olympus"}.Location())
}
