package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalpitg/dipwatch-go/internal/models"
)

func loadDefaults(t *testing.T) *Config {
	t.Helper()
	viper.Reset()
	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadDefaults(t)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "^NSEI", cfg.Index.Symbol)
	assert.Equal(t, "^INDIAVIX", cfg.Index.VolatilitySymbol)
	assert.Equal(t, -3.0, cfg.Thresholds.ResetDrawdown)
	assert.Equal(t, 20.0, cfg.Thresholds.VolatilityConfirmation)
	assert.Equal(t, "file", cfg.State.Backend)
	assert.Equal(t, "state.json", cfg.State.File)

	require.Len(t, cfg.Levels, 4)
	assert.Equal(t, []int{5, 10, 15, 20}, []int{
		cfg.Levels[0].Percent, cfg.Levels[1].Percent, cfg.Levels[2].Percent, cfg.Levels[3].Percent,
	})
	assert.Equal(t, "3mo", cfg.Levels[0].Period)
	assert.Equal(t, 1, cfg.Levels[1].PersistenceDays)
	assert.Equal(t, 2, cfg.Levels[2].PersistenceDays)
	assert.Equal(t, "Aggressive deployment", cfg.Levels[3].Plan.Title)
}

func TestLoad_TelegramFromEnvironment(t *testing.T) {
	viper.Reset()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:ABCDEFGHIJKLMNOPQRSTUVWXYZabcdef")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234567890")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "123456:ABCDEFGHIJKLMNOPQRSTUVWXYZabcdef", cfg.Telegram.BotToken)
	assert.Equal(t, "-1001234567890", cfg.Telegram.ChatID)
}

func TestLoad_RejectsPlaceholderToken(t *testing.T) {
	viper.Reset()
	t.Setenv("TELEGRAM_BOT_TOKEN", "PASTE_YOUR_TOKEN_HERE")
	t.Setenv("TELEGRAM_CHAT_ID", "1610205172")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN looks invalid")
}

func TestLoad_RejectsMalformedChatID(t *testing.T) {
	viper.Reset()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:ABCDEFGHIJKLMNOPQRSTUVWXYZabcdef")
	t.Setenv("TELEGRAM_CHAT_ID", "not a chat id")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_CHAT_ID looks invalid")
}

func validConfig() *Config {
	return &Config{
		Environment: "test",
		Index:       IndexConfig{Symbol: "^NSEI"},
		Levels: []models.Level{
			{Percent: 10, Period: "6mo", PersistenceDays: 1},
			{Percent: 5, Period: "3mo", PersistenceDays: 0},
		},
		Thresholds: ThresholdsConfig{ResetDrawdown: -3, VolatilityConfirmation: 20},
		MarketData: MarketDataConfig{BaseURL: "http://localhost", Timeout: 10},
		State:      StateConfig{Backend: "file", File: "state.json"},
	}
}

func TestValidate_SortsLevelsAscending(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.validate())

	assert.Equal(t, 5, cfg.Levels[0].Percent)
	assert.Equal(t, 10, cfg.Levels[1].Percent)
	assert.Equal(t, 5, cfg.ResetLevel().Percent)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing symbol", func(c *Config) { c.Index.Symbol = "" }, "index.symbol is required"},
		{"no levels", func(c *Config) { c.Levels = nil }, "at least one drawdown level"},
		{"negative percent", func(c *Config) { c.Levels[0].Percent = -5 }, "must be positive"},
		{"duplicate level", func(c *Config) { c.Levels[0].Percent = 5; c.Levels[1].Percent = 5 }, "duplicate drawdown level"},
		{"negative persistence", func(c *Config) { c.Levels[0].PersistenceDays = -1 }, "persistence_days"},
		{"unknown period", func(c *Config) { c.Levels[0].Period = "7w" }, "unknown lookback period"},
		{"positive reset threshold", func(c *Config) { c.Thresholds.ResetDrawdown = 3 }, "reset_drawdown must be negative"},
		{"zero volatility threshold", func(c *Config) { c.Thresholds.VolatilityConfirmation = 0 }, "volatility_confirmation must be positive"},
		{"zero timeout", func(c *Config) { c.MarketData.Timeout = 0 }, "timeout must be positive"},
		{"unknown state backend", func(c *Config) { c.State.Backend = "dynamodb" }, "state.backend must be"},
		{"file backend without path", func(c *Config) { c.State.File = "" }, "state.file is required"},
		{"redis backend without key", func(c *Config) { c.State.Backend = "redis"; c.State.RedisKey = "" }, "state.redis_key is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Periods(t *testing.T) {
	cfg := &Config{
		Levels: []models.Level{
			{Percent: 5, Period: "3mo"},
			{Percent: 10, Period: "6mo"},
			{Percent: 15, Period: "6mo"},
		},
	}

	assert.Equal(t, []string{"3mo", "6mo"}, cfg.Periods())
}

func TestConfig_FetchTimeout(t *testing.T) {
	cfg := &Config{MarketData: MarketDataConfig{Timeout: 7}}
	assert.Equal(t, "7s", cfg.FetchTimeout().String())
}
