package config

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kalpitg/dipwatch-go/internal/models"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Index       IndexConfig      `mapstructure:"index"`
	Levels      []models.Level   `mapstructure:"levels"`
	Thresholds  ThresholdsConfig `mapstructure:"thresholds"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
	State       StateConfig      `mapstructure:"state"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Telegram    TelegramConfig   `mapstructure:"telegram"`
}

type IndexConfig struct {
	Symbol string `mapstructure:"symbol"`
	// VolatilitySymbol is the fear-gauge ticker (e.g. ^INDIAVIX). When
	// empty, realized volatility is derived from the index series instead.
	VolatilitySymbol string `mapstructure:"volatility_symbol"`
}

type ThresholdsConfig struct {
	// ResetDrawdown is the recovery release valve: once the drawdown from
	// the shortest window's peak is better than this, the episode resets.
	ResetDrawdown float64 `mapstructure:"reset_drawdown"`
	// VolatilityConfirmation is the reading at or above which a trigger is
	// trusted without waiting for persistence.
	VolatilityConfirmation float64 `mapstructure:"volatility_confirmation"`
}

type MarketDataConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

type StateConfig struct {
	Backend  string `mapstructure:"backend"` // file | redis
	File     string `mapstructure:"file"`
	RedisKey string `mapstructure:"redis_key"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	// DatabaseURL enables the Postgres trigger journal when set.
	DatabaseURL string `mapstructure:"database_url"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

var (
	tokenPattern  = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]{20,}$`)
	chatIDPattern = regexp.MustCompile(`^(-?\d+|@[A-Za-z0-9_]{5,})$`)
)

// Known lookback ranges accepted by the chart API.
var validPeriods = map[string]bool{
	"5d": true, "1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "max": true,
}

func Load() (*Config, error) {
	// A local .env is the source of truth for credentials in development.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind TELEGRAM_BOT_TOKEN environment variable: %w", err)
	}
	if err := viper.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID"); err != nil {
		return nil, fmt.Errorf("failed to bind TELEGRAM_CHAT_ID environment variable: %w", err)
	}
	if err := viper.BindEnv("database.database_url", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind DATABASE_URL environment variable: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// validate rejects configurations the evaluator cannot run with. All
// checks happen at startup so a misconfigured deployment fails before
// alert time, with a message naming the fix.
func (c *Config) validate() error {
	if c.Index.Symbol == "" {
		return errors.New("index.symbol is required (e.g. ^NSEI)")
	}
	if len(c.Levels) == 0 {
		return errors.New("at least one drawdown level must be configured under levels")
	}

	seen := make(map[int]bool, len(c.Levels))
	for _, lvl := range c.Levels {
		if lvl.Percent <= 0 {
			return fmt.Errorf("level percent must be positive, got %d", lvl.Percent)
		}
		if seen[lvl.Percent] {
			return fmt.Errorf("duplicate drawdown level %d%%", lvl.Percent)
		}
		seen[lvl.Percent] = true
		if lvl.PersistenceDays < 0 {
			return fmt.Errorf("level %d%%: persistence_days must not be negative", lvl.Percent)
		}
		if !validPeriods[lvl.Period] {
			return fmt.Errorf("level %d%%: unknown lookback period %q (expected e.g. 3mo, 6mo, 1y, 2y)", lvl.Percent, lvl.Period)
		}
	}

	// Ascending order is an evaluator contract; normalize here instead of
	// trusting the YAML ordering.
	sort.Slice(c.Levels, func(i, j int) bool { return c.Levels[i].Percent < c.Levels[j].Percent })

	if c.Thresholds.ResetDrawdown >= 0 {
		return fmt.Errorf("thresholds.reset_drawdown must be negative, got %.2f", c.Thresholds.ResetDrawdown)
	}
	if c.Thresholds.VolatilityConfirmation <= 0 {
		return fmt.Errorf("thresholds.volatility_confirmation must be positive, got %.2f", c.Thresholds.VolatilityConfirmation)
	}
	if c.MarketData.Timeout <= 0 {
		return fmt.Errorf("market_data.timeout must be positive seconds, got %d", c.MarketData.Timeout)
	}

	switch c.State.Backend {
	case "file":
		if c.State.File == "" {
			return errors.New("state.file is required when state.backend is file")
		}
	case "redis":
		if c.State.RedisKey == "" {
			return errors.New("state.redis_key is required when state.backend is redis")
		}
	default:
		return fmt.Errorf("state.backend must be \"file\" or \"redis\", got %q", c.State.Backend)
	}

	// Unset credentials are allowed (the notifier degrades to a warned
	// no-op), but values that are set must look real so typos and
	// placeholders surface at startup, not at alert time.
	if c.Telegram.BotToken != "" && !tokenPattern.MatchString(c.Telegram.BotToken) {
		return errors.New("TELEGRAM_BOT_TOKEN looks invalid. Expected format like '123456:ABC...'. Do not use placeholders")
	}
	if c.Telegram.ChatID != "" && !chatIDPattern.MatchString(c.Telegram.ChatID) {
		return errors.New("TELEGRAM_CHAT_ID looks invalid. Use a numeric chat id (e.g. 1610205172, -100...) or a channel username like @my_channel")
	}

	return nil
}

// FetchTimeout bounds every market-data call so a hung request cannot
// stall a scheduled invocation.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.MarketData.Timeout) * time.Second
}

// Periods returns the distinct lookback windows across all levels, so
// each window is fetched once per run and shared across levels.
func (c *Config) Periods() []string {
	seen := make(map[string]bool)
	var periods []string
	for _, lvl := range c.Levels {
		if !seen[lvl.Period] {
			seen[lvl.Period] = true
			periods = append(periods, lvl.Period)
		}
	}
	return periods
}

// ResetLevel returns the smallest configured level; its lookback window is
// the reference for recovery detection. Levels are sorted by validate.
func (c *Config) ResetLevel() models.Level {
	return c.Levels[0]
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("index.symbol", "^NSEI")
	viper.SetDefault("index.volatility_symbol", "^INDIAVIX")

	// Default ladder mirrors the standard deployment plan: wider windows
	// for deeper levels, persistence only in the noisy middle zone.
	viper.SetDefault("levels", []map[string]interface{}{
		{
			"percent": 5, "period": "3mo", "persistence_days": 0,
			"plan": map[string]interface{}{
				"title":      "Observe only",
				"action":     "Continue SIPs. No lump-sum deployment.",
				"allocation": "",
			},
		},
		{
			"percent": 10, "period": "6mo", "persistence_days": 1,
			"plan": map[string]interface{}{
				"title":      "Small deployment",
				"action":     "Deploy small cash into Large Cap funds.",
				"allocation": "Large Cap focused",
			},
		},
		{
			"percent": 15, "period": "1y", "persistence_days": 2,
			"plan": map[string]interface{}{
				"title":      "Meaningful deployment",
				"action":     "Deploy meaningful cash. Add Midcap exposure gradually.",
				"allocation": "70% Large Cap / 30% Midcap",
			},
		},
		{
			"percent": 20, "period": "2y", "persistence_days": 0,
			"plan": map[string]interface{}{
				"title":      "Aggressive deployment",
				"action":     "Deploy aggressively following allocation plan.",
				"allocation": "50% Large / 35% Mid / 15% Small (optional)",
			},
		},
	})

	viper.SetDefault("thresholds.reset_drawdown", -3.0)
	viper.SetDefault("thresholds.volatility_confirmation", 20.0)

	viper.SetDefault("market_data.base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("market_data.timeout", 10)

	viper.SetDefault("state.backend", "file")
	viper.SetDefault("state.file", "state.json")
	viper.SetDefault("state.redis_key", "dipwatch:episode")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("database.database_url", "")

	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.chat_id", "")
}
