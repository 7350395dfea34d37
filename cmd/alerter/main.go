package main

import (
	"context"
	"log"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kalpitg/dipwatch-go/internal/config"
	"github.com/kalpitg/dipwatch-go/internal/database"
	"github.com/kalpitg/dipwatch-go/internal/journal"
	"github.com/kalpitg/dipwatch-go/internal/market"
	"github.com/kalpitg/dipwatch-go/internal/services"
	"github.com/kalpitg/dipwatch-go/internal/state"
)

// runDeadline caps one invocation well under any sane scheduler
// interval so a hung dependency cannot pile up runs.
const runDeadline = 2 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runDeadline)
	defer cancel()

	marketClient := market.NewClient(&cfg.MarketData)

	var store state.Store
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := database.NewRedisConnection(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		store = state.NewRedisStore(redisClient.Client, cfg.State.RedisKey)
	default:
		store = state.NewFileStore(cfg.State.File)
	}

	notifier := services.NewTelegramNotifier(cfg.Telegram)

	var triggerJournal services.TriggerJournal
	if cfg.Database.DatabaseURL != "" {
		db, err := database.NewPostgresConnection(ctx, cfg.Database.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		triggerJournal = journal.New(db.Pool)
	}

	evaluator := services.NewEvaluator(cfg, marketClient, store, notifier, triggerJournal, logrus.StandardLogger())

	// A transient market-data failure inside Run is a clean no-op; only
	// wiring and persistence errors reach here.
	if err := evaluator.Run(ctx, services.Overrides{}); err != nil {
		log.Fatalf("Alert run failed: %v", err)
	}
}
