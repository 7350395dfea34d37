package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kalpitg/dipwatch-go/internal/config"
	"github.com/kalpitg/dipwatch-go/internal/models"
	"github.com/kalpitg/dipwatch-go/internal/state"
)

// Overrides are the evaluator-level testing hooks. They thread through
// the one evaluation path so simulated and production runs share all
// logic: Drawdown replaces the computed drawdown everywhere it is used
// (including the reset decision), ForceConfirm bypasses both confirmation
// rules, TestMode only prefixes the alert text.
type Overrides struct {
	Drawdown     *float64
	ForceConfirm bool
	TestMode     bool
}

// Evaluator runs one complete alert cycle: load state, fetch market data,
// apply the reset controller, evaluate every level in ascending order,
// and persist the updated episode state once at the end.
type Evaluator struct {
	cfg        *config.Config
	market     MarketData
	volatility *VolatilityService
	store      state.Store
	notifier   Notifier
	journal    TriggerJournal
	reset      *ResetController
	logger     *logrus.Logger
}

// NewEvaluator wires the evaluator. journal may be nil when no database
// is configured.
func NewEvaluator(cfg *config.Config, market MarketData, store state.Store, notifier Notifier, journal TriggerJournal, logger *logrus.Logger) *Evaluator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Evaluator{
		cfg:        cfg,
		market:     market,
		volatility: NewVolatilityService(market, cfg.Index.VolatilitySymbol),
		store:      store,
		notifier:   notifier,
		journal:    journal,
		reset:      &ResetController{Threshold: cfg.Thresholds.ResetDrawdown},
		logger:     logger,
	}
}

// Run executes one scheduled invocation. Transient market-data failures
// abort the run as a clean no-op (nil error, no state change, no alert)
// so the scheduler simply retries next cycle.
func (e *Evaluator) Run(ctx context.Context, ov Overrides) error {
	runID := uuid.New().String()
	symbol := e.cfg.Index.Symbol
	log := e.logger.WithFields(logrus.Fields{
		"run_id": runID,
		"symbol": symbol,
	})

	// State first: it decides which levels are already spent.
	st, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load episode state: %w", err)
	}

	price, err := e.market.FetchLatestClose(ctx, symbol)
	if err != nil {
		log.Warnf("Market data unavailable, skipping run: %v", err)
		return nil
	}

	// Fetch each distinct lookback window once; levels share them.
	seriesByPeriod := make(map[string]models.PriceSeries, len(e.cfg.Levels))
	for _, period := range e.cfg.Periods() {
		series, err := e.market.FetchSeries(ctx, symbol, period)
		if err != nil {
			log.Warnf("Series fetch failed for period %s, skipping run: %v", period, err)
			return nil
		}
		seriesByPeriod[period] = series
	}

	resetSeries := seriesByPeriod[e.cfg.ResetLevel().Period]

	vol, err := e.volatility.Current(ctx, resetSeries)
	if err != nil {
		log.Warnf("Volatility reading unavailable, skipping run: %v", err)
		return nil
	}

	if e.reset.ShouldReset(log, st, price, resetSeries, ov.Drawdown) {
		st = models.EpisodeState{}
		// Persist the cleared state immediately so a crash between here
		// and the end of the run cannot resurrect spent levels.
		if err := e.store.Save(ctx, st); err != nil {
			return fmt.Errorf("persist cleared episode state: %w", err)
		}
	}

	for _, lvl := range e.cfg.Levels {
		e.evaluateLevel(ctx, log, runID, st, lvl, seriesByPeriod[lvl.Period], price, vol, ov)
	}

	// Single write at end of run; the atomic overwrite in the store is
	// the only partial-write guard a crash mid-run gets.
	if err := e.store.Save(ctx, st); err != nil {
		return fmt.Errorf("persist episode state: %w", err)
	}

	return nil
}

// evaluateLevel applies the eligibility and confirmation rules to one
// level and, on trigger, sends the alert and records the trigger in st.
func (e *Evaluator) evaluateLevel(ctx context.Context, log *logrus.Entry, runID string, st models.EpisodeState, lvl models.Level, series models.PriceSeries, price, vol float64, ov Overrides) {
	// Already triggered this episode.
	if st.Triggered(lvl.Percent) {
		return
	}
	if len(series) == 0 {
		return
	}

	peak := series.Peak()
	if peak <= 0 {
		// Malformed data; a zero peak would make the drawdown division
		// meaningless.
		return
	}

	drawdown := (price - peak) / peak * 100
	if ov.Drawdown != nil {
		drawdown = *ov.Drawdown
	}

	if drawdown > -float64(lvl.Percent) {
		return
	}

	threshold := peak * (1 - float64(lvl.Percent)/100)
	conf := confirmTrigger(series, threshold, lvl.PersistenceDays, vol, e.cfg.Thresholds.VolatilityConfirmation, ov.ForceConfirm)
	if !conf.Confirmed() {
		return
	}

	msg := formatAlertMessage(alertContext{
		Symbol:       e.cfg.Index.Symbol,
		Level:        lvl,
		Price:        price,
		Peak:         peak,
		Drawdown:     drawdown,
		Threshold:    threshold,
		Volatility:   vol,
		VolThreshold: e.cfg.Thresholds.VolatilityConfirmation,
		Confirmation: conf,
		TestMode:     ov.TestMode,
	})

	// Best effort: a failed delivery is logged but the trigger is still
	// recorded, preserving the once-per-episode guarantee over a
	// possibly missed real-time alert.
	status := "sent"
	if err := e.notifier.Send(ctx, msg); err != nil {
		status = "failed"
		log.Errorf("Failed to send alert for level %d%%: %v", lvl.Percent, err)
	} else {
		log.WithFields(logrus.Fields{
			"level":    lvl.Percent,
			"drawdown": drawdown,
		}).Info("Drawdown alert sent")
	}

	rec := models.NewTriggerRecord(price, drawdown, lvl.Period, peak, threshold, vol, conf.Label())
	st[lvl.Key()] = rec

	if e.journal != nil {
		if err := e.journal.RecordTrigger(ctx, runID, e.cfg.Index.Symbol, lvl.Percent, rec); err != nil {
			log.Warnf("Journal write failed: %v", err)
		}
		if err := e.journal.RecordNotification(ctx, runID, lvl.Percent, "telegram", status); err != nil {
			log.Warnf("Journal write failed: %v", err)
		}
	}
}

// confirmTrigger applies the investor-grade confirmation rule for one
// eligible level: persistence OR elevated volatility, overridable by
// force-confirm. Returning the tagged result keeps the decision and the
// alert label from drifting apart.
func confirmTrigger(series models.PriceSeries, threshold float64, persistenceDays int, vol, volThreshold float64, force bool) models.Confirmation {
	conf := models.Confirmation{Forced: force}

	if persistenceDays == 0 {
		// Instant-trigger level, no waiting period.
		conf.Persistence = true
	} else {
		conf.Persistence = consecutiveClosesBelow(series, threshold, persistenceDays)
	}

	conf.Volatility = vol >= volThreshold

	return conf
}

// consecutiveClosesBelow reports whether the most recent days closes are
// all at or below threshold. Fewer than days closes fails closed: a thin
// series is never treated as a confirmed streak.
func consecutiveClosesBelow(series models.PriceSeries, threshold float64, days int) bool {
	if days <= 0 {
		return false
	}

	recent := series.LastN(days)
	if len(recent) < days {
		return false
	}

	for _, c := range recent {
		if c.Close > threshold {
			return false
		}
	}

	return true
}
