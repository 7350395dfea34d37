package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kalpitg/dipwatch-go/internal/models"
)

// DB is the slice of the pgx pool API the journal needs. It is satisfied
// by *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Journal keeps an append-only history of triggers and notification
// attempts in Postgres. It is an audit trail, not part of the dedup
// contract: episode state alone decides whether a level fires.
type Journal struct {
	db DB
}

func New(db DB) *Journal {
	return &Journal{db: db}
}

// RecordTrigger appends one row per fired level.
func (j *Journal) RecordTrigger(ctx context.Context, runID, symbol string, level int, rec models.TriggerRecord) error {
	_, err := j.db.Exec(ctx, `
		INSERT INTO trigger_events (
			run_id, symbol, level_percent, triggered_at_price, drawdown,
			reference_period, reference_peak, threshold_price, volatility,
			confirmed_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		runID, symbol, level, rec.TriggeredAtPrice, rec.Drawdown,
		rec.ReferencePeriod, rec.ReferencePeak, rec.ThresholdPrice,
		rec.Volatility, rec.ConfirmedBy, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("journal: record trigger for level %d: %w", level, err)
	}
	return nil
}

// RecordNotification appends one row per delivery attempt, whether it
// succeeded or not.
func (j *Journal) RecordNotification(ctx context.Context, runID string, level int, channel, status string) error {
	_, err := j.db.Exec(ctx, `
		INSERT INTO notification_log (run_id, level_percent, channel, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		runID, level, channel, status, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("journal: record notification for level %d: %w", level, err)
	}
	return nil
}
