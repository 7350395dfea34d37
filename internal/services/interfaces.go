package services

import (
	"context"

	"github.com/kalpitg/dipwatch-go/internal/models"
)

// MarketData supplies close history for a symbol. Implemented by the
// chart API client; tests substitute a canned provider.
type MarketData interface {
	// FetchSeries returns the daily close series over a lookback period.
	// An empty series means "no data", not an error.
	FetchSeries(ctx context.Context, symbol, period string) (models.PriceSeries, error)

	// FetchLatestClose reduces the most recent sessions to one scalar.
	FetchLatestClose(ctx context.Context, symbol string) (float64, error)
}

// Notifier delivers a formatted alert to the operator. Delivery is best
// effort: the evaluator logs failures and keeps the trigger recorded.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// TriggerJournal is the optional audit trail for fired triggers and
// notification attempts.
type TriggerJournal interface {
	RecordTrigger(ctx context.Context, runID, symbol string, level int, rec models.TriggerRecord) error
	RecordNotification(ctx context.Context, runID string, level int, channel, status string) error
}
