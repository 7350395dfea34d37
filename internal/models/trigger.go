package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// TriggerRecord is the persisted fact that a level fired in the current
// drawdown episode. Records are created once and never mutated; the reset
// controller destroys them wholesale when the market recovers.
type TriggerRecord struct {
	TriggeredAtPrice float64 `json:"triggered_at_price"`
	Drawdown         float64 `json:"drawdown"`
	ReferencePeriod  string  `json:"reference_period"`
	ReferencePeak    float64 `json:"reference_peak"`
	ThresholdPrice   float64 `json:"threshold_price"`
	Volatility       float64 `json:"vix"`
	ConfirmedBy      string  `json:"confirmed_by"`
}

// EpisodeState maps level percent (as string) to its trigger record. A
// level present here is never re-evaluated until the state is cleared.
type EpisodeState map[string]TriggerRecord

// Triggered reports whether the given level already fired this episode.
func (s EpisodeState) Triggered(percent int) bool {
	_, ok := s[levelKey(percent)]
	return ok
}

func levelKey(percent int) string {
	return strconv.Itoa(percent)
}

// NewTriggerRecord builds a record with all price/percent fields rounded
// to 2 decimals so the state document stays human-readable and diffable.
func NewTriggerRecord(price, drawdown float64, period string, peak, threshold, volatility float64, confirmedBy string) TriggerRecord {
	return TriggerRecord{
		TriggeredAtPrice: round2(price),
		Drawdown:         round2(drawdown),
		ReferencePeriod:  period,
		ReferencePeak:    round2(peak),
		ThresholdPrice:   round2(threshold),
		Volatility:       round2(volatility),
		ConfirmedBy:      confirmedBy,
	}
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
