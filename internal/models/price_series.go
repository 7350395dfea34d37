package models

import "time"

// Candle represents one daily bar of a symbol's close history.
type Candle struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered (ascending by date) sequence of daily closes
// over one lookback window. It may be empty when the data source returns
// no rows; it is recomputed on every run and never persisted.
type PriceSeries []Candle

// Closes returns the close values in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, c := range s {
		closes[i] = c.Close
	}
	return closes
}

// Peak returns the maximum close in the series, or 0 for an empty series.
// Callers must treat a non-positive peak as "no usable reference".
func (s PriceSeries) Peak() float64 {
	peak := 0.0
	for _, c := range s {
		if c.Close > peak {
			peak = c.Close
		}
	}
	return peak
}

// LastN returns the most recent n candles, or the whole series when it
// holds fewer than n.
func (s PriceSeries) LastN(n int) PriceSeries {
	if n <= 0 {
		return nil
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
