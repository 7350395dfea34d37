package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kalpitg/dipwatch-go/internal/config"
	"github.com/kalpitg/dipwatch-go/internal/models"
)

// Client fetches daily close history from the Yahoo Finance chart API.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
}

// latestClosePeriod is the lookback used to resolve "current price": wide
// enough to span market holidays and weekends.
const latestClosePeriod = "5d"

// NewClient creates a chart API client bounded by the configured timeout.
func NewClient(cfg *config.MarketDataConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		BaseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}
}

// FetchSeries returns the daily close series for symbol over the given
// lookback period (e.g. "3mo", "6mo", "1y", "2y"). Sessions the API
// reports without a close are dropped rather than returned as stale or
// partial rows. An empty series is a valid result, not an error.
func (c *Client) FetchSeries(ctx context.Context, symbol, period string) (models.PriceSeries, error) {
	result, err := c.fetchChart(ctx, symbol, period)
	if err != nil {
		return nil, err
	}

	if len(result.Indicators.Quote) == 0 {
		return models.PriceSeries{}, nil
	}

	closes := result.Indicators.Quote[0].Close
	series := make(models.PriceSeries, 0, len(closes))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || ts <= 0 {
			continue
		}
		series = append(series, models.Candle{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}

	return series, nil
}

// FetchLatestClose reduces the most recent sessions of symbol to a single
// scalar close price. It fails when no usable close exists.
func (c *Client) FetchLatestClose(ctx context.Context, symbol string) (float64, error) {
	series, err := c.FetchSeries(ctx, symbol, latestClosePeriod)
	if err != nil {
		return 0, err
	}
	if len(series) == 0 {
		return 0, fmt.Errorf("market: no recent close available for %s", symbol)
	}
	return series[len(series)-1].Close, nil
}

func (c *Client) fetchChart(ctx context.Context, symbol, period string) (*chartResult, error) {
	params := url.Values{}
	params.Set("range", period)
	params.Set("interval", "1d")

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.BaseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("market: create request for %s: %w", symbol, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dipwatch/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market: fetch %s %s: %w", symbol, period, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("market: read response for %s: %w", symbol, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market: chart API returned %d for %s: %s", resp.StatusCode, symbol, strings.TrimSpace(string(body)))
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("market: decode chart response for %s: %w", symbol, err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("market: chart API error for %s: %s (%s)", symbol, chart.Chart.Error.Description, chart.Chart.Error.Code)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("market: chart API returned no result for %s", symbol)
	}

	return &chart.Chart.Result[0], nil
}
