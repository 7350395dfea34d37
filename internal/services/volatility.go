package services

import (
	"context"
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/volatility"

	"github.com/kalpitg/dipwatch-go/internal/models"
)

const (
	// realizedVolWindow is the number of daily returns in the realized
	// volatility estimate (one trading month).
	realizedVolWindow = 21

	tradingDaysPerYear = 252
)

// VolatilityService resolves the current volatility reading used by the
// confirmation rule. When a fear-gauge symbol (e.g. ^INDIAVIX) is
// configured it is quoted directly; otherwise the reading falls back to
// annualized realized volatility of the reference close series, so the
// service stays usable for indexes without a published VIX.
type VolatilityService struct {
	market MarketData
	symbol string
}

func NewVolatilityService(market MarketData, symbol string) *VolatilityService {
	return &VolatilityService{market: market, symbol: symbol}
}

// Current returns the volatility reading for this run. With a configured
// symbol a fetch failure propagates, matching the rest of the market
// gateway contract: the caller aborts the run as a no-op.
func (v *VolatilityService) Current(ctx context.Context, reference models.PriceSeries) (float64, error) {
	if v.symbol != "" {
		return v.market.FetchLatestClose(ctx, v.symbol)
	}
	return realizedVolatility(reference.Closes()), nil
}

// realizedVolatility annualizes the standard deviation of recent daily
// log returns, scaled to VIX-like percentage points. Too-short series
// yield 0, so volatility confirmation fails closed on thin data.
func realizedVolatility(closes []float64) float64 {
	returns := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}

	period := realizedVolWindow
	if len(returns) < period {
		period = len(returns)
	}
	if period < 2 {
		return 0
	}

	std := volatility.NewMovingStdWithPeriod[float64](period)
	stds := helper.ChanToSlice(std.Compute(helper.SliceToChan(returns)))
	if len(stds) == 0 {
		return 0
	}

	return stds[len(stds)-1] * math.Sqrt(tradingDaysPerYear) * 100
}
