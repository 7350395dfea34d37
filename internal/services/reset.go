package services

import (
	"github.com/sirupsen/logrus"

	"github.com/kalpitg/dipwatch-go/internal/models"
)

// ResetController decides, before level evaluation, whether the market
// has recovered enough to close the current drawdown episode. The
// reference is the shortest-lookback level's rolling peak: the smallest
// window tracks "recent recovery" instead of a multi-year high.
type ResetController struct {
	// Threshold is the recovery release valve in percent, e.g. -3. A
	// reset drawdown better than this clears every fired level so the
	// whole ladder can trigger again in the next episode.
	Threshold float64
}

// ShouldReset reports whether the episode state must be cleared. An empty
// reference series or a non-positive peak means "insufficient data": no
// decision is made and the state is left untouched. The drawdown override
// replaces the computed value exactly as in level evaluation.
func (r *ResetController) ShouldReset(log *logrus.Entry, st models.EpisodeState, price float64, reference models.PriceSeries, override *float64) bool {
	if len(st) == 0 {
		return false
	}
	if len(reference) == 0 {
		return false
	}

	peak := reference.Peak()
	if peak <= 0 {
		return false
	}

	drawdown := (price - peak) / peak * 100
	if override != nil {
		drawdown = *override
	}

	if drawdown <= r.Threshold {
		return false
	}

	log.WithFields(logrus.Fields{
		"reset_drawdown": drawdown,
		"reference_peak": peak,
	}).Info("Market recovered. Resetting alert state.")

	return true
}
