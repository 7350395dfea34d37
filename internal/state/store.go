package state

import (
	"context"

	"github.com/kalpitg/dipwatch-go/internal/models"
)

// Store persists the per-episode trigger state between runs. Load never
// fails on a missing or corrupt document: dedup state is best-effort by
// design and an unreadable document degrades to an empty episode (which
// can re-fire already-triggered levels, an accepted tradeoff).
type Store interface {
	Load(ctx context.Context) (models.EpisodeState, error)
	Save(ctx context.Context, st models.EpisodeState) error
}
