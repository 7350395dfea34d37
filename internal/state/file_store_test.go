package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalpitg/dipwatch-go/internal/models"
)

func testRecord(price float64) models.TriggerRecord {
	return models.TriggerRecord{
		TriggeredAtPrice: price,
		Drawdown:         -10.5,
		ReferencePeriod:  "6mo",
		ReferencePeak:    120,
		ThresholdPrice:   108,
		Volatility:       21.3,
		ConfirmedBy:      "PERSISTENCE",
	}
}

func TestFileStore_MissingFileYieldsEmptyState(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))

	st, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st)
	assert.NotNil(t, st)
}

func TestFileStore_CorruptFileYieldsEmptyState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{\"10\": oops"), 0o644))

	store := NewFileStore(path)

	st, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st)
}

func TestFileStore_SaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)
	ctx := context.Background()

	in := models.EpisodeState{
		"5":  testRecord(98),
		"10": testRecord(95),
	}
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFileStore_DocumentIsHumanReadableAndDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)
	ctx := context.Background()

	st := models.EpisodeState{"10": testRecord(95), "5": testRecord(98)}
	require.NoError(t, store.Save(ctx, st))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	// Same state saved again produces a byte-identical document.
	require.NoError(t, store.Save(ctx, st))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Indented JSON with the original field names.
	assert.Contains(t, string(first), "\n  \"10\": {")
	assert.Contains(t, string(first), "\"triggered_at_price\"")
	assert.Contains(t, string(first), "\"confirmed_by\"")
	assert.True(t, json.Valid(first))
}

func TestFileStore_SaveOverwritesWholeDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.EpisodeState{"5": testRecord(98), "10": testRecord(95)}))
	require.NoError(t, store.Save(ctx, models.EpisodeState{}))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)

	// No temp files left behind by the atomic rename.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
