package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ellipz/ManaSourceCalc/internal/sim"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndListRuns(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := store.RecordRun(ctx, Run{
		Kind:      KindScenario,
		Label:     "commander",
		Scenario:  sim.Scenario{DeckSize: 99, TotalLands: 41, ColoredSources: 18, Turn: 3, ColoredNeeded: 1, Trials: 1000, TappedDelay: true},
		Seed:      1 << 63,
		Result:    sim.Result{Trials: 1000, Success: 900, ColorFailure: 60, InsufficientLands: 40},
		CreatedAt: now,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = store.RecordRun(ctx, Run{
		Kind:     KindAnalysis,
		Label:    "Azorius Control",
		Scenario: sim.Scenario{DeckSize: 60, TotalLands: 24},
		Result:   sim.Result{Trials: 100, Success: 80, ColorFailure: 20},
		Spells: []sim.SpellResult{
			{Name: "Supreme Verdict", ManaCost: "{1}{W}{W}{U}", Turn: 4, Probability: 0.8},
		},
		CreatedAt: now.Add(time.Minute),
	})
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, KindAnalysis, runs[0].Kind)
	require.Len(t, runs[0].Spells, 1)
	assert.Equal(t, "Supreme Verdict", runs[0].Spells[0].Name)

	got := runs[1]
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, uint64(1<<63), got.Seed)
	assert.Equal(t, sim.MulliganBottom, got.Scenario.Mulligan)
	assert.True(t, got.Scenario.TappedDelay)
	assert.Equal(t, 41, got.Scenario.TotalLands)
	assert.Equal(t, 900, got.Result.Success)
	assert.Equal(t, now, got.CreatedAt)

	limited, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordRunValidation(t *testing.T) {
	store := openTempStore(t)
	_, err := store.RecordRun(context.Background(), Run{Kind: "replay"})
	assert.Error(t, err)

	_, err = store.ListRuns(context.Background(), 0)
	assert.Error(t, err)

	var nilStore *Store
	_, err = nilStore.ListRuns(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpenReappliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	assert.NoError(t, store.Close())

	_, err = Open("  ")
	assert.Error(t, err)
}
