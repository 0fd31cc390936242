package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ellipz/ManaSourceCalc/internal/profile"
	"github.com/Ellipz/ManaSourceCalc/internal/sim"
	"github.com/Ellipz/ManaSourceCalc/internal/storage/sqlite"
)

type memStore struct {
	mu   sync.Mutex
	runs []sqlite.Run
	err  error
}

func (m *memStore) RecordRun(_ context.Context, run sqlite.Run) (sqlite.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return sqlite.Run{}, m.err
	}
	run.ID = "run-" + string(rune('a'+len(m.runs)))
	m.runs = append(m.runs, run)
	return run, nil
}

func (m *memStore) ListRuns(_ context.Context, limit int) ([]sqlite.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sqlite.Run, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

func newService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios", "default.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`
deck: {size: 60, lands: 24, colored_sources: 15}
cast: {turn: 4, colored_needed: 2}
sim: {trials: 2000}
`), 0o644))
	store := &memStore{}
	return &Service{Configs: profile.NewLoader(dir), Store: store, Workers: 2}, store
}

func azorius() profile.DeckList {
	return profile.DeckList{
		Name: "Azorius",
		Size: 60,
		Lands: []sim.Land{
			{Name: "Plains", Colors: []string{"W"}, Quantity: 12},
			{Name: "Island", Colors: []string{"U"}, Quantity: 12},
		},
		Spells: []sim.Spell{
			{Name: "Counterspell", ManaCost: "{U}{U}", Quantity: 4},
			{Name: "Swords to Plowshares", ManaCost: "{W}", Quantity: 4},
		},
	}
}

func TestSimulateRecordsRun(t *testing.T) {
	svc, store := newService(t)
	seed := uint64(7)
	resp, err := svc.Simulate(context.Background(), SimulateRequest{Overrides: profile.Overrides{Seed: &seed}})
	require.NoError(t, err)

	assert.Equal(t, 2000, resp.Result.Trials)
	assert.Equal(t, uint64(7), resp.Seed)
	assert.InDelta(t, resp.Result.SuccessRate(), resp.SuccessRate, 1e-9)
	assert.LessOrEqual(t, resp.Lower, resp.SuccessRate)
	assert.GreaterOrEqual(t, resp.Upper, resp.SuccessRate)
	assert.Equal(t, "run-a", resp.RunID)

	require.Len(t, store.runs, 1)
	assert.Equal(t, sqlite.KindScenario, store.runs[0].Kind)

	again, err := svc.Simulate(context.Background(), SimulateRequest{Overrides: profile.Overrides{Seed: &seed}})
	require.NoError(t, err)
	assert.Equal(t, resp.Result, again.Result, "same seed and workers")
}

func TestSimulateInvalid(t *testing.T) {
	svc, store := newService(t)
	needed := 9
	_, err := svc.Simulate(context.Background(), SimulateRequest{Overrides: profile.Overrides{ColoredNeeded: &needed}})
	require.Error(t, err)
	assert.True(t, IsInvalid(err))
	assert.Empty(t, store.runs)

	svc.MaxTrials = 100
	_, err = svc.Simulate(context.Background(), SimulateRequest{})
	assert.ErrorIs(t, err, ErrTooManyTrials)
	assert.True(t, IsInvalid(err))
}

func TestSimulateUnknownOrUnsafeNames(t *testing.T) {
	svc, store := newService(t)
	for _, req := range []SimulateRequest{
		{Format: "vintage"},
		{Format: "../scenarios/default"},
		{Deck: "../../etc/passwd"},
	} {
		_, err := svc.Simulate(context.Background(), req)
		require.Error(t, err, "%+v", req)
		assert.True(t, IsInvalid(err), "%+v", req)
	}
	assert.Empty(t, store.runs)
}

func TestSimulateRejectsOversizedScenario(t *testing.T) {
	svc, _ := newService(t)
	size, turn := 1<<30, 1<<30
	_, err := svc.Simulate(context.Background(), SimulateRequest{Overrides: profile.Overrides{DeckSize: &size}})
	assert.True(t, IsInvalid(err))
	_, err = svc.Simulate(context.Background(), SimulateRequest{Overrides: profile.Overrides{Turn: &turn}})
	assert.True(t, IsInvalid(err))
}

func TestRunOptionsCapsWorkers(t *testing.T) {
	svc, _ := newService(t)
	assert.Equal(t, runtime.NumCPU(), svc.runOptions(sim.RunOptions{Workers: 1 << 20}).Workers)

	svc.MaxWorkers = 3
	assert.Equal(t, 2, svc.runOptions(sim.RunOptions{}).Workers)
	assert.Equal(t, 3, svc.runOptions(sim.RunOptions{Workers: 500}).Workers)
	assert.Equal(t, 1, svc.runOptions(sim.RunOptions{Workers: 1}).Workers)

	svc.Workers = 0
	o := svc.runOptions(sim.RunOptions{Seed: 4})
	assert.Equal(t, 3, o.Workers)
	assert.Equal(t, uint64(4), o.Seed)
	assert.NotZero(t, svc.runOptions(sim.RunOptions{}).Seed)
}

func TestAnalyzeStreamsProgress(t *testing.T) {
	svc, store := newService(t)
	var seen []string
	resp, err := svc.Analyze(context.Background(), AnalyzeRequest{Deck: azorius(), Trials: 500, Seed: 3},
		func(sr sim.SpellResult) { seen = append(seen, sr.Name) })
	require.NoError(t, err)

	assert.Equal(t, []string{"Counterspell", "Swords to Plowshares"}, seen)
	require.Len(t, resp.Spells, 2)
	assert.GreaterOrEqual(t, resp.Spells[0].Probability, resp.Spells[1].Probability)
	assert.Equal(t, 24, resp.Lands)
	assert.Equal(t, 12, resp.Sources.W)

	require.Len(t, store.runs, 1)
	assert.Equal(t, sqlite.KindAnalysis, store.runs[0].Kind)
	assert.Equal(t, 1000, store.runs[0].Result.Trials)
}

func TestAnalyzeInvalid(t *testing.T) {
	svc, _ := newService(t)
	deck := azorius()
	deck.Lands[0].Quantity = 100
	_, err := svc.Analyze(context.Background(), AnalyzeRequest{Deck: deck}, nil)
	assert.True(t, IsInvalid(err))

	_, err = svc.Analyze(context.Background(), AnalyzeRequest{Deck: azorius(), Mulligan: "paris"}, nil)
	assert.True(t, IsInvalid(err))

	deck = azorius()
	deck.Size = 1 << 30
	_, err = svc.Analyze(context.Background(), AnalyzeRequest{Deck: deck}, nil)
	assert.True(t, IsInvalid(err))

	deck = azorius()
	deck.Spells = append(deck.Spells, sim.Spell{Name: "Huge", ManaCost: "{1000000000}", Quantity: 1})
	_, err = svc.Analyze(context.Background(), AnalyzeRequest{Deck: deck, Trials: 10}, nil)
	assert.True(t, IsInvalid(err))
}

func TestRecordFailureDoesNotFailRun(t *testing.T) {
	svc, store := newService(t)
	store.err = errors.New("disk full")
	resp, err := svc.Simulate(context.Background(), SimulateRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.RunID)
}

func TestRunsWithoutStore(t *testing.T) {
	svc, _ := newService(t)
	svc.Store = nil
	_, err := svc.Runs(context.Background(), 10)
	assert.ErrorIs(t, err, sqlite.ErrNotConfigured)
}
