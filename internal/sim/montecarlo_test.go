package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func midrange() Scenario {
	return Scenario{
		DeckSize:       60,
		TotalLands:     24,
		ColoredSources: 15,
		Turn:           4,
		ColoredNeeded:  2,
		Trials:         100000,
	}
}

func runScenario(t *testing.T, s Scenario) Result {
	t.Helper()
	r, err := RunScenario(context.Background(), s, RunOptions{Workers: 4, Seed: 42})
	require.NoError(t, err)
	require.Equal(t, s.Trials, r.Trials)
	require.Equal(t, r.Trials, r.Success+r.ColorFailure+r.InsufficientLands)
	return r
}

func TestRunDeterministicWithSeed(t *testing.T) {
	s := midrange()
	s.Trials = 20000
	cfg, err := s.Config()
	require.NoError(t, err)

	opts := RunOptions{Workers: 3, Seed: 7}
	a, err := Run(context.Background(), cfg, s.Trials, opts)
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg, s.Trials, opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := RunWithSource(cfg, 5000, NewSeededRNG(9))
	require.NoError(t, err)
	d, err := RunWithSource(cfg, 5000, NewSeededRNG(9))
	require.NoError(t, err)
	assert.Equal(t, c, d)
}

func TestMidrangeScenarioBand(t *testing.T) {
	r := runScenario(t, midrange())
	rate := r.SuccessRate()
	assert.GreaterOrEqual(t, rate, 90.0)
	assert.LessOrEqual(t, rate, 95.0)

	lo, hi := r.ConfidenceInterval()
	assert.Less(t, lo, rate)
	assert.Greater(t, hi, rate)
}

// Reference success rates for aggregate scenarios: a game succeeds when
// the target turn's land count is reached and at least ColoredNeeded of
// the lands held are colored.
func TestScenarioMatchesReferenceRates(t *testing.T) {
	testCases := []struct {
		name string
		s    Scenario
		want float64
	}{
		{"midrange", Scenario{DeckSize: 60, TotalLands: 24, ColoredSources: 15, Turn: 4, ColoredNeeded: 2}, 92.57},
		{"commander", Scenario{DeckSize: 99, TotalLands: 41, ColoredSources: 18, Turn: 3, ColoredNeeded: 1}, 93.24},
		{"aggro", Scenario{DeckSize: 60, TotalLands: 20, ColoredSources: 14, Turn: 3, ColoredNeeded: 2}, 88.46},
		{"splash", Scenario{DeckSize: 60, TotalLands: 24, ColoredSources: 8, Turn: 3, ColoredNeeded: 2}, 41.57},
		{"light splash", Scenario{DeckSize: 60, TotalLands: 17, ColoredSources: 8, Turn: 2, ColoredNeeded: 2}, 41.76},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.s.Trials = 60000
			r := runScenario(t, tc.s)
			assert.InDelta(t, tc.want, r.SuccessRate(), 2.0)
		})
	}
}

func TestCommanderScenarioBand(t *testing.T) {
	r := runScenario(t, Scenario{
		DeckSize:       99,
		TotalLands:     41,
		ColoredSources: 18,
		Turn:           3,
		ColoredNeeded:  1,
		Trials:         50000,
	})
	assert.GreaterOrEqual(t, r.SuccessRate(), 90.0)
	assert.LessOrEqual(t, r.SuccessRate(), 96.0)
}

func TestShrinkVariantRuns(t *testing.T) {
	s := midrange()
	s.Trials = 20000
	s.Mulligan = MulliganShrink
	r := runScenario(t, s)
	assert.GreaterOrEqual(t, r.SuccessRate(), 0.0)
	assert.LessOrEqual(t, r.SuccessRate(), 100.0)
}

func TestMoreColoredSourcesDoNotHurt(t *testing.T) {
	few := midrange()
	few.ColoredSources = 10
	many := midrange()
	many.ColoredSources = 18

	a := runScenario(t, few)
	b := runScenario(t, many)
	assert.GreaterOrEqual(t, b.SuccessRate(), a.SuccessRate()-2)
}

func TestNoLandsNeverCasts(t *testing.T) {
	for turn := 1; turn <= 4; turn++ {
		r := runScenario(t, Scenario{DeckSize: 60, Turn: turn, Trials: 2000})
		assert.Equal(t, r.Trials, r.InsufficientLands, "turn %d", turn)
		assert.Equal(t, 0.0, r.SuccessRate())
	}
}

func TestMonoColoredManaBaseHasNoColorFailures(t *testing.T) {
	s := midrange()
	s.ColoredSources = s.TotalLands
	r := runScenario(t, s)
	assert.Zero(t, r.ColorFailure)
	assert.Equal(t, 100.0, r.SuccessRate())
}

func TestScenarioValidation(t *testing.T) {
	testCases := []struct {
		name string
		edit func(*Scenario)
		msg  string
	}{
		{"lands over deck", func(s *Scenario) { s.TotalLands = 61 }, "total lands cannot exceed deck size"},
		{"colored over lands", func(s *Scenario) { s.ColoredSources = 25 }, "colored sources cannot exceed total lands"},
		{"colored over turn", func(s *Scenario) { s.ColoredNeeded = 5 }, "colored mana needed cannot exceed turn requirement"},
		{"no trials", func(s *Scenario) { s.Trials = 0 }, "trials must be >= 1"},
		{"deck too large", func(s *Scenario) { s.DeckSize = MaxDeckSize + 1 }, "deck size must be <= 250"},
		{"turn too late", func(s *Scenario) { s.Turn = MaxTurn + 1 }, "turn must be between 1 and 30"},
		{"bad mulligan", func(s *Scenario) { s.Mulligan = "paris" }, "unknown mulligan variant"},
	}
	for _, tc := range testCases {
		s := midrange()
		tc.edit(&s)
		r, err := RunScenario(context.Background(), s, RunOptions{Seed: 1})
		require.Error(t, err, tc.name)
		assert.True(t, errors.Is(err, ErrInvalidScenario), tc.name)
		assert.Contains(t, err.Error(), tc.msg, tc.name)
		assert.Zero(t, r.Trials, tc.name)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	cfg, err := midrange().Config()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, cfg, 100000, RunOptions{Workers: 2, Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsMissingDeck(t *testing.T) {
	_, err := Run(context.Background(), Config{Turn: 2}, 10, RunOptions{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunRejectsTurnAboveLimit(t *testing.T) {
	deck, err := BuildDeck(nil, nil, 60)
	require.NoError(t, err)
	_, err = Run(context.Background(), Config{Deck: deck, Turn: MaxTurn + 1}, 10, RunOptions{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = RunWithSource(Config{Deck: deck, Turn: 1 << 30}, 10, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestResultRates(t *testing.T) {
	var r Result
	assert.Zero(t, r.SuccessRate())
	assert.Zero(t, r.Share(Success))
	assert.Zero(t, r.Probability())

	r = Result{Trials: 10, Success: 6, ColorFailure: 2, InsufficientLands: 2}
	assert.InDelta(t, 75.0, r.SuccessRate(), 1e-9)
	assert.InDelta(t, 20.0, r.Share(InsufficientLands), 1e-9)
	assert.InDelta(t, 0.6, r.Probability(), 1e-9)

	r.Merge(Result{Trials: 2, InsufficientLands: 2})
	assert.Equal(t, 12, r.Trials)
	assert.Equal(t, 4, r.Count(InsufficientLands))
}
