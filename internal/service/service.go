// Package service runs scenario simulations and deck analyses on behalf of
// the HTTP and gRPC transports and records them in the run history.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ellipz/ManaSourceCalc/internal/mana"
	"github.com/Ellipz/ManaSourceCalc/internal/profile"
	"github.com/Ellipz/ManaSourceCalc/internal/sim"
	"github.com/Ellipz/ManaSourceCalc/internal/storage/sqlite"
)

var ErrTooManyTrials = errors.New("trial count exceeds server limit")

// RunStore persists run history. *sqlite.Store satisfies it.
type RunStore interface {
	RecordRun(ctx context.Context, run sqlite.Run) (sqlite.Run, error)
	ListRuns(ctx context.Context, limit int) ([]sqlite.Run, error)
}

// ConfigSource resolves layered scenario files. *profile.Loader satisfies it.
type ConfigSource interface {
	profile.Resolver
	Formats() ([]string, error)
}

type Service struct {
	Configs    ConfigSource
	Store      RunStore // optional
	Workers    int      // default worker count when a request sets none
	MaxWorkers int      // 0 means runtime.NumCPU()
	MaxTrials  int      // 0 means unlimited
}

// SimulateRequest selects a format/deck scenario and per-request overrides.
type SimulateRequest struct {
	Format    string
	Deck      string
	Overrides profile.Overrides
}

type SimulateResponse struct {
	RunID       string       `json:"run_id,omitempty"`
	Scenario    sim.Scenario `json:"scenario"`
	Seed        uint64       `json:"seed"`
	Result      sim.Result   `json:"result"`
	SuccessRate float64      `json:"success_rate"`
	Lower       float64      `json:"ci_lower"`
	Upper       float64      `json:"ci_upper"`
}

// Simulate resolves the scenario and runs it.
func (s *Service) Simulate(ctx context.Context, req SimulateRequest) (SimulateResponse, error) {
	_, p, err := s.Configs.Resolve(req.Format, req.Deck, req.Overrides)
	if err != nil {
		return SimulateResponse{}, err
	}
	if err := s.checkTrials(p.Scenario.Trials); err != nil {
		return SimulateResponse{}, err
	}
	run := s.runOptions(p.Run)

	r, err := sim.RunScenario(ctx, p.Scenario, run)
	if err != nil {
		return SimulateResponse{}, err
	}
	lo, hi := r.ConfidenceInterval()
	resp := SimulateResponse{
		Scenario:    p.Scenario,
		Seed:        run.Seed,
		Result:      r,
		SuccessRate: r.SuccessRate(),
		Lower:       lo,
		Upper:       hi,
	}
	label := req.Format
	if req.Deck != "" {
		label += "/" + req.Deck
	}
	resp.RunID = s.record(ctx, sqlite.Run{
		Kind:     sqlite.KindScenario,
		Label:    label,
		Scenario: p.Scenario,
		Seed:     run.Seed,
		Result:   r,
	})
	return resp, nil
}

// AnalyzeRequest carries a deck list and engine settings.
type AnalyzeRequest struct {
	Deck        profile.DeckList `json:"deck"`
	Trials      int              `json:"trials,omitempty"`
	Mulligan    string           `json:"mulligan,omitempty"`
	TappedDelay bool             `json:"tapped_delay,omitempty"`
	Workers     int              `json:"workers,omitempty"`
	Seed        uint64           `json:"seed,omitempty"`
}

type AnalyzeResponse struct {
	RunID   string            `json:"run_id,omitempty"`
	Lands   int               `json:"lands"`
	Sources mana.Sources      `json:"sources"`
	Seed    uint64            `json:"seed"`
	Spells  []sim.SpellResult `json:"spells"`
}

// Analyze computes per-spell castability. progress, if non-nil, sees each
// spell as it finishes.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest, progress func(sim.SpellResult)) (AnalyzeResponse, error) {
	deck, err := req.Deck.Build()
	if err != nil {
		return AnalyzeResponse{}, err
	}
	mv, err := sim.ParseMulliganVariant(req.Mulligan)
	if err != nil {
		return AnalyzeResponse{}, fmt.Errorf("%w: %w", sim.ErrInvalidConfig, err)
	}
	if req.Trials < 0 {
		return AnalyzeResponse{}, fmt.Errorf("%w: trials must be >= 0", sim.ErrInvalidConfig)
	}
	trials := req.Trials
	if trials == 0 {
		trials = sim.DefaultAnalyzeTrials
	}
	if err := s.checkTrials(trials); err != nil {
		return AnalyzeResponse{}, err
	}
	run := s.runOptions(sim.RunOptions{Workers: req.Workers, Seed: req.Seed})

	spells, err := sim.Analyze(ctx, deck, sim.AnalyzeOptions{
		Trials:      trials,
		Mulligan:    mv,
		TappedDelay: req.TappedDelay,
		Run:         run,
		Progress:    progress,
	})
	if err != nil {
		return AnalyzeResponse{}, err
	}

	var total sim.Result
	for _, sp := range spells {
		total.Merge(sp.Result)
	}
	resp := AnalyzeResponse{
		Lands:   deck.LandCount(),
		Sources: deck.ColorSources(),
		Seed:    run.Seed,
		Spells:  spells,
	}
	resp.RunID = s.record(ctx, sqlite.Run{
		Kind:  sqlite.KindAnalysis,
		Label: req.Deck.Name,
		Scenario: sim.Scenario{
			DeckSize:    deck.Size,
			TotalLands:  deck.LandCount(),
			Trials:      trials,
			Mulligan:    mv,
			TappedDelay: req.TappedDelay,
		},
		Seed:   run.Seed,
		Result: total,
		Spells: spells,
	})
	return resp, nil
}

// Runs lists recent runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]sqlite.Run, error) {
	if s.Store == nil {
		return nil, sqlite.ErrNotConfigured
	}
	if limit <= 0 {
		limit = 50
	}
	return s.Store.ListRuns(ctx, limit)
}

// Formats lists the configured scenario formats.
func (s *Service) Formats() ([]string, error) {
	return s.Configs.Formats()
}

// IsInvalid reports whether err stems from bad caller input.
func IsInvalid(err error) bool {
	for _, target := range []error{
		sim.ErrInvalidScenario,
		sim.ErrInvalidDeck,
		sim.ErrInvalidConfig,
		profile.ErrInvalidConfig,
		profile.ErrIncompleteConfig,
		profile.ErrInvalidName,
		profile.ErrUnknownFormat,
		profile.ErrUnknownDeck,
		ErrTooManyTrials,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *Service) checkTrials(n int) error {
	if s.MaxTrials > 0 && n > s.MaxTrials {
		return fmt.Errorf("%w: %d > %d", ErrTooManyTrials, n, s.MaxTrials)
	}
	return nil
}

// runOptions fills in the default worker count, caps it, and pins a seed
// so the recorded run can be replayed.
func (s *Service) runOptions(o sim.RunOptions) sim.RunOptions {
	if o.Workers <= 0 {
		o.Workers = s.Workers
	}
	limit := s.MaxWorkers
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	if o.Workers <= 0 || o.Workers > limit {
		o.Workers = limit
	}
	if o.Seed == 0 {
		o.Seed = sim.NewSeed()
	}
	return o
}

func (s *Service) record(ctx context.Context, run sqlite.Run) string {
	if s.Store == nil {
		return ""
	}
	run.CreatedAt = time.Now().UTC()
	saved, err := s.Store.RecordRun(ctx, run)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("kind", run.Kind).Msg("record run failed")
		return ""
	}
	return saved.ID
}
