package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidConfig = errors.New("invalid simulation config")

// trials between context checks
const batchSize = 4096

// RunOptions controls how trials are spread across goroutines.
type RunOptions struct {
	// Workers defaults to runtime.NumCPU(), capped at the trial count.
	Workers int
	// Seed makes runs reproducible for a fixed Workers value. Zero draws a
	// fresh seed.
	Seed uint64
}

func (c *Config) normalize() error {
	if c.Deck == nil {
		return fmt.Errorf("%w: deck is required", ErrInvalidConfig)
	}
	if c.Turn < 1 || c.Turn > MaxTurn {
		return fmt.Errorf("%w: turn %d is outside 1..%d", ErrInvalidConfig, c.Turn, MaxTurn)
	}
	if c.Mulligan == "" {
		c.Mulligan = MulliganBottom
	}
	if _, err := ParseMulliganVariant(string(c.Mulligan)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// RunWithSource plays trials one after another from a single source.
func RunWithSource(cfg Config, trials int, rng RandomSource) (Result, error) {
	if err := cfg.normalize(); err != nil {
		return Result{}, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	return runTrials(context.Background(), newTrial(cfg, rng), trials)
}

// Run plays trials across workers. Worker w plays its share of the trials
// from its own stream derived from (Seed, w), and the counts are summed,
// so a given (Seed, Workers, trials) always yields the same Result.
func Run(ctx context.Context, cfg Config, trials int, opts RunOptions) (Result, error) {
	if err := cfg.normalize(); err != nil {
		return Result{}, err
	}
	if trials <= 0 {
		return Result{}, nil
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > trials {
		workers = trials
	}
	seed := opts.Seed
	if seed == 0 {
		seed = NewSeed()
	}

	logger := zerolog.Ctx(ctx)
	start := time.Now()
	logger.Debug().
		Int("trials", trials).
		Int("workers", workers).
		Uint64("seed", seed).
		Int("turn", cfg.Turn).
		Str("mulligan", string(cfg.Mulligan)).
		Msg("simulation starting")

	partial := make([]Result, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		n := trials / workers
		if w < trials%workers {
			n++
		}
		g.Go(func() error {
			t := newTrial(cfg, NewSeededRNG(streamSeed(seed, w)))
			r, err := runTrials(gctx, t, n)
			partial[w] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var total Result
	for _, r := range partial {
		total.Merge(r)
	}
	logger.Debug().
		Dur("elapsed", time.Since(start)).
		Float64("success_rate", total.SuccessRate()).
		Msg("simulation finished")
	return total, nil
}

func runTrials(ctx context.Context, t *trial, n int) (Result, error) {
	var r Result
	for i := 0; i < n; i++ {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return r, err
			}
		}
		r.add(t.run())
	}
	return r, nil
}

// ConfidenceInterval returns the 95% normal-approximation interval for
// SuccessRate, in percent.
func (r Result) ConfidenceInterval() (lower, upper float64) {
	n := float64(r.Success + r.ColorFailure)
	if n == 0 {
		return 0, 0
	}
	p := float64(r.Success) / n
	margin := 1.96 * math.Sqrt(p*(1-p)/n)
	return math.Max(0, p-margin) * 100, math.Min(1, p+margin) * 100
}
