// Command manasim runs a mana base simulation from the command line and
// appends the results to a report file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ellipz/ManaSourceCalc/internal/platform/config"
	"github.com/Ellipz/ManaSourceCalc/internal/profile"
	"github.com/Ellipz/ManaSourceCalc/internal/report"
	"github.com/Ellipz/ManaSourceCalc/internal/sim"
)

func main() {
	var (
		configDir   = flag.String("config", "configs", "scenario config directory")
		format      = flag.String("format", "", "scenario format file (e.g. commander)")
		deckName    = flag.String("deck", "", "deck scenario within the format")
		deckSize    = flag.Int("size", 0, "deck size")
		lands       = flag.Int("lands", 0, "total lands")
		colored     = flag.Int("colored", 0, "lands producing the needed color")
		turn        = flag.Int("turn", 0, "target turn")
		needed      = flag.Int("needed", 0, "colored mana needed")
		trials      = flag.Int("trials", 0, "number of simulations")
		mulligan    = flag.String("mulligan", "", "mulligan variant: bottom or shrink")
		tapped      = flag.Bool("tapped", false, "play tapped lands early and save an untapped land for the target turn")
		workers     = flag.Int("workers", 0, "worker goroutines (0 = one per CPU)")
		seed        = flag.Uint64("seed", 0, "random seed (0 = random)")
		out         = flag.String("out", "ManaSimResults.txt", "results file to append to")
		analyze     = flag.String("analyze", "", "deck list file to analyze spell by spell")
		analysisOut = flag.String("analysis-out", "ManaBaseAnalysis.txt", "analysis report file")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logger.WithContext(ctx)

	// only flags given on the command line override the scenario files
	var o profile.Overrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "size":
			o.DeckSize = deckSize
		case "lands":
			o.Lands = lands
		case "colored":
			o.ColoredSources = colored
		case "turn":
			o.Turn = turn
		case "needed":
			o.ColoredNeeded = needed
		case "trials":
			o.Trials = trials
		case "mulligan":
			o.Mulligan = mulligan
		case "tapped":
			o.TappedDelay = tapped
		case "workers":
			o.Workers = workers
		case "seed":
			o.Seed = seed
		}
	})

	if *analyze != "" {
		if err := runAnalysis(ctx, *analyze, *analysisOut, o); err != nil {
			config.Exitf("analysis failed: %v", err)
		}
		return
	}
	if err := runScenario(ctx, profile.NewLoader(*configDir), *format, *deckName, *out, o); err != nil {
		config.Exitf("simulation failed: %v", err)
	}
}

func runScenario(ctx context.Context, loader *profile.Loader, format, deck, out string, o profile.Overrides) error {
	_, p, err := loader.Resolve(format, deck, o)
	if err != nil {
		return err
	}
	start := time.Now()
	r, err := sim.RunScenario(ctx, p.Scenario, p.Run)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Dur("elapsed", time.Since(start)).Msg("simulation complete")

	now := time.Now()
	if err := report.Scenario(os.Stdout, now, p.Scenario, r); err != nil {
		return err
	}
	lo, hi := r.ConfidenceInterval()
	fmt.Printf("95%% interval: %.2f%% - %.2f%%\n", lo, hi)
	if out == "" {
		return nil
	}
	if err := report.AppendScenario(out, now, p.Scenario, r); err != nil {
		return err
	}
	fmt.Printf("\nResults appended to %s\n", out)
	return nil
}

func runAnalysis(ctx context.Context, path, out string, o profile.Overrides) error {
	deck, err := profile.LoadDeck(path)
	if err != nil {
		return err
	}
	opts := sim.AnalyzeOptions{
		Progress: func(sr sim.SpellResult) {
			fmt.Printf("%s (Turn %d): %.1f%%\n", sr.Name, sr.Turn, sr.Probability*100)
		},
	}
	if o.Trials != nil {
		opts.Trials = *o.Trials
	}
	if o.Mulligan != nil {
		mv, err := sim.ParseMulliganVariant(*o.Mulligan)
		if err != nil {
			return err
		}
		opts.Mulligan = mv
	}
	if o.TappedDelay != nil {
		opts.TappedDelay = *o.TappedDelay
	}
	if o.Workers != nil {
		opts.Run.Workers = *o.Workers
	}
	if o.Seed != nil {
		opts.Run.Seed = *o.Seed
	}

	results, err := sim.Analyze(ctx, deck, opts)
	if err != nil {
		return err
	}
	if err := report.WriteAnalysis(out, time.Now(), deck, results); err != nil {
		return err
	}
	fmt.Printf("\nAnalysis written to %s\n", out)
	return nil
}
