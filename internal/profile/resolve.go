// resolve.go
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ellipz/ManaSourceCalc/internal/sim"
)

// Params is a fully resolved scenario ready for the engine.
type Params struct {
	Scenario sim.Scenario
	Run      sim.RunOptions
	DeckList string // absolute path of an attached deck list, if any
	Version  string // effective config version for tracing
}

type Resolver interface {
	// Returns merged RawConfig and resolved Params
	Resolve(format, deck string, o Overrides) (RawConfig, Params, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default → format → deck → overrides, validates the
// result and converts it into engine parameters.
func (l *Loader) Resolve(format, deck string, o Overrides) (RawConfig, Params, error) {
	raw, err := l.LoadMerged(format, deck)
	if err != nil {
		return RawConfig{}, Params{}, err
	}
	raw = applyOverrides(raw, o)
	if err := ValidateRaw(raw); err != nil {
		return raw, Params{}, err
	}

	var missing []string
	need := func(v *int, name string) int {
		if v == nil {
			missing = append(missing, name)
			return 0
		}
		return *v
	}
	s := sim.Scenario{
		DeckSize:       need(raw.Deck.Size, "deck.size"),
		TotalLands:     need(raw.Deck.Lands, "deck.lands"),
		ColoredSources: need(raw.Deck.ColoredSources, "deck.colored_sources"),
		Turn:           need(raw.Cast.Turn, "cast.turn"),
		ColoredNeeded:  need(raw.Cast.ColoredNeeded, "cast.colored_needed"),
		Trials:         sim.DefaultAnalyzeTrials,
	}
	var run sim.RunOptions
	if raw.Sim != nil {
		if raw.Sim.Trials != nil {
			s.Trials = *raw.Sim.Trials
		}
		s.Mulligan = sim.MulliganVariant(strings.ToLower(raw.Sim.Mulligan))
		if raw.Sim.TappedDelay != nil {
			s.TappedDelay = *raw.Sim.TappedDelay
		}
		if raw.Sim.Workers != nil {
			run.Workers = *raw.Sim.Workers
		}
		if raw.Sim.Seed != nil {
			run.Seed = *raw.Sim.Seed
		}
	}
	if len(missing) > 0 {
		return raw, Params{}, fmt.Errorf("%w: missing %s", ErrIncompleteConfig, strings.Join(missing, ", "))
	}
	if err := s.Validate(); err != nil {
		return raw, Params{}, err
	}

	p := Params{Scenario: s, Run: run, Version: raw.Version}
	if raw.Deck.List != "" {
		p.DeckList = raw.Deck.List
		if !filepath.IsAbs(p.DeckList) {
			p.DeckList = filepath.Join(l.paths.BaseDir, p.DeckList)
		}
	}
	return raw, p, nil
}

func applyOverrides(raw RawConfig, o Overrides) RawConfig {
	raw.Deck.Size = pick(raw.Deck.Size, o.DeckSize)
	raw.Deck.Lands = pick(raw.Deck.Lands, o.Lands)
	raw.Deck.ColoredSources = pick(raw.Deck.ColoredSources, o.ColoredSources)
	raw.Cast.Turn = pick(raw.Cast.Turn, o.Turn)
	raw.Cast.ColoredNeeded = pick(raw.Cast.ColoredNeeded, o.ColoredNeeded)

	if o.Trials == nil && o.Mulligan == nil && o.TappedDelay == nil && o.Workers == nil && o.Seed == nil {
		return raw
	}
	var s SimConfig
	if raw.Sim != nil {
		s = *raw.Sim
	}
	s.Trials = pick(s.Trials, o.Trials)
	s.TappedDelay = pick(s.TappedDelay, o.TappedDelay)
	s.Workers = pick(s.Workers, o.Workers)
	s.Seed = pick(s.Seed, o.Seed)
	if o.Mulligan != nil {
		s.Mulligan = *o.Mulligan
	}
	raw.Sim = &s
	return raw
}

// Formats lists the format files next to default.yaml.
func (l *Loader) Formats() ([]string, error) {
	entries, err := os.ReadDir(filepath.Dir(l.paths.DefaultPath()))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".yaml")
		if e.IsDir() || !ok || name == "default" {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}
