package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Ellipz/ManaSourceCalc/internal/sim"
)

var (
	ErrInvalidConfig    = errors.New("config validation failed")
	ErrIncompleteConfig = errors.New("config incomplete")
)

// ValidateRaw checks semantic constraints of a RawConfig. Fields left
// unset are not reported here; Resolve requires them.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// deck
	if cfg.Deck.Size != nil {
		if *cfg.Deck.Size < sim.MinDeckSize {
			errs = append(errs, fmt.Sprintf("deck.size must be >= %d", sim.MinDeckSize))
		}
		if *cfg.Deck.Size > sim.MaxDeckSize {
			errs = append(errs, fmt.Sprintf("deck.size must be <= %d", sim.MaxDeckSize))
		}
	}
	if cfg.Deck.Lands != nil {
		if *cfg.Deck.Lands < 0 {
			errs = append(errs, "deck.lands must be >= 0")
		}
		if cfg.Deck.Size != nil && *cfg.Deck.Lands > *cfg.Deck.Size {
			errs = append(errs, "deck.lands must not exceed deck.size")
		}
	}
	if cfg.Deck.ColoredSources != nil {
		if *cfg.Deck.ColoredSources < 0 {
			errs = append(errs, "deck.colored_sources must be >= 0")
		}
		if cfg.Deck.Lands != nil && *cfg.Deck.ColoredSources > *cfg.Deck.Lands {
			errs = append(errs, "deck.colored_sources must not exceed deck.lands")
		}
	}

	// cast
	if cfg.Cast.Turn != nil && (*cfg.Cast.Turn < 1 || *cfg.Cast.Turn > sim.MaxTurn) {
		errs = append(errs, fmt.Sprintf("cast.turn must be between 1 and %d", sim.MaxTurn))
	}
	if cfg.Cast.ColoredNeeded != nil {
		if *cfg.Cast.ColoredNeeded < 0 {
			errs = append(errs, "cast.colored_needed must be >= 0")
		}
		if cfg.Cast.Turn != nil && *cfg.Cast.ColoredNeeded > *cfg.Cast.Turn {
			errs = append(errs, "cast.colored_needed must not exceed cast.turn")
		}
	}

	// sim
	if cfg.Sim != nil {
		if cfg.Sim.Trials != nil && *cfg.Sim.Trials < 1 {
			errs = append(errs, "sim.trials must be >= 1")
		}
		if cfg.Sim.Workers != nil && *cfg.Sim.Workers < 0 {
			errs = append(errs, "sim.workers must be >= 0 (0 means one per CPU)")
		}
		if _, err := sim.ParseMulliganVariant(cfg.Sim.Mulligan); err != nil {
			errs = append(errs, "sim.mulligan must be one of: bottom, shrink")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}
