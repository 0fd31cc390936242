package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ellipz/ManaSourceCalc/internal/mana"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// Size limits for decks and target turns. MaxTurn leaves room for the
// largest printed mana values.
const (
	MinDeckSize = 7 // smallest deck that can deal an opening hand
	MaxDeckSize = 250
	MaxTurn     = 30
)

// Scenario is the aggregate question: with TotalLands lands, of which
// ColoredSources make the needed color, how often are there Turn lands in
// play with at least ColoredNeeded of them colored?
type Scenario struct {
	DeckSize       int             `json:"deck_size"`
	TotalLands     int             `json:"total_lands"`
	ColoredSources int             `json:"colored_sources"`
	Turn           int             `json:"turn"`
	ColoredNeeded  int             `json:"colored_needed"`
	Trials         int             `json:"trials"`
	Mulligan       MulliganVariant `json:"mulligan,omitempty"`
	TappedDelay    bool            `json:"tapped_delay,omitempty"`
}

// Validate reports every violated constraint at once.
func (s Scenario) Validate() error {
	var errs []error
	if s.DeckSize < MinDeckSize {
		errs = append(errs, fmt.Errorf("deck size must be >= %d", MinDeckSize))
	}
	if s.DeckSize > MaxDeckSize {
		errs = append(errs, fmt.Errorf("deck size must be <= %d", MaxDeckSize))
	}
	if s.TotalLands < 0 || s.ColoredSources < 0 || s.ColoredNeeded < 0 {
		errs = append(errs, errors.New("land and mana counts must be >= 0"))
	}
	if s.TotalLands > s.DeckSize {
		errs = append(errs, errors.New("total lands cannot exceed deck size"))
	}
	if s.ColoredSources > s.TotalLands {
		errs = append(errs, errors.New("colored sources cannot exceed total lands"))
	}
	if s.Turn < 1 || s.Turn > MaxTurn {
		errs = append(errs, fmt.Errorf("turn must be between 1 and %d", MaxTurn))
	}
	if s.ColoredNeeded > s.Turn {
		errs = append(errs, errors.New("colored mana needed cannot exceed turn requirement"))
	}
	if s.Trials < 1 {
		errs = append(errs, errors.New("trials must be >= 1"))
	}
	if _, err := ParseMulliganVariant(string(s.Mulligan)); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(errs...))
	}
	return nil
}

// Config turns the scenario into a deck of white sources, colorless
// lands and filler, and a cost of ColoredNeeded white pips plus generic
// mana up to Turn.
func (s Scenario) Config() (Config, error) {
	if err := s.Validate(); err != nil {
		return Config{}, err
	}
	var lands []Land
	if s.ColoredSources > 0 {
		lands = append(lands, Land{Name: "Colored Source", Colors: []string{"W"}, Quantity: s.ColoredSources})
	}
	if other := s.TotalLands - s.ColoredSources; other > 0 {
		lands = append(lands, Land{Name: "Other Land", Colors: []string{"C"}, Quantity: other})
	}
	deck, err := BuildDeck(lands, nil, s.DeckSize)
	if err != nil {
		return Config{}, err
	}
	req := mana.Requirement{Generic: s.Turn - s.ColoredNeeded}
	req.Pips[mana.White] = s.ColoredNeeded

	mulligan, _ := ParseMulliganVariant(string(s.Mulligan))
	return Config{
		Deck:        deck,
		Requirement: req,
		Turn:        s.Turn,
		Mulligan:    mulligan,
		TappedDelay: s.TappedDelay,
	}, nil
}

// RunScenario validates the scenario and runs it. Invalid scenarios run
// zero trials.
func RunScenario(ctx context.Context, s Scenario, opts RunOptions) (Result, error) {
	cfg, err := s.Config()
	if err != nil {
		return Result{}, err
	}
	return Run(ctx, cfg, s.Trials, opts)
}
