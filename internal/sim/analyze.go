package sim

import (
	"context"
	"fmt"
	"sort"

	"github.com/Ellipz/ManaSourceCalc/internal/mana"
)

// SpellResult is the castability estimate for one spell.
type SpellResult struct {
	Index       int     `json:"index"` // position in the deck's spell list
	Name        string  `json:"name"`
	ManaCost    string  `json:"mana_cost"`
	Turn        int     `json:"turn"`
	Probability float64 `json:"probability"` // successes over all trials
	Result      Result  `json:"result"`
}

// AnalyzeOptions tunes a deck analysis.
type AnalyzeOptions struct {
	Trials      int
	Mulligan    MulliganVariant
	TappedDelay bool
	Run         RunOptions
	// Progress, if set, receives each spell's result as it completes.
	Progress func(SpellResult)
}

// DefaultAnalyzeTrials is the per-spell trial count when none is given.
const DefaultAnalyzeTrials = 10000

// SpellTurn is the turn a spell is evaluated on: its mana value, at least 1.
func SpellTurn(req mana.Requirement) int {
	return max(1, req.ManaValue())
}

// Analyze estimates, for every spell in the deck, the chance of having
// its mana on the turn matching its mana value. Spell faces of
// land/spell cards are skipped. Results are sorted by probability,
// highest first.
func Analyze(ctx context.Context, deck *Deck, opts AnalyzeOptions) ([]SpellResult, error) {
	trials := opts.Trials
	if trials <= 0 {
		trials = DefaultAnalyzeTrials
	}
	results := make([]SpellResult, 0, len(deck.Spells))
	for i, spell := range deck.Spells {
		if spell.AlternateFace {
			continue
		}
		req := mana.Parse(spell.ManaCost)
		if SpellTurn(req) > MaxTurn {
			return nil, fmt.Errorf("%w: spell %q: mana value %d is above %d",
				ErrInvalidConfig, spell.Name, req.ManaValue(), MaxTurn)
		}
		cfg := Config{
			Deck:        deck,
			Requirement: req,
			Turn:        SpellTurn(req),
			Mulligan:    opts.Mulligan,
			TappedDelay: opts.TappedDelay,
		}
		r, err := Run(ctx, cfg, trials, opts.Run)
		if err != nil {
			return nil, err
		}
		sr := SpellResult{
			Index:       i,
			Name:        spell.Name,
			ManaCost:    spell.ManaCost,
			Turn:        cfg.Turn,
			Probability: r.Probability(),
			Result:      r,
		}
		if opts.Progress != nil {
			opts.Progress(sr)
		}
		results = append(results, sr)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Probability > results[j].Probability
	})
	return results, nil
}
