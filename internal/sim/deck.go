package sim

import (
	"errors"
	"fmt"

	"github.com/Ellipz/ManaSourceCalc/internal/mana"
)

var ErrInvalidDeck = errors.New("invalid deck")

// CommanderDeckSize is the deck size that selects commander rules: a free
// first mulligan and an extra draw before turn 2.
const CommanderDeckSize = 99

// Spell is a non-land deck entry.
type Spell struct {
	Name     string `json:"name" yaml:"name"`
	ManaCost string `json:"mana_cost" yaml:"mana_cost"`
	Quantity int    `json:"quantity" yaml:"quantity"`
	// AlternateFace marks the spell face of a card whose other face is a
	// land. Such spells are neither counted nor analyzed; the land face is.
	AlternateFace bool `json:"alternate_face,omitempty" yaml:"alternate_face,omitempty"`
}

// Land is a mana-producing deck entry.
type Land struct {
	Name          string   `json:"name" yaml:"name"`
	Colors        []string `json:"colors" yaml:"colors"` // produced mana, e.g. ["W","U"] or ["C"]
	EntersTapped  bool     `json:"enters_tapped,omitempty" yaml:"enters_tapped,omitempty"`
	Quantity      int      `json:"quantity" yaml:"quantity"`
	AlternateFace bool     `json:"alternate_face,omitempty" yaml:"alternate_face,omitempty"`
}

// Card is one draw from the library. Non-land cards are interchangeable.
type Card struct {
	Land   bool
	Colors mana.ColorSet
	Tapped bool
}

// Deck is the composition one simulation draws from.
type Deck struct {
	Size   int
	Spells []Spell
	Lands  []Land

	cards []Card // lands first, then non-land filler
}

// BuildDeck validates the entries and materializes the card multiset.
// Slots not covered by lands are filled with non-land cards.
func BuildDeck(lands []Land, spells []Spell, size int) (*Deck, error) {
	d := &Deck{Size: size, Spells: spells, Lands: lands}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d.cards = make([]Card, 0, size)
	for _, l := range lands {
		c := Card{Land: true, Colors: mana.ParseColorSet(l.Colors), Tapped: l.EntersTapped}
		for i := 0; i < l.Quantity; i++ {
			d.cards = append(d.cards, c)
		}
	}
	for len(d.cards) < size {
		d.cards = append(d.cards, Card{})
	}
	return d, nil
}

// Validate checks quantities against the declared size.
func (d *Deck) Validate() error {
	var errs []error
	if d.Size < MinDeckSize {
		errs = append(errs, fmt.Errorf("deck size %d is below %d", d.Size, MinDeckSize))
	}
	if d.Size > MaxDeckSize {
		errs = append(errs, fmt.Errorf("deck size %d is above %d", d.Size, MaxDeckSize))
	}
	// quantities are bounded one by one so the total cannot overflow
	total := 0
	for _, l := range d.Lands {
		if l.Quantity < 1 || l.Quantity > MaxDeckSize {
			errs = append(errs, fmt.Errorf("land %q: quantity must be between 1 and %d", l.Name, MaxDeckSize))
			continue
		}
		total += l.Quantity
	}
	for _, s := range d.Spells {
		if s.Quantity < 1 || s.Quantity > MaxDeckSize {
			errs = append(errs, fmt.Errorf("spell %q: quantity must be between 1 and %d", s.Name, MaxDeckSize))
			continue
		}
		if !s.AlternateFace {
			total += s.Quantity
		}
	}
	if total > d.Size {
		errs = append(errs, fmt.Errorf("%d cards listed but deck size is %d", total, d.Size))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDeck, errors.Join(errs...))
	}
	return nil
}

// LandCount returns the number of land cards in the deck.
func (d *Deck) LandCount() int {
	n := 0
	for _, l := range d.Lands {
		n += l.Quantity
	}
	return n
}

// ColorSources counts land cards able to produce each color.
func (d *Deck) ColorSources() mana.Sources {
	var s mana.Sources
	for _, l := range d.Lands {
		set := mana.ParseColorSet(l.Colors)
		for i := 0; i < l.Quantity; i++ {
			s.Add(set)
		}
	}
	return s
}

// Commander reports whether the deck plays under commander rules.
func (d *Deck) Commander() bool { return d.Size == CommanderDeckSize }

// Shuffled returns a fresh, uniformly shuffled draw order.
func (d *Deck) Shuffled(rng RandomSource) []Card {
	out := append([]Card(nil), d.cards...)
	shuffleTop(out, len(out), rng)
	return out
}
