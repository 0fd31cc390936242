package sim

import (
	"github.com/Ellipz/ManaSourceCalc/internal/mana"
)

// Config describes what a simulation measures: can Requirement be paid
// from lands in play on Turn.
type Config struct {
	Deck        *Deck
	Requirement mana.Requirement
	Turn        int
	Mulligan    MulliganVariant
	// TappedDelay makes a tapped land played on the target turn unusable
	// that turn. Off by default, matching historical reports.
	TappedDelay bool
}

// Board is the state of play on the target turn.
type Board struct {
	Lands   int          // lands in play
	Usable  int          // lands that can tap for mana this turn
	Sources mana.Sources // colors available from usable lands
	// Mana holds the colors of each usable land, in play order. It aliases
	// the trial's buffer and is only valid until the next game.
	Mana []mana.ColorSet
}

// trial holds the per-worker scratch for one game. Nothing survives
// between games except the allocated buffers.
type trial struct {
	cfg   Config
	wants mana.ColorSet
	payer *mana.Payer
	depth int // library prefix that is ever drawn
	rng   RandomSource

	lib    []Card
	pos    int
	bottom []Card

	hand   []Card // lands in hand, draw order
	spells int    // non-land cards in hand
	played []mana.ColorSet
}

func newTrial(cfg Config, rng RandomSource) *trial {
	lib := append([]Card(nil), cfg.Deck.cards...)
	return &trial{
		cfg:    cfg,
		wants:  cfg.Requirement.Wants(),
		payer:  mana.NewPayer(cfg.Requirement),
		depth:  7 + cfg.Turn,
		rng:    rng,
		lib:    lib,
		bottom: make([]Card, 0, 7),
		hand:   make([]Card, 0, 7+cfg.Turn),
		played: make([]mana.ColorSet, 0, cfg.Turn),
	}
}

// newHand shuffles the whole library back together and draws size cards.
func (t *trial) newHand(size int) {
	shuffleTop(t.lib, t.depth, t.rng)
	t.pos = 0
	t.bottom = t.bottom[:0]
	t.hand = t.hand[:0]
	t.spells = 0
	for i := 0; i < size; i++ {
		t.drawToHand()
	}
}

// draw takes the top card: the library first, then cards put on the bottom.
func (t *trial) draw() (Card, bool) {
	if t.pos < len(t.lib) {
		c := t.lib[t.pos]
		t.pos++
		return c, true
	}
	if i := t.pos - len(t.lib); i < len(t.bottom) {
		t.pos++
		return t.bottom[i], true
	}
	return Card{}, false
}

func (t *trial) drawToHand() {
	c, ok := t.draw()
	if !ok {
		return
	}
	if c.Land {
		t.hand = append(t.hand, c)
	} else {
		t.spells++
	}
}

// play runs turns 1..Turn from the kept hand, one land drop per turn.
func (t *trial) play() Board {
	if t.cfg.Deck.Commander() {
		t.drawToHand()
	}
	t.played = t.played[:0]
	var b Board
	for turn := 1; turn <= t.cfg.Turn; turn++ {
		if turn >= 2 {
			t.drawToHand()
		}
		if len(t.hand) == 0 {
			continue
		}
		last := turn == t.cfg.Turn
		i := t.pickLand(last)
		land := t.hand[i]
		t.hand = append(t.hand[:i], t.hand[i+1:]...)

		b.Lands++
		if t.unusable(land, last) {
			continue
		}
		b.Usable++
		b.Sources.Add(land.Colors)
		t.played = append(t.played, land.Colors)
	}
	b.Mana = t.played
	return b
}

// unusable reports a tapped land played on the target turn under the delay.
func (t *trial) unusable(c Card, last bool) bool {
	return last && c.Tapped && t.cfg.TappedDelay
}

// pickLand returns the hand index of the land to play this turn.
//
// With the tapped delay, tapped lands go down early and an untapped land
// is saved for the target turn. After that a land that pays one more
// colored symbol of the requirement wins, then the land making the most
// wanted colors. Ties keep draw order, and lands making none of the
// wanted colors go last.
func (t *trial) pickLand(last bool) int {
	base, need := 0, t.payer.Slots()
	if need > 0 {
		base = t.payer.Matched(t.played)
	}
	best, bestKey := 0, -1
	for i, c := range t.hand {
		key := (c.Colors & t.wants).Count()
		if base < need && !t.unusable(c, last) {
			t.played = append(t.played, c.Colors)
			if t.payer.Matched(t.played) > base {
				key += 1 << 3
			}
			t.played = t.played[:len(t.played)-1]
		}
		if t.cfg.TappedDelay && c.Tapped != last {
			key += 1 << 4
		}
		if key > bestKey {
			best, bestKey = i, key
		}
	}
	return best
}

// run plays one full game and classifies it.
func (t *trial) run() Outcome {
	t.mulligan()
	return classify(t.play(), t.payer, t.cfg.Turn)
}
