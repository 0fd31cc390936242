package sim

import (
	"fmt"
	"strings"
)

// MulliganVariant selects the mulligan rules.
type MulliganVariant string

const (
	// Every mulligan draws a fresh seven and puts cards on the bottom.
	// Commander decks also get a free first mulligan.
	MulliganBottom MulliganVariant = "bottom"
	// Every mulligan draws one card fewer; no cards go to the bottom.
	MulliganShrink MulliganVariant = "shrink"
)

// ParseMulliganVariant accepts "bottom", "shrink" or "" (bottom).
func ParseMulliganVariant(s string) (MulliganVariant, error) {
	switch v := MulliganVariant(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return MulliganBottom, nil
	case MulliganBottom, MulliganShrink:
		return v, nil
	}
	return "", fmt.Errorf("unknown mulligan variant %q (want bottom or shrink)", s)
}

// MulliganState is a step of the mulligan state machine. States are
// entered in order until a hand is kept; MulliganTo4 always keeps.
type MulliganState int

const (
	MulliganFree MulliganState = iota // commander only, no penalty
	MulliganTo7
	MulliganTo6
	MulliganTo5
	MulliganTo4
)

// HandSize is the number of cards kept in this state.
func (s MulliganState) HandSize() int {
	switch s {
	case MulliganFree, MulliganTo7:
		return 7
	case MulliganTo6:
		return 6
	case MulliganTo5:
		return 5
	}
	return 4
}

// Final reports whether the state keeps unconditionally.
func (s MulliganState) Final() bool { return s >= MulliganTo4 }

func (s MulliganState) String() string {
	if s == MulliganFree {
		return "free"
	}
	return fmt.Sprintf("keep%d", s.HandSize())
}

func inRange(n, lo, hi int) bool { return lo <= n && n <= hi }

// mulligan runs the state machine for the configured variant and leaves
// the kept hand in t. It always terminates in a kept hand.
func (t *trial) mulligan() MulliganState {
	state := MulliganTo7
	if t.cfg.Mulligan != MulliganShrink && t.cfg.Deck.Commander() {
		state = MulliganFree
	}
	for {
		var keep bool
		if t.cfg.Mulligan == MulliganShrink {
			keep = t.shrinkStep(state)
		} else {
			keep = t.bottomStep(state)
		}
		if keep || state.Final() {
			return state
		}
		state++
	}
}

// bottomStep draws seven and decides; on 6/5/4 it first bottoms 7-k cards.
func (t *trial) bottomStep(state MulliganState) bool {
	t.newHand(7)
	lands := len(t.hand)
	switch state {
	case MulliganFree:
		return inRange(lands, 3, 5)
	case MulliganTo7:
		return inRange(lands, 2, 5)
	}

	// Non-lands go to the bottom while more than 4-n remain (3 at six
	// cards, 2 at five, 1 at four); lands fill the rest of the n slots.
	n := 7 - state.HandSize()
	spells := t.spells - (4 - n)
	if spells < 0 {
		spells = 0
	}
	if spells > n {
		spells = n
	}
	t.bottomSpells(spells)
	t.bottomLands(n - spells)
	if state.Final() {
		return true
	}
	return inRange(len(t.hand), 2, 4)
}

// shrinkStep draws k cards and keeps a hand with 2 to 5 lands.
func (t *trial) shrinkStep(state MulliganState) bool {
	t.newHand(state.HandSize())
	return inRange(len(t.hand), 2, 5)
}

func (t *trial) bottomSpells(n int) {
	for i := 0; i < n && t.spells > 0; i++ {
		t.spells--
		t.bottom = append(t.bottom, Card{})
	}
}

// bottomLands puts n lands on the bottom, least useful first: lands
// without colored mana, then lands adding the fewest wanted colors.
func (t *trial) bottomLands(n int) {
	for ; n > 0 && len(t.hand) > 0; n-- {
		worst, worstScore := 0, 1<<30
		for i, c := range t.hand {
			score := -1
			if c.Colors.Colored() {
				score = (c.Colors & t.wants).Count()
			}
			if score < worstScore {
				worst, worstScore = i, score
			}
		}
		t.bottom = append(t.bottom, t.hand[worst])
		t.hand = append(t.hand[:worst], t.hand[worst+1:]...)
	}
}
