package mana

// Sources counts mana sources per color, plus lands that add colorless
// mana. A dual land adds one to each of its colors, so the counts describe
// a mana base but cannot decide a payment; use Payer for that.
type Sources struct {
	W, U, B, R, G int
	C             int
}

// Add records one land that can produce the colors in set.
func (s *Sources) Add(set ColorSet) {
	if set.Has(White) {
		s.W++
	}
	if set.Has(Blue) {
		s.U++
	}
	if set.Has(Black) {
		s.B++
	}
	if set.Has(Red) {
		s.R++
	}
	if set.Has(Green) {
		s.G++
	}
	if set&Colorless != 0 {
		s.C++
	}
}

// Of returns the number of sources for c.
func (s Sources) Of(c Color) int {
	switch c {
	case White:
		return s.W
	case Blue:
		return s.U
	case Black:
		return s.B
	case Red:
		return s.R
	case Green:
		return s.G
	}
	return 0
}
