package mana

import "strings"

// Color is one of the five colors of mana.
type Color uint8

const (
	White Color = iota
	Blue
	Black
	Red
	Green
)

// NumColors is the size of the closed color set.
const NumColors = 5

var colorSymbols = [NumColors]byte{'W', 'U', 'B', 'R', 'G'}

// Colors lists every color in WUBRG order.
func Colors() [NumColors]Color {
	return [NumColors]Color{White, Blue, Black, Red, Green}
}

func (c Color) String() string {
	if int(c) >= NumColors {
		return "?"
	}
	return string(colorSymbols[c])
}

// ParseColor maps a color letter (W, U, B, R, G) to its Color.
func ParseColor(s string) (Color, bool) {
	if len(s) != 1 {
		return 0, false
	}
	switch s[0] {
	case 'W', 'w':
		return White, true
	case 'U', 'u':
		return Blue, true
	case 'B', 'b':
		return Black, true
	case 'R', 'r':
		return Red, true
	case 'G', 'g':
		return Green, true
	}
	return 0, false
}

// ColorSet is a bitmask of colors a source can produce.
// The Colorless bit marks sources that add colorless mana.
type ColorSet uint8

const Colorless ColorSet = 1 << NumColors

const allColors ColorSet = 1<<NumColors - 1

// SetOf builds a ColorSet from colors.
func SetOf(colors ...Color) ColorSet {
	var s ColorSet
	for _, c := range colors {
		s |= 1 << c
	}
	return s
}

// ParseColorSet reads produced-mana symbols such as ["W", "U"] or ["C"].
// Unknown symbols are ignored.
func ParseColorSet(symbols []string) ColorSet {
	var s ColorSet
	for _, sym := range symbols {
		sym = strings.TrimSpace(sym)
		if strings.EqualFold(sym, "C") {
			s |= Colorless
			continue
		}
		if c, ok := ParseColor(sym); ok {
			s |= 1 << c
		}
	}
	return s
}

// Has reports whether the set contains c.
func (s ColorSet) Has(c Color) bool { return s&(1<<c) != 0 }

// Colored reports whether the set contains any of the five colors.
func (s ColorSet) Colored() bool { return s&allColors != 0 }

// Count returns the number of colors in the set, ignoring Colorless.
func (s ColorSet) Count() int {
	n := 0
	for v := s & allColors; v != 0; v &= v - 1 {
		n++
	}
	return n
}

func (s ColorSet) String() string {
	var b strings.Builder
	for _, c := range Colors() {
		if s.Has(c) {
			b.WriteString(c.String())
		}
	}
	if s&Colorless != 0 {
		b.WriteByte('C')
	}
	return b.String()
}
