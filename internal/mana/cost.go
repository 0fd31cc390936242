// Package mana parses mana costs into requirements and checks them against
// the sources a simulated hand has in play.
package mana

import (
	"strconv"
	"strings"
)

// a single generic symbol counts for at most this much
const maxGenericSymbol = 1 << 16

// Requirement is the structured form of a mana cost.
type Requirement struct {
	Generic int
	Pips    [NumColors]int
	// Hybrid holds one entry per hybrid symbol; any one color of the set pays it.
	Hybrid []ColorSet
}

// Parse turns cost text such as "{2}{W}{U/B}" into a Requirement.
//
// Parsing is permissive: text outside braces, empty symbols and symbols
// that are not recognized contribute nothing. Parse never fails.
func Parse(cost string) Requirement {
	var req Requirement
	rest := cost
	for {
		_, after, ok := strings.Cut(rest, "{")
		if !ok {
			break
		}
		sym, tail, ok := strings.Cut(after, "}")
		if !ok {
			break
		}
		rest = tail
		req.addSymbol(strings.ToUpper(strings.TrimSpace(sym)))
	}
	return req
}

func (r *Requirement) addSymbol(sym string) {
	if sym == "" {
		return
	}
	if n, err := strconv.Atoi(sym); err == nil {
		if n > 0 {
			r.Generic += min(n, maxGenericSymbol)
		}
		return
	}
	if c, ok := ParseColor(sym); ok {
		r.Pips[c]++
		return
	}
	if sym == "C" {
		r.Generic++
		return
	}
	if strings.Contains(sym, "/") {
		r.addSlashSymbol(strings.Split(sym, "/"))
	}
	// X, S and anything else: no-op.
}

func (r *Requirement) addSlashSymbol(parts []string) {
	var set ColorSet
	generic := 0
	phyrexian := false
	for _, p := range parts {
		if c, ok := ParseColor(p); ok {
			set |= SetOf(c)
			continue
		}
		if n, err := strconv.Atoi(p); err == nil && n > generic {
			generic = n
			continue
		}
		if p == "P" {
			phyrexian = true
			continue
		}
		return
	}
	switch {
	case generic > 0:
		r.Generic += min(generic, maxGenericSymbol)
	case phyrexian:
		r.Generic++
	case set.Count() >= 2:
		r.Hybrid = append(r.Hybrid, set)
	case set.Count() == 1:
		for _, c := range Colors() {
			if set.Has(c) {
				r.Pips[c]++
			}
		}
	}
}

// ManaValue is the total mana the cost asks for.
func (r Requirement) ManaValue() int {
	n := r.Generic + len(r.Hybrid)
	for _, p := range r.Pips {
		n += p
	}
	return n
}

// Colored returns the colored portion of the cost (pips plus hybrid groups).
func (r Requirement) Colored() int {
	return r.ManaValue() - r.Generic
}

// Wants returns every color the requirement can use.
func (r Requirement) Wants() ColorSet {
	var s ColorSet
	for _, c := range Colors() {
		if r.Pips[c] > 0 {
			s |= SetOf(c)
		}
	}
	for _, g := range r.Hybrid {
		s |= g & allColors
	}
	return s
}

// IsZero reports whether the requirement asks for nothing.
func (r Requirement) IsZero() bool {
	return r.ManaValue() == 0
}

func (r Requirement) String() string {
	var b strings.Builder
	if r.Generic > 0 {
		b.WriteString("{" + strconv.Itoa(r.Generic) + "}")
	}
	for _, c := range Colors() {
		for i := 0; i < r.Pips[c]; i++ {
			b.WriteString("{" + c.String() + "}")
		}
	}
	for _, g := range r.Hybrid {
		parts := make([]string, 0, g.Count())
		for _, c := range Colors() {
			if g.Has(c) {
				parts = append(parts, c.String())
			}
		}
		b.WriteString("{" + strings.Join(parts, "/") + "}")
	}
	return b.String()
}
