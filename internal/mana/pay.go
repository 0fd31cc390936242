package mana

// Payer decides whether a set of lands can pay the colored symbols of one
// requirement. Every land taps for a single mana, so it pays at most one
// pip or hybrid symbol; the check is a bipartite matching between lands
// and symbols. A Payer keeps its buffers between calls and is not safe for
// concurrent use.
type Payer struct {
	slots []ColorSet // one per pip, then one per hybrid symbol

	lands []ColorSet
	owner []int // slot paid by each land, -1 when free
	seen  []bool
}

// NewPayer prepares a matcher for req. Generic mana is not its concern.
func NewPayer(req Requirement) *Payer {
	p := &Payer{}
	for _, c := range Colors() {
		for i := 0; i < req.Pips[c]; i++ {
			p.slots = append(p.slots, SetOf(c))
		}
	}
	for _, g := range req.Hybrid {
		p.slots = append(p.slots, g&allColors)
	}
	return p
}

// Slots is the number of colored symbols in the requirement.
func (p *Payer) Slots() int { return len(p.slots) }

// CanPay reports whether lands cover every colored symbol at once.
func (p *Payer) CanPay(lands []ColorSet) bool {
	if len(p.slots) > len(lands) {
		return false
	}
	return p.match(lands, true) == len(p.slots)
}

// Matched returns the largest number of colored symbols lands can pay
// together.
func (p *Payer) Matched(lands []ColorSet) int {
	return p.match(lands, false)
}

func (p *Payer) match(lands []ColorSet, stopOnMiss bool) int {
	if len(p.slots) == 0 {
		return 0
	}
	p.lands = lands
	if cap(p.owner) < len(lands) {
		p.owner = make([]int, len(lands))
		p.seen = make([]bool, len(lands))
	}
	p.owner = p.owner[:len(lands)]
	p.seen = p.seen[:len(lands)]
	for i := range p.owner {
		p.owner[i] = -1
	}

	n := 0
	for s := range p.slots {
		clear(p.seen)
		if p.augment(s) {
			n++
		} else if stopOnMiss {
			break
		}
	}
	p.lands = nil
	return n
}

// augment finds a land for slot s, moving earlier assignments along an
// alternating path when needed.
func (p *Payer) augment(s int) bool {
	for i, land := range p.lands {
		if p.seen[i] || land&p.slots[s] == 0 {
			continue
		}
		p.seen[i] = true
		if p.owner[i] < 0 || p.augment(p.owner[i]) {
			p.owner[i] = s
			return true
		}
	}
	return false
}

// CanPay reports whether lands, each tapped for one mana, can pay the
// colored part of req.
func CanPay(lands []ColorSet, req Requirement) bool {
	return NewPayer(req).CanPay(lands)
}
