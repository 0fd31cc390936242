package sim

import "github.com/Ellipz/ManaSourceCalc/internal/mana"

// Outcome classifies one game.
type Outcome int

const (
	Success           Outcome = iota
	ColorFailure              // enough lands, a required color is missing
	InsufficientLands         // fewer usable lands than the target turn
)

// Outcomes lists every outcome in report order.
func Outcomes() []Outcome {
	return []Outcome{Success, ColorFailure, InsufficientLands}
}

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case ColorFailure:
		return "color_failure"
	case InsufficientLands:
		return "not_enough_lands"
	default:
		return "unknown"
	}
}

// Evaluate classifies a board against a requirement on the target turn.
// Each usable land in b.Mana pays for at most one colored symbol.
func Evaluate(b Board, req mana.Requirement, turn int) Outcome {
	return classify(b, mana.NewPayer(req), turn)
}

func classify(b Board, p *mana.Payer, turn int) Outcome {
	if b.Usable < turn {
		return InsufficientLands
	}
	if !p.CanPay(b.Mana) {
		return ColorFailure
	}
	return Success
}

// Result counts outcomes over a batch of trials.
type Result struct {
	Trials            int `json:"trials"`
	Success           int `json:"success"`
	ColorFailure      int `json:"color_failure"`
	InsufficientLands int `json:"not_enough_lands"`
}

func (r *Result) add(o Outcome) {
	r.Trials++
	switch o {
	case Success:
		r.Success++
	case ColorFailure:
		r.ColorFailure++
	case InsufficientLands:
		r.InsufficientLands++
	}
}

// Merge sums another batch into r.
func (r *Result) Merge(o Result) {
	r.Trials += o.Trials
	r.Success += o.Success
	r.ColorFailure += o.ColorFailure
	r.InsufficientLands += o.InsufficientLands
}

// Count returns the number of trials that ended in o.
func (r Result) Count(o Outcome) int {
	switch o {
	case Success:
		return r.Success
	case ColorFailure:
		return r.ColorFailure
	case InsufficientLands:
		return r.InsufficientLands
	}
	return 0
}

// SuccessRate is the percentage of successes among games that had enough
// lands. Games short on lands are left out; it is 0 when none qualify.
func (r Result) SuccessRate() float64 {
	relevant := r.Success + r.ColorFailure
	if relevant == 0 {
		return 0
	}
	return float64(r.Success) / float64(relevant) * 100
}

// Share is the percentage of all trials that ended in o.
func (r Result) Share(o Outcome) float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Count(o)) / float64(r.Trials) * 100
}

// Probability is the fraction of all trials that succeeded.
func (r Result) Probability() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Success) / float64(r.Trials)
}
