// Package report renders simulation results as the human-readable text
// appended to results files, and reads analysis files back.
package report

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Ellipz/ManaSourceCalc/internal/mana"
	"github.com/Ellipz/ManaSourceCalc/internal/sim"
)

const timeLayout = "2006-01-02 15:04:05"

var printer = message.NewPrinter(language.English)

// Scenario writes the header and breakdown for one aggregate run.
func Scenario(w io.Writer, at time.Time, s sim.Scenario, r sim.Result) error {
	var b strings.Builder
	printer.Fprintf(&b, "\n\n===== Simulation Results (%s) =====\n", at.Format(timeLayout))
	printer.Fprintf(&b, "Deck Size: %d\n", s.DeckSize)
	printer.Fprintf(&b, "Total Lands: %d\n", s.TotalLands)
	printer.Fprintf(&b, "Colored Sources: %d\n", s.ColoredSources)
	printer.Fprintf(&b, "Target Turn: %d\n", s.Turn)
	printer.Fprintf(&b, "Colored Mana Needed: %d\n", s.ColoredNeeded)
	printer.Fprintf(&b, "Simulations: %d\n", s.Trials)
	if s.Mulligan != "" && s.Mulligan != sim.MulliganBottom {
		printer.Fprintf(&b, "Mulligan: %s\n", s.Mulligan)
	}
	if s.TappedDelay {
		b.WriteString("Tapped Lands Delayed: yes\n")
	}
	b.WriteString("\n")
	printer.Fprintf(&b, "Success Rate: %.2f%%\n", r.SuccessRate())
	b.WriteString("Breakdown:\n")
	for _, line := range []struct {
		label string
		o     sim.Outcome
	}{
		{"Able to cast", sim.Success},
		{"Wrong colors", sim.ColorFailure},
		{"Not enough lands", sim.InsufficientLands},
	} {
		printer.Fprintf(&b, "- %s: %d (%.1f%%)\n", line.label, r.Count(line.o), r.Share(line.o))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// AppendScenario appends a scenario report to the file at path.
func AppendScenario(path string, at time.Time, s sim.Scenario, r sim.Result) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}
	if err := Scenario(f, at, s, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

// Analysis writes the per-spell castability report for a deck. Spells are
// listed in deck order whatever order results come in.
func Analysis(w io.Writer, at time.Time, deck *sim.Deck, results []sim.SpellResult) error {
	var b strings.Builder
	src := deck.ColorSources()
	fmt.Fprintf(&b, "Mana Base Analysis Report - %s\n", at.Format(timeLayout))
	fmt.Fprintf(&b, "Total Lands: %d\n", deck.LandCount())
	b.WriteString("Color Sources:\n")
	for _, c := range []struct {
		name  string
		color mana.Color
	}{
		{"White", mana.White},
		{"Blue", mana.Blue},
		{"Black", mana.Black},
		{"Red", mana.Red},
		{"Green", mana.Green},
	} {
		fmt.Fprintf(&b, "- %s: %d\n", c.name, src.Of(c.color))
	}
	if src.C > 0 {
		fmt.Fprintf(&b, "- Colorless: %d\n", src.C)
	}
	b.WriteString("\nCasting Probabilities:\n")
	ordered := slices.Clone(results)
	slices.SortStableFunc(ordered, func(x, y sim.SpellResult) int { return cmp.Compare(x.Index, y.Index) })
	for _, r := range ordered {
		fmt.Fprintf(&b, "%s (Turn %d): %.1f%%\n", r.Name, r.Turn, r.Probability*100)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteAnalysis replaces the file at path with an analysis report.
func WriteAnalysis(path string, at time.Time, deck *sim.Deck, results []sim.SpellResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create analysis: %w", err)
	}
	if err := Analysis(f, at, deck, results); err != nil {
		_ = f.Close()
		return fmt.Errorf("write analysis: %w", err)
	}
	return f.Close()
}

// Line is one spell entry read back from an analysis report.
type Line struct {
	Name        string
	Turn        int
	Probability float64 // 0..1
}

var lineRE = regexp.MustCompile(`^(.+) \(Turn (\d+)\): (\d+(?:\.\d+)?)%$`)

// ParseAnalysis reads the spell lines of an analysis report. Other lines
// are skipped.
func ParseAnalysis(r io.Reader) ([]Line, error) {
	var out []Line
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		m := lineRE.FindStringSubmatch(strings.TrimSpace(sc.Text()))
		if m == nil {
			continue
		}
		turn, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		pct, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}
		out = append(out, Line{Name: m[1], Turn: turn, Probability: pct / 100})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	return out, nil
}
