package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ellipz/ManaSourceCalc/internal/sim"
)

var at = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func TestScenarioReport(t *testing.T) {
	s := sim.Scenario{DeckSize: 60, TotalLands: 24, ColoredSources: 15, Turn: 4, ColoredNeeded: 2, Trials: 100000}
	r := sim.Result{Trials: 100000, Success: 80000, ColorFailure: 12000, InsufficientLands: 8000}

	var buf bytes.Buffer
	require.NoError(t, Scenario(&buf, at, s, r))
	out := buf.String()

	assert.Contains(t, out, "===== Simulation Results (2026-03-14 09:30:00) =====")
	assert.Contains(t, out, "Simulations: 100,000\n")
	assert.Contains(t, out, "Success Rate: 86.96%\n")
	assert.Contains(t, out, "- Able to cast: 80,000 (80.0%)\n")
	assert.Contains(t, out, "- Wrong colors: 12,000 (12.0%)\n")
	assert.Contains(t, out, "- Not enough lands: 8,000 (8.0%)\n")
	assert.NotContains(t, out, "Mulligan:")
}

func TestAppendScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ManaSimResults.txt")
	s := sim.Scenario{DeckSize: 99, TotalLands: 41, ColoredSources: 18, Turn: 3, ColoredNeeded: 1, Trials: 10}
	r := sim.Result{Trials: 10, Success: 9, ColorFailure: 1}

	require.NoError(t, AppendScenario(path, at, s, r))
	require.NoError(t, AppendScenario(path, at, s, r))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(b), "===== Simulation Results"))
}

func TestAnalysisRoundTrip(t *testing.T) {
	deck, err := sim.BuildDeck([]sim.Land{
		{Name: "Plains", Colors: []string{"W"}, Quantity: 12},
		{Name: "Wastes", Colors: []string{"C"}, Quantity: 2},
	}, nil, 60)
	require.NoError(t, err)

	results := []sim.SpellResult{
		{Name: "Thalia (Guardian of Thraben)", Turn: 2, Probability: 0.923},
		{Name: "Wrath of God", Turn: 4, Probability: 0.5},
	}
	path := filepath.Join(t.TempDir(), "analysis.txt")
	require.NoError(t, WriteAnalysis(path, at, deck, results))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "- White: 12\n")
	assert.Contains(t, string(b), "- Colorless: 2\n")

	lines, err := ParseAnalysis(bytes.NewReader(b))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Thalia (Guardian of Thraben)", lines[0].Name)
	assert.Equal(t, 2, lines[0].Turn)
	assert.InDelta(t, 0.923, lines[0].Probability, 1e-9)
	assert.InDelta(t, 0.5, lines[1].Probability, 1e-9)
}

func TestAnalysisKeepsDeckOrder(t *testing.T) {
	deck, err := sim.BuildDeck([]sim.Land{{Name: "Island", Colors: []string{"U"}, Quantity: 20}}, nil, 60)
	require.NoError(t, err)

	// sorted by probability, as the analysis returns them
	results := []sim.SpellResult{
		{Index: 2, Name: "Opt", Turn: 1, Probability: 0.97},
		{Index: 0, Name: "Cryptic Command", Turn: 4, Probability: 0.41},
		{Index: 1, Name: "Counterspell", Turn: 2, Probability: 0.38},
	}
	var buf bytes.Buffer
	require.NoError(t, Analysis(&buf, at, deck, results))

	lines, err := ParseAnalysis(&buf)
	require.NoError(t, err)
	var names []string
	for _, l := range lines {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"Cryptic Command", "Counterspell", "Opt"}, names)
	assert.Equal(t, "Opt", results[0].Name, "caller's slice is left alone")
}
