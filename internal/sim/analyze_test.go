package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ellipz/ManaSourceCalc/internal/mana"
)

func TestAnalyze(t *testing.T) {
	lands := []Land{
		{Name: "Plains", Colors: []string{"W"}, Quantity: 12},
		{Name: "Island", Colors: []string{"U"}, Quantity: 12},
	}
	spells := []Spell{
		{Name: "Wrath of God", ManaCost: "{2}{W}{W}", Quantity: 4},
		{Name: "Counterspell", ManaCost: "{U}{U}", Quantity: 4},
		{Name: "Azorius Charm", ManaCost: "{W}{U}", Quantity: 4},
		{Name: "Godless Shrine Spell", ManaCost: "{W/U}", Quantity: 4},
		{Name: "Glasspool Mimic", ManaCost: "{2}{U}", Quantity: 2, AlternateFace: true},
		{Name: "Force of Will", ManaCost: "{3}{U}{U}{U/P}", Quantity: 1},
	}
	deck, err := BuildDeck(lands, spells, 60)
	require.NoError(t, err)

	var seen []string
	results, err := Analyze(context.Background(), deck, AnalyzeOptions{
		Trials:   5000,
		Run:      RunOptions{Workers: 2, Seed: 5},
		Progress: func(r SpellResult) { seen = append(seen, r.Name) },
	})
	require.NoError(t, err)
	require.Len(t, results, 5)
	assert.Len(t, seen, 5)
	assert.NotContains(t, seen, "Glasspool Mimic")

	turns, index := map[string]int{}, map[string]int{}
	for i, r := range results {
		turns[r.Name] = r.Turn
		index[r.Name] = r.Index
		assert.GreaterOrEqual(t, r.Probability, 0.0)
		assert.LessOrEqual(t, r.Probability, 1.0)
		assert.Equal(t, 5000, r.Result.Trials)
		if i > 0 {
			assert.LessOrEqual(t, r.Probability, results[i-1].Probability)
		}
	}
	assert.Equal(t, 4, turns["Wrath of God"])
	assert.Equal(t, 2, turns["Counterspell"])
	assert.Equal(t, 1, turns["Godless Shrine Spell"])
	assert.Equal(t, 6, turns["Force of Will"])
	assert.Equal(t, 0, index["Wrath of God"])
	assert.Equal(t, 5, index["Force of Will"])
}

func TestAnalyzeRejectsHugeManaValue(t *testing.T) {
	deck, err := BuildDeck(
		[]Land{{Name: "Wastes", Colors: []string{"C"}, Quantity: 20}},
		[]Spell{{Name: "Impossible", ManaCost: "{1000000000}", Quantity: 1}},
		60)
	require.NoError(t, err)

	_, err = Analyze(context.Background(), deck, AnalyzeOptions{Trials: 10})
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), `"Impossible"`)
}

func TestSpellTurn(t *testing.T) {
	assert.Equal(t, 1, SpellTurn(mana.Parse("")))
	assert.Equal(t, 1, SpellTurn(mana.Parse("{X}")))
	assert.Equal(t, 3, SpellTurn(mana.Parse("{1}{B}{B}")))
}
