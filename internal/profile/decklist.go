package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Ellipz/ManaSourceCalc/internal/sim"
)

// DeckList is the on-disk form of a deck: already-resolved card records.
type DeckList struct {
	Name   string      `yaml:"name,omitempty" json:"name,omitempty"`
	Size   int         `yaml:"size" json:"size"`
	Lands  []sim.Land  `yaml:"lands" json:"lands"`
	Spells []sim.Spell `yaml:"spells" json:"spells"`
}

// Build validates the list and returns the engine's deck.
func (l DeckList) Build() (*sim.Deck, error) {
	size := l.Size
	if size == 0 {
		size = 60
	}
	return sim.BuildDeck(l.Lands, l.Spells, size)
}

// ReadDeckList decodes a YAML (or JSON) deck list file.
func ReadDeckList(path string) (DeckList, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return DeckList{}, fmt.Errorf("read deck list: %w", err)
	}
	var l DeckList
	if err := yaml.Unmarshal(b, &l); err != nil {
		return DeckList{}, fmt.Errorf("decode deck list %s: %w", path, err)
	}
	return l, nil
}

// LoadDeck reads and builds a deck list file.
func LoadDeck(path string) (*sim.Deck, error) {
	l, err := ReadDeckList(path)
	if err != nil {
		return nil, err
	}
	return l.Build()
}
