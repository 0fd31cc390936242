package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidName   = errors.New("invalid scenario name")
	ErrUnknownFormat = errors.New("unknown format")
	ErrUnknownDeck   = errors.New("unknown deck")
)

// Paths helper for default/format/deck files.
type Paths struct {
	BaseDir string // base directory, e.g., /etc/manasim
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "scenarios", "default.yaml")
}
func (p Paths) FormatPath(format string) string {
	return filepath.Join(p.BaseDir, "scenarios", format+".yaml")
}
func (p Paths) DeckPath(format, deck string) string {
	return filepath.Join(p.BaseDir, "scenarios", format, "decks", deck+".yaml")
}

// Loader reads YAML scenario files and merges default → format → deck.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: "format" or "format/deck"
}

// NewLoader creates a scenario loader rooted at baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

// Paths returns the file layout the loader reads from.
func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → format → deck (deck optional).
// It returns the merged RawConfig without validation. A missing default
// file is an empty layer, while a named format or deck must exist. Only
// successful loads are cached.
func (l *Loader) LoadMerged(format, deck string) (RawConfig, error) {
	for _, name := range []string{format, deck} {
		if name != "" && !validName(name) {
			return RawConfig{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	key := format
	if deck != "" {
		key = format + "/" + deck
	}
	l.mu.RLock()
	cfg, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return cfg, nil
	}

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if format != "" {
		formatCfg, err := readYAML(l.paths.FormatPath(format))
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
		}
		if err != nil {
			return RawConfig{}, fmt.Errorf("read format %s: %w", format, err)
		}
		merged = mergeRaw(merged, formatCfg)
	}
	if deck != "" {
		deckCfg, err := readYAML(l.paths.DeckPath(format, deck))
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, fmt.Errorf("%w: %s/%s", ErrUnknownDeck, format, deck)
		}
		if err != nil {
			return RawConfig{}, fmt.Errorf("read deck %s/%s: %w", format, deck, err)
		}
		merged = mergeRaw(merged, deckCfg)
	}

	l.mu.Lock()
	l.cache[key] = merged
	l.mu.Unlock()
	return merged, nil
}

// Invalidate clears the loader's cache. Call after the watcher reports a change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// validName accepts a single path element: no separators, no "..".
func validName(name string) bool {
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..") &&
		filepath.Base(name) == name
}

// readYAML loads a YAML file into RawConfig. Missing files return an
// error matching os.ErrNotExist.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw layers b over a: every field b sets wins.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// deck
	out.Deck.Size = pick(out.Deck.Size, b.Deck.Size)
	out.Deck.Lands = pick(out.Deck.Lands, b.Deck.Lands)
	out.Deck.ColoredSources = pick(out.Deck.ColoredSources, b.Deck.ColoredSources)
	if b.Deck.List != "" {
		out.Deck.List = b.Deck.List
	}

	// cast
	out.Cast.Turn = pick(out.Cast.Turn, b.Cast.Turn)
	out.Cast.ColoredNeeded = pick(out.Cast.ColoredNeeded, b.Cast.ColoredNeeded)

	// sim
	switch {
	case out.Sim == nil && b.Sim != nil:
		c := *b.Sim
		out.Sim = &c
	case out.Sim != nil && b.Sim != nil:
		c := *out.Sim
		c.Trials = pick(c.Trials, b.Sim.Trials)
		c.TappedDelay = pick(c.TappedDelay, b.Sim.TappedDelay)
		c.Workers = pick(c.Workers, b.Sim.Workers)
		c.Seed = pick(c.Seed, b.Sim.Seed)
		if b.Sim.Mulligan != "" {
			c.Mulligan = b.Sim.Mulligan
		}
		out.Sim = &c
	}

	return out
}

func pick[T any](base, over *T) *T {
	if over != nil {
		return over
	}
	return base
}
