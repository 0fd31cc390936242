// types.go
package profile

// Raw config loaded from YAML; every field optional so layers can merge.
type RawConfig struct {
	Version string     `yaml:"version"`
	Deck    DeckConfig `yaml:"deck"`
	Cast    CastConfig `yaml:"cast"`
	Sim     *SimConfig `yaml:"sim,omitempty"`
	Notes   string     `yaml:"notes,omitempty"`
}

type DeckConfig struct {
	Size           *int   `yaml:"size"`
	Lands          *int   `yaml:"lands"`
	ColoredSources *int   `yaml:"colored_sources"`
	List           string `yaml:"list,omitempty"` // deck list file, relative to the config dir
}

type CastConfig struct {
	Turn          *int `yaml:"turn"`
	ColoredNeeded *int `yaml:"colored_needed"`
}

type SimConfig struct {
	Trials      *int    `yaml:"trials"`
	Mulligan    string  `yaml:"mulligan,omitempty"` // "bottom" | "shrink"
	TappedDelay *bool   `yaml:"tapped_delay,omitempty"`
	Workers     *int    `yaml:"workers,omitempty"`
	Seed        *uint64 `yaml:"seed,omitempty"`
}

// Overrides carry per-request values applied on top of the merged files.
type Overrides struct {
	DeckSize       *int
	Lands          *int
	ColoredSources *int
	Turn           *int
	ColoredNeeded  *int
	Trials         *int
	Mulligan       *string
	TappedDelay    *bool
	Workers        *int
	Seed           *uint64
}
