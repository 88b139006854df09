package extract

import (
	"fmt"

	"github.com/andybalholm/cascadia"

	"github.com/dgallion1/gridkit/internal/record"
)

// Selectors configures which elements open each heading level and which
// elements carry body text. Empty level selectors are skipped.
type Selectors struct {
	Lvl0 string `json:"lvl0" yaml:"lvl0" toml:"lvl0"`
	Lvl1 string `json:"lvl1" yaml:"lvl1" toml:"lvl1"`
	Lvl2 string `json:"lvl2" yaml:"lvl2" toml:"lvl2"`
	Lvl3 string `json:"lvl3" yaml:"lvl3" toml:"lvl3"`
	Lvl4 string `json:"lvl4" yaml:"lvl4" toml:"lvl4"`
	Lvl5 string `json:"lvl5" yaml:"lvl5" toml:"lvl5"`
	Text string `json:"text" yaml:"text" toml:"text"`
	// Root limits extraction to the first element it matches.
	Root string `json:"root" yaml:"root" toml:"root"`
}

// DefaultSelectors maps h1..h6 to lvl0..lvl5 and paragraph-like blocks to
// text.
func DefaultSelectors() Selectors {
	return Selectors{
		Lvl0: "h1",
		Lvl1: "h2",
		Lvl2: "h3",
		Lvl3: "h4",
		Lvl4: "h5",
		Lvl5: "h6",
		Text: "p, li, td, blockquote",
	}
}

// Levels returns the level selectors, most significant first.
func (s Selectors) Levels() [record.LevelCount]string {
	return [record.LevelCount]string{s.Lvl0, s.Lvl1, s.Lvl2, s.Lvl3, s.Lvl4, s.Lvl5}
}

// WithDefaults fills empty text and lvl0 selectors from DefaultSelectors.
func (s Selectors) WithDefaults() Selectors {
	d := DefaultSelectors()
	if s.Text == "" {
		s.Text = d.Text
	}
	if s.Lvl0 == "" && s.Lvl1 == "" && s.Lvl2 == "" && s.Lvl3 == "" && s.Lvl4 == "" && s.Lvl5 == "" {
		root := s.Root
		s = d
		s.Root = root
	}
	return s
}

type compiled struct {
	levels [record.LevelCount]cascadia.Selector
	text   cascadia.Selector
	root   cascadia.Selector
}

func compile(s Selectors) (compiled, error) {
	var c compiled
	for i, raw := range s.Levels() {
		if raw == "" {
			continue
		}
		sel, err := cascadia.Compile(raw)
		if err != nil {
			return c, fmt.Errorf("lvl%d selector %q: %w", i, raw, err)
		}
		c.levels[i] = sel
	}
	if s.Text == "" {
		return c, fmt.Errorf("text selector is required")
	}
	sel, err := cascadia.Compile(s.Text)
	if err != nil {
		return c, fmt.Errorf("text selector %q: %w", s.Text, err)
	}
	c.text = sel
	if s.Root != "" {
		sel, err := cascadia.Compile(s.Root)
		if err != nil {
			return c, fmt.Errorf("root selector %q: %w", s.Root, err)
		}
		c.root = sel
	}
	return c, nil
}
