package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Theme maps marker tags and tree elements to terminal colors. It is
// resolved once at startup and treated as read-only afterwards.
type Theme struct {
	Directory string            `yaml:"directory"`
	File      string            `yaml:"file"`
	Symlink   string            `yaml:"symlink"`
	Match     string            `yaml:"match"`
	Label     string            `yaml:"label"`
	Number    string            `yaml:"number"`
	Meta      string            `yaml:"meta"`
	Markers   map[string]string `yaml:"markers"`
}

func DefaultTheme() *Theme {
	return &Theme{
		Directory: "39",
		File:      "252",
		Symlink:   "141",
		Match:     "214",
		Label:     "212",
		Number:    "63",
		Meta:      "241",
		Markers: map[string]string{
			"M": "214",
			"A": "40",
			"D": "196",
			"R": "45",
			"C": "45",
			"U": "201",
			"?": "244",
			"*": "40",
		},
	}
}

// LoadTheme reads a YAML theme file. Keys left out of the file keep their
// default colors; a missing file yields DefaultTheme.
func LoadTheme(path string) (*Theme, error) {
	theme := DefaultTheme()
	if path == "" {
		return theme, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return theme, nil
		}
		return nil, err
	}

	var override Theme
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}

	theme.merge(&override)
	return theme, nil
}

func (t *Theme) merge(o *Theme) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&t.Directory, o.Directory)
	set(&t.File, o.File)
	set(&t.Symlink, o.Symlink)
	set(&t.Match, o.Match)
	set(&t.Label, o.Label)
	set(&t.Number, o.Number)
	set(&t.Meta, o.Meta)
	for tag, color := range o.Markers {
		t.Markers[tag] = color
	}
}

// MarkerColor returns the color for a marker tag, or "" when none is set.
func (t *Theme) MarkerColor(tag string) string {
	return t.Markers[tag]
}
