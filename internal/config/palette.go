package config

import (
	"fmt"
	"image/color"
	"regexp"

	"charm.land/lipgloss/v2"
)

// PaletteConfig holds the menu colors as hex strings ("#071b0f") or ANSI
// color numbers ("81").
type PaletteConfig struct {
	Background  string `yaml:"background" toml:"background" json:"background"`
	Tile        string `yaml:"tile" toml:"tile" json:"tile"`
	Placeholder string `yaml:"placeholder" toml:"placeholder" json:"placeholder"`
	Label       string `yaml:"label" toml:"label" json:"label"`
	Border      string `yaml:"border" toml:"border" json:"border"`
	Status      string `yaml:"status" toml:"status" json:"status"`
}

// Colors is a parsed palette.
type Colors struct {
	Background  color.RGBA
	Tile        color.RGBA
	Placeholder color.RGBA
	Label       color.RGBA
	Border      color.RGBA
	Status      color.RGBA
}

var colorSpec = regexp.MustCompile(`^(#[0-9a-fA-F]{6}|[0-9]{1,3})$`)

// ParseColor converts a palette entry to an opaque RGBA color.
func ParseColor(s string) (color.RGBA, error) {
	if !colorSpec.MatchString(s) {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	c := color.RGBAModel.Convert(lipgloss.Color(s)).(color.RGBA)
	c.A = 0xff
	return c, nil
}

// Colors parses every palette entry.
func (p PaletteConfig) Colors() (Colors, error) {
	var out Colors
	for _, f := range []struct {
		name string
		in   string
		out  *color.RGBA
	}{
		{"background", p.Background, &out.Background},
		{"tile", p.Tile, &out.Tile},
		{"placeholder", p.Placeholder, &out.Placeholder},
		{"label", p.Label, &out.Label},
		{"border", p.Border, &out.Border},
		{"status", p.Status, &out.Status},
	} {
		c, err := ParseColor(f.in)
		if err != nil {
			return Colors{}, fmt.Errorf("palette.%s: %w", f.name, err)
		}
		*f.out = c
	}
	return out, nil
}
