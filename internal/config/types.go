// Package config holds the typed tilemenu configuration and its embedded
// defaults.
package config

import "github.com/oakwood-commons/tilemenu/internal/limiter"

// Config is the full configuration. Zero-valued fields in a user file keep
// their default.
type Config struct {
	Menu    MenuConfig    `yaml:"menu" toml:"menu" json:"menu"`
	Layout  LayoutConfig  `yaml:"layout" toml:"layout" json:"layout"`
	Palette PaletteConfig `yaml:"palette" toml:"palette" json:"palette"`
	Fetch   FetchConfig   `yaml:"fetch" toml:"fetch" json:"fetch"`
	UI      UIConfig      `yaml:"ui" toml:"ui" json:"ui"`
}

// MenuConfig selects the document and how it becomes rows.
type MenuConfig struct {
	// HomeURL locates the home menu document.
	HomeURL string `yaml:"home_url" toml:"home_url" json:"home_url"`
	// RefSetURL is a text/template expanded with {{.RefID}} to locate a
	// referenced set document.
	RefSetURL string `yaml:"refset_url" toml:"refset_url" json:"refset_url"`
	// CollectionKey is the key of the standard collection in the document.
	CollectionKey string `yaml:"collection_key" toml:"collection_key" json:"collection_key"`
	ImageName     string `yaml:"image_name" toml:"image_name" json:"image_name"`
	AspectRatio   string `yaml:"aspect_ratio" toml:"aspect_ratio" json:"aspect_ratio"`
	// TilesPerRow caps the tiles of each row; 0 shows every item.
	TilesPerRow int `yaml:"tiles_per_row" toml:"tiles_per_row" json:"tiles_per_row"`
	// Rows windows the rows left after filtering.
	Rows limiter.Config `yaml:"rows" toml:"rows" json:"rows"`
	// RowFilter is an optional CEL expression deciding which rows are shown.
	RowFilter string `yaml:"row_filter" toml:"row_filter" json:"row_filter"`
	// ResolveRefSets fetches referenced sets; when false they are skipped.
	ResolveRefSets bool `yaml:"resolve_ref_sets" toml:"resolve_ref_sets" json:"resolve_ref_sets"`
	// RetryTicks is how many ticks a tile waits before re-polling a failed
	// thumbnail.
	RetryTicks int `yaml:"retry_ticks" toml:"retry_ticks" json:"retry_ticks"`
}

// LayoutConfig is the menu geometry in frame pixels.
type LayoutConfig struct {
	TileWidth    uint32  `yaml:"tile_width" toml:"tile_width" json:"tile_width"`
	TileHeight   uint32  `yaml:"tile_height" toml:"tile_height" json:"tile_height"`
	TileMargin   int     `yaml:"tile_margin" toml:"tile_margin" json:"tile_margin"`
	SideMargin   int     `yaml:"side_margin" toml:"side_margin" json:"side_margin"`
	TopMargin    int     `yaml:"top_margin" toml:"top_margin" json:"top_margin"`
	LabelPadding int     `yaml:"label_padding" toml:"label_padding" json:"label_padding"`
	RowSpacing   int     `yaml:"row_spacing" toml:"row_spacing" json:"row_spacing"`
	FontSize     int     `yaml:"font_size" toml:"font_size" json:"font_size"`
	SelectScale  float64 `yaml:"select_scale" toml:"select_scale" json:"select_scale"`
	BorderWidth  uint8   `yaml:"border_width" toml:"border_width" json:"border_width"`
}

// RowHeight is the vertical distance between two rows.
func (l LayoutConfig) RowHeight() int {
	return int(l.TileHeight) + l.RowSpacing
}

// FetchConfig tunes the download engine.
type FetchConfig struct {
	Concurrency int      `yaml:"concurrency" toml:"concurrency" json:"concurrency"`
	Timeout     Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
	UserAgent   string   `yaml:"user_agent" toml:"user_agent" json:"user_agent"`
	// Dir is the parent of the private download directory; empty uses the
	// system temp dir.
	Dir string `yaml:"dir" toml:"dir" json:"dir"`
}

// UIConfig tunes the terminal front-end.
type UIConfig struct {
	FPS int `yaml:"fps" toml:"fps" json:"fps"`
	// Scale is the number of frame pixels per terminal cell column.
	Scale     int  `yaml:"scale" toml:"scale" json:"scale"`
	StatusBar bool `yaml:"status_bar" toml:"status_bar" json:"status_bar"`
	// KeyMode is vim, emacs or function.
	KeyMode string `yaml:"key_mode" toml:"key_mode" json:"key_mode"`
}
