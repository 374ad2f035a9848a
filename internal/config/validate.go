package config

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Menu.HomeURL == "" {
		errs = append(errs, errors.New("menu.home_url is required"))
	}
	if c.Menu.CollectionKey == "" {
		errs = append(errs, errors.New("menu.collection_key is required"))
	}
	if c.Menu.ResolveRefSets {
		if _, err := c.RefSetTemplate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Menu.TilesPerRow < 0 {
		errs = append(errs, fmt.Errorf("menu.tiles_per_row must not be negative, got %d", c.Menu.TilesPerRow))
	}
	if err := c.Menu.Rows.Validate("menu.rows"); err != nil {
		errs = append(errs, err)
	}
	if c.Layout.TileWidth == 0 || c.Layout.TileHeight == 0 {
		errs = append(errs, errors.New("layout.tile_width and layout.tile_height must be positive"))
	}
	if c.Layout.SelectScale < 1 {
		errs = append(errs, fmt.Errorf("layout.select_scale must be at least 1, got %g", c.Layout.SelectScale))
	}
	if c.Layout.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("layout.font_size must be positive, got %d", c.Layout.FontSize))
	}
	if _, err := c.Palette.Colors(); err != nil {
		errs = append(errs, err)
	}
	if c.Fetch.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("fetch.concurrency must be positive, got %d", c.Fetch.Concurrency))
	}
	if c.Fetch.Timeout < 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout must not be negative, got %s", c.Fetch.Timeout))
	}
	if c.UI.FPS <= 0 || c.UI.FPS > 240 {
		errs = append(errs, fmt.Errorf("ui.fps must be within 1..240, got %d", c.UI.FPS))
	}
	if c.UI.Scale <= 0 {
		errs = append(errs, fmt.Errorf("ui.scale must be positive, got %d", c.UI.Scale))
	}
	switch c.UI.KeyMode {
	case "vim", "emacs", "function":
	default:
		errs = append(errs, fmt.Errorf("ui.key_mode must be vim, emacs or function, got %q", c.UI.KeyMode))
	}
	return errors.Join(errs...)
}

// RefSetTemplate parses menu.refset_url.
func (c Config) RefSetTemplate() (*template.Template, error) {
	if !strings.Contains(c.Menu.RefSetURL, "{{") {
		return nil, fmt.Errorf("menu.refset_url %q must reference {{.RefID}}", c.Menu.RefSetURL)
	}
	tmpl, err := template.New("refset_url").Option("missingkey=error").Parse(c.Menu.RefSetURL)
	if err != nil {
		return nil, fmt.Errorf("menu.refset_url: %w", err)
	}
	return tmpl, nil
}

// RefSetURL expands menu.refset_url for refID.
func (c Config) RefSetURL(refID string) (string, error) {
	tmpl, err := c.RefSetTemplate()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, struct{ RefID string }{RefID: refID}); err != nil {
		return "", fmt.Errorf("expand menu.refset_url: %w", err)
	}
	return b.String(), nil
}
