package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tilemenu/internal/config"
)

// configLoader centralizes config loading so callers avoid duplicating merge logic.
type configLoader struct {
	defaults func() (config.Config, error)
}

var cfgLoader = configLoader{defaults: config.Default}

func loadMergedConfig(cfgPath string) (config.Config, error) {
	return cfgLoader.loadMergedConfig(cfgPath)
}

// loadMergedConfig decodes the file at cfgPath over the embedded defaults.
// Keys the file leaves out keep their default value; unknown keys are an
// error.
func (l configLoader) loadMergedConfig(cfgPath string) (config.Config, error) {
	cfg, err := l.defaults()
	if err != nil {
		return cfg, fmt.Errorf("load default config: %w", err)
	}
	if cfgPath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := decodeConfig(cfgPath, data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config file %s: %w", cfgPath, err)
	}
	return cfg, nil
}

// decodeConfig picks the decoder from the file extension. YAML is the
// default since the embedded config is YAML.
func decodeConfig(path string, data []byte, cfg *config.Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	case ".yaml", ".yml", "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		return dec.Decode(cfg)
	default:
		return fmt.Errorf("unsupported config format %q (use .yaml, .toml or .json)", ext)
	}
}

// resolveConfigPath returns the explicit path if set, otherwise
// $XDG_CONFIG_HOME/tilemenu/config.yaml (or ~/.config/tilemenu/config.yaml)
// when that file exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := ""
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidate = filepath.Join(xdg, "tilemenu", "config.yaml")
	} else if home, err := os.UserHomeDir(); err == nil {
		candidate = filepath.Join(home, ".config", "tilemenu", "config.yaml")
	}
	if candidate != "" {
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
	}
	return ""
}

// applyOverrides copies the flags the user set onto cfg.
func (o *rootOptions) applyOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("home-url") {
		cfg.Menu.HomeURL = o.homeURL
	}
	if flags.Changed("row-filter") {
		cfg.Menu.RowFilter = o.rowFilter
	}
	if flags.Changed("key-mode") {
		cfg.UI.KeyMode = o.keyMode
	}
	if flags.Changed("tiles-per-row") {
		if o.tilesPerRow < 0 {
			return fmt.Errorf("--tiles-per-row must not be negative, got %d", o.tilesPerRow)
		}
		cfg.Menu.TilesPerRow = o.tilesPerRow
	}
	if flags.Changed("limit") {
		cfg.Menu.Rows.Limit = o.rowLimit
	}
	if flags.Changed("offset") {
		cfg.Menu.Rows.Offset = o.rowOffset
	}
	if flags.Changed("tail") {
		cfg.Menu.Rows.Tail = o.rowTail
	}
	if o.noRefSets {
		cfg.Menu.ResolveRefSets = false
	}
	return nil
}
