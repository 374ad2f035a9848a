package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     Config
	embeddedConfigErr  error
)

// DefaultConfigYAML returns a copy of the embedded default config YAML bytes.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default parses and returns the embedded default configuration. It is the
// single source of truth for default settings.
func Default() (Config, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = fmt.Errorf("embedded default config is empty")
			return
		}
		dec := yaml.NewDecoder(bytes.NewReader(embeddedDefaultConfig))
		dec.KnownFields(true)
		if err := dec.Decode(&embeddedConfig); err != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", err)
		}
	})
	return embeddedConfig, embeddedConfigErr
}
