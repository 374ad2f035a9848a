package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tilemenu/internal/cel"
	"github.com/oakwood-commons/tilemenu/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect tilemenu configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Print the merged configuration",
		Example: `  tilemenu config get
  tilemenu config get -o toml
  tilemenu config get -e '_.palette.background'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.runConfigGet(cmd.OutOrStdout())
		},
	}
	getCmd.Flags().StringVarP(&opts.configOutput, "output", "o", "yaml", "output format: yaml|json|toml")
	getCmd.Flags().StringVarP(&opts.configExpr, "expression", "e", "", "CEL expression over the merged config bound to '_'")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := resolveConfigPath(opts.configFile)
			if path == "" {
				path = "(built-in defaults)"
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	configCmd.AddCommand(getCmd, pathCmd)
	return configCmd
}

func (o *rootOptions) runConfigGet(w io.Writer) error {
	cfg, err := loadMergedConfig(resolveConfigPath(o.configFile))
	if err != nil {
		return err
	}
	if o.configExpr == "" {
		return writeValue(w, cfg, o.configOutput)
	}

	doc, err := configDocument(cfg)
	if err != nil {
		return err
	}
	ev, err := cel.NewEvaluator()
	if err != nil {
		return err
	}
	result, err := ev.Evaluate(o.configExpr, doc)
	if err != nil {
		return fmt.Errorf("evaluate %q: %w", o.configExpr, err)
	}
	return writeValue(w, result, o.configOutput)
}

// configDocument converts cfg into the generic map CEL expressions see, keyed
// like the config file.
func configDocument(cfg config.Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return doc, nil
}

func writeValue(w io.Writer, v any, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "toml":
		return toml.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("invalid output %q (use yaml|json|toml)", format)
	}
}
