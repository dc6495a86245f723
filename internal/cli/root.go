// Package cli wires the zoocard commands.
package cli

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/atelier-vision/zoocard/internal/config"
)

// rootOptions carries the global flags shared by all commands.
type rootOptions struct {
	configPath string
	schemaPath string
}

// load loads and validates the configuration from the global flags.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.LoadAndValidate(o.configPath, o.schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", o.configPath, err)
	}
	return cfg, nil
}

// RootCommand creates the zoocard root command.
func RootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "zoocard",
		Short:         "Model-card toolkit for model-zoo documentation trees",
		Long:          "zoocard parses, lints, indexes and serves model cards:\nmarkdown documents pairing paper citations with benchmark results tables.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config",
		path.Join(config.DefaultConfigPath(), "config.yaml"), "Path to config file")
	rootCmd.PersistentFlags().StringVar(&opts.schemaPath, "schema",
		path.Join(config.DefaultConfigPath(), "zoocard.v1.schema.json"), "Path to schema file")

	rootCmd.AddCommand(
		lintCommand(opts),
		indexCommand(opts),
		checkLinksCommand(opts),
		renderCommand(),
		serveCommand(opts),
	)

	return rootCmd
}
