// Package config implements the config subcommand, which writes the
// effective configuration to a YAML file.
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcpgate/mcpgate/internal/conf"
)

// Command creates the config subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the effective configuration to a file",
		Long:  "Write the merged configuration (defaults, config file and environment) to a YAML file, as a starting point for editing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := conf.SaveYAMLConfig(outputPath, settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "config.yaml", "Path of the YAML file to write")

	return cmd
}
