package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mcpgate/mcpgate/cmd/config"
	"github.com/mcpgate/mcpgate/cmd/serve"
	"github.com/mcpgate/mcpgate/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mcpgate",
		Short: "Sandboxed filesystem and web-search gateway",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	rootCmd.AddCommand(
		serve.Command(settings),
		config.Command(settings),
	)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Server.Host, "host", viper.GetString("server.host"), "Network interface to bind")
	rootCmd.PersistentFlags().IntVarP(&settings.Server.Port, "port", "p", viper.GetInt("server.port"), "TCP port to listen on")
	rootCmd.PersistentFlags().StringVar(&settings.Server.LogLevel, "loglevel", viper.GetString("server.loglevel"), "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&settings.Server.BasePath, "basepath", viper.GetString("server.basepath"), "Directory subtree the gateway is allowed to serve")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
