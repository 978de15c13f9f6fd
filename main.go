package main

import (
	"fmt"
	"os"

	"github.com/mcpgate/mcpgate/cmd"
	"github.com/mcpgate/mcpgate/internal/conf"
	"github.com/mcpgate/mcpgate/internal/logging"
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
