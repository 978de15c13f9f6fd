// Package serve implements the serve subcommand, which runs the HTTP
// gateway until interrupted.
package serve

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcpgate/mcpgate/internal/api"
	"github.com/mcpgate/mcpgate/internal/conf"
	"github.com/mcpgate/mcpgate/internal/errors"
	"github.com/mcpgate/mcpgate/internal/logging"
	"github.com/mcpgate/mcpgate/internal/observability"
	"github.com/mcpgate/mcpgate/internal/search"
	"github.com/mcpgate/mcpgate/internal/securefs"
)

// shutdownTimeout bounds how long in-flight requests may run after a
// termination signal.
const shutdownTimeout = 10 * time.Second

// Command creates the serve subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway server",
		Long:  "Start the HTTP server exposing the sandboxed filesystem and web-search endpoints.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}
}

func runServer(settings *conf.Settings) error {
	level := logging.ParseLevel(settings.Server.LogLevel)
	if settings.Debug {
		level = slog.LevelDebug
	}
	logging.SetLevel(level)

	logger := slog.Default().With("service", "mcpgate")
	if settings.Main.Log.Enabled && settings.Main.Log.Path != "" {
		fileLogger, closeLogger, err := logging.NewFileLogger(
			settings.Main.Log.Path, settings.Main.Name, level)
		if err != nil {
			return errors.Wrap(err).
				Category(errors.CategoryConfiguration).
				Context("log_path", settings.Main.Log.Path).
				Build()
		}
		defer closeLogger() //nolint:errcheck // log writer close error is not actionable
		logger = fileLogger
	}

	if err := conf.ValidateSettings(settings); err != nil {
		return errors.Wrap(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "validate-settings").
			Build()
	}

	sfs, err := newSandbox(settings, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sfs.Close(); err != nil {
			logger.Error("failed to close sandbox", "error", err)
		}
	}()
	if settings.Server.MaxFileSize > 0 {
		sfs.SetMaxReadFileSize(settings.Server.MaxFileSize)
	}

	searchClient := search.NewClient(search.Config{
		APIKey:      settings.Search.APIKey,
		BaseURL:     settings.Search.BaseURL,
		Timeout:     time.Duration(settings.Search.TimeoutSeconds) * time.Second,
		CacheTTL:    time.Duration(settings.Search.CacheTTLSecs) * time.Second,
		RateLimitMS: settings.Search.RateLimitMS,
	}, logger)
	defer searchClient.Close()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return errors.Wrap(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "init-metrics").
			Build()
	}

	controller := api.New(settings, sfs, searchClient, metrics, logger)
	errChan := controller.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := controller.Shutdown(ctx); err != nil {
		return errors.Wrap(err).
			Category(errors.CategoryNetwork).
			Context("operation", "shutdown").
			Build()
	}

	logger.Info("server stopped")
	return nil
}

// newSandbox opens the configured base path sandbox, or an unrestricted
// filesystem view when no base path is set.
func newSandbox(settings *conf.Settings, logger *slog.Logger) (*securefs.SecureFS, error) {
	if settings.Server.BasePath == "" {
		logger.Warn("no base path configured, filesystem access is unrestricted")
		return securefs.NewUnrestricted(), nil
	}

	sfs, err := securefs.New(settings.Server.BasePath)
	if err != nil {
		return nil, err
	}
	logger.Info("filesystem sandbox enabled", "base_path", sfs.BaseDir())
	return sfs, nil
}
