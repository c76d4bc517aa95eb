package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFiles []string

	vip := config.NewViper()

	cmd := &cobra.Command{
		Use:          "calculator",
		Short:        "HTTP calculator service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadDotEnv(envFiles...)
		},
	}

	cmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(vip)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := serve.Flags()
	flags.Int("port", 4000, "listen port (env PORT)")
	flags.String("log-level", "info", "log level: debug, info, warn, error (env LOG_LEVEL)")
	flags.String("log-format", "json", "console log format: json or console (env LOG_FORMAT)")
	flags.String("log-dir", "logs", "directory for combined.log and error.log; empty disables (env LOG_DIR)")

	_ = vip.BindPFlag("port", flags.Lookup("port"))
	_ = vip.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = vip.BindPFlag("log_format", flags.Lookup("log-format"))
	_ = vip.BindPFlag("log_dir", flags.Lookup("log-dir"))

	cmd.AddCommand(serve)

	// Running the binary without a subcommand serves, as before.
	cmd.RunE = serve.RunE
	cmd.Flags().AddFlagSet(flags)

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {

	// Logger
	err := observability.InitLogger(observability.LoggerConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Dir:    cfg.LogDir,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer observability.SyncLogger()

	// Tracing, metrics, OTLP logs
	telemetryShutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	// Router
	router := server.NewRouter(server.Options{
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serveErr := make(chan error, 1)

	go func() {
		observability.Logger.Info("server started", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	err = waitForShutdown(srv, serveErr, cfg)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if terr := telemetryShutdown(shutdownCtx); terr != nil {
		observability.Logger.Warn("telemetry shutdown", zap.Error(terr))
	}

	return err
}

func waitForShutdown(srv *http.Server, serveErr <-chan error, cfg *config.Config) error {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		if err != nil {
			observability.Logger.Error("server failed", zap.Error(err))
			return err
		}
		return nil
	case sig := <-stop:
		observability.Logger.Info("shutting down gracefully", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	observability.Logger.Info("server closed")
	return nil
}
