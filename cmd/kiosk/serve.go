package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/challengeboard/internal/adapters/http/api"
	"github.com/okian/challengeboard/internal/adapters/http/live"
	"github.com/okian/challengeboard/internal/adapters/http/site"
	"github.com/okian/challengeboard/internal/adapters/http/swagger"
	"github.com/okian/challengeboard/internal/adapters/render"
	app "github.com/okian/challengeboard/internal/app"
	"github.com/okian/challengeboard/internal/config"
	"github.com/okian/challengeboard/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the kiosk server",
	Long: `Start the kiosk server.

The server will:
  - Load configuration (defaults, optional YAML file, KIOSK_* env vars)
  - Start a fresh session for the configured challenge kind
  - Serve the kiosk page, the JSON API, the PNG chart and the live feed

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  kiosk serve
  KIOSK_CHALLENGE_KIND=feet_inches kiosk serve --config event.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(ctx, config.WithFile(configFile))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	srv, svc, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	errChan := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("kind", cfg.ChallengeKind),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newServer wires the service, the live hub and every HTTP surface onto one mux.
// The service is returned unstarted.
func newServer(ctx context.Context, cfg *config.Config) (*http.Server, *app.Service, error) {
	kind, err := cfg.Kind()
	if err != nil {
		return nil, nil, err
	}

	hub := live.NewHub()
	svc := app.New(
		app.WithLogger(logger.Named("service")),
		app.WithKind(kind),
		app.WithTitle(cfg.ChallengeTitle),
		app.WithTopK(cfg.TopK),
		app.WithMaxEntries(cfg.MaxEntries),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithSubmitTimeout(cfg.SubmitTimeout()),
		app.WithPublisher(hub),
	)

	renderer := render.New(
		render.WithKind(kind),
		render.WithTitle(cfg.ChallengeTitle),
		render.WithSize(cfg.ChartWidth, cfg.ChartHeight),
	)

	mux := http.NewServeMux()

	apiServer := api.NewServer(svc, svc,
		api.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
		api.WithDefaultLeaderboardLimit(cfg.TopK),
		api.WithChartRenderer(renderer),
	)
	apiServer.Register(ctx, mux)
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	liveHandler := live.NewHandler(hub, svc)
	mux.HandleFunc("/live", api.MetricsMiddleware(liveHandler.ServeHTTP, "live"))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return srv, svc, nil
}
