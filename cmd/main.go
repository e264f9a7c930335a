package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/freethrow/internal/adapters/http/api"
	"github.com/okian/freethrow/internal/adapters/http/swagger"
	"github.com/okian/freethrow/internal/adapters/loader"
	"github.com/okian/freethrow/internal/adapters/mq/publish"
	"github.com/okian/freethrow/internal/adapters/repository"
	app "github.com/okian/freethrow/internal/app"
	"github.com/okian/freethrow/internal/config"
	"github.com/okian/freethrow/internal/domain/aggregate"
	"github.com/okian/freethrow/pkg/logger"
	"github.com/okian/freethrow/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 60 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if cfg.LogFormat != "text" {
		if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
			os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
			os.Exit(1)
		}
	}
	loggerInstance := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, loggerInstance); err != nil {
		loggerInstance.Error(ctx, "freethrow exited", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run wires the service, performs the initial analysis and serves HTTP until ctx ends.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc, cleanup, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := svc.Analyze(ctx); err != nil {
		// The server still starts; POST /analyze retries once data is in place.
		log.Warn(ctx, "initial analysis failed", logger.Error(err))
	}

	go startSystemMetricsUpdater(ctx)

	srv := newHTTPServer(cfg.Addr, svc)
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// buildService assembles loader, store and publisher from cfg and starts the
// service. cleanup stops the service and releases every resource.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, func(), error) {
	spread, err := aggregate.ParseSpread(cfg.Spread)
	if err != nil {
		return nil, nil, err
	}

	var store repository.Store
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := repository.OpenSQLite(ctx, cfg.SQLitePath, repository.WithLogger(log.Named("sqlite")))
		if err != nil {
			return nil, nil, err
		}
		store = s
	default:
		store = repository.NewMemoryStore()
	}

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithLoader(loader.New(cfg.DataDir,
			loader.WithPattern(cfg.TrialPattern),
			loader.WithLogger(log.Named("loader")),
		)),
		app.WithStore(store),
		app.WithParticipant(cfg.ParticipantID),
		app.WithSpread(spread),
	}

	var pub *publish.Publisher
	if cfg.MQTTBroker != "" {
		pub, err = publish.Dial(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic, publish.WithLogger(log.Named("publish")))
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		log.Info(ctx, "publishing summaries", logger.String("broker", cfg.MQTTBroker), logger.String("topic", cfg.MQTTTopic))
		opts = append(opts, app.WithPublisher(pub))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		if pub != nil {
			pub.Close()
		}
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to start service: %w", err)
	}

	cleanup := func() {
		svc.Stop()
		if pub != nil {
			pub.Close()
		}
	}
	return svc, cleanup, nil
}

// newHTTPServer registers the API routes for svc on a fresh mux.
func newHTTPServer(addr string, svc *app.Service) *http.Server {
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(mux)
	swagger.Register(context.Background(), mux)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// startSystemMetricsUpdater updates system metrics until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
