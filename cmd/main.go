package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tourstat/compass/internal/adapters/http/api"
	"github.com/tourstat/compass/internal/adapters/repository"
	"github.com/tourstat/compass/internal/adapters/source"
	"github.com/tourstat/compass/internal/app"
	"github.com/tourstat/compass/internal/config"
	"github.com/tourstat/compass/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store := repository.NewMemoryStore()
	if err := ingest(ctx, cfg, store, log); err != nil {
		log.Error(ctx, "ingestion failed", logger.Error(err))
		os.Exit(1)
	}

	engine := app.New(store,
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithLogger(log.Named("engine")),
	)
	for _, report := range cfg.Reports {
		res, err := engine.Run(ctx, report)
		if err != nil {
			log.Error(ctx, "report run failed",
				logger.String("report", report.ID), logger.Error(err))
			os.Exit(1)
		}
		for _, sr := range res.Schemes {
			log.Info(ctx, "scheme ranked",
				logger.String("report", report.ID),
				logger.String("scheme", sr.SchemeID),
				logger.Int("rows", len(sr.Rows)),
			)
		}
	}

	if cfg.ServeAddr == "" {
		return
	}
	serve(ctx, cfg.ServeAddr, engine, log)
}

func ingest(ctx context.Context, cfg *config.Config, store repository.Store, log logger.Logger) error {
	f, err := os.Open(cfg.DataFile)
	if err != nil {
		return err
	}
	defer f.Close()

	loader := source.NewLoader(store)
	stats, err := loader.Load(ctx, f)
	if err != nil {
		return err
	}
	log.Info(ctx, "observations ingested",
		logger.String("file", cfg.DataFile),
		logger.Int("loaded", stats.Loaded),
		logger.Int("skipped", stats.Skipped),
		logger.Int("duplicates", stats.Duplicates),
	)
	return nil
}

func serve(ctx context.Context, addr string, engine *app.Engine, log logger.Logger) {
	mux := http.NewServeMux()
	api.NewServer(engine).Register(mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "serving results", logger.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server failed", logger.Error(err))
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn(ctx, "server shutdown timed out", logger.Error(err))
		}
	}
}
