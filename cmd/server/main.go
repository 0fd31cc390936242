package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Ellipz/ManaSourceCalc/internal/api/grpcapi"
	"github.com/Ellipz/ManaSourceCalc/internal/api/httpapi"
	"github.com/Ellipz/ManaSourceCalc/internal/platform/config"
	"github.com/Ellipz/ManaSourceCalc/internal/profile"
	"github.com/Ellipz/ManaSourceCalc/internal/service"
	"github.com/Ellipz/ManaSourceCalc/internal/storage/sqlite"
)

func main() {
	var cfg config.Server
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("%v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		config.Exitf("invalid log level %q: %v", cfg.LogLevel, err)
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("service", "manasim").Logger()

	// run returns only after its deferred cleanup, so exiting here is safe
	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}

func run(cfg config.Server, logger zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("close run history")
		}
	}()

	loader := profile.NewLoader(cfg.ConfigDir)
	watcher := profile.NewFileWatcher(cfg.ConfigDir, cfg.WatchInterval, func(path string) {
		logger.Info().Str("path", path).Msg("scenario file changed, reloading")
		loader.Invalidate()
	})
	watcher.Start()
	defer watcher.Stop()

	svc := &service.Service{
		Configs:    loader,
		Store:      store,
		Workers:    cfg.Workers,
		MaxWorkers: cfg.MaxWorkers,
		MaxTrials:  cfg.MaxTrials,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	grpcServer, err := grpcapi.Listen(cfg.GRPCAddr, svc, logger)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.New(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return grpcServer.Serve(gctx)
	})
	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
