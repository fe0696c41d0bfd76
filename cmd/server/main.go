package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/bookbind/internal/api"
	"github.com/dgallion1/bookbind/internal/booktree"
	"github.com/dgallion1/bookbind/internal/catalog"
	"github.com/dgallion1/bookbind/internal/config"
	"github.com/dgallion1/bookbind/internal/pipeline"
	"github.com/dgallion1/bookbind/internal/wordpress"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	wp := wordpress.NewClient(cfg.WordPressURL, cfg.PerPageCap)
	cat := catalog.NewLoader(wp, cfg.CatalogLocale, cfg.CatalogTTL, log)
	fetcher := booktree.NewFetcher(wp, cfg.MaxAttempts, cfg.RetryBackoff, log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, fetcher, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, cat, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Stop accepting requests before draining the workers, so no
		// in-flight handler submits to a closed queue.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		wp.Close()
	}()

	log.Info("starting bookbind", "port", cfg.Port, "wordpress", cfg.WordPressURL)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
