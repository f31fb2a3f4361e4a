package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/chatmark/internal/api"
	"github.com/dgallion1/chatmark/internal/cache"
	"github.com/dgallion1/chatmark/internal/config"
	"github.com/dgallion1/chatmark/internal/pipeline"
	"github.com/dgallion1/chatmark/internal/render"
	"github.com/dgallion1/chatmark/internal/stats"
	"github.com/dgallion1/chatmark/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("load configuration", "error", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize persistence.
	var st *store.Store
	if cfg.StorePath != "" {
		st, err = store.Open(cfg.StorePath)
		if err != nil {
			log.Error("open store", "path", cfg.StorePath, "error", err)
			os.Exit(1)
		}
	} else {
		log.Info("transcript store disabled")
	}

	docs := cache.New(cfg.CacheSize)
	hl := render.NewHighlighter(cfg.HighlightStyle)
	rs := stats.NewRenderStats(cfg.StatsWindow)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, docs, render.NewHTMLRenderer(hl), st, rs, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, docs, hl, st, rs, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if st != nil {
			if err := st.Close(); err != nil {
				log.Error("close store", "error", err)
			}
		}
	}()

	log.Info("starting chatmark", "port", cfg.Port, "dialect", cfg.DefaultDialect, "store", cfg.StorePath)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
