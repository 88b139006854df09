package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/gridkit/internal/api"
	"github.com/dgallion1/gridkit/internal/config"
	"github.com/dgallion1/gridkit/internal/pipeline"
	"github.com/dgallion1/gridkit/internal/search"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the search service; the artifact loads on first query.
	svc := search.NewService(cfg.SearchArtifact, search.Options{
		Limit:         cfg.SearchResultLimit,
		SnippetSize:   cfg.SnippetSize,
		SnippetMargin: cfg.SnippetMargin,
		StatsWindow:   cfg.StatsWindow,
	}, log)

	// Initialize the reindex pipeline when a crawl config is given.
	var orch *pipeline.Orchestrator
	if cfg.ReindexEnabled() {
		site, err := config.LoadSite(cfg.SiteConfig)
		if err != nil {
			log.Error("invalid site config", "path", cfg.SiteConfig, "error", err)
			os.Exit(1)
		}
		if site.OutputPath != cfg.SearchArtifact {
			log.Warn("site outputPath differs from SEARCH_ARTIFACT; reindexed artifacts are served until restart",
				"output_path", site.OutputPath, "search_artifact", cfg.SearchArtifact)
		}
		orch = pipeline.NewOrchestrator(cfg, site, svc, log)
		orch.Worker().SiteOutput = os.Stderr
		orch.Start(ctx)
	}

	// Initialize HTTP server.
	srv := api.NewServer(svc, orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if orch != nil {
			orch.Stop()
		}
	}()

	log.Info("starting gridkit search", "port", cfg.Port, "artifact", cfg.SearchArtifact, "reindex", cfg.ReindexEnabled())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-stopped
}
