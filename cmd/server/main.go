package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docview/internal/api"
	"github.com/dgallion1/docview/internal/config"
	"github.com/dgallion1/docview/internal/findings"
	"github.com/dgallion1/docview/internal/highlight"
	"github.com/dgallion1/docview/internal/surface"
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

	// Load the findings payload.
	payload, err := findings.Load(cfg.FindingsPath, cfg.HighlightLines)
	if err != nil {
		log.Error("failed to load findings", "path", cfg.FindingsPath, "error", err)
		os.Exit(1)
	}
	if cfg.AnalysisDocxPath != "" {
		notes, err := findings.ImportAnalysisDocx(cfg.AnalysisDocxPath)
		if err != nil {
			log.Warn("analysis docx import failed", "path", cfg.AnalysisDocxPath, "error", err)
		} else {
			payload.Analysis = append(payload.Analysis, notes...)
			log.Info("imported analysis notes", "count", len(notes))
		}
	}

	// Open and render the document. A load failure is displayed by the
	// viewer, not fatal here.
	doc := surface.Open(cfg.DocumentPath, log)
	if err := doc.Render(ctx, cfg.RenderWidth); err != nil {
		log.Warn("initial render failed", "error", err)
	}

	// Highlight controller; the first finding is active on load.
	ctrl := highlight.New(doc, payload, highlight.Config{
		Attempts: cfg.ProbeAttempts,
		Interval: cfg.ProbeInterval,
	}, log)
	ctrl.SelectInitial()

	srv := api.NewServer(doc, ctrl, payload, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		ctrl.Close()
		doc.Close()
	}()

	log.Info("starting docview", "port", cfg.Port, "document", cfg.DocumentPath)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
