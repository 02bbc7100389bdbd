// Vinoscans is a wine-label scanning daemon. It identifies Italian wines
// from label photos via a generative vision service, keeps a small recency
// history of past scans, and narrates tasting notes through a generative
// text-to-speech service.
//
// Usage:
//
//	vinoscans [flags]
//	vinoscans --config /path/to/vinoscans.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/bankowy11-lgtm/vinoScans/docs" // swagger spec registration
	"github.com/bankowy11-lgtm/vinoScans/internal/cellar"
	"github.com/bankowy11-lgtm/vinoScans/internal/config"
	"github.com/bankowy11-lgtm/vinoScans/internal/health"
	"github.com/bankowy11-lgtm/vinoScans/internal/narrate"
	narrategemini "github.com/bankowy11-lgtm/vinoScans/internal/narrate/gemini"
	"github.com/bankowy11-lgtm/vinoScans/internal/sommelier"
	"github.com/bankowy11-lgtm/vinoScans/internal/transport"
	grpctransport "github.com/bankowy11-lgtm/vinoScans/internal/transport/grpc"
	httptransport "github.com/bankowy11-lgtm/vinoScans/internal/transport/http"
	"github.com/bankowy11-lgtm/vinoScans/internal/vision"
	visiongemini "github.com/bankowy11-lgtm/vinoScans/internal/vision/gemini"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/vinoscans.local.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vinoscans %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("vinoscans starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize the vision identifier backend.
	var identifier vision.Identifier
	switch cfg.Vision.Backend {
	case "gemini":
		identifier = visiongemini.New(cfg.Vision.Gemini)
		slog.Info("using Gemini identifier", "model", cfg.Vision.Gemini.Model)
	default:
		slog.Error("unknown vision backend", "backend", cfg.Vision.Backend)
		os.Exit(1)
	}
	defer identifier.Close()

	// Initialize the narration backend (optional).
	var synthesizer narrate.Synthesizer
	if cfg.Narration.Enabled {
		switch cfg.Narration.Backend {
		case "gemini":
			synthesizer = narrategemini.New(cfg.Narration.Gemini)
			slog.Info("using Gemini narration",
				"model", cfg.Narration.Gemini.Model, "voice", cfg.Narration.Gemini.Voice)
		default:
			slog.Error("unknown narration backend", "backend", cfg.Narration.Backend)
			os.Exit(1)
		}
		defer synthesizer.Close()
	}

	// Open the persisted scan history.
	store, err := cellar.OpenSQLite(cfg.History.Path)
	if err != nil {
		slog.Error("failed to open history store", "error", err, "path", cfg.History.Path)
		os.Exit(1)
	}
	history, err := cellar.Open(ctx, store, cfg.History.Limit)
	if err != nil {
		slog.Error("failed to load history", "error", err)
		os.Exit(1)
	}
	defer history.Close()

	// Create the sommelier pipeline.
	som := sommelier.New(identifier, history, synthesizer)

	// Initialize enabled transports.
	var transports []transport.Transport

	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port))
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port))
	}

	if len(transports) == 0 {
		slog.Error("no transports enabled, enable at least one in config")
		os.Exit(1)
	}

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start all transports.
	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, som); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	slog.Info("vinoscans ready",
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("vinoscans stopped")
}
