// Command rendercut runs the timeline export daemon. It loads config,
// verifies the encoder environment, and serves the local export control
// surface until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/backmassage/rendercut/internal/check"
	"github.com/backmassage/rendercut/internal/config"
	"github.com/backmassage/rendercut/internal/encoder"
	"github.com/backmassage/rendercut/internal/logging"
	"github.com/backmassage/rendercut/internal/media"
	"github.com/backmassage/rendercut/internal/server"
	"github.com/backmassage/rendercut/internal/session"
)

// version is set at build time via -ldflags.
var version = "0.1.0-dev"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	listenAddr := flag.String("listen", "", "override listen address")
	logLevel := flag.String("log-level", "", "override log level")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rendercut: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "rendercut: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel)
	log.Info("starting", "version", version, "listen", cfg.ListenAddr)

	if err := check.Run(&cfg); err != nil {
		log.Error("environment check failed", "error", err)
		os.Exit(1)
	}

	registry := media.NewMemoryRegistry()
	supervisor := encoder.New(log, cfg.GracePeriod)
	controller := session.NewController(log, registry, supervisor, cfg.ScratchDir)
	controller.EncoderBinary = cfg.EncoderBinary

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(log, &cfg, registry, controller).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}

	// Stop any running export before the process exits so no orphaned
	// encoder or temp files survive.
	controller.CancelExport()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown incomplete", "error", err)
	}
}
