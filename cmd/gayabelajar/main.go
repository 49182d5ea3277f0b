package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gayabelajar-api/internal/advisory"
	"gayabelajar-api/internal/cfg"
	"gayabelajar-api/internal/metrics"
	"gayabelajar-api/internal/ml"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	setupLogging(c)

	log.Info().
		Str("addr", c.HTTPAddr).
		Str("base_dir", c.BaseDir).
		Bool("metrics", c.MetricsEnabled).
		Msg("starting learning style API")

	// Initialize components
	var mw ml.MetricsInterface
	var metricsHandler http.Handler
	if c.MetricsEnabled {
		mw = metrics.NewWrapper(metrics.New())
		metricsHandler = promhttp.Handler()
	}

	advisories := loadAdvisories(c)

	// A failed load leaves the predictor degraded; the server still starts.
	predictor := ml.NewWithMetrics(c.ModelPath, c.ScalerPath, mw)

	server := ml.NewModelServer(predictor, advisories, mw, ml.ServerConfig{
		Addr:           c.HTTPAddr,
		ReadTimeout:    c.ReadTimeout,
		WriteTimeout:   c.WriteTimeout,
		MetricsHandler: metricsHandler,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			cancel()
		}
	}()

	// Wait for shutdown signal
	waitForShutdown(ctx, server, c.ShutdownTimeout)
}

func setupLogging(c cfg.Settings) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if c.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// loadAdvisories returns the built-in table unless ADVISORY_FILE points at a
// readable override.
func loadAdvisories(c cfg.Settings) *advisory.Table {
	if c.AdvisoryFile == "" {
		return advisory.Default()
	}
	table, err := advisory.LoadFile(c.AdvisoryFile)
	if err != nil {
		log.Warn().Err(err).Str("path", c.AdvisoryFile).Msg("advisory file unusable, using built-in advisories")
		return advisory.Default()
	}
	log.Info().Str("path", c.AdvisoryFile).Strs("labels", table.Labels()).Msg("advisories loaded")
	return table
}

func waitForShutdown(ctx context.Context, server *ml.ModelServer, timeout time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown timeout, forcing exit")
		return
	}
	log.Info().Msg("server stopped")
}
