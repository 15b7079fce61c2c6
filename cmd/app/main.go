// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"mwallet-gateway/internal/application"
	"mwallet-gateway/internal/config"
	"mwallet-gateway/internal/infra/logging"
	"mwallet-gateway/internal/infra/metrics"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted payloads)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logging & metrics ----
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit, cfg.JazzCash.Environment)

	// ---- Gateway, use cases, callback server ----
	svc, err := application.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("bootstrap failed")
	}
	defer svc.Close()

	logger.Info().
		Str("version", version).
		Str("environment", cfg.JazzCash.Environment).
		Str("merchant_id", cfg.JazzCash.Credentials().MerchantID).
		Msg("mwallet gateway starting")

	// ---- Serve until SIGINT/SIGTERM ----
	if err := svc.Serve(ctx); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("shutdown complete")
}
