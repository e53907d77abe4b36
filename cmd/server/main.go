package main

import (
	"log"

	"github.com/Freeeeeet/tutor_market/internal/app"
	"github.com/Freeeeeet/tutor_market/internal/config"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting tutor market",
		"environment", cfg.Environment,
		"addr", cfg.HTTPAddr,
		"gateway_configured", cfg.GatewayEnabled())

	if err := app.Run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
