package main

import (
	"context"
	"os"
	"os/signal"
	"roombook/config"
	"roombook/di"
	"roombook/helper"
	"roombook/shared/logger"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	closeTimeout = 30 * time.Second
)

// @title Room Booking API
// @version 1.0
// @description Room booking requests with manager approval.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	app := di.InitializeService()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if seconds := cfg.Booking.SweepIntervalSeconds; seconds > 0 {
		go app.Sweeper.Run(ctx, time.Duration(seconds)*time.Second)
	}

	if err := app.HTTP.ServeContext(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server stopped")
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	app.Close(closeCtx)
}
