package di

import (
	"context"
	"roombook/config"
	"roombook/infras/kafka"
	"roombook/infras/mailer"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	bookingService "roombook/internal/domains/booking/service"
	"roombook/internal/domains/notification"
	"roombook/transport/http"

	"github.com/rs/zerolog/log"
)

// App is everything the API process starts and has to release on exit.
type App struct {
	Config   *config.Config
	HTTP     *http.HTTP
	Sweeper  bookingService.Sweeper
	Notifier notification.Notifier
	Otel     otel.Otel
	Kafka    kafka.Client
	DB       *postgres.Connection
}

// Close waits for pending emails before releasing connections, so nothing queued is lost.
func (a *App) Close(ctx context.Context) {
	a.Notifier.Wait()

	if err := a.Kafka.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close kafka client")
	}

	a.DB.Close()

	if err := a.Otel.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown tracer")
	}
}

// Mailer is the worker that delivers queued emails over SMTP.
type Mailer struct {
	Config *config.Config
	Kafka  kafka.Client
	Sender mailer.Sender
	Otel   otel.Otel
}
