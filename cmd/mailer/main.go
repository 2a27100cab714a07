package main

import (
	"context"
	"os"
	"os/signal"
	"roombook/config"
	"roombook/di"
	"roombook/infras/kafka"
	"roombook/infras/mailer"
	"roombook/shared/logger"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	flag "github.com/spf13/pflag"
)

const shutdownTimeout = 10 * time.Second

// mailer delivers the emails the API queued on kafka. A message is committed only after
// the SMTP server accepted it, so delivery is at least once.
func main() {
	flags := flag.NewFlagSet("mailer", flag.ExitOnError)
	group := flags.String("group", "", "consumer group, defaults to KAFKA_CONSUMER_GROUP")
	topic := flags.String("topic", "", "topic to consume, defaults to KAFKA_TOPIC_EMAIL")

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	worker := di.InitializeMailer()

	if *topic == "" {
		*topic = cfg.Kafka.TopicEmail
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("topic", *topic).Msg("Mailer worker started")

	err := worker.Kafka.Consume(ctx, *group, *topic, Deliver(worker.Sender))
	if err != nil {
		log.Error().Err(err).Msg("Mailer worker stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if closeErr := worker.Kafka.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("failed to close kafka client")
	}

	if shutdownErr := worker.Otel.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("failed to shutdown tracer")
	}

	if err != nil {
		os.Exit(1)
	}
}

// Deliver sends one queued email. Payloads that cannot be decoded or have no recipient
// are dropped instead of blocking the partition forever.
func Deliver(sender mailer.Sender) kafka.Handler {
	return func(ctx context.Context, msg kafkaGo.Message) error {
		email, err := kafka.Decode[mailer.Email](msg)
		if err != nil {
			log.Error().Err(err).Int64("offset", msg.Offset).Msg("dropping undecodable email")

			return nil
		}

		if len(email.To) == 0 {
			log.Error().Int64("offset", msg.Offset).Msg("dropping email without recipient")

			return nil
		}

		return sender.Send(ctx, email) //nolint:wrapcheck
	}
}
