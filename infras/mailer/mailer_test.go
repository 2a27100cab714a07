package mailer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/config"
	"roombook/infras/kafka"
	kafkaMocks "roombook/infras/kafka/mocks"
	"roombook/infras/mailer"
	otelMocks "roombook/infras/otel/mocks"
)

func TestKafkaSender_Send(t *testing.T) {
	cfg := &config.Config{}
	cfg.Kafka.TopicEmail = "booking.email"

	email := mailer.Email{To: []string{"ayu@example.com"}, Subject: "Booking Status Update: APPROVED", HTML: "<p>ok</p>"}

	t.Run("publishes the email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := kafkaMocks.NewMockClient(ctrl)

		client.EXPECT().Publish(gomock.Any(), "booking.email", kafka.Message{Key: "ayu@example.com", Value: email}).Return(nil)

		sender := mailer.NewKafka(cfg, otelMocks.NewOtel(), client)

		require.NoError(t, sender.Send(context.Background(), email))
	})

	t.Run("publish error is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := kafkaMocks.NewMockClient(ctrl)

		client.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		err := mailer.NewKafka(cfg, otelMocks.NewOtel(), client).Send(context.Background(), email)

		assert.Error(t, err)
	})

	t.Run("requires a recipient", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := kafkaMocks.NewMockClient(ctrl)

		err := mailer.NewKafka(cfg, otelMocks.NewOtel(), client).Send(context.Background(), mailer.Email{Subject: "x"})

		assert.ErrorIs(t, err, mailer.ErrNoRecipient)
	})
}

func TestLogSender_Send(t *testing.T) {
	sender := mailer.NewLog()

	assert.NoError(t, sender.Send(context.Background(), mailer.Email{To: []string{"ayu@example.com"}}))
	assert.ErrorIs(t, sender.Send(context.Background(), mailer.Email{}), mailer.ErrNoRecipient)
}

func TestSMTPSender_Send(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notifier.From = "not an address"
	cfg.SMTP.Host = "localhost"
	cfg.SMTP.Port = 2525

	err := mailer.NewSMTP(cfg, otelMocks.NewOtel()).Send(context.Background(), mailer.Email{To: []string{"ayu@example.com"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sender address")
}
