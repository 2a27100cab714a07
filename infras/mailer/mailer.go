package mailer

//go:generate go run go.uber.org/mock/mockgen -source=./mailer.go -destination=./mocks/mailer_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"roombook/config"
	"roombook/infras/kafka"
	"roombook/infras/otel"
	"roombook/shared/constant"

	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"
)

const (
	DriverSMTP  = "smtp"
	DriverKafka = "kafka"
	DriverLog   = "log"

	smtpsPort = 465
)

var ErrNoRecipient = errors.New("email has no recipient")

// Email is also the JSON payload relayed over kafka.
type Email struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type Sender interface {
	Send(ctx context.Context, email Email) error
}

// New picks the delivery driver from config. Unknown drivers fall back to logging.
func New(cfg *config.Config, otel otel.Otel, kafkaClient kafka.Client) Sender {
	switch strings.ToLower(cfg.Notifier.Driver) {
	case DriverSMTP:
		return NewSMTP(cfg, otel)
	case DriverKafka:
		return NewKafka(cfg, otel, kafkaClient)
	case DriverLog, constant.Empty:
		return NewLog()
	default:
		log.Warn().Str("driver", cfg.Notifier.Driver).Msg("unknown notifier driver, emails will only be logged")

		return NewLog()
	}
}

type smtpSender struct {
	cfg  *config.Config
	otel otel.Otel
}

func NewSMTP(cfg *config.Config, otel otel.Otel) Sender {
	return &smtpSender{cfg: cfg, otel: otel}
}

func (s *smtpSender) Send(ctx context.Context, email Email) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelMailerScopeName, constant.OtelMailerScopeName+".smtp.Send")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if len(email.To) == 0 {
		return ErrNoRecipient
	}

	scope.SetAttribute("subject", email.Subject)

	msg := mail.NewMsg()
	if err = msg.From(s.cfg.Notifier.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}

	if err = msg.To(email.To...); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextHTML, email.HTML)

	client, err := mail.NewClient(s.cfg.SMTP.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err = client.DialAndSendWithContext(ctx, msg); err != nil {
		log.Error().Err(err).Strs("to", email.To).Str("subject", email.Subject).Msg("failed to send email")

		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info().Strs("to", email.To).Str("subject", email.Subject).Msg("email sent")

	return nil
}

func (s *smtpSender) clientOptions() []mail.Option {
	opts := []mail.Option{mail.WithPort(s.cfg.SMTP.Port)}

	if s.cfg.SMTP.Port == smtpsPort {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}

	if s.cfg.SMTP.Username != constant.Empty {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.SMTP.Username),
			mail.WithPassword(s.cfg.SMTP.Password),
		)
	}

	return opts
}

type kafkaSender struct {
	topic  string
	client kafka.Client
	otel   otel.Otel
}

// NewKafka returns a Sender that hands emails to the mailer worker through kafka.
func NewKafka(cfg *config.Config, otel otel.Otel, client kafka.Client) Sender {
	return &kafkaSender{topic: cfg.Kafka.TopicEmail, client: client, otel: otel}
}

func (s *kafkaSender) Send(ctx context.Context, email Email) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelMailerScopeName, constant.OtelMailerScopeName+".kafka.Send")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if len(email.To) == 0 {
		return ErrNoRecipient
	}

	scope.SetAttribute("topic", s.topic)

	if err = s.client.Publish(ctx, s.topic, kafka.Message{Key: strings.Join(email.To, ","), Value: email}); err != nil {
		log.Error().Err(err).Strs("to", email.To).Msg("failed to enqueue email")

		return fmt.Errorf("failed to enqueue email: %w", err)
	}

	return nil
}

type logSender struct{}

func NewLog() Sender {
	return logSender{}
}

func (logSender) Send(_ context.Context, email Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipient
	}

	log.Info().Strs("to", email.To).Str("subject", email.Subject).Int("html_bytes", len(email.HTML)).Msg("email not delivered, log driver active")

	return nil
}
