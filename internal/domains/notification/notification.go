// Package notification emails managers and requesters about booking lifecycle events.
package notification

//go:generate go run go.uber.org/mock/mockgen -source=./notification.go -destination=./mocks/notification_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"roombook/config"
	"roombook/infras/mailer"
	"roombook/infras/otel"
	"roombook/internal/domains/booking/model"
	settingService "roombook/internal/domains/setting/service"
	"roombook/shared/constant"

	"github.com/rs/zerolog/log"
)

const (
	sendTimeout = 30 * time.Second

	subjectManagerRequested = "New Booking Request: %s"
	subjectUserRequested    = "Booking Request Received: %s"
	subjectStatusChanged    = "Booking Status Update: %s"
	subjectOTP              = "Manager Login OTP"
)

var errManagerEmailUnset = errors.New("manager email is not configured")

// Notifier sends booking emails. Booking events are best effort: they run in the background
// and failures are only logged. Wait blocks until every background send has finished.
type Notifier interface {
	BookingRequested(ctx context.Context, booking model.Booking)
	BookingStatusChanged(ctx context.Context, booking model.Booking)
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
	Wait()
}

type notifierImpl struct {
	sender   mailer.Sender
	settings settingService.Setting
	cfg      *config.Config
	otel     otel.Otel
	wg       sync.WaitGroup
}

func New(sender mailer.Sender, settings settingService.Setting, cfg *config.Config, otel otel.Otel) Notifier {
	return &notifierImpl{
		sender:   sender,
		settings: settings,
		cfg:      cfg,
		otel:     otel,
	}
}

func (n *notifierImpl) BookingRequested(ctx context.Context, booking model.Booking) {
	n.background(ctx, "BookingRequested", func(ctx context.Context) error {
		var errs []error

		managerEmail, err := n.settings.ManagerEmail(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get manager email: %w", err))
		}

		if managerEmail == constant.Empty && err == nil {
			log.Error().Err(errManagerEmailUnset).Str("booking_id", booking.ID).Msg("failed to notify manager, skipping manager notification")
		}

		if managerEmail != constant.Empty {
			html, err := render(templateManagerRequested, newBookingView(booking, action{URL: dashboardURL(n.cfg.App.PublicURL), Label: "Go to Dashboard"}))
			if err == nil {
				err = n.sender.Send(ctx, mailer.Email{
					To:      []string{managerEmail},
					Subject: fmt.Sprintf(subjectManagerRequested, booking.RoomName),
					HTML:    html,
				})
			}

			if err != nil {
				errs = append(errs, fmt.Errorf("failed to notify manager: %w", err))
			}
		}

		html, err := render(templateUserRequested, newBookingView(booking, action{URL: trackURL(n.cfg.App.PublicURL, booking.ID), Label: "Track Request"}))
		if err == nil {
			err = n.sender.Send(ctx, mailer.Email{
				To:      []string{booking.UserEmail},
				Subject: fmt.Sprintf(subjectUserRequested, booking.RoomName),
				HTML:    html,
			})
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("failed to notify requester: %w", err))
		}

		return errors.Join(errs...)
	})
}

func (n *notifierImpl) BookingStatusChanged(ctx context.Context, booking model.Booking) {
	n.background(ctx, "BookingStatusChanged", func(ctx context.Context) error {
		html, err := render(templateStatusChanged, newBookingView(booking, action{URL: trackURL(n.cfg.App.PublicURL, booking.ID), Label: "View Booking"}))
		if err != nil {
			return err
		}

		return n.sender.Send(ctx, mailer.Email{
			To:      []string{booking.UserEmail},
			Subject: fmt.Sprintf(subjectStatusChanged, booking.Status),
			HTML:    html,
		})
	})
}

// SendOTP delivers a login code synchronously so the caller can report failures.
func (n *notifierImpl) SendOTP(ctx context.Context, to, code string, ttl time.Duration) (err error) {
	ctx, scope := n.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".notification.SendOTP")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	html, err := render(templateOTP, otpView{Code: code, ValidMinutes: validMinutes(ttl)})
	if err != nil {
		return err
	}

	if err = n.sender.Send(ctx, mailer.Email{To: []string{to}, Subject: subjectOTP, HTML: html}); err != nil {
		log.Error().Err(err).Msg("failed to send otp email")

		return fmt.Errorf("failed to send otp email: %w", err)
	}

	return nil
}

func (n *notifierImpl) Wait() {
	n.wg.Wait()
}

// background detaches fn from the request lifetime but keeps its trace context.
func (n *notifierImpl) background(ctx context.Context, name string, fn func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)

	n.wg.Add(1)

	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()

		ctx, scope := n.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".notification."+name)
		defer scope.End()

		if err := fn(ctx); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("event", name).Msg("failed to send booking notification")
		}
	}()
}
