package notification_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/config"
	"roombook/infras/mailer"
	mailerMocks "roombook/infras/mailer/mocks"
	otelMocks "roombook/infras/otel/mocks"
	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/notification"
	settingMocks "roombook/internal/domains/setting/mocks"
)

type recorder struct {
	mu     sync.Mutex
	emails []mailer.Email
}

func (r *recorder) record(_ context.Context, email mailer.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.emails = append(r.emails, email)

	return nil
}

func (r *recorder) bySubject() map[string]mailer.Email {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := map[string]mailer.Email{}
	for _, email := range r.emails {
		out[email.Subject] = email
	}

	return out
}

func newBooking() model.Booking {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	return model.Booking{
		ID:        "JGU48213",
		RoomID:    "board-room",
		RoomName:  "Board Room",
		UserName:  "Ayu",
		UserEmail: "ayu@example.com",
		Purpose:   "Quarterly review",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    model.StatusPending,
	}
}

func newConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.PublicURL = "https://rooms.example.com/"

	return cfg
}

func TestNotifier_BookingRequested(t *testing.T) {
	t.Run("emails manager and requester", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mailerMocks.NewMockSender(ctrl)
		settings := settingMocks.NewMockSettingService(ctrl)
		rec := &recorder{}

		settings.EXPECT().ManagerEmail(gomock.Any()).Return("manager@example.com", nil)
		sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(rec.record).Times(2)

		n := notification.New(sender, settings, newConfig(), otelMocks.NewOtel())
		n.BookingRequested(context.Background(), newBooking())
		n.Wait()

		emails := rec.bySubject()
		require.Len(t, emails, 2)

		manager := emails["New Booking Request: Board Room"]
		assert.Equal(t, []string{"manager@example.com"}, manager.To)
		assert.Contains(t, manager.HTML, "Ayu (ayu@example.com)")
		assert.Contains(t, manager.HTML, "Mar 2, 2026")
		assert.Contains(t, manager.HTML, "https://rooms.example.com/dashboard")

		user := emails["Booking Request Received: Board Room"]
		assert.Equal(t, []string{"ayu@example.com"}, user.To)
		assert.Contains(t, user.HTML, "JGU48213")
		assert.Contains(t, user.HTML, "PENDING")
		assert.Contains(t, user.HTML, "https://rooms.example.com/track?id=JGU48213")
	})

	t.Run("missing manager email still notifies requester", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mailerMocks.NewMockSender(ctrl)
		settings := settingMocks.NewMockSettingService(ctrl)
		rec := &recorder{}

		var logs bytes.Buffer

		original := log.Logger
		log.Logger = zerolog.New(&logs)
		t.Cleanup(func() { log.Logger = original })

		settings.EXPECT().ManagerEmail(gomock.Any()).Return("", nil)
		sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(rec.record).Times(1)

		n := notification.New(sender, settings, newConfig(), otelMocks.NewOtel())
		n.BookingRequested(context.Background(), newBooking())
		n.Wait()

		_, ok := rec.bySubject()["Booking Request Received: Board Room"]
		assert.True(t, ok)

		assert.Contains(t, logs.String(), `"level":"error"`)
		assert.Contains(t, logs.String(), "manager email is not configured")
		assert.Contains(t, logs.String(), `"booking_id":"JGU48213"`)
	})

	t.Run("send failures are swallowed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mailerMocks.NewMockSender(ctrl)
		settings := settingMocks.NewMockSettingService(ctrl)

		settings.EXPECT().ManagerEmail(gomock.Any()).Return("", errors.New("redis down"))
		sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

		n := notification.New(sender, settings, newConfig(), otelMocks.NewOtel())
		n.BookingRequested(context.Background(), newBooking())
		n.Wait()
	})

	t.Run("outlives a cancelled request context", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mailerMocks.NewMockSender(ctrl)
		settings := settingMocks.NewMockSettingService(ctrl)

		var sendErr error

		settings.EXPECT().ManagerEmail(gomock.Any()).Return("", nil)
		sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ mailer.Email) error {
			sendErr = ctx.Err()

			return sendErr
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		n := notification.New(sender, settings, newConfig(), otelMocks.NewOtel())
		n.BookingRequested(ctx, newBooking())
		n.Wait()

		assert.NoError(t, sendErr)
	})
}

func TestNotifier_BookingStatusChanged(t *testing.T) {
	reason := "Room under maintenance"

	tests := []struct {
		name      string
		status    model.Status
		reason    *string
		wantColor string
	}{
		{name: "approved", status: model.StatusApproved, wantColor: "green"},
		{name: "rejected with reason", status: model.StatusRejected, reason: &reason, wantColor: "red"},
		{name: "cancelled", status: model.StatusCancelled, wantColor: "orange"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			sender := mailerMocks.NewMockSender(ctrl)
			rec := &recorder{}

			sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(rec.record)

			booking := newBooking()
			booking.Status = tt.status
			booking.RejectionReason = tt.reason

			n := notification.New(sender, settingMocks.NewMockSettingService(ctrl), newConfig(), otelMocks.NewOtel())
			n.BookingStatusChanged(context.Background(), booking)
			n.Wait()

			email, ok := rec.bySubject()["Booking Status Update: "+string(tt.status)]
			require.True(t, ok)
			assert.Equal(t, []string{"ayu@example.com"}, email.To)
			assert.Contains(t, email.HTML, "color: "+tt.wantColor)

			if tt.reason != nil {
				assert.Contains(t, email.HTML, *tt.reason)
			} else {
				assert.NotContains(t, email.HTML, "Reason:")
			}
		})
	}
}

func TestNotifier_SendOTP(t *testing.T) {
	t.Run("delivers the code", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mailerMocks.NewMockSender(ctrl)
		rec := &recorder{}

		sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(rec.record)

		n := notification.New(sender, settingMocks.NewMockSettingService(ctrl), newConfig(), otelMocks.NewOtel())

		require.NoError(t, n.SendOTP(context.Background(), "manager@example.com", "482913", 10*time.Minute))

		email := rec.bySubject()["Manager Login OTP"]
		assert.Equal(t, []string{"manager@example.com"}, email.To)
		assert.Contains(t, email.HTML, "482913")
		assert.Contains(t, email.HTML, "valid for 10 minutes")
	})

	t.Run("returns delivery errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		sender := mailerMocks.NewMockSender(ctrl)

		sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

		n := notification.New(sender, settingMocks.NewMockSettingService(ctrl), newConfig(), otelMocks.NewOtel())

		assert.Error(t, n.SendOTP(context.Background(), "manager@example.com", "482913", 10*time.Minute))
	})
}
