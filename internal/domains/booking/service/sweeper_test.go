package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/config"
	otelMocks "roombook/infras/otel/mocks"
	"roombook/internal/domains/booking/mocks"
	"roombook/internal/domains/booking/service"
	cacheMocks "roombook/shared/cache/mocks"
)

var sweepNow = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

func newSweeper(t *testing.T, expiryHours int) (*mocks.MockBooking, *cacheMocks.MockRedisCache, service.Sweeper) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockBooking(ctrl)
	cache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Booking.ExpiryHours = expiryHours

	return repo, cache, service.NewSweeperWithClock(repo, cfg, cache, otelMocks.NewOtel(), func() time.Time { return sweepNow })
}

func TestSweeper_SweepAll(t *testing.T) {
	t.Run("expires bookings older than the window", func(t *testing.T) {
		repo, cache, sweeper := newSweeper(t, 48)

		repo.EXPECT().ExpirePending(gomock.Any(), sweepNow.Add(-48*time.Hour), sweepNow).
			Return([]string{"JGU10001", "JGU10002"}, nil)
		cache.EXPECT().Clear(gomock.Any(), "booking:*").Return(nil)

		swept, err := sweeper.SweepAll(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, swept)
	})

	t.Run("nothing due leaves caches alone", func(t *testing.T) {
		repo, _, sweeper := newSweeper(t, 48)

		repo.EXPECT().ExpirePending(gomock.Any(), gomock.Any(), gomock.Any()).Return([]string{}, nil)

		swept, err := sweeper.SweepAll(context.Background())

		require.NoError(t, err)
		assert.Zero(t, swept)
	})

	t.Run("unset window falls back to 48 hours", func(t *testing.T) {
		repo, _, sweeper := newSweeper(t, 0)

		repo.EXPECT().ExpirePending(gomock.Any(), sweepNow.Add(-48*time.Hour), sweepNow).Return(nil, nil)

		_, err := sweeper.SweepAll(context.Background())

		require.NoError(t, err)
	})

	t.Run("configured window", func(t *testing.T) {
		repo, _, sweeper := newSweeper(t, 24)

		repo.EXPECT().ExpirePending(gomock.Any(), sweepNow.Add(-24*time.Hour), sweepNow).Return(nil, nil)

		_, err := sweeper.SweepAll(context.Background())

		require.NoError(t, err)
	})

	t.Run("storage error", func(t *testing.T) {
		repo, _, sweeper := newSweeper(t, 48)

		repo.EXPECT().ExpirePending(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

		_, err := sweeper.SweepAll(context.Background())

		assert.Error(t, err)
	})
}

func TestSweeper_SweepOne(t *testing.T) {
	t.Run("only targets the given booking", func(t *testing.T) {
		repo, cache, sweeper := newSweeper(t, 48)

		repo.EXPECT().ExpirePending(gomock.Any(), sweepNow.Add(-48*time.Hour), sweepNow, "JGU10001").Return([]string{"JGU10001"}, nil)
		cache.EXPECT().Clear(gomock.Any(), "booking:*").Return(nil)

		swept, err := sweeper.SweepOne(context.Background(), "JGU10001")

		require.NoError(t, err)
		assert.True(t, swept)
	})

	t.Run("second sweep is a no-op", func(t *testing.T) {
		repo, _, sweeper := newSweeper(t, 48)

		repo.EXPECT().ExpirePending(gomock.Any(), gomock.Any(), gomock.Any(), "JGU10001").Return(nil, nil)

		swept, err := sweeper.SweepOne(context.Background(), "JGU10001")

		require.NoError(t, err)
		assert.False(t, swept)
	})
}

func TestSweeper_Run(t *testing.T) {
	repo, _, sweeper := newSweeper(t, 48)

	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan struct{}, 8)

	repo.EXPECT().ExpirePending(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ time.Time, _ ...string) ([]string, error) {
			select {
			case ticks <- struct{}{}:
			default:
			}

			return nil, nil
		}).MinTimes(1)

	done := make(chan struct{})

	go func() {
		sweeper.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not tick")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
