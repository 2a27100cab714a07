package service

import (
	"context"
	"fmt"
	"time"

	"roombook/config"
	"roombook/infras/otel"
	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/repository"
	"roombook/shared"
	"roombook/shared/cache"
	"roombook/shared/constant"
	"roombook/shared/timezone"

	"github.com/rs/zerolog/log"
)

// Sweeper rejects PENDING bookings that were left undecided past the expiry window.
// Every sweep is idempotent: an expired booking leaves PENDING and is never matched again.
type Sweeper interface {
	SweepAll(ctx context.Context) (int, error)
	SweepOne(ctx context.Context, id string) (bool, error)
	Run(ctx context.Context, interval time.Duration)
}

type sweeperImpl struct {
	repo  repository.Booking
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	now   func() time.Time
}

func NewSweeper(repo repository.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Sweeper {
	return &sweeperImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
		now:   timezone.Now,
	}
}

func (s *sweeperImpl) SweepAll(ctx context.Context) (swept int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.SweepAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ids, err := s.expire(ctx)
	if err != nil {
		return 0, err
	}

	scope.SetAttribute("swept", len(ids))

	return len(ids), nil
}

// SweepOne expires only the given booking, if it is due.
func (s *sweeperImpl) SweepOne(ctx context.Context, id string) (swept bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.SweepOne")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ids, err := s.expire(ctx, id)
	if err != nil {
		return false, err
	}

	return len(ids) > 0, nil
}

// Run sweeps every interval until ctx is done.
func (s *sweeperImpl) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("booking sweeper started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("booking sweeper stopped")

			return
		case <-ticker.C:
			if _, err := s.SweepAll(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("failed to sweep expired bookings")
			}
		}
	}
}

func (s *sweeperImpl) expire(ctx context.Context, ids ...string) ([]string, error) {
	now := s.now()
	cutoff := now.Add(-s.expiry())

	expired, err := s.repo.ExpirePending(ctx, cutoff, now, ids...)
	if err != nil {
		log.Error().Err(err).Msg("failed to expire pending bookings")

		return nil, fmt.Errorf("failed to expire pending bookings: %w", err)
	}

	if len(expired) > 0 {
		log.Info().Strs("booking_ids", expired).Int("swept", len(expired)).Msg("expired pending bookings")

		shared.InvalidateCaches(ctx, s.cache, model.CacheKeyPrefix)
	}

	return expired, nil
}

func (s *sweeperImpl) expiry() time.Duration {
	hours := s.cfg.Booking.ExpiryHours
	if hours <= 0 {
		hours = model.DefaultExpiryHours
	}

	return time.Duration(hours) * time.Hour
}
