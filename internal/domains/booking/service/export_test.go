package service

import (
	"time"

	"roombook/config"
	"roombook/infras/otel"
	"roombook/internal/domains/booking/repository"
	"roombook/shared/cache"
)

func NewSweeperWithClock(repo repository.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, now func() time.Time) Sweeper {
	s := NewSweeper(repo, cfg, cache, otel).(*sweeperImpl) //nolint:forcetypeassert
	s.now = now

	return s
}
