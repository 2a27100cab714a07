package service

import (
	"roombook/config"
	"roombook/infras/jwt"
	"roombook/infras/otel"
	"roombook/internal/domains/notification"
	settingService "roombook/internal/domains/setting/service"
	"roombook/shared/cache"
	"time"
)

func NewWithGenerator(
	settings settingService.Setting,
	notifier notification.Notifier,
	jwt jwt.JWT,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	otp func() (string, error),
	now func() time.Time,
) Auth {
	return &serviceImpl{
		settings:   settings,
		notifier:   notifier,
		jwtService: jwt,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
		otp:        otp,
		now:        now,
	}
}

var GenerateOTP = generateOTP
