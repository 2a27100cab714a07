//go:build wireinject
// +build wireinject

package di

import (
	"roombook/config"
	"roombook/infras/jwt"
	"roombook/infras/kafka"
	"roombook/infras/mailer"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/infras/redis"
	"roombook/infras/s3"
	"roombook/internal/domains/booking/idgen"
	"roombook/internal/domains/notification"
	"roombook/permissions"
	"roombook/shared/cache"
	"roombook/transport/http"
	"roombook/transport/http/middleware"
	"roombook/transport/http/router"

	"github.com/google/wire"

	authService "roombook/internal/domains/auth/service"
	authHandler "roombook/internal/handlers/auth"

	bookingRepository "roombook/internal/domains/booking/repository"
	bookingService "roombook/internal/domains/booking/service"
	bookingHandler "roombook/internal/handlers/booking"

	roomRepository "roombook/internal/domains/room/repository"
	roomService "roombook/internal/domains/room/service"
	roomHandler "roombook/internal/handlers/room"

	settingRepository "roombook/internal/domains/setting/repository"
	settingService "roombook/internal/domains/setting/service"
	settingHandler "roombook/internal/handlers/setting"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	postgres.NewTransactor,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	kafka.New,
	mailer.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var settingDomain = wire.NewSet(
	settingRepository.New,
	settingService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.NewSweeper,
	bookingService.New,
	idgen.New,
	notification.New,
)

var authDomain = wire.NewSet(
	authService.New,
)

var domains = wire.NewSet(
	settingDomain,
	roomDomain,
	bookingDomain,
	authDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	roomHandler.New,
	bookingHandler.New,
	settingHandler.New,
	router.New,
)

func InitializeService() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}

func InitializeSetting() settingService.Setting {
	wire.Build(
		config.Get,
		postgres.New,
		otel.New,
		redis.New,
		s3.New,
		sharedHelpers,
		settingDomain,
	)

	return nil
}

func InitializeMailer() *Mailer {
	wire.Build(
		config.Get,
		otel.New,
		kafka.New,
		mailer.NewSMTP,
		wire.Struct(new(Mailer), "*"),
	)

	return &Mailer{}
}
