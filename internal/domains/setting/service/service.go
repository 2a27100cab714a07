package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Setting=MockSettingService

import (
	"context"
	"fmt"
	"path"
	"strings"

	"roombook/config"
	"roombook/infras/otel"
	"roombook/infras/s3"
	"roombook/internal/domains/setting/model"
	"roombook/internal/domains/setting/model/dto"
	"roombook/internal/domains/setting/repository"
	"roombook/shared"
	"roombook/shared/cache"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	gModel "roombook/shared/model"
	"roombook/shared/timezone"
	"roombook/shared/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetSetting     = model.CacheKeyPrefix + "get"
	cacheGetAllSettings = model.CacheKeyPrefix + "gets"

	logoDirectory = "logo"
)

const (
	msgUnknownSettingKey = "unknown setting key"
)

type Setting interface {
	ManagerEmail(ctx context.Context) (string, error)
	LogoURL(ctx context.Context) (string, error)
	GetPublic(ctx context.Context) (dto.PublicSettingsResponse, error)
	GetAll(ctx context.Context) ([]dto.SettingResponse, error)
	Upsert(ctx context.Context, key string, req dto.UpsertSettingRequest) (dto.SettingResponse, error)
	UploadLogo(ctx context.Context, req dto.UploadLogoRequest) (dto.PublicSettingsResponse, error)
}

type serviceImpl struct {
	repo  repository.Setting
	s3    s3.S3
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Setting, s3 s3.S3, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Setting {
	return &serviceImpl{
		repo:  repo,
		s3:    s3,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

// ManagerEmail returns the configured manager address, or "" when it has not been set.
func (s *serviceImpl) ManagerEmail(ctx context.Context) (string, error) {
	return s.value(ctx, model.KeyManagerEmail)
}

func (s *serviceImpl) LogoURL(ctx context.Context) (string, error) {
	return s.value(ctx, model.KeyLogoURL)
}

func (s *serviceImpl) GetPublic(ctx context.Context) (res dto.PublicSettingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".setting.GetPublic")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res.LogoURL, err = s.LogoURL(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to get public settings: %w", err)
	}

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context) (res []dto.SettingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".setting.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if cacheErr := s.cache.Get(ctx, cacheGetAllSettings, &res); cacheErr == nil {
		log.Info().Str("cacheKey", cacheGetAllSettings).Msg("cache hit for settings")

		return res, nil
	}

	params := gDto.QueryParams{SortBy: model.FieldKey, SortDir: gDto.SortDirAsc}

	models, err := s.repo.GetAll(ctx, params, gDto.FilterGroup{})
	if err != nil {
		log.Error().Err(err).Msg("failed to get settings")

		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	res = make([]dto.SettingResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	if err := s.cache.Save(ctx, cacheGetAllSettings, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save settings to cache")
	}

	return res, nil
}

// Upsert validates value against the rules of key before storing it. Unknown keys are rejected.
func (s *serviceImpl) Upsert(ctx context.Context, key string, req dto.UpsertSettingRequest) (res dto.SettingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".setting.Upsert")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("setting_key", key)

	tag, ok := model.ValidationTag(key)
	if !ok {
		return res, failure.BadRequestFromString(msgUnknownSettingKey) // nolint:wrapcheck
	}

	value := strings.TrimSpace(req.Value)
	if err = validator.ValidateVar(value, tag); err != nil {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid value for %s", key)) // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserEmail).(string)
	setting := model.Setting{
		Key:      key,
		Value:    value,
		Metadata: gModel.NewMetadata(timezone.Now(), user),
	}

	if err = s.repo.Upsert(ctx, setting); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upsert setting")

		return res, fmt.Errorf("failed to upsert setting: %w", err)
	}

	s.invalidate(ctx, key)

	res.FromModel(setting)

	return res, nil
}

// UploadLogo stores the image in S3, points logo_url at it and removes the previous logo object.
func (s *serviceImpl) UploadLogo(ctx context.Context, req dto.UploadLogoRequest) (res dto.PublicSettingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".setting.UploadLogo")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err //nolint:wrapcheck
	}

	previous, err := s.LogoURL(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to get current logo: %w", err)
	}

	fileName := uuid.NewString() + strings.ToLower(path.Ext(req.FileName))

	url, err := s.s3.Upload(ctx, logoDirectory, fileName, req.ContentType, req.File)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload logo")

		return res, fmt.Errorf("failed to upload logo: %w", err)
	}

	if _, err = s.Upsert(ctx, model.KeyLogoURL, dto.UpsertSettingRequest{Value: url}); err != nil {
		return res, err
	}

	if previous != constant.Empty && previous != url {
		if objectKey := s.s3.ObjectKeyFromURL(previous); objectKey != constant.Empty {
			if err := s.s3.Delete(ctx, objectKey); err != nil {
				log.Warn().Err(err).Str("object_key", objectKey).Msg("failed to delete previous logo")
			}
		}
	}

	res.LogoURL = url

	return res, nil
}

func (s *serviceImpl) value(ctx context.Context, key string) (res string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".setting.value")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetSetting, key)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		return res, nil
	}

	setting, err := s.repo.Get(ctx, shared.FilterByID(key, model.FieldKey, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to get setting")

		return res, fmt.Errorf("failed to get setting (%s): %w", key, err)
	}

	res = setting.Value

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save setting to cache")
	}

	return res, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetSetting, key)); err != nil {
		log.Error().Err(err).Msg("failed to delete setting from cache")
	}

	if err := s.cache.Delete(ctx, cacheGetAllSettings); err != nil {
		log.Error().Err(err).Msg("failed to delete settings from cache")
	}
}
