package setting

import (
	"net/http"
	"roombook/infras/otel"
	"roombook/internal/domains/setting/model/dto"
	"roombook/internal/domains/setting/service"
	"roombook/shared/constant"
	"roombook/shared/failure"
	"roombook/shared/validator"
	"roombook/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

const (
	requestParamKey = "key"
)

type Handler struct {
	service service.Setting
	otel    otel.Otel
}

func New(service service.Setting, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/settings", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetSettings)
		routerGroup.Get("/public", handler.GetPublicSettings)
		routerGroup.Post("/logo", handler.UploadLogo)
		routerGroup.Put("/{key}", handler.UpsertSetting)
	})
}

// GetPublicSettings returns the settings the booking pages need without a session.
// @Summary Public settings
// @Tags Setting
// @Produce json
// @Success 200 {object} response.Data[dto.PublicSettingsResponse] "Public settings"
// @Failure 500 {object} response.Error
// @Router /v1/settings/public [get]
func (handler *Handler) GetPublicSettings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPublicSettings")
	defer scope.End()

	res, err := handler.service.GetPublic(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get public settings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetSettings lists every stored setting.
// @Summary List settings
// @Tags Setting
// @Produce json
// @Success 200 {object} response.Data[[]dto.SettingResponse] "Settings"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/settings [get]
// @Security BearerAuth
func (handler *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSettings")
	defer scope.End()

	res, err := handler.service.GetAll(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get settings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpsertSetting stores a setting value.
// @Summary Set a setting
// @Description Known keys are MANAGER_EMAIL (an email address) and logo_url (a URL).
// @Tags Setting
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param request body dto.UpsertSettingRequest true "Setting value"
// @Success 200 {object} response.Data[dto.SettingResponse] "Stored setting"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/settings/{key} [put]
// @Security BearerAuth
func (handler *Handler) UpsertSetting(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpsertSetting")
	defer scope.End()

	key := chi.URLParam(r, requestParamKey)

	req := dto.UpsertSettingRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Upsert(ctx, key, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("key", key).Msg("failed to upsert setting")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserEmail).(string)
	scope.AddEvent("Setting " + key + " updated by " + user)

	response.WithJSON(w, http.StatusOK, res)
}

// UploadLogo replaces the logo shown on the booking pages and in emails.
// @Summary Upload the logo
// @Tags Setting
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PNG or JPEG image, at most 1 MB"
// @Success 200 {object} response.Data[dto.PublicSettingsResponse] "New logo URL"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/settings/logo [post]
// @Security BearerAuth
func (handler *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadLogo")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, failure.BadRequest(err))

		return
	}

	file, fileHeader, err := r.FormFile(constant.FormFile)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get file from form")

		response.WithError(w, failure.BadRequest(err))

		return
	}
	defer file.Close()

	req := dto.UploadLogoRequest{
		File:        file,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(constant.RequestHeaderContentType),
		Size:        fileHeader.Size,
	}

	res, err := handler.service.UploadLogo(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload logo")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
