package dto

import (
	"mime/multipart"
	"roombook/internal/domains/setting/model"
	gDto "roombook/shared/dto"
)

type UpsertSettingRequest struct {
	Value string `json:"value" validate:"required,max=2048"`
}

type UploadLogoRequest struct {
	File        multipart.File `json:"-"`
	FileName    string         `json:"file_name"    validate:"required"`
	ContentType string         `json:"content_type" validate:"required,mimetypes=image/png image/jpeg"`
	Size        int64          `json:"size"         validate:"required,maxfilesize=1"`
}

type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	gDto.Metadata
}

func (r *SettingResponse) FromModel(model model.Setting) {
	r.Key = model.Key
	r.Value = model.Value
	r.Metadata.FromModel(model.Metadata)
}

type PublicSettingsResponse struct {
	LogoURL string `json:"logo_url"`
}
