package model

import "roombook/shared/model"

const (
	TableName  = "settings"
	EntityName = "setting"

	FieldKey   = "key"
	FieldValue = "value"

	CacheKeyPrefix = "setting:"
)

// Known keys. Values are validated per key before they are stored.
const (
	KeyManagerEmail = "MANAGER_EMAIL"
	KeyLogoURL      = "logo_url"
)

var validations = map[string]string{
	KeyManagerEmail: "required,email",
	KeyLogoURL:      "required,url",
}

// ValidationTag returns the validator tag for key, and false for unknown keys.
func ValidationTag(key string) (string, bool) {
	tag, ok := validations[key]

	return tag, ok
}

type Setting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
	model.Metadata
}
