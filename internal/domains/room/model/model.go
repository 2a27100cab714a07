package model

import (
	"strings"

	"roombook/shared/model"

	"github.com/gosimple/slug"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID          = "id"
	FieldName        = "name"
	FieldDescription = "description"
)

const CacheKeyPrefix = "room:"

// MaxIDLength matches the width of rooms.id.
const MaxIDLength = 120

// Room ids are slugs of the room name, so a name maps to exactly one id.
type Room struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	model.Metadata
}

// Slugify derives the room id from its name: lower case ASCII words joined by hyphens.
// Transliteration can make the slug longer than the name, so it is cut to MaxIDLength,
// preferably at a word boundary.
func Slugify(name string) string {
	id := slug.Make(name)
	if len(id) <= MaxIDLength {
		return id
	}

	id = id[:MaxIDLength]
	if cut := strings.LastIndex(id, "-"); cut > 0 {
		id = id[:cut]
	}

	return strings.Trim(id, "-")
}
