package helper_test

import (
	"net/url"
	"testing"

	"roombook/config"
	"roombook/helper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionString(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Postgres.Prefix = "test_"
	cfg.DB.Postgres.Write.Username = "booker"
	cfg.DB.Postgres.Write.Password = "p@ss/word"
	cfg.DB.Postgres.Write.Host = "db"
	cfg.DB.Postgres.Write.Port = "5432"
	cfg.DB.Postgres.Write.Name = "roombook"

	parsed, err := url.Parse(helper.ConnectionString(cfg))
	require.NoError(t, err)

	password, _ := parsed.User.Password()

	assert.Equal(t, "postgres", parsed.Scheme)
	assert.Equal(t, "p@ss/word", password)
	assert.Equal(t, "db:5432", parsed.Host)
	assert.Equal(t, "/test_roombook", parsed.Path)
	assert.Equal(t, "disable", parsed.Query().Get("sslmode"))
	assert.Equal(t, "schema_migrations", parsed.Query().Get("x-migrations-table"))
}

func TestAction(t *testing.T) {
	for _, action := range []helper.Action{helper.ActionUp, helper.ActionDown, helper.ActionStepUp, helper.ActionDrop} {
		assert.True(t, action.Valid(), action)
	}

	assert.False(t, helper.Action("sideways").Valid())
	assert.Error(t, helper.Runner(&config.Config{}, helper.Action("sideways")))
}
