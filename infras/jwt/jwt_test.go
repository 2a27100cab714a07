package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/config"
	"roombook/infras/jwt"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "roombook"
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = 4320
	cfg.JWT.RefreshExpireMin = 10080

	return cfg
}

func TestGenerateAndValidate(t *testing.T) {
	issued := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	clock := issued

	svc := jwt.NewWithClock(testConfig(), func() time.Time { return clock })

	pair, err := svc.GenerateTokenPair("manager@example.com", "manager")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(72*60*60), pair.ExpiresIn)
	assert.Equal(t, issued.Add(72*time.Hour), pair.ExpiresAt)

	t.Run("access token", func(t *testing.T) {
		claims, err := svc.ValidateToken(pair.AccessToken, jwt.AccessToken)

		require.NoError(t, err)
		assert.Equal(t, "manager@example.com", claims.Email)
		assert.Equal(t, "manager@example.com", claims.Subject)
		assert.Equal(t, "manager", claims.Role)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("token type is enforced", func(t *testing.T) {
		_, err := svc.ValidateToken(pair.RefreshToken, jwt.AccessToken)

		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("tampered token", func(t *testing.T) {
		_, err := svc.ValidateToken(pair.AccessToken+"x", jwt.AccessToken)

		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("expired after 72 hours", func(t *testing.T) {
		clock = issued.Add(72*time.Hour + time.Second)
		t.Cleanup(func() { clock = issued })

		_, err := svc.ValidateToken(pair.AccessToken, jwt.AccessToken)

		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("refresh issues a new pair", func(t *testing.T) {
		refreshed, err := svc.RefreshTokens(pair.RefreshToken)

		require.NoError(t, err)

		claims, err := svc.ValidateToken(refreshed.AccessToken, jwt.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "manager", claims.Role)
	})
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "", wantErr: jwt.ErrMissingHeader},
		{header: "Basic abc", wantErr: jwt.ErrMalformedAuth},
		{header: "Bearer ", wantErr: jwt.ErrMalformedAuth},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := jwt.ExtractTokenFromHeader(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
