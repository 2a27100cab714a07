package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roombook/config"
	"roombook/infras/jwt"
	jwtMocks "roombook/infras/jwt/mocks"
	otelMocks "roombook/infras/otel/mocks"
	"roombook/internal/domains/auth/model/dto"
	"roombook/internal/domains/auth/service"
	notificationMocks "roombook/internal/domains/notification/mocks"
	settingMocks "roombook/internal/domains/setting/mocks"
	"roombook/shared/cache"
	"roombook/shared/failure"
)

// memoryCache stores values the way the redis cache does: strings raw, everything else as JSON.
type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
	ttls   map[string]int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}, ttls: map[string]int{}}
}

func (c *memoryCache) Save(_ context.Context, key string, value any, duration int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok := value.(string)
	if !ok {
		b, err := json.Marshal(value)
		if err != nil {
			return err
		}

		raw = string(b)
	}

	c.values[key] = []byte(raw)
	c.ttls[key] = duration

	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok := c.values[key]
	if !ok {
		return fmt.Errorf("failed to get cache value: %w", cache.Nil)
	}

	if s, ok := value.(*string); ok {
		*s = string(raw)

		return nil
	}

	return json.Unmarshal(raw, value)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.values, key)

	return nil
}

func (c *memoryCache) Clear(context.Context, string) error { return nil }

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.values[key]

	return ok
}

const (
	managerEmail = "manager@example.com"
	otpKey       = "auth:otp:manager@example.com"
	fixedCode    = "482913"
)

type authFixture struct {
	settings *settingMocks.MockSettingService
	notifier *notificationMocks.MockNotifier
	jwt      *jwtMocks.MockJWT
	cache    *memoryCache
	clock    time.Time
	svc      service.Auth
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Auth.OTPExpireMin = 10

	f := &authFixture{
		settings: settingMocks.NewMockSettingService(ctrl),
		notifier: notificationMocks.NewMockNotifier(ctrl),
		jwt:      jwtMocks.NewMockJWT(ctrl),
		cache:    newMemoryCache(),
		clock:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}

	f.svc = service.NewWithGenerator(
		f.settings, f.notifier, f.jwt, cfg, f.cache, otelMocks.NewOtel(),
		func() (string, error) { return fixedCode, nil },
		func() time.Time { return f.clock },
	)

	return f
}

// issue runs a successful OTP request for the manager.
func (f *authFixture) issue(t *testing.T) {
	t.Helper()

	f.settings.EXPECT().ManagerEmail(gomock.Any()).Return(managerEmail, nil)
	f.notifier.EXPECT().SendOTP(gomock.Any(), managerEmail, fixedCode, 10*time.Minute).Return(nil)

	_, err := f.svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Email: managerEmail})
	require.NoError(t, err)
}

func TestAuthService_RequestOTP(t *testing.T) {
	t.Run("manager email gets a code", func(t *testing.T) {
		f := newAuthFixture(t)

		f.settings.EXPECT().ManagerEmail(gomock.Any()).Return(managerEmail, nil)
		f.notifier.EXPECT().SendOTP(gomock.Any(), managerEmail, fixedCode, 10*time.Minute).Return(nil)

		res, err := f.svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Email: "Manager@Example.com"})

		require.NoError(t, err)
		assert.Equal(t, service.MsgOTPSent, res.Message)
		assert.True(t, f.cache.has(otpKey))
		assert.Equal(t, 600, f.cache.ttls[otpKey])
		assert.NotContains(t, string(f.cache.values[otpKey]), fixedCode, "code must be stored hashed")
	})

	t.Run("other emails get the same answer and nothing is sent", func(t *testing.T) {
		f := newAuthFixture(t)

		f.settings.EXPECT().ManagerEmail(gomock.Any()).Return(managerEmail, nil)

		res, err := f.svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Email: "visitor@example.com"})

		require.NoError(t, err)
		assert.Equal(t, service.MsgOTPSent, res.Message)
		assert.Empty(t, f.cache.values)
	})

	t.Run("manager email not configured", func(t *testing.T) {
		f := newAuthFixture(t)

		f.settings.EXPECT().ManagerEmail(gomock.Any()).Return("", nil)

		_, err := f.svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Email: managerEmail})

		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
		assert.ErrorIs(t, err, service.ErrManagerEmailUnset)
	})

	t.Run("undelivered code is discarded", func(t *testing.T) {
		f := newAuthFixture(t)

		f.settings.EXPECT().ManagerEmail(gomock.Any()).Return(managerEmail, nil)
		f.notifier.EXPECT().SendOTP(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

		_, err := f.svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Email: managerEmail})

		require.Error(t, err)
		assert.False(t, f.cache.has(otpKey))
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.RequestOTP(context.Background(), dto.RequestOTPRequest{Email: "manager"})

		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestAuthService_VerifyOTP(t *testing.T) {
	pair := &jwt.TokenPair{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", ExpiresIn: 259200}

	t.Run("valid code signs the manager in once", func(t *testing.T) {
		f := newAuthFixture(t)
		f.issue(t)

		f.jwt.EXPECT().GenerateTokenPair(managerEmail, "manager").Return(pair, nil)

		res, err := f.svc.VerifyOTP(context.Background(), dto.VerifyOTPRequest{Email: "MANAGER@example.com", OTP: fixedCode})

		require.NoError(t, err)
		assert.Equal(t, "access", res.AccessToken)
		assert.False(t, f.cache.has(otpKey))

		_, err = f.svc.VerifyOTP(context.Background(), dto.VerifyOTPRequest{Email: managerEmail, OTP: fixedCode})
		assert.Equal(t, "Invalid OTP", err.Error())
	})

	t.Run("wrong code", func(t *testing.T) {
		f := newAuthFixture(t)
		f.issue(t)

		_, err := f.svc.VerifyOTP(context.Background(), dto.VerifyOTPRequest{Email: managerEmail, OTP: "000000"})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		assert.Equal(t, "Invalid OTP", err.Error())
		assert.True(t, f.cache.has(otpKey))
	})

	t.Run("too many wrong codes discard the otp", func(t *testing.T) {
		f := newAuthFixture(t)
		f.issue(t)

		for range 5 {
			_, err := f.svc.VerifyOTP(context.Background(), dto.VerifyOTPRequest{Email: managerEmail, OTP: "000000"})
			require.Error(t, err)
		}

		assert.False(t, f.cache.has(otpKey))

		_, err := f.svc.VerifyOTP(context.Background(), dto.VerifyOTPRequest{Email: managerEmail, OTP: fixedCode})
		assert.Equal(t, "Invalid OTP", err.Error())
	})

	t.Run("expired code", func(t *testing.T) {
		f := newAuthFixture(t)
		f.issue(t)

		f.clock = f.clock.Add(10 * time.Minute)

		_, err := f.svc.VerifyOTP(context.Background(), dto.VerifyOTPRequest{Email: managerEmail, OTP: fixedCode})

		require.Error(t, err)
		assert.Equal(t, "OTP expired", err.Error())
		assert.False(t, f.cache.has(otpKey))
	})

	t.Run("no otp requested", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.VerifyOTP(context.Background(), dto.VerifyOTPRequest{Email: managerEmail, OTP: fixedCode})

		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func claimsFor(id string, expiresAt time.Time) *jwt.Claims {
	return &jwt.Claims{
		Email: managerEmail,
		Role:  "manager",
		Type:  jwt.AccessToken,
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        id,
			ExpiresAt: gojwt.NewNumericDate(expiresAt),
		},
	}
}

func TestAuthService_Sessions(t *testing.T) {
	t.Run("authenticate", func(t *testing.T) {
		f := newAuthFixture(t)
		claims := claimsFor("jti-1", f.clock.Add(time.Hour))

		f.jwt.EXPECT().ValidateToken("good", jwt.AccessToken).Return(claims, nil)

		got, err := f.svc.Authenticate(context.Background(), "good")

		require.NoError(t, err)
		assert.Equal(t, managerEmail, got.Email)
	})

	t.Run("invalid token", func(t *testing.T) {
		f := newAuthFixture(t)

		f.jwt.EXPECT().ValidateToken("bad", jwt.AccessToken).Return(nil, jwt.ErrInvalidToken)

		_, err := f.svc.Authenticate(context.Background(), "bad")

		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})

	t.Run("logout revokes until expiry", func(t *testing.T) {
		f := newAuthFixture(t)
		claims := claimsFor("jti-2", f.clock.Add(time.Hour))

		f.jwt.EXPECT().ValidateToken("good", jwt.AccessToken).Return(claims, nil).Times(2)

		require.NoError(t, f.svc.Logout(context.Background(), "good", ""))
		assert.Equal(t, 3600, f.cache.ttls["auth:revoked:jti-2"])

		_, err := f.svc.Authenticate(context.Background(), "good")
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})

	t.Run("logout ignores unusable tokens", func(t *testing.T) {
		f := newAuthFixture(t)

		f.jwt.EXPECT().ValidateToken("stale", gomock.Any()).Return(nil, jwt.ErrExpiredToken).Times(2)

		require.NoError(t, f.svc.Logout(context.Background(), "stale"))
		assert.Empty(t, f.cache.values)
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		f := newAuthFixture(t)
		claims := claimsFor("jti-3", f.clock.Add(time.Hour))
		claims.Type = jwt.RefreshToken

		require.NoError(t, f.cache.Save(context.Background(), "auth:revoked:jti-3", "1", 60))

		f.jwt.EXPECT().ValidateToken("refresh", jwt.RefreshToken).Return(claims, nil)

		_, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "refresh"})

		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})

	t.Run("refresh", func(t *testing.T) {
		f := newAuthFixture(t)
		claims := claimsFor("jti-4", f.clock.Add(time.Hour))

		f.jwt.EXPECT().ValidateToken("refresh", jwt.RefreshToken).Return(claims, nil)
		f.jwt.EXPECT().RefreshTokens("refresh").Return(&jwt.TokenPair{AccessToken: "next"}, nil)

		res, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "refresh"})

		require.NoError(t, err)
		assert.Equal(t, "next", res.AccessToken)
	})
}

func TestGenerateOTP(t *testing.T) {
	sixDigits := regexp.MustCompile(`^[1-9]\d{5}$`)

	for range 200 {
		code, err := service.GenerateOTP()

		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code)
	}
}
