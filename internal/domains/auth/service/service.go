package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"roombook/config"
	"roombook/infras/jwt"
	"roombook/infras/otel"
	"roombook/internal/domains/auth/model/dto"
	"roombook/internal/domains/notification"
	settingService "roombook/internal/domains/setting/service"
	"roombook/shared"
	"roombook/shared/cache"
	"roombook/shared/constant"
	"roombook/shared/failure"
	"roombook/shared/secret"
	"roombook/shared/timezone"
	"roombook/shared/validator"

	"github.com/rs/zerolog/log"
)

const (
	cacheOTP     = "auth:otp"
	cacheRevoked = "auth:revoked"

	maxOTPAttempts = 5
	otpDigits      = 6
)

const (
	MsgOTPSent       = "If the email is registered, an OTP has been sent."
	msgInvalidOTP    = "Invalid OTP"
	msgExpiredOTP    = "OTP expired"
	msgInvalidToken  = "invalid or expired token"
	msgRevokedToken  = "session has been signed out"
	msgInvalidRefresh = "invalid refresh token"
)

var ErrManagerEmailUnset = errors.New("manager email is not configured")

type Auth interface {
	RequestOTP(ctx context.Context, req dto.RequestOTPRequest) (dto.MessageResponse, error)
	VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, tokens ...string) error
	Authenticate(ctx context.Context, accessToken string) (*jwt.Claims, error)
}

type otpRecord struct {
	Email     string    `json:"email"`
	Hash      string    `json:"hash"`
	Attempts  int       `json:"attempts"`
	ExpiresAt time.Time `json:"expires_at"`
}

type serviceImpl struct {
	settings   settingService.Setting
	notifier   notification.Notifier
	jwtService jwt.JWT
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
	otp        func() (string, error)
	now        func() time.Time
}

func New(
	settings settingService.Setting,
	notifier notification.Notifier,
	jwt jwt.JWT,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Auth {
	return &serviceImpl{
		settings:   settings,
		notifier:   notifier,
		jwtService: jwt,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
		otp:        generateOTP,
		now:        timezone.Now,
	}
}

func generateOTP() (string, error) {
	floor := int64(1)
	for range otpDigits - 1 {
		floor *= 10
	}

	n, err := rand.Int(rand.Reader, big.NewInt(9*floor))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	return fmt.Sprintf("%d", n.Int64()+floor), nil
}

func (s *serviceImpl) otpTTL() time.Duration {
	return time.Duration(s.cfg.Auth.OTPExpireMin) * time.Minute
}

// RequestOTP mails a one time code when email is the manager address. The response never
// reveals whether it was.
func (s *serviceImpl) RequestOTP(ctx context.Context, req dto.RequestOTPRequest) (res dto.MessageResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.RequestOTP")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res.Message = MsgOTPSent

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err //nolint:wrapcheck
	}

	managerEmail, err := s.settings.ManagerEmail(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to get manager email: %w", err)
	}

	if managerEmail == constant.Empty {
		log.Error().Msg("MANAGER_EMAIL setting is not configured")

		return res, failure.InternalError(ErrManagerEmailUnset) // nolint:wrapcheck
	}

	if !strings.EqualFold(req.Email, managerEmail) {
		log.Warn().Str("email", req.Email).Msg("otp requested for non manager email")

		return res, nil
	}

	code, err := s.otp()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate otp")

		return res, err
	}

	hash, err := secret.Hash(code)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash otp")

		return res, fmt.Errorf("failed to hash otp: %w", err)
	}

	ttl := s.otpTTL()
	record := otpRecord{Email: managerEmail, Hash: hash, ExpiresAt: s.now().Add(ttl)}
	key := otpKey(managerEmail)

	if err = s.cache.Save(ctx, key, record, int(ttl.Seconds())); err != nil {
		return res, fmt.Errorf("failed to store otp: %w", err)
	}

	if err = s.notifier.SendOTP(ctx, managerEmail, code, ttl); err != nil {
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			log.Error().Err(delErr).Msg("failed to discard undelivered otp")
		}

		return res, fmt.Errorf("failed to send otp: %w", err)
	}

	log.Info().Msg("manager otp sent")

	return res, nil
}

// VerifyOTP exchanges a valid code for a manager session. A code is single use and
// is discarded after too many wrong guesses.
func (s *serviceImpl) VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.VerifyOTP")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err //nolint:wrapcheck
	}

	key := otpKey(req.Email)

	var record otpRecord
	if err = s.cache.Get(ctx, key, &record); err != nil {
		if errors.Is(err, cache.Nil) {
			return res, failure.BadRequestFromString(msgInvalidOTP) // nolint:wrapcheck
		}

		return res, fmt.Errorf("failed to get otp: %w", err)
	}

	now := s.now()
	if !now.Before(record.ExpiresAt) {
		s.discardOTP(ctx, key)

		return res, failure.BadRequestFromString(msgExpiredOTP) // nolint:wrapcheck
	}

	if err = secret.Compare(record.Hash, req.OTP); err != nil {
		if !errors.Is(err, secret.ErrMismatch) {
			return res, fmt.Errorf("failed to verify otp: %w", err)
		}

		record.Attempts++
		if record.Attempts >= maxOTPAttempts {
			log.Warn().Msg("otp discarded after too many attempts")
			s.discardOTP(ctx, key)
		} else if saveErr := s.cache.Save(ctx, key, record, ttlSeconds(record.ExpiresAt.Sub(now))); saveErr != nil {
			log.Error().Err(saveErr).Msg("failed to record otp attempt")
		}

		return res, failure.BadRequestFromString(msgInvalidOTP) // nolint:wrapcheck
	}

	s.discardOTP(ctx, key)

	tokenPair, err := s.jwtService.GenerateTokenPair(strings.ToLower(record.Email), constant.RoleManager)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	log.Info().Msg("manager signed in")

	res.FromTokenPair(tokenPair)

	return res, nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.RefreshToken")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err //nolint:wrapcheck
	}

	claims, err := s.jwtService.ValidateToken(req.RefreshToken, jwt.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("invalid refresh token")

		return res, failure.Unauthorized(msgInvalidRefresh) // nolint:wrapcheck
	}

	if err = s.checkRevoked(ctx, claims); err != nil {
		return res, err
	}

	tokenPair, err := s.jwtService.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized(msgInvalidRefresh) // nolint:wrapcheck
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

// Logout revokes the given tokens until they would have expired anyway. Tokens that no
// longer validate are skipped.
func (s *serviceImpl) Logout(ctx context.Context, tokens ...string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Logout")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	for _, token := range tokens {
		if token == constant.Empty {
			continue
		}

		claims, validateErr := s.jwtService.ValidateToken(token, jwt.AccessToken)
		if validateErr != nil {
			claims, validateErr = s.jwtService.ValidateToken(token, jwt.RefreshToken)
		}

		if validateErr != nil || claims.ExpiresAt == nil {
			continue
		}

		ttl := ttlSeconds(claims.ExpiresAt.Sub(s.now()))
		if err = s.cache.Save(ctx, shared.BuildCacheKey(cacheRevoked, claims.ID), "1", ttl); err != nil {
			log.Error().Err(err).Msg("failed to revoke token")

			return fmt.Errorf("failed to revoke token: %w", err)
		}
	}

	return nil
}

// Authenticate validates an access token and rejects revoked sessions.
func (s *serviceImpl) Authenticate(ctx context.Context, accessToken string) (claims *jwt.Claims, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".auth.Authenticate")
	defer scope.End()

	claims, err = s.jwtService.ValidateToken(accessToken, jwt.AccessToken)
	if err != nil {
		return nil, failure.Unauthorized(msgInvalidToken) // nolint:wrapcheck
	}

	if err = s.checkRevoked(ctx, claims); err != nil {
		scope.TraceIfError(err)

		return nil, err
	}

	return claims, nil
}

func (s *serviceImpl) checkRevoked(ctx context.Context, claims *jwt.Claims) error {
	var revoked string

	err := s.cache.Get(ctx, shared.BuildCacheKey(cacheRevoked, claims.ID), &revoked)
	if err == nil {
		return failure.Unauthorized(msgRevokedToken) // nolint:wrapcheck
	}

	if errors.Is(err, cache.Nil) {
		return nil
	}

	log.Error().Err(err).Msg("failed to check token revocation")

	return fmt.Errorf("failed to check token revocation: %w", err)
}

func (s *serviceImpl) discardOTP(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Error().Err(err).Msg("failed to delete otp")
	}
}

func otpKey(email string) string {
	return shared.BuildCacheKey(cacheOTP, strings.ToLower(email))
}

func ttlSeconds(d time.Duration) int {
	return max(int(d.Seconds()), 1)
}
