package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"roombook/config"
	otelMocks "roombook/infras/otel/mocks"
	"roombook/shared/cache"
	cacheMocks "roombook/shared/cache/mocks"
	"roombook/shared/constant"
	"roombook/transport/http/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func limiterConfig(maxRequests int) *config.Config {
	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = maxRequests
	cfg.App.RateLimiter.WindowSeconds = 60

	return cfg
}

func TestRateLimit(t *testing.T) {
	t.Run("counts per client and blocks past the limit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		redis := cacheMocks.NewMockRedisCache(ctrl)

		store := map[string][]byte{}
		redis.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, key string, value any) error {
				raw, ok := store[key]
				if !ok {
					return cache.Nil
				}

				return json.Unmarshal(raw, value)
			}).AnyTimes()
		redis.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), 60).DoAndReturn(
			func(_ context.Context, key string, value any, _ int) error {
				raw, err := json.Marshal(value)
				store[key] = raw

				return err
			}).AnyTimes()

		handler := middleware.NewAppMiddleware(otelMocks.NewOtel(), limiterConfig(2), redis).RateLimit()(http.HandlerFunc(okHandler))

		codes := make([]int, 0, 3)
		for range 3 {
			req := httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/v1/rooms", nil)
			req.Header.Set(constant.RequestHeaderForwardedFor, "10.0.0.1, 172.16.0.1")

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)

			if rec.Code == http.StatusOK {
				assert.Equal(t, "2", rec.Header().Get(constant.RequestHeaderRateLimit))
			}
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
		require.Len(t, store, 1)
	})

	t.Run("buckets by resource and client address", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		redis := cacheMocks.NewMockRedisCache(ctrl)

		store := map[string]int{}
		redis.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, key string, value any) error {
				count, ok := store[key]
				if !ok {
					return cache.Nil
				}

				*value.(*int) = count //nolint:forcetypeassert

				return nil
			}).AnyTimes()
		redis.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), 60).DoAndReturn(
			func(_ context.Context, key string, value any, _ int) error {
				store[key] = value.(int) //nolint:forcetypeassert

				return nil
			}).AnyTimes()

		handler := middleware.NewAppMiddleware(otelMocks.NewOtel(), limiterConfig(1), redis).RateLimit()(http.HandlerFunc(okHandler))

		send := func(path, userAgent string) int {
			req := httptest.NewRequestWithContext(context.Background(), http.MethodGet, path, nil)
			req.RemoteAddr = "192.0.2.7:51234"
			req.Header.Set("User-Agent", userAgent)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			return rec.Code
		}

		assert.Equal(t, http.StatusOK, send("/v1/bookings/JGU12345", "curl/8.0"))
		assert.Equal(t, http.StatusTooManyRequests, send("/v1/bookings/JGU12345/receipt", "curl/8.1"))
		assert.Equal(t, http.StatusOK, send("/v1/rooms", "curl/8.0"))

		assert.Equal(t, map[string]int{
			"limiter:bookings:192.0.2.7": 1,
			"limiter:rooms:192.0.2.7":    1,
		}, store)
	})

	t.Run("cache outage lets the request through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		redis := cacheMocks.NewMockRedisCache(ctrl)
		redis.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

		handler := middleware.NewAppMiddleware(otelMocks.NewOtel(), limiterConfig(1), redis).RateLimit()(http.HandlerFunc(okHandler))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("disabled limiter never touches the cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		redis := cacheMocks.NewMockRedisCache(ctrl)

		handler := middleware.NewAppMiddleware(otelMocks.NewOtel(), &config.Config{}, redis).RateLimit()(http.HandlerFunc(okHandler))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.CORS.Enable = true
	cfg.App.CORS.AllowedOrigins = []string{"https://rooms.example.com"}
	cfg.App.CORS.AllowedMethods = []string{http.MethodGet, http.MethodPost}

	handler := middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg, nil).CORS()(http.HandlerFunc(okHandler))

	req := httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/v1/rooms", nil)
	req.Header.Set("Origin", "https://rooms.example.com")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://rooms.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTracingPassesStatusThrough(t *testing.T) {
	handler := middleware.NewAppMiddleware(otelMocks.NewOtel(), &config.Config{}, nil).Tracing(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequestWithContext(context.Background(), http.MethodPost, "/v1/bookings", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}
