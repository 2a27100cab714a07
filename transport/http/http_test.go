package http_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roombook/config"
	otelMocks "roombook/infras/otel/mocks"
	transport "roombook/transport/http"
	"roombook/transport/http/middleware"
	"roombook/transport/http/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(cfg *config.Config) *transport.HTTP {
	app := middleware.NewAppMiddleware(otelMocks.NewOtel(), cfg, nil)
	authRole := middleware.NewAuthRoleMiddleware(nil, otelMocks.NewOtel(), nil, cfg)

	return transport.New(cfg, router.New(router.DomainHandlers{}), app, authRole)
}

func freePort(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	_, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	require.NoError(t, listener.Close())

	return port
}

func TestHealth(t *testing.T) {
	server := newServer(&config.Config{})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"OK"}`, rec.Body.String())
	assert.Equal(t, transport.ServerStateReady, server.State())
}

func TestServeContextDrainsOnCancel(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.Server.Env = "production"
	cfg.Server.Shutdown.GracePeriodSeconds = 1
	cfg.Server.Shutdown.CleanupPeriodSeconds = 1

	server := newServer(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- server.ServeContext(ctx) }()

	url := "http://" + net.JoinHostPort(cfg.Server.Host, cfg.Server.Port) + "/health"

	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		return resp.StatusCode == http.StatusServiceUnavailable
	}, time.Second, 20*time.Millisecond)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
