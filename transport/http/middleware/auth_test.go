package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"roombook/config"
	"roombook/infras/jwt"
	otelMocks "roombook/infras/otel/mocks"
	authMocks "roombook/internal/domains/auth/mocks"
	"roombook/permissions"
	"roombook/shared/constant"
	"roombook/shared/failure"
	"roombook/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testAPIKey = "internal-key"

func newTestRouter(t *testing.T) (http.Handler, *authMocks.MockAuth) {
	t.Helper()

	ctrl := gomock.NewController(t)
	auth := authMocks.NewMockAuth(ctrl)

	cfg := &config.Config{}
	cfg.App.APIKey = testAPIKey
	cfg.Auth.CookieName = "auth_token"

	perms := permissions.Get()
	require.NotNil(t, perms)

	mw := middleware.NewAuthRoleMiddleware(auth, otelMocks.NewOtel(), perms, cfg)

	echo := func(w http.ResponseWriter, r *http.Request) {
		email, _ := r.Context().Value(constant.ContextKeyUserEmail).(string)
		w.Header().Set("X-Email", email)
		w.WriteHeader(http.StatusOK)
	}

	router := chi.NewRouter()
	router.Group(func(group chi.Router) {
		group.Use(mw.APIKey, mw.Auth, mw.RBAC)
		group.Route("/v1", func(v1 chi.Router) {
			v1.Get("/rooms", echo)
			v1.Get("/bookings", echo)
			v1.Post("/bookings", echo)
			v1.Get("/bookings/{id}", echo)
			v1.Patch("/bookings/{id}", echo)
		})
	})

	return router, auth
}

func managerClaims() *jwt.Claims {
	return &jwt.Claims{
		Email:            "manager@example.com",
		Role:             constant.RoleManager,
		Type:             jwt.AccessToken,
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "manager@example.com", ID: "jti-1"},
	}
}

func TestAuthRole(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		header    map[string]string
		cookie    string
		setup     func(auth *authMocks.MockAuth)
		wantCode  int
		wantEmail string
	}{
		{
			name:     "public room listing needs no session",
			method:   http.MethodGet,
			path:     "/v1/rooms",
			wantCode: http.StatusOK,
		},
		{
			name:     "anonymous booking request",
			method:   http.MethodPost,
			path:     "/v1/bookings",
			wantCode: http.StatusOK,
		},
		{
			name:     "public booking tracking",
			method:   http.MethodGet,
			path:     "/v1/bookings/JGU12345",
			wantCode: http.StatusOK,
		},
		{
			name:     "booking listing without session",
			method:   http.MethodGet,
			path:     "/v1/bookings",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "malformed authorization header",
			method:   http.MethodGet,
			path:     "/v1/bookings",
			header:   map[string]string{constant.RequestHeaderAuthorization: "Token abc"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "bearer token of the manager",
			method: http.MethodPatch,
			path:   "/v1/bookings/JGU12345",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer good"},
			setup: func(auth *authMocks.MockAuth) {
				auth.EXPECT().Authenticate(gomock.Any(), "good").Return(managerClaims(), nil)
			},
			wantCode:  http.StatusOK,
			wantEmail: "manager@example.com",
		},
		{
			name:   "session cookie",
			method: http.MethodGet,
			path:   "/v1/bookings",
			cookie: "from-cookie",
			setup: func(auth *authMocks.MockAuth) {
				auth.EXPECT().Authenticate(gomock.Any(), "from-cookie").Return(managerClaims(), nil)
			},
			wantCode:  http.StatusOK,
			wantEmail: "manager@example.com",
		},
		{
			name:   "revoked token",
			method: http.MethodGet,
			path:   "/v1/bookings",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer revoked"},
			setup: func(auth *authMocks.MockAuth) {
				auth.EXPECT().Authenticate(gomock.Any(), "revoked").Return(nil, failure.Unauthorized("Token has been revoked"))
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "wrong role",
			method: http.MethodGet,
			path:   "/v1/bookings",
			header: map[string]string{constant.RequestHeaderAuthorization: "Bearer guest"},
			setup: func(auth *authMocks.MockAuth) {
				claims := managerClaims()
				claims.Role = "guest"
				auth.EXPECT().Authenticate(gomock.Any(), "guest").Return(claims, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:      "internal api key bypasses the session",
			method:    http.MethodGet,
			path:      "/v1/bookings",
			header:    map[string]string{constant.RequestHeaderAPIKey: testAPIKey},
			wantCode:  http.StatusOK,
			wantEmail: "internal",
		},
		{
			name:     "wrong api key",
			method:   http.MethodGet,
			path:     "/v1/rooms",
			header:   map[string]string{constant.RequestHeaderAPIKey: "nope"},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := newTestRouter(t)
			if tt.setup != nil {
				tt.setup(auth)
			}

			req := httptest.NewRequestWithContext(context.Background(), tt.method, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "auth_token", Value: tt.cookie})
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantEmail, rec.Header().Get("X-Email"))
		})
	}
}

func TestFindPermissionsIgnoresTrailingSlash(t *testing.T) {
	perms := permissions.Get()
	require.NotNil(t, perms)

	assert.True(t, perms.FindPermissions("/v1/rooms/", http.MethodGet).Skip)
	assert.True(t, perms.FindPermissions("/v1/rooms", http.MethodGet).Skip)
	assert.False(t, perms.FindPermissions("/v1/rooms/", http.MethodPost).Skip)
	assert.Equal(t, []string{constant.RoleManager}, perms.FindPermissions("/v1/bookings/{id}", http.MethodPatch).Permissions)
}
