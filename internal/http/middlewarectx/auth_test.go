package middlewarectx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyssareba/flika-app-sub001/internal/http/middlewarectx"
	"github.com/lyssareba/flika-app-sub001/internal/lib/jwt"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
)

const testSecret = "test-secret-key-for-middleware"

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker(testSecret, time.Hour)
	validToken, err := maker.GenerateToken("user-1", "alex")
	require.NoError(t, err)
	otherToken, err := jwt.NewJWTMaker("another-secret", time.Hour).GenerateToken("user-1", "alex")
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		platform       string
		wantStatusCode int
		wantCalled     bool
		wantPlatform   string
	}{
		{
			name:           "missing Authorization header",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "garbage token",
			authHeader:     "Bearer not-a-token",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token signed with another secret",
			authHeader:     "Bearer " + otherToken,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid token with platform",
			authHeader:     "Bearer " + validToken,
			platform:       " iOS ",
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
			wantPlatform:   "ios",
		},
		{
			name:           "valid token without platform",
			authHeader:     "Bearer " + validToken,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
			wantPlatform:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				userID, platform, ok := middlewarectx.Identity(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "user-1", userID)
				assert.Equal(t, tt.wantPlatform, platform)
				assert.Equal(t, "alex", r.Context().Value(middlewarectx.User))
				w.WriteHeader(http.StatusOK)
			})
			handler := middlewarectx.JWTMiddleware(maker, sl.Discard())(next)

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.platform != "" {
				req.Header.Set(middlewarectx.PlatformHeader, tt.platform)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
		})
	}
}

func TestIdentity(t *testing.T) {
	_, _, ok := middlewarectx.Identity(context.Background())
	assert.False(t, ok)

	ctx := middlewarectx.WithIdentity(context.Background(), "u1", "android")
	userID, platform, ok := middlewarectx.Identity(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "android", platform)
}
