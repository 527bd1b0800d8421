package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"

	"github.com/lyssareba/flika-app-sub001/internal/lib/jwt"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
)

func newTestRouter() http.Handler {
	router := chi.NewRouter()
	RegisterRoutes(router, sl.Discard(), Deps{
		Tokens:    jwt.NewJWTMaker("routes-test-secret", time.Hour),
		RateLimit: 100,
		RateBurst: 100,
	})
	return router
}

func TestRoutes_Public(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{name: "health", path: "/health", status: http.StatusOK},
		{name: "metrics", path: "/metrics", status: http.StatusOK},
		{name: "unknown route", path: "/nope", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRoutes_APIRequiresToken(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/entitlement"},
		{http.MethodGet, "/api/v1/limits"},
		{http.MethodGet, "/api/v1/prospects/p1/dates/limit"},
		{http.MethodPost, "/api/v1/features/data_export/access"},
		{http.MethodPost, "/api/v1/purchases/login"},
		{http.MethodPost, "/api/v1/purchases/logout"},
		{http.MethodGet, "/api/v1/prompts/next"},
		{http.MethodPost, "/api/v1/prompts/shown"},
		{http.MethodPost, "/api/v1/prompts/dismiss"},
		{http.MethodPost, "/api/v1/milestones"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
