// Package api собирает HTTP сервис движка доступа к функциям и подсказок.
package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/lyssareba/flika-app-sub001/internal/http/handlers/datelimit"
	"github.com/lyssareba/flika-app-sub001/internal/http/handlers/entitlement"
	"github.com/lyssareba/flika-app-sub001/internal/http/handlers/featureaccess"
	"github.com/lyssareba/flika-app-sub001/internal/http/handlers/health"
	"github.com/lyssareba/flika-app-sub001/internal/http/handlers/limits"
	"github.com/lyssareba/flika-app-sub001/internal/http/handlers/milestones/milestonecreate"
	"github.com/lyssareba/flika-app-sub001/internal/http/handlers/prompts/promptdismiss"
	"github.com/lyssareba/flika-app-sub001/internal/http/handlers/prompts/promptnext"
	"github.com/lyssareba/flika-app-sub001/internal/http/handlers/prompts/promptshown"
	"github.com/lyssareba/flika-app-sub001/internal/http/handlers/purchases/purchaselogin"
	"github.com/lyssareba/flika-app-sub001/internal/http/handlers/purchases/purchaselogout"
	"github.com/lyssareba/flika-app-sub001/internal/http/middlewarectx"
	accessservice "github.com/lyssareba/flika-app-sub001/internal/services/access"
	promptservice "github.com/lyssareba/flika-app-sub001/internal/services/prompts"
)

// Deps зависимости обработчиков.
type Deps struct {
	Access    *accessservice.AccessService
	Prompts   *promptservice.PromptService
	Tokens    middlewarectx.TokenParser
	Health    health.Checker
	RateLimit float64
	RateBurst int
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Get("/health", health.New(logger, deps.Health).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(deps.Tokens, logger))
		r.Use(middlewarectx.RateLimitMiddleware(logger, deps.RateLimit, deps.RateBurst))

		r.Get("/entitlement", entitlement.New(logger, deps.Access).ServeHTTP)
		r.Get("/limits", limits.New(logger, deps.Access).ServeHTTP)
		r.Get("/prospects/{id}/dates/limit", datelimit.New(logger, deps.Access).ServeHTTP)
		r.Post("/features/{feature}/access", featureaccess.New(logger, deps.Access).ServeHTTP)
		r.Post("/purchases/login", purchaselogin.New(logger, deps.Access).ServeHTTP)
		r.Post("/purchases/logout", purchaselogout.New(logger, deps.Access).ServeHTTP)

		r.Get("/prompts/next", promptnext.New(logger, deps.Prompts).ServeHTTP)
		r.Post("/prompts/shown", promptshown.New(logger, deps.Prompts).ServeHTTP)
		r.Post("/prompts/dismiss", promptdismiss.New(logger, deps.Prompts).ServeHTTP)
		r.Post("/milestones", milestonecreate.New(logger, deps.Prompts).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
