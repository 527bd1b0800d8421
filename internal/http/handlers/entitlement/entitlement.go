// Package entitlement реализует HTTP-обработчик получения статуса прав пользователя.
//
// Handler берёт пользователя и платформу из контекста, сверяет права через сервис
// и возвращает статус. Неизвестный статус отдаётся с known=false, а не как ошибка.
package entitlement

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	entitlementpkg "github.com/lyssareba/flika-app-sub001/internal/entitlement"
	"github.com/lyssareba/flika-app-sub001/internal/http/middlewarectx"
	"github.com/lyssareba/flika-app-sub001/internal/http/response"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/models"
)

// Handler обрабатывает запросы статуса прав.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает сверку прав.
type Service interface {
	Entitlement(ctx context.Context, platform, userID string) (models.EntitlementStatus, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статус прав пользователя
// @Description Сверяет права у провайдера покупок. При недоступности провайдера отдаёт последний известный снимок.
// @Tags Access
// @Produce  json
// @Param X-Platform header string false "Платформа клиента (ios, android)"
// @Success 200 {object} map[string]any "Статус прав"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /entitlement [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, platform, ok := middlewarectx.Identity(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	status, err := h.service.Entitlement(r.Context(), platform, userID)
	if err != nil {
		log.Error("failed to reconcile entitlement", sl.Err(err))
		if errors.Is(err, entitlementpkg.ErrUnauthenticated) {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get entitlement"))
		return
	}

	log.Info("entitlement reconciled", slog.Bool("premium", status.IsPremium()), slog.String("source", string(status.Source)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"entitlement": status,
		"is_premium":  status.IsPremium(),
	}))
}
