// Package limits реализует HTTP-обработчик лимитов тарифа пользователя.
//
// Возвращает лимиты free или premium тарифа, текущие счётчики проспектов
// и решения, можно ли добавить ещё одного или архивировать.
package limits

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/lyssareba/flika-app-sub001/internal/entitlement"
	"github.com/lyssareba/flika-app-sub001/internal/http/middlewarectx"
	"github.com/lyssareba/flika-app-sub001/internal/http/response"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	accessservice "github.com/lyssareba/flika-app-sub001/internal/services/access"
)

// Handler обрабатывает запросы лимитов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает расчёт лимитов.
type Service interface {
	Limits(ctx context.Context, platform, userID string) (accessservice.LimitsReport, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Лимиты тарифа
// @Description Лимиты тарифа пользователя вместе с текущими счётчиками проспектов.
// @Tags Access
// @Produce  json
// @Param X-Platform header string false "Платформа клиента (ios, android)"
// @Success 200 {object} map[string]any "Лимиты и счётчики"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /limits [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.limits"
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

	report, err := h.service.Limits(r.Context(), platform, userID)
	if err != nil {
		log.Error("failed to get limits", sl.Err(err))
		if errors.Is(err, entitlement.ErrUnauthenticated) {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get limits"))
		return
	}

	render.JSON(w, r, response.OKWithData(report))
}
