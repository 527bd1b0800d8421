// Package datelimit реализует HTTP-обработчик лимита свиданий для проспекта.
package datelimit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/lyssareba/flika-app-sub001/internal/entitlement"
	"github.com/lyssareba/flika-app-sub001/internal/http/middlewarectx"
	"github.com/lyssareba/flika-app-sub001/internal/http/response"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/models"
	"github.com/lyssareba/flika-app-sub001/internal/storage"
)

// Handler обрабатывает запросы лимита свиданий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает расчёт лимита свиданий.
type Service interface {
	DateLimit(ctx context.Context, platform, userID, prospectID string) (models.DateLimit, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Лимит свиданий
// @Description Можно ли добавить свидание проспекту, сколько их уже и каков лимит тарифа.
// @Tags Access
// @Produce  json
// @Param id path string true "Идентификатор проспекта"
// @Param X-Platform header string false "Платформа клиента (ios, android)"
// @Success 200 {object} models.DateLimit "Лимит свиданий"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Проспект не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /prospects/{id}/dates/limit [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.datelimit"
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

	prospectID := chi.URLParam(r, "id")
	if prospectID == "" {
		log.Error("prospect id is empty")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid prospect id"))
		return
	}

	limit, err := h.service.DateLimit(r.Context(), platform, userID, prospectID)
	if err != nil {
		log.Error("failed to get date limit", slog.String("prospect_id", prospectID), sl.Err(err))
		switch {
		case errors.Is(err, storage.ErrProspectNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("prospect not found"))
		case errors.Is(err, entitlement.ErrUnauthenticated):
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not get date limit"))
		}
		return
	}

	render.JSON(w, r, response.OKWithData(limit))
}
