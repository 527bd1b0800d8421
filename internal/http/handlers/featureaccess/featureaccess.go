// Package featureaccess реализует HTTP-обработчик проверки доступа к premium функции.
//
// Разрешённый доступ отдаётся как 200. Заблокированный: как 402 с целью навигации
// на экран покупки, которую клиент должен открыть.
package featureaccess

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/lyssareba/flika-app-sub001/internal/entitlement"
	"github.com/lyssareba/flika-app-sub001/internal/gate"
	"github.com/lyssareba/flika-app-sub001/internal/http/middlewarectx"
	"github.com/lyssareba/flika-app-sub001/internal/http/response"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
)

// Handler обрабатывает проверку доступа к функции.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает проверку premium функции.
type Service interface {
	CheckFeature(ctx context.Context, platform, userID, feature string) (gate.Decision, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Доступ к premium функции
// @Description Проверяет premium доступ. При блокировке отправляется событие аналитики и возвращается цель навигации.
// @Tags Access
// @Produce  json
// @Param feature path string true "Идентификатор функции"
// @Param X-Platform header string false "Платформа клиента (ios, android)"
// @Success 200 {object} gate.Decision "Доступ разрешён"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.Response "Нужен premium, data содержит route и params"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /features/{feature}/access [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.featureaccess"
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

	feature := chi.URLParam(r, "feature")
	decision, err := h.service.CheckFeature(r.Context(), platform, userID, feature)
	if err != nil {
		log.Error("failed to check feature", slog.String("feature", feature), sl.Err(err))
		if errors.Is(err, entitlement.ErrUnauthenticated) {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check feature access"))
		return
	}

	if decision.Blocked() {
		log.Info("feature blocked", slog.String("feature", decision.Feature), slog.String("reason", string(decision.Reason)))
		w.WriteHeader(http.StatusPaymentRequired)
		render.JSON(w, r, response.ErrorWithData("premium required", decision))
		return
	}

	render.JSON(w, r, response.OKWithData(decision))
}
