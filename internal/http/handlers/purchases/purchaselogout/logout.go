// Package purchaselogout реализует HTTP-обработчик выхода из провайдера покупок.
package purchaselogout

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
)

// Handler обрабатывает выход из провайдера покупок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает отвязку пользователя.
type Service interface {
	LogOut(ctx context.Context, userID string) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выход из провайдера покупок
// @Description Забывает закешированные права пользователя.
// @Tags Purchases
// @Produce  json
// @Success 200 {object} map[string]any "Пользователь отвязан"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /purchases/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchases.logout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _, ok := middlewarectx.Identity(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.LogOut(r.Context(), userID); err != nil {
		log.Error("failed to log out from purchase provider", sl.Err(err))
		if errors.Is(err, entitlement.ErrUnauthenticated) {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not log out from purchase provider"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"logged_out": true,
	}))
}
