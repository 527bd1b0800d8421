// Package purchaselogin реализует HTTP-обработчик привязки пользователя к провайдеру покупок.
//
// Вызывается клиентом после входа в аккаунт: провайдер создаёт покупателя при первом
// обращении, а ответ сразу содержит актуальный статус прав.
package purchaselogin

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
	"github.com/lyssareba/flika-app-sub001/internal/models"
)

// Handler обрабатывает вход в провайдер покупок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает привязку пользователя.
type Service interface {
	LogIn(ctx context.Context, platform, userID string) (models.EntitlementStatus, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Вход в провайдер покупок
// @Description Привязывает текущего пользователя к провайдеру покупок и возвращает статус прав.
// @Tags Purchases
// @Produce  json
// @Param X-Platform header string false "Платформа клиента (ios, android)"
// @Success 200 {object} map[string]any "Статус прав"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /purchases/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchases.login"
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

	status, err := h.service.LogIn(r.Context(), platform, userID)
	if err != nil {
		log.Error("failed to log in to purchase provider", sl.Err(err))
		if errors.Is(err, entitlement.ErrUnauthenticated) {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not log in to purchase provider"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"entitlement": status,
		"is_premium":  status.IsPremium(),
	}))
}
