// Package promptnext реализует HTTP-обработчик выбора следующей подсказки.
//
// Возвращает не более одной подсказки. Отсутствие подходящей подсказки
// не ошибка: data.prompt равен null.
package promptnext

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/lyssareba/flika-app-sub001/internal/http/middlewarectx"
	"github.com/lyssareba/flika-app-sub001/internal/http/response"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/models"
	"github.com/lyssareba/flika-app-sub001/internal/prompts"
)

// Handler обрабатывает запрос следующей подсказки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выбор подсказки.
type Service interface {
	Next(ctx context.Context, userID string) (models.InAppPrompt, bool, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Следующая подсказка
// @Description Строит кандидатов по данным пользователя и выбирает самую срочную подсказку вне cooldown.
// @Tags Prompts
// @Produce  json
// @Success 200 {object} map[string]any "Подсказка или null"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /prompts/next [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prompts.next"
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

	prompt, found, err := h.service.Next(r.Context(), userID)
	if err != nil {
		log.Error("failed to select prompt", sl.Err(err))
		if errors.Is(err, prompts.ErrNoUser) {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not select prompt"))
		return
	}

	if !found {
		log.Debug("no eligible prompt")
		render.JSON(w, r, response.OKWithData(map[string]any{
			"prompt": nil,
		}))
		return
	}

	log.Info("prompt selected", slog.String("prompt_id", prompt.ID), slog.String("type", string(prompt.Type)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"prompt": prompt,
	}))
}
