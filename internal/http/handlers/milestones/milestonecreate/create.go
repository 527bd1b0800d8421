// Package milestonecreate реализует HTTP-обработчик приёма событий-вех.
//
// Веха приходит извне движка подсказок (например, проспект стал отношениями),
// сохраняется до показа и возвращается построенной подсказкой.
package milestonecreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/lyssareba/flika-app-sub001/internal/http/middlewarectx"
	"github.com/lyssareba/flika-app-sub001/internal/http/response"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
	"github.com/lyssareba/flika-app-sub001/internal/models"
	"github.com/lyssareba/flika-app-sub001/internal/prompts"
)

// Handler принимает события-вехи.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает сохранение вехи.
type Service interface {
	AddMilestone(ctx context.Context, userID string, ev models.MilestoneEvent) (models.InAppPrompt, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Добавить веху
// @Description Сохраняет событие-веху для проспекта. Подсказка по вехе имеет наивысший приоритет.
// @Tags Prompts
// @Accept  json
// @Produce  json
// @Param request body models.MilestoneEvent true "Событие"
// @Success 201 {object} map[string]any "Построенная подсказка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /milestones [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.milestones.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.MilestoneEvent
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Debug("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userID, _, ok := middlewarectx.Identity(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	prompt, err := h.service.AddMilestone(r.Context(), userID, req)
	if err != nil {
		log.Error("failed to add milestone", sl.Err(err))
		if errors.Is(err, prompts.ErrNoUser) {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not add milestone"))
		return
	}

	log.Info("milestone added", slog.String("prompt_id", prompt.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"prompt": prompt,
	}))
}
