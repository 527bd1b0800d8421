// Package promptshown реализует HTTP-обработчик отметки показа подсказки.
//
// Показ запускает cooldown по ключу скрытия так же, как явное скрытие.
package promptshown

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

// Handler обрабатывает отметку показа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает запись показа.
type Service interface {
	RecordShown(ctx context.Context, userID, key string) error
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
// @Summary Подсказка показана
// @Description Записывает время показа по ключу скрытия подсказки.
// @Tags Prompts
// @Accept  json
// @Produce  json
// @Param request body models.PromptKeyRequest true "Ключ скрытия"
// @Success 200 {object} map[string]any "Показ записан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /prompts/shown [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prompts.shown"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.PromptKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

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

	if err := h.service.RecordShown(r.Context(), userID, req.DismissalKey); err != nil {
		log.Error("failed to record shown prompt", sl.Err(err))
		switch {
		case errors.Is(err, prompts.ErrNoUser):
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
		case errors.Is(err, prompts.ErrEmptyKey):
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("dismissal key is empty"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not record shown prompt"))
		}
		return
	}

	log.Info("prompt shown", slog.String("dismissal_key", req.DismissalKey))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"dismissal_key": req.DismissalKey,
	}))
}
