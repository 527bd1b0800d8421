// Package health реализует проверку живости сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/lyssareba/flika-app-sub001/internal/http/response"
	"github.com/lyssareba/flika-app-sub001/internal/lib/sl"
)

// Checker проверка зависимости, например базы данных.
type Checker interface {
	Ping(ctx context.Context) error
}

// Handler отвечает на проверки живости.
type Handler struct {
	log     *slog.Logger
	checker Checker
}

// New создает Handler. checker может быть nil.
func New(log *slog.Logger, checker Checker) *Handler {
	return &Handler{
		log:     log,
		checker: checker,
	}
}

// ServeHTTP godoc
// @Summary Проверка живости
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any "Сервис доступен"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	if h.checker != nil {
		if err := h.checker.Ping(r.Context()); err != nil {
			h.log.Error("dependency is not ready", sl.Op(op), sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("storage is not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "ok",
	}))
}
