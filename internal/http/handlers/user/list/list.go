// Package list реализует HTTP-обработчик постраничного списка
// активированных пользователей.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/antonovmk/signup-service/internal/http/response"
	"github.com/antonovmk/signup-service/internal/lib/sl"
	"github.com/antonovmk/signup-service/internal/models"
)

// Handler обрабатывает запросы на получение списка активных пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка пользователей.
type Service interface {
	ListActive(ctx context.Context, page, size int) ([]*models.User, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список активных пользователей
// @Description Возвращает постраничный список активированных пользователей.
// @Tags Users
// @Produce  json
// @Param page query int false "Номер страницы, начиная с 0"
// @Param size query int false "Размер страницы, по умолчанию 10"
// @Success 200 {object} response.Response "Список пользователей"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	users, total, err := h.service.ListActive(r.Context(), page, size)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list users"))
		return
	}

	log.Info("listed active users", slog.Int("count", len(users)), slog.Int("total", total))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"users": users,
		"total": total,
	}))
}
