// Package activate реализует HTTP-обработчик активации учётной записи.
//
// Handler извлекает токен активации из URL-параметров и вызывает
// бизнес-логику активации. Несовпавший токен возвращается клиентской
// ошибкой без изменений в хранилище.
package activate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/antonovmk/signup-service/internal/http/middlewarectx"
	"github.com/antonovmk/signup-service/internal/http/response"
	"github.com/antonovmk/signup-service/internal/lib/i18n"
	"github.com/antonovmk/signup-service/internal/lib/sl"
	userservice "github.com/antonovmk/signup-service/internal/services/user"
)

// Handler обрабатывает запросы на активацию учётной записи по токену.
type Handler struct {
	log     *slog.Logger
	service Service
	catalog *i18n.Catalog
}

// Service описывает интерфейс бизнес-логики активации.
type Service interface {
	Activate(ctx context.Context, token string) error
}

// New создает новый Handler с переданными логгером, сервисом и каталогом сообщений.
func New(log *slog.Logger, service Service, catalog *i18n.Catalog) *Handler {
	return &Handler{
		log:     log,
		service: service,
		catalog: catalog,
	}
}

// ServeHTTP godoc
// @Summary Активировать учётную запись
// @Description Активирует учётную запись по одноразовому токену из письма.
// @Tags Users
// @Produce  json
// @Param token path string true "Токен активации"
// @Success 200 {object} response.Response "Учётная запись активирована"
// @Failure 400 {object} response.ErrorResponse "Недействительный токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /users/token/{token} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.activate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	locale := middlewarectx.LocaleFromContext(r.Context())

	token := chi.URLParam(r, "token")

	if err := h.service.Activate(r.Context(), token); err != nil {
		if errors.Is(err, userservice.ErrInvalidToken) {
			log.Info("activation token did not match")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(h.catalog.Message(locale, i18n.MsgInvalidToken)))
			return
		}
		log.Error("failed to activate account", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to activate account"))
		return
	}

	log.Info("account activated")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": h.catalog.Message(locale, i18n.MsgAccountActivated),
	}))
}
