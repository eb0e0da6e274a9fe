// Package register реализует HTTP-обработчик регистрации пользователя.
//
// Handler принимает JSON-запрос с данными учётной записи, прогоняет их через
// конвейер валидации, вызывает бизнес-логику регистрации и возвращает
// созданного пользователя в JSON-формате. Ошибки валидации возвращаются
// картой поле → код; неудачная отправка письма активации — отдельной ошибкой
// зависимости, при которой учётная запись не сохраняется.
package register

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/antonovmk/signup-service/internal/http/middlewarectx"
	"github.com/antonovmk/signup-service/internal/http/response"
	"github.com/antonovmk/signup-service/internal/lib/i18n"
	"github.com/antonovmk/signup-service/internal/lib/sl"
	"github.com/antonovmk/signup-service/internal/models"
	userservice "github.com/antonovmk/signup-service/internal/services/user"
)

// Handler обрабатывает запросы на регистрацию пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
	catalog *i18n.Catalog
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
// @Summary Зарегистрировать пользователя
// @Description Создает неактивную учётную запись и отправляет письмо с токеном активации.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body models.RegisterRequest true "Данные новой учётной записи"
// @Success 200 {object} response.Response "Учётная запись создана"
// @Failure 400 {object} response.Response "Ошибки валидации"
// @Failure 502 {object} response.ErrorResponse "Не удалось отправить письмо активации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	locale := middlewarectx.LocaleFromContext(r.Context())

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	validationErrs, err := h.service.ValidateRegistration(r.Context(), req)
	if err != nil {
		log.Error("validation failed with storage error", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to register user"))
		return
	}
	if len(validationErrs) > 0 {
		log.Info("validation failed", slog.Any("errors", validationErrs))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationErrors(validationErrs))
		return
	}

	user, err := h.service.Register(r.Context(), req, locale)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrEmailTaken):
			log.Info("email already in use")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrors(map[string]string{
				"email": userservice.CodeEmailInUse,
			}))
		case errors.Is(err, userservice.ErrEmailDelivery):
			log.Error("activation email delivery failed", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error(h.catalog.Message(locale, i18n.MsgEmailFailure)))
		default:
			log.Error("registration failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to register user"))
		}
		return
	}

	log.Info("user registered", slog.String("username", user.Username))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"createdUser": map[string]any{
			"username": user.Username,
			"email":    user.Email,
		},
		"message": h.catalog.Message(locale, i18n.MsgUserCreated),
	}))
}
