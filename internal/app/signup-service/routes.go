// Package signupservice предоставляет маршруты приложения.
package signupservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/antonovmk/signup-service/internal/http/handlers/user/activate"
	"github.com/antonovmk/signup-service/internal/http/handlers/user/health"
	"github.com/antonovmk/signup-service/internal/http/handlers/user/list"
	"github.com/antonovmk/signup-service/internal/http/handlers/user/register"
	"github.com/antonovmk/signup-service/internal/http/middlewarectx"
	"github.com/antonovmk/signup-service/internal/lib/i18n"
	userservice "github.com/antonovmk/signup-service/internal/services/user"
	"github.com/antonovmk/signup-service/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, userService *userservice.UserService, db *repository.Storage, catalog *i18n.Catalog) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.LocaleMiddleware(catalog))
		r.Post("/users", register.New(logger, userService, catalog).ServeHTTP)
		r.Post("/users/token/{token}", activate.New(logger, userService, catalog).ServeHTTP)
		r.Get("/users", list.New(logger, userService).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
