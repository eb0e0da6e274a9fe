// Package signupservice собирает приложение регистрации пользователей:
// хранилище, миграции, SMTP-транспорт, сервисы и HTTP-сервер.
package signupservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/antonovmk/signup-service/internal/config"
	"github.com/antonovmk/signup-service/internal/lib/i18n"
	"github.com/antonovmk/signup-service/internal/lib/smtp"
	"github.com/antonovmk/signup-service/internal/migrations"
	senderservice "github.com/antonovmk/signup-service/internal/services/sender"
	userservice "github.com/antonovmk/signup-service/internal/services/user"
	"github.com/antonovmk/signup-service/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и ресурсы приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создает приложение: подключает хранилище, применяет миграции
// и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	catalog := i18n.NewCatalog()
	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(cfg, logger, transport, catalog)
	userService := userservice.NewUserService(db, senderService, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, userService, db, catalog)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
