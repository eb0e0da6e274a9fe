package register

import (
	"context"

	"golang.org/x/text/language"

	"github.com/antonovmk/signup-service/internal/models"
)

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	ValidateRegistration(ctx context.Context, req models.RegisterRequest) (map[string]string, error)
	Register(ctx context.Context, req models.RegisterRequest, locale language.Tag) (*models.User, error)
}
