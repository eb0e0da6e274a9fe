// Package services содержит бизнес-логику регистрации и активации
// учётных записей пользователей.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/language"

	"github.com/antonovmk/signup-service/internal/lib/password"
	"github.com/antonovmk/signup-service/internal/lib/token"
	"github.com/antonovmk/signup-service/internal/models"
)

// Коды ошибок валидации. Коды стабильны и не зависят от локали.
const (
	CodeUsernameNull    = "username_null"
	CodeUsernameSize    = "username_size"
	CodeEmailNull       = "email_null"
	CodeEmailInvalid    = "email_invalid"
	CodeEmailInUse      = "email_inuse"
	CodePasswordNull    = "password_null"
	CodePasswordSize    = "password_size"
	CodePasswordPattern = "password_pattern"
)

// Ошибки уровня сервиса.
var (
	// ErrEmailDelivery — письмо активации не удалось отправить;
	// транзакция регистрации откачена, учётная запись не сохранена.
	ErrEmailDelivery = errors.New("activation email delivery failed")
	// ErrInvalidToken — токен активации не совпал ни с одной учётной записью.
	ErrInvalidToken = errors.New("invalid activation token")
	// ErrEmailTaken — вставка нарушила ограничение уникальности email.
	ErrEmailTaken = errors.New("email is already in use")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RunInTx выполняет fn внутри одной транзакции.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error

	// CreateUserTx сохраняет нового пользователя внутри транзакции.
	CreateUserTx(ctx context.Context, tx *sql.Tx, user models.User) (string, error)

	// FindUserByEmail возвращает пользователя по email или (nil, nil), если его нет.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)

	// ActivateUserByToken активирует учётную запись с совпавшим токеном
	// и возвращает число затронутых строк.
	ActivateUserByToken(ctx context.Context, token string) (int64, error)

	// ListActiveUsers возвращает активированных пользователей с пагинацией.
	ListActiveUsers(ctx context.Context, limit, offset int) ([]*models.User, error)

	// CountActiveUsers возвращает количество активированных пользователей.
	CountActiveUsers(ctx context.Context) (int, error)
}

// ActivationSender отправляет письмо активации.
type ActivationSender interface {
	SendActivationEmail(user models.User, locale language.Tag) error
}

// UserService отвечает за валидацию, регистрацию и активацию пользователей.
type UserService struct {
	users    UserRepository
	sender   ActivationSender
	validate *validator.Validate
	log      *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(users UserRepository, sender ActivationSender, log *slog.Logger) *UserService {
	v := validator.New()
	// passwd: минимум одна строчная буква, одна заглавная и одна цифра
	_ = v.RegisterValidation("passwd", func(fl validator.FieldLevel) bool {
		var lower, upper, digit bool
		for _, r := range fl.Field().String() {
			switch {
			case r >= 'a' && r <= 'z':
				lower = true
			case r >= 'A' && r <= 'Z':
				upper = true
			case r >= '0' && r <= '9':
				digit = true
			}
		}
		return lower && upper && digit
	})

	return &UserService{
		users:    users,
		sender:   sender,
		validate: v,
		log:      log,
	}
}

// ValidateRegistration проверяет поля запроса регистрации и возвращает
// карту поле → код ошибки. Пустая карта означает валидный запрос.
//
// Поля проверяются независимо друг от друга; внутри поля действует
// первая нарушенная проверка. Проверка занятости email выполняется
// только при синтаксически корректном email и состоит из единственного
// чтения хранилища. Ошибка самого чтения возвращается второй величиной.
func (s *UserService) ValidateRegistration(ctx context.Context, req models.RegisterRequest) (map[string]string, error) {
	const op = "services.user.ValidateRegistration"

	// Пустая строка равнозначна отсутствию поля: required на указателе
	// проверяет только nil и не разыменовывает значение.
	req.Username = nilIfEmpty(req.Username)
	req.Email = nilIfEmpty(req.Email)
	req.Password = nilIfEmpty(req.Password)

	errsMap := make(map[string]string)

	if err := s.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, fieldErr := range validationErrs {
			field := strings.ToLower(fieldErr.Field())
			if _, exists := errsMap[field]; exists {
				continue
			}
			errsMap[field] = codeFor(field, fieldErr.ActualTag())
		}
	}

	if _, emailInvalid := errsMap["email"]; !emailInvalid && req.Email != nil {
		existing, err := s.users.FindUserByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if existing != nil {
			errsMap["email"] = CodeEmailInUse
		}
	}

	return errsMap, nil
}

// nilIfEmpty приводит указатель на пустую строку к nil.
func nilIfEmpty(s *string) *string {
	if s != nil && *s == "" {
		return nil
	}
	return s
}

// codeFor сопоставляет поле и нарушенную проверку со стабильным кодом ошибки.
func codeFor(field, tag string) string {
	switch tag {
	case "required":
		return field + "_null"
	case "min", "max":
		return field + "_size"
	case "email":
		return CodeEmailInvalid
	case "passwd":
		return CodePasswordPattern
	}
	return field + "_invalid"
}

// Register создает неактивную учётную запись и отправляет письмо активации
// как одну единицу работы: вставка выполняется в транзакции, отправка письма —
// до её фиксации. Неудачная отправка откатывает вставку, так что в хранилище
// не остается учётной записи без доставленного токена активации, а повтор
// запроса с тем же email проходит заново.
//
// Запрос должен быть предварительно проверен ValidateRegistration.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest, locale language.Tag) (*models.User, error) {
	const op = "services.user.Register"

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	hash, err := password.GetHash(*req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	activationToken, err := token.New()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		UID:             uuid.New().String(),
		Username:        *req.Username,
		Email:           *req.Email,
		PasswordHash:    hash,
		Active:          false,
		ActivationToken: activationToken,
	}

	err = s.users.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.users.CreateUserTx(ctx, tx, user); err != nil {
			return err
		}
		if err := s.sender.SendActivationEmail(user, locale); err != nil {
			return fmt.Errorf("%w: %s", ErrEmailDelivery, err)
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		if errors.Is(err, ErrEmailDelivery) {
			s.log.Warn("registration rolled back", slog.String("email", user.Email))
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("uid", user.UID), slog.String("email", user.Email))
	return &user, nil
}

// Activate активирует учётную запись по токену. Несовпавший токен —
// в том числе уже использованный — дает ErrInvalidToken без изменений
// в хранилище.
func (s *UserService) Activate(ctx context.Context, activationToken string) error {
	const op = "services.user.Activate"

	affected, err := s.users.ActivateUserByToken(ctx, activationToken)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrInvalidToken
	}

	s.log.Info("account activated")
	return nil
}

// ListActive возвращает страницу активированных пользователей и их общее число.
func (s *UserService) ListActive(ctx context.Context, page, size int) ([]*models.User, int, error) {
	const op = "services.user.ListActive"

	if size <= 0 {
		size = 10
	}
	if page < 0 {
		page = 0
	}

	users, err := s.users.ListActiveUsers(ctx, size, page*size)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	total, err := s.users.CountActiveUsers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return users, total, nil
}
