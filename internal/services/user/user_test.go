package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/antonovmk/signup-service/internal/lib/password"
	"github.com/antonovmk/signup-service/internal/models"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	args := m.Called(ctx, mock.Anything)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	// имитация транзакции: ошибка fn означает откат и возвращается как есть
	return fn(ctx, nil)
}

func (m *UserRepositoryMock) CreateUserTx(ctx context.Context, tx *sql.Tx, user models.User) (string, error) {
	args := m.Called(ctx, tx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepositoryMock) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepositoryMock) ActivateUserByToken(ctx context.Context, token string) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepositoryMock) ListActiveUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *UserRepositoryMock) CountActiveUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) SendActivationEmail(user models.User, locale language.Tag) error {
	args := m.Called(user, locale)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func strptr(s string) *string {
	return &s
}

func validRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Username: strptr("user1"),
		Email:    strptr("user1@mail.com"),
		Password: strptr("P4ssword"),
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name      string
		req       models.RegisterRequest
		emailUsed bool
		want      map[string]string
	}{
		{
			name: "valid payload",
			req:  validRequest(),
			want: map[string]string{},
		},
		{
			name: "null username",
			req: models.RegisterRequest{
				Email:    strptr("user1@mail.com"),
				Password: strptr("P4ssword"),
			},
			want: map[string]string{"username": CodeUsernameNull},
		},
		{
			name: "empty username",
			req: models.RegisterRequest{
				Username: strptr(""),
				Email:    strptr("user1@mail.com"),
				Password: strptr("P4ssword"),
			},
			want: map[string]string{"username": CodeUsernameNull},
		},
		{
			name: "username too short",
			req: models.RegisterRequest{
				Username: strptr("usr"),
				Email:    strptr("user1@mail.com"),
				Password: strptr("P4ssword"),
			},
			want: map[string]string{"username": CodeUsernameSize},
		},
		{
			name: "username too long",
			req: models.RegisterRequest{
				Username: strptr("a123456789012345678901234567890123"),
				Email:    strptr("user1@mail.com"),
				Password: strptr("P4ssword"),
			},
			want: map[string]string{"username": CodeUsernameSize},
		},
		{
			name: "null email",
			req: models.RegisterRequest{
				Username: strptr("user1"),
				Password: strptr("P4ssword"),
			},
			want: map[string]string{"email": CodeEmailNull},
		},
		{
			name: "empty email",
			req: models.RegisterRequest{
				Username: strptr("user1"),
				Email:    strptr(""),
				Password: strptr("P4ssword"),
			},
			want: map[string]string{"email": CodeEmailNull},
		},
		{
			name: "invalid email",
			req: models.RegisterRequest{
				Username: strptr("user1"),
				Email:    strptr("not-an-email"),
				Password: strptr("P4ssword"),
			},
			want: map[string]string{"email": CodeEmailInvalid},
		},
		{
			name: "email already in use",
			req: models.RegisterRequest{
				Username: strptr("user1"),
				Email:    strptr("used@mail.com"),
				Password: strptr("P4ssword"),
			},
			emailUsed: true,
			want:      map[string]string{"email": CodeEmailInUse},
		},
		{
			name: "null password",
			req: models.RegisterRequest{
				Username: strptr("user1"),
				Email:    strptr("user1@mail.com"),
			},
			want: map[string]string{"password": CodePasswordNull},
		},
		{
			name: "empty password",
			req: models.RegisterRequest{
				Username: strptr("user1"),
				Email:    strptr("user1@mail.com"),
				Password: strptr(""),
			},
			want: map[string]string{"password": CodePasswordNull},
		},
		{
			name: "password too short",
			req: models.RegisterRequest{
				Username: strptr("user1"),
				Email:    strptr("user1@mail.com"),
				Password: strptr("P4ss"),
			},
			want: map[string]string{"password": CodePasswordSize},
		},
		{
			name: "password too long",
			req: models.RegisterRequest{
				Username: strptr("user1"),
				Email:    strptr("user1@mail.com"),
				Password: strptr("P4sswordP4sswordP4s"),
			},
			want: map[string]string{"password": CodePasswordSize},
		},
		{
			name: "password without uppercase",
			req: models.RegisterRequest{
				Username: strptr("user1"),
				Email:    strptr("user1@mail.com"),
				Password: strptr("p4ssword"),
			},
			want: map[string]string{"password": CodePasswordPattern},
		},
		{
			name: "password without lowercase",
			req: models.RegisterRequest{
				Username: strptr("user1"),
				Email:    strptr("user1@mail.com"),
				Password: strptr("P4SSWORD"),
			},
			want: map[string]string{"password": CodePasswordPattern},
		},
		{
			name: "password without digit",
			req: models.RegisterRequest{
				Username: strptr("user1"),
				Email:    strptr("user1@mail.com"),
				Password: strptr("Password"),
			},
			want: map[string]string{"password": CodePasswordPattern},
		},
		{
			name: "all fields invalid reported together",
			req:  models.RegisterRequest{},
			want: map[string]string{
				"username": CodeUsernameNull,
				"email":    CodeEmailNull,
				"password": CodePasswordNull,
			},
		},
		{
			name: "empty username with invalid email and short password",
			req: models.RegisterRequest{
				Username: strptr(""),
				Email:    strptr("not-an-email"),
				Password: strptr("a"),
			},
			want: map[string]string{
				"username": CodeUsernameNull,
				"email":    CodeEmailInvalid,
				"password": CodePasswordSize,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepositoryMock)
			if tt.req.Email != nil {
				if _, hasEmailErr := tt.want["email"]; !hasEmailErr || tt.emailUsed {
					var existing *models.User
					if tt.emailUsed {
						existing = &models.User{Email: *tt.req.Email}
					}
					repo.On("FindUserByEmail", mock.Anything, *tt.req.Email).Return(existing, nil).Maybe()
				}
			}

			svc := NewUserService(repo, new(SenderMock), newNoopLogger())
			got, err := svc.ValidateRegistration(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRegistration_UniquenessCheckFails(t *testing.T) {
	repo := new(UserRepositoryMock)
	repo.On("FindUserByEmail", mock.Anything, "user1@mail.com").
		Return(nil, errors.New("connection refused")).Once()

	svc := NewUserService(repo, new(SenderMock), newNoopLogger())
	_, err := svc.ValidateRegistration(context.Background(), validRequest())
	assert.Error(t, err)
	repo.AssertExpectations(t)
}

func TestRegister_Success(t *testing.T) {
	repo := new(UserRepositoryMock)
	sender := new(SenderMock)

	repo.On("RunInTx", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("CreateUserTx", mock.Anything, mock.Anything, mock.AnythingOfType("models.User")).
		Return("uid-1", nil).Once()
	sender.On("SendActivationEmail", mock.AnythingOfType("models.User"), language.English).
		Return(nil).Once()

	svc := NewUserService(repo, sender, newNoopLogger())
	user, err := svc.Register(context.Background(), validRequest(), language.English)
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "user1", user.Username)
	assert.Equal(t, "user1@mail.com", user.Email)
	assert.False(t, user.Active)
	assert.Len(t, user.ActivationToken, 16)
	assert.NotEmpty(t, user.UID)

	// в хранилище уходит хэш, а не исходный пароль
	assert.NotEqual(t, "P4ssword", user.PasswordHash)
	assert.NoError(t, password.CompareHash(user.PasswordHash, "P4ssword"))

	repo.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestRegister_EmailDeliveryFailureRollsBack(t *testing.T) {
	repo := new(UserRepositoryMock)
	sender := new(SenderMock)

	repo.On("RunInTx", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("CreateUserTx", mock.Anything, mock.Anything, mock.AnythingOfType("models.User")).
		Return("uid-1", nil).Once()
	sender.On("SendActivationEmail", mock.AnythingOfType("models.User"), language.English).
		Return(errors.New("smtp unreachable")).Once()

	svc := NewUserService(repo, sender, newNoopLogger())
	user, err := svc.Register(context.Background(), validRequest(), language.English)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrEmailDelivery)
	repo.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestRegister_RetryAfterDeliveryFailureSucceeds(t *testing.T) {
	repo := new(UserRepositoryMock)
	sender := new(SenderMock)

	repo.On("RunInTx", mock.Anything, mock.Anything).Return(nil).Twice()
	repo.On("CreateUserTx", mock.Anything, mock.Anything, mock.AnythingOfType("models.User")).
		Return("uid-1", nil).Twice()
	sender.On("SendActivationEmail", mock.AnythingOfType("models.User"), language.English).
		Return(errors.New("smtp unreachable")).Once()
	sender.On("SendActivationEmail", mock.AnythingOfType("models.User"), language.English).
		Return(nil).Once()

	svc := NewUserService(repo, sender, newNoopLogger())

	_, err := svc.Register(context.Background(), validRequest(), language.English)
	require.ErrorIs(t, err, ErrEmailDelivery)

	user, err := svc.Register(context.Background(), validRequest(), language.English)
	require.NoError(t, err)
	assert.Equal(t, "user1@mail.com", user.Email)
}

func TestRegister_DuplicateEmailMapsToEmailTaken(t *testing.T) {
	repo := new(UserRepositoryMock)
	sender := new(SenderMock)

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	repo.On("RunInTx", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("CreateUserTx", mock.Anything, mock.Anything, mock.AnythingOfType("models.User")).
		Return("", pgErr).Once()

	svc := NewUserService(repo, sender, newNoopLogger())
	user, err := svc.Register(context.Background(), validRequest(), language.English)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrEmailTaken)
	sender.AssertNotCalled(t, "SendActivationEmail", mock.Anything, mock.Anything)
}

func TestActivate(t *testing.T) {
	tests := []struct {
		name         string
		affectedRows int64
		wantErr      error
	}{
		{
			name:         "token matches",
			affectedRows: 1,
			wantErr:      nil,
		},
		{
			name:         "token does not match",
			affectedRows: 0,
			wantErr:      ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepositoryMock)
			repo.On("ActivateUserByToken", mock.Anything, "0123456789abcdef").
				Return(tt.affectedRows, nil).Once()

			svc := NewUserService(repo, new(SenderMock), newNoopLogger())
			err := svc.Activate(context.Background(), "0123456789abcdef")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestActivate_StorageFailurePropagates(t *testing.T) {
	repo := new(UserRepositoryMock)
	repo.On("ActivateUserByToken", mock.Anything, "0123456789abcdef").
		Return(int64(0), errors.New("connection refused")).Once()

	svc := NewUserService(repo, new(SenderMock), newNoopLogger())
	err := svc.Activate(context.Background(), "0123456789abcdef")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestListActive(t *testing.T) {
	repo := new(UserRepositoryMock)
	repo.On("ListActiveUsers", mock.Anything, 10, 20).
		Return([]*models.User{{Username: "user1", Active: true}}, nil).Once()
	repo.On("CountActiveUsers", mock.Anything).Return(21, nil).Once()

	svc := NewUserService(repo, new(SenderMock), newNoopLogger())
	users, total, err := svc.ListActive(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 21, total)
	repo.AssertExpectations(t)
}

func TestListActive_DefaultsPagination(t *testing.T) {
	repo := new(UserRepositoryMock)
	repo.On("ListActiveUsers", mock.Anything, 10, 0).
		Return([]*models.User{}, nil).Once()
	repo.On("CountActiveUsers", mock.Anything).Return(0, nil).Once()

	svc := NewUserService(repo, new(SenderMock), newNoopLogger())
	_, _, err := svc.ListActive(context.Background(), -1, 0)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
