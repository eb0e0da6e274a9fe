package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/antonovmk/signup-service/internal/models"
)

// CreateUserTx сохраняет нового пользователя внутри переданной транзакции
// и возвращает его UID. Уникальность email обеспечивается ограничением
// UNIQUE на уровне таблицы, нарушение возвращается ошибкой драйвера.
func (s *Storage) CreateUserTx(ctx context.Context, tx *sql.Tx, user models.User) (string, error) {
	const op = "storage.CreateUserTx"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (uid, username, email, password_hash, active, activation_token)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := tx.QueryRowContext(ctx, query,
		user.UID, user.Username, user.Email, user.PasswordHash, user.Active,
		user.ActivationToken).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// FindUserByEmail возвращает пользователя по email или (nil, nil),
// если пользователь с таким email не зарегистрирован.
func (s *Storage) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.FindUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, password_hash, active, activation_token, created_at
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, email)

	var activationToken sql.NullString
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Active, &activationToken, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if activationToken.Valid {
		u.ActivationToken = activationToken.String
	}
	return u, nil
}

// ActivateUserByToken активирует учётную запись с совпавшим токеном:
// выставляет active и очищает токен одним оператором UPDATE, возвращая
// число затронутых строк. Повторное использование токена строк не находит.
func (s *Storage) ActivateUserByToken(ctx context.Context, token string) (int64, error) {
	const op = "storage.ActivateUserByToken"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET active = TRUE,
			      activation_token = NULL
			  WHERE activation_token = $1`
	res, err := s.DB.ExecContext(ctx, query, token)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// ListActiveUsers возвращает список активированных пользователей с пагинацией.
func (s *Storage) ListActiveUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListActiveUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, active, created_at
			  FROM users
		      WHERE active = TRUE
			  ORDER BY created_at
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UID, &u.Username, &u.Email, &u.Active, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountActiveUsers возвращает общее количество активированных пользователей.
func (s *Storage) CountActiveUsers(ctx context.Context) (int, error) {
	const op = "storage.CountActiveUsers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM users WHERE active = TRUE`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
