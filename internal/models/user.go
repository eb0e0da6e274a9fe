// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля, флаг активации
// и одноразовый токен активации. Структуры используются в бизнес‑логике
// и при работе с хранилищем.
package models

import "time"

// User представляет учётную запись пользователя.
//
// Учётная запись создаётся неактивной (Active = false) с непустым
// токеном активации. Токен очищается в момент успешной активации,
// после чего запись больше не изменяется.
type User struct {
	UID             string    `json:"uid"`        // Уникальный идентификатор пользователя
	Username        string    `json:"username"`   // Имя пользователя
	Email           string    `json:"email"`      // Электронная почта (уникальная)
	PasswordHash    string    `json:"-"`          // Хэш пароля, наружу не отдается
	Active          bool      `json:"active"`     // Активирована ли учётная запись
	ActivationToken string    `json:"-"`          // Одноразовый токен активации, наружу не отдается
	CreatedAt       time.Time `json:"created_at"` // Дата создания учётной записи
}
