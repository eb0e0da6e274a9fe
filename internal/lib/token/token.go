// Package token генерирует одноразовые токены активации учётной записи.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Length — длина токена активации в символах.
const Length = 16

// New возвращает новый случайный токен активации: Length символов
// шестнадцатеричного алфавита в нижнем регистре (64 бита энтропии
// из криптографически стойкого источника).
func New() (string, error) {
	const op = "token.New"
	buf := make([]byte, Length/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}
