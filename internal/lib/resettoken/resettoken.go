// Package resettoken реализует короткоживущие токены сброса пароля.
//
// Токен — случайная строка, которая отдается пользователю в письме.
// В базе хранится только bcrypt-хэш токена и срок действия, поэтому
// утечка базы не раскрывает действующие токены.
package resettoken

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// TTL — срок действия токена сброса пароля.
const TTL = 15 * time.Minute

// New генерирует токен сброса и возвращает его открытое значение
// вместе с bcrypt-хэшем для хранения.
func New() (plain, hash string, err error) {
	const op = "resettoken.New"
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	plain = hex.EncodeToString(buf)

	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return plain, string(hashed), nil
}

// Validate проверяет токен: хэш должен совпадать И срок действия не
// должен быть пройден. Оба условия обязательны.
func Validate(hash, plain string, expiry time.Time) bool {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return false
	}
	return expiry.After(time.Now())
}
