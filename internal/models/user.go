// Package models содержит доменные структуры платформы: пользователей,
// курсы и записи о покупках. Структуры используются в бизнес-логике
// и при работе с хранилищем.
package models

import "time"

// Роли пользователей. Закрытый набор значений, по которому middleware
// принимает решения о доступе к маршрутам.
const (
	// RoleUser — обычный пользователь, покупатель курсов.
	RoleUser = "USER"
	// RoleInstructor — автор курсов, покупать курсы не может.
	RoleInstructor = "INSTRUCTOR"
	// RoleAdmin — администратор платформы.
	RoleAdmin = "ADMIN"
)

// User представляет зарегистрированного пользователя платформы.
type User struct {
	UID              string     // Уникальный идентификатор пользователя
	Email            string     // Электронная почта, хранится в нижнем регистре
	FullName         string     // Полное имя
	GoogleID         *string    // Идентификатор внешнего аккаунта, может отсутствовать
	PasswordHash     *string    // Хэш пароля, пустой для аккаунтов из OAuth
	Role             string     // Роль пользователя: USER, INSTRUCTOR или ADMIN
	Contact          string     // Контактный телефон
	Linkedin         string     // Ссылка на профиль LinkedIn
	Address          string     // Адрес
	AvatarKey        string     // Ключ объекта аватара во внешнем хранилище
	AvatarURL        string     // Публичная ссылка на аватар
	ResetTokenHash   *string    // Хэш токена сброса пароля
	ResetTokenExpiry *time.Time // Срок действия токена сброса
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
