// Package middlewarectx содержит HTTP middleware приложения: шлюз
// аутентификации по cookie с JWT, проверку ролей и ограничение частоты
// запросов. Аутентифицированный пользователь кладется в контекст запроса
// и достается обработчиками через ключ CurrentUser.
package middlewarectx

// Key тип для ключей контекста HTTP-запроса.
type Key string

// CurrentUser — ключ контекста, под которым хранится *models.User,
// загруженный шлюзом аутентификации.
const CurrentUser Key = "current_user"

// SessionCookie — имя cookie с токеном сессии.
const SessionCookie = "token"
