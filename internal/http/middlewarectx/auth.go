package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	jwtlib "github.com/magabrotheeeer/course-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// UserProvider загружает пользователя по идентификатору из хранилища.
// Поиск выполняется на каждый запрос: удалённый или заблокированный
// аккаунт перестает проходить шлюз сразу, даже с живым токеном.
type UserProvider interface {
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

// Auth возвращает middleware — шлюз аутентификации для защищенных маршрутов.
//
// Токен сессии читается из cookie, проверяется подпись и срок действия,
// затем пользователь загружается из хранилища и кладется в контекст
// запроса. Истекшая сессия отличима от подделанного токена по тексту
// ошибки. Любая ошибка завершает запрос со статусом 401.
func Auth(log *slog.Logger, maker jwtlib.Maker, users UserProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Auth"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				log.Error("session cookie is missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user is not logged in"))
				return
			}

			claims, err := maker.ParseToken(cookie.Value)
			if err != nil {
				if errors.Is(err, jwtlib.ErrTokenExpired) {
					log.Error("session expired", sl.Err(err))
					w.WriteHeader(http.StatusUnauthorized)
					render.JSON(w, r, response.Error("session expired, please login again"))
					return
				}
				log.Error("invalid token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid token"))
				return
			}

			user, err := users.GetUser(r.Context(), claims.UserUID)
			if err != nil {
				log.Error("failed to load user from token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized user"))
				return
			}

			ctx := context.WithValue(r.Context(), CurrentUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext достает аутентифицированного пользователя из контекста.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(CurrentUser).(*models.User)
	return user, ok && user != nil
}
