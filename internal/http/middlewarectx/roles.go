package middlewarectx

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
)

// RequireRoles возвращает middleware, пропускающий только пользователей
// с ролью из переданного набора. Набор задается один раз при регистрации
// маршрута. Ставится после Auth: если пользователя в контексте нет,
// запрос завершается со статусом 401.
func RequireRoles(log *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireRoles"
			log := log.With(slog.String("op", op))

			user, ok := UserFromContext(r.Context())
			if !ok {
				log.Error("user missing in context")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}

			if !slices.Contains(roles, user.Role) {
				log.Error("role is not allowed",
					slog.String("role", user.Role), slog.Any("allowed", roles))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden: insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
