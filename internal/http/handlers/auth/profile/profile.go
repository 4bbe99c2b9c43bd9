// Package profile реализует HTTP-обработчик чтения профиля текущего
// пользователя. Пользователь берется из контекста запроса, куда его
// кладет шлюз аутентификации.
package profile

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
)

// Handler обрабатывает HTTP-запросы чтения профиля.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Профиль текущего пользователя
// @Description Возвращает данные аккаунта из сессии.
// @Tags Auth
// @Produce  json
// @Success 200 {object} map[string]any "Данные профиля"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Router /auth/profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("no user in request context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized user"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":       user.UID,
		"fullName": user.FullName,
		"email":    user.Email,
		"role":     user.Role,
		"contact":  user.Contact,
		"linkedin": user.Linkedin,
		"address":  user.Address,
		"avatar":   user.AvatarURL,
	}))
}
