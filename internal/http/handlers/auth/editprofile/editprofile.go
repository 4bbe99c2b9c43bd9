// Package editprofile реализует HTTP-обработчик редактирования профиля.
//
// Файл аватара загружается фронтендом напрямую во внешнее хранилище,
// сюда приходит только ключ объекта и публичная ссылка. Старый объект
// аватара удаляется сервисом по возможности.
package editprofile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/services/auth"
)

// Request — структура входных данных для редактирования профиля.
type Request struct {
	FullName  string `json:"fullName" validate:"required,min=2,max=100"`
	Contact   string `json:"contact" validate:"max=20"`
	Linkedin  string `json:"linkedin" validate:"max=200"`
	Address   string `json:"address" validate:"max=200"`
	AvatarKey string `json:"avatarKey" validate:"max=300"`
	AvatarURL string `json:"avatarUrl" validate:"max=500"`
}

// Service описывает интерфейс бизнес-логики редактирования профиля.
type Service interface {
	UpdateProfile(ctx context.Context, user *models.User, upd auth.ProfileUpdate) (*models.User, error)
}

// Handler обрабатывает HTTP-запросы редактирования профиля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Редактирование профиля
// @Description Обновляет поля профиля и ссылку на аватар текущего пользователя.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Новые данные профиля"
// @Success 200 {object} map[string]any "Обновленный профиль"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/profile [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.editprofile"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user, auth.ProfileUpdate{
		FullName:  req.FullName,
		Contact:   req.Contact,
		Linkedin:  req.Linkedin,
		Address:   req.Address,
		AvatarKey: req.AvatarKey,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to update profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("profile updated", slog.String("user_uid", user.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":       updated.UID,
		"fullName": updated.FullName,
		"contact":  updated.Contact,
		"linkedin": updated.Linkedin,
		"address":  updated.Address,
		"avatar":   updated.AvatarURL,
	}))
}
