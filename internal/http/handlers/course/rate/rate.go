// Package rate реализует HTTP-обработчик выставления оценки курсу.
package rate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/services/course"
)

// Request — структура входных данных для оценки курса.
type Request struct {
	Value int `json:"value" validate:"required,gte=1,lte=5"`
}

// Service описывает интерфейс бизнес-логики оценки курса.
type Service interface {
	Rate(ctx context.Context, user *models.User, courseUID string, value int) (float64, error)
}

// Handler обрабатывает HTTP-запросы оценки курса.
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
// @Summary Оценка курса
// @Description Сохраняет оценку 1..5 от текущего пользователя и возвращает обновленный средний рейтинг. Повторная оценка заменяет прежнюю.
// @Tags Course
// @Accept  json
// @Produce  json
// @Param id path string true "Идентификатор курса"
// @Param request body Request true "Оценка"
// @Success 200 {object} map[string]any "Средний рейтинг"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /courses/{id}/rate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.rate"

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

	courseUID := chi.URLParam(r, "id")
	if courseUID == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing course id"))
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

	rating, err := h.service.Rate(r.Context(), user, courseUID, req.Value)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			log.Info("course not found", slog.String("course_uid", courseUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
			return
		}
		log.Error("failed to rate course", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("course rated", slog.String("course_uid", courseUID), slog.Int("value", req.Value))
	render.JSON(w, r, response.OKWithData(map[string]any{"rating": rating}))
}
