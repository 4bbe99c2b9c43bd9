// Package create реализует HTTP-обработчик добавления курса в каталог.
// Маршрут доступен только ролям INSTRUCTOR и ADMIN.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// LectureRequest — лекция в составе запроса на создание курса.
type LectureRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"max=2000"`
	VideoURL    string `json:"videoUrl" validate:"max=500"`
	YoutubeLink string `json:"youtubeLink" validate:"max=500"`
}

// Request — структура входных данных для создания курса.
type Request struct {
	Topic       string           `json:"topic" validate:"required,min=2,max=200"`
	Description string           `json:"description" validate:"max=5000"`
	Category    string           `json:"category" validate:"required,min=2,max=100"`
	Price       int              `json:"price" validate:"gte=0"`
	Discount    int              `json:"discount" validate:"gte=0,lte=100"`
	Level       string           `json:"level" validate:"max=50"`
	Language    string           `json:"language" validate:"max=50"`
	Lectures    []LectureRequest `json:"lectures" validate:"dive"`
}

// Service описывает интерфейс бизнес-логики создания курса.
type Service interface {
	Create(ctx context.Context, creator *models.User, course models.Course) (string, error)
}

// Handler обрабатывает HTTP-запросы создания курса.
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
// @Summary Создание курса
// @Description Добавляет курс с лекциями в каталог. Категория нормализуется в слаг.
// @Tags Course
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные курса"
// @Success 200 {object} map[string]any "Курс создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 403 {object} response.ErrorResponse "Роль не позволяет создавать курсы"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /courses [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.create"

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

	course := models.Course{
		Topic:       req.Topic,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Discount:    req.Discount,
		Level:       req.Level,
		Language:    req.Language,
	}
	for _, l := range req.Lectures {
		course.Lectures = append(course.Lectures, models.Lecture{
			Title:       l.Title,
			Description: l.Description,
			VideoURL:    l.VideoURL,
			YoutubeLink: l.YoutubeLink,
		})
	}

	uid, err := h.service.Create(r.Context(), user, course)
	if err != nil {
		log.Error("failed to create course", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("course created", slog.String("course_uid", uid))
	render.JSON(w, r, response.OKWithData(map[string]any{"id": uid}))
}
