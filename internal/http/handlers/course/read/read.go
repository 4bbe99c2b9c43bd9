// Package read реализует HTTP-обработчик чтения курса с лекциями.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/services/course"
)

// Service описывает интерфейс бизнес-логики чтения курса.
type Service interface {
	Get(ctx context.Context, courseUID string) (*models.Course, error)
}

// Handler обрабатывает HTTP-запросы чтения курса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Курс с лекциями
// @Description Возвращает курс каталога по идентификатору вместе с лекциями.
// @Tags Course
// @Produce  json
// @Param id path string true "Идентификатор курса"
// @Success 200 {object} map[string]any "Курс"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /courses/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	courseUID := chi.URLParam(r, "id")
	if courseUID == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing course id"))
		return
	}

	c, err := h.service.Get(r.Context(), courseUID)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			log.Info("course not found", slog.String("course_uid", courseUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
			return
		}
		log.Error("failed to read course", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	lectures := make([]map[string]any, 0, len(c.Lectures))
	for _, l := range c.Lectures {
		lectures = append(lectures, map[string]any{
			"title":       l.Title,
			"description": l.Description,
			"videoUrl":    l.VideoURL,
			"youtubeLink": l.YoutubeLink,
			"position":    l.Position,
		})
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":          c.UID,
		"topic":       c.Topic,
		"description": c.Description,
		"category":    c.Category,
		"price":       c.Price,
		"discount":    c.Discount,
		"rating":      c.Rating,
		"level":       c.Level,
		"language":    c.Language,
		"createdBy":   c.CreatedBy,
		"lectures":    lectures,
	}))
}
