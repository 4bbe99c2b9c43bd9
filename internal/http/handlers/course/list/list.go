// Package list реализует HTTP-обработчик списка курсов каталога.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	List(ctx context.Context) ([]*models.Course, error)
}

// Handler обрабатывает HTTP-запросы списка курсов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// courseItem — строка каталога без лекций.
type courseItem struct {
	ID          string  `json:"id"`
	Topic       string  `json:"topic"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       int     `json:"price"`
	Discount    int     `json:"discount"`
	Rating      float64 `json:"rating"`
	Level       string  `json:"level"`
	Language    string  `json:"language"`
	CreatedBy   string  `json:"createdBy"`
}

// ServeHTTP godoc
// @Summary Список курсов
// @Description Возвращает все курсы каталога. Ответ кешируется на стороне сервера.
// @Tags Course
// @Produce  json
// @Success 200 {object} map[string]any "Курсы каталога"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /courses [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	courses, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list courses", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	items := make([]courseItem, 0, len(courses))
	for _, c := range courses {
		items = append(items, courseItem{
			ID:          c.UID,
			Topic:       c.Topic,
			Description: c.Description,
			Category:    c.Category,
			Price:       c.Price,
			Discount:    c.Discount,
			Rating:      c.Rating,
			Level:       c.Level,
			Language:    c.Language,
			CreatedBy:   c.CreatedBy,
		})
	}

	log.Info("courses listed", slog.Int("count", len(items)))
	render.JSON(w, r, response.OKWithData(map[string]any{"courses": items}))
}
