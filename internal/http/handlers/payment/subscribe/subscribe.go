// Package subscribe реализует HTTP-обработчик оформления регулярной
// подписки на курс. Маршрут доступен только роли USER.
package subscribe

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
	"github.com/magabrotheeeer/course-platform/internal/services/billing"
)

// Request — структура входных данных для оформления подписки.
type Request struct {
	CourseID string `json:"courseId" validate:"required,uuid"`
}

// Service описывает интерфейс жизненного цикла покупки.
type Service interface {
	Subscribe(ctx context.Context, user *models.User, courseUID string) (*billing.SubscribeResult, error)
}

// Handler обрабатывает HTTP-запросы оформления подписки.
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
// @Summary Оформление регулярной подписки
// @Description Создает регулярную подписку у платежного провайдера. Повторная покупка идемпотентна.
// @Tags Payment
// @Accept  json
// @Produce  json
// @Param request body Request true "Идентификатор курса"
// @Success 200 {object} map[string]any "Подписка или признак открытого доступа"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или отказ провайдера"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/subscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.subscribe"

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

	result, err := h.service.Subscribe(r.Context(), user, req.CourseID)
	if err != nil {
		if errors.Is(err, billing.ErrCourseNotFound) {
			log.Info("course not found", slog.String("course_uid", req.CourseID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
			return
		}
		log.Error("failed to create subscription", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to create subscription"))
		return
	}

	if result.AlreadyActive {
		render.JSON(w, r, response.OKWithData(map[string]any{
			"message": "course already purchased",
		}))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscriptionId": result.Subscription.ID,
		"status":         result.Subscription.Status,
	}))
}
