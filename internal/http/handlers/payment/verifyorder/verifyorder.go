// Package verifyorder реализует HTTP-обработчик проверки подписи
// оплаты разового заказа.
package verifyorder

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

// Request — структура входных данных для проверки оплаты заказа.
// Подпись считается от сохраненного идентификатора заказа, но провайдер
// присылает и свой идентификатор — он обязателен по контракту виджета.
type Request struct {
	CourseID  string `json:"courseId" validate:"required,uuid"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// Service описывает интерфейс жизненного цикла покупки.
type Service interface {
	VerifyOrder(ctx context.Context, user *models.User, courseUID, paymentID, signature string) error
}

// Handler обрабатывает HTTP-запросы проверки оплаты заказа.
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
// @Summary Проверка оплаты заказа
// @Description Сверяет подпись оплаты и открывает доступ к курсу на два года.
// @Tags Payment
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные оплаты от платежного виджета"
// @Success 200 {object} response.Response "Оплата подтверждена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или подпись не совпала"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 404 {object} response.ErrorResponse "Запись о покупке не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/order/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verifyorder"

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

	err := h.service.VerifyOrder(r.Context(), user, req.CourseID, req.PaymentID, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrEntryNotFound):
			log.Info("purchase entry not found", slog.String("course_uid", req.CourseID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("purchase entry not found"))
		case errors.Is(err, billing.ErrVerificationFailed):
			log.Warn("payment verification failed", slog.String("course_uid", req.CourseID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("payment verification failed"))
		default:
			log.Error("failed to verify payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("payment verified", slog.String("course_uid", req.CourseID))
	render.JSON(w, r, response.OK())
}
