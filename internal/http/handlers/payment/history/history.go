// Package history реализует HTTP-обработчик истории покупок текущего
// пользователя.
package history

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
)

// Service описывает интерфейс жизненного цикла покупки.
type Service interface {
	PurchaseHistory(ctx context.Context, user *models.User) ([]models.HistoryItem, error)
}

// Handler обрабатывает HTTP-запросы истории покупок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История покупок
// @Description Возвращает покупки текущего пользователя. Незавершенные оплаты не включаются.
// @Tags Payment
// @Produce  json
// @Success 200 {object} map[string]any "История покупок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.history"

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

	items, err := h.service.PurchaseHistory(r.Context(), user)
	if err != nil {
		log.Error("failed to load purchase history", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("history loaded", slog.Int("count", len(items)))
	render.JSON(w, r, response.OKWithData(map[string]any{"history": items}))
}
