// Package listall реализует HTTP-обработчик годового отчета по
// платежам. Маршрут доступен только роли ADMIN.
package listall

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/services/billing"
)

// Service описывает интерфейс отчета по платежам.
type Service interface {
	PaymentsReport(year int) (*billing.YearReport, error)
}

// Handler обрабатывает HTTP-запросы отчета по платежам.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отчет по платежам за год
// @Description Выгружает у платежного провайдера все платежи указанного года с разбивкой и суммами по месяцам.
// @Tags Payment
// @Produce  json
// @Param year query int false "Год отчета, по умолчанию текущий"
// @Success 200 {object} map[string]any "Отчет"
// @Failure 400 {object} response.ErrorResponse "Некорректный год"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 403 {object} response.ErrorResponse "Роль не позволяет смотреть отчет"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/all [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.listall"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > time.Now().Year() {
			log.Info("invalid year", slog.String("year", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid year"))
			return
		}
		year = parsed
	}

	report, err := h.service.PaymentsReport(year)
	if err != nil {
		log.Error("failed to build payments report", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("payments report built", slog.Int("year", year))
	render.JSON(w, r, response.OKWithData(report))
}
