// Package key реализует HTTP-обработчик выдачи публичного ключа
// платежного провайдера для клиентского виджета оплаты.
package key

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/response"
)

// Handler обрабатывает HTTP-запросы публичного ключа.
type Handler struct {
	log   *slog.Logger
	keyID string
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, keyID string) *Handler {
	return &Handler{log: log, keyID: keyID}
}

// ServeHTTP godoc
// @Summary Публичный ключ провайдера
// @Description Возвращает идентификатор ключа для инициализации платежного виджета.
// @Tags Payment
// @Produce  json
// @Success 200 {object} map[string]any "Ключ"
// @Router /payments/key [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]any{"key": h.keyID}))
}
