// Package uploadavatar реализует HTTP-обработчик загрузки аватара.
// Файл принимается multipart-формой, кладется в хранилище, а пара
// ключ-ссылка затем передается в обработчик обновления профиля.
package uploadavatar

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-platform/internal/http/response"
	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
)

// Максимальный размер файла аватара.
const maxAvatarSize = 5 << 20

// Store описывает интерфейс хранилища аватаров.
type Store interface {
	Put(ctx context.Context, userUID string, data []byte, contentType string) (string, error)
	URL(key string) string
}

// Handler обрабатывает HTTP-запросы загрузки аватара.
type Handler struct {
	log   *slog.Logger
	store Store
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, store Store) *Handler {
	return &Handler{log: log, store: store}
}

// ServeHTTP godoc
// @Summary Загрузка аватара
// @Description Принимает файл аватара и возвращает ключ и публичную ссылку объекта.
// @Tags Auth
// @Accept  mpfd
// @Produce  json
// @Param avatar formData file true "Файл аватара"
// @Success 200 {object} map[string]any "Ключ и ссылка загруженного аватара"
// @Failure 400 {object} response.ErrorResponse "Файл отсутствует или слишком большой"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 500 {object} response.ErrorResponse "Ошибка хранилища"
// @Router /auth/avatar [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.uploadavatar"

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

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		log.Error("failed to read avatar file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("avatar file is missing or too large"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read avatar file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("avatar file is missing or too large"))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key, err := h.store.Put(r.Context(), user.UID, data, contentType)
	if err != nil {
		log.Error("failed to store avatar", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to store avatar"))
		return
	}

	log.Info("avatar uploaded", slog.String("user_uid", user.UID), slog.String("key", key))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"avatarKey": key,
		"avatarUrl": h.store.URL(key),
	}))
}
