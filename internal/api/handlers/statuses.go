// statuses.go — HTTP handlers ленты статусов и комментариев.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/gobooklib/internal/api/errors"
	apimw "github.com/bigkaa/gobooklib/internal/api/middleware"
	"github.com/bigkaa/gobooklib/internal/domain/model"
	"github.com/bigkaa/gobooklib/internal/service"
)

// StatusesHandler — обработчик ленты статусов.
type StatusesHandler struct {
	statusSvc *service.StatusService
	userSvc   *service.UserService
}

// NewStatusesHandler создаёт обработчик ленты статусов.
func NewStatusesHandler(statusSvc *service.StatusService, userSvc *service.UserService) *StatusesHandler {
	return &StatusesHandler{
		statusSvc: statusSvc,
		userSvc:   userSvc,
	}
}

// commentResponse — представление комментария в API.
type commentResponse struct {
	ID             int64     `json:"id"`
	StatusID       int64     `json:"statusId"`
	Body           string    `json:"body"`
	Author         string    `json:"author"`
	AuthorImage    string    `json:"authorImage"`
	AuthorVerified bool      `json:"authorVerified"`
	CreatedAt      time.Time `json:"createdAt"`
}

// statusResponse — представление статуса в API.
type statusResponse struct {
	ID             int64             `json:"id"`
	Body           string            `json:"body"`
	Author         string            `json:"author"`
	AuthorImage    string            `json:"authorImage"`
	AuthorVerified bool              `json:"authorVerified"`
	IsQuote        bool              `json:"isQuote"`
	BookData       json.RawMessage   `json:"bookData,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
	Comments       []commentResponse `json:"comments"`
}

func toCommentResponse(c *model.Comment) commentResponse {
	return commentResponse{
		ID:             c.ID,
		StatusID:       c.StatusID,
		Body:           c.Body,
		Author:         c.Author,
		AuthorImage:    c.AuthorImage,
		AuthorVerified: c.AuthorVerified,
		CreatedAt:      c.CreatedAt,
	}
}

func toStatusResponse(st *model.Status, comments []*model.Comment) statusResponse {
	resp := statusResponse{
		ID:             st.ID,
		Body:           st.Body,
		Author:         st.Author,
		AuthorImage:    st.AuthorImage,
		AuthorVerified: st.AuthorVerified,
		IsQuote:        st.IsQuote,
		BookData:       json.RawMessage(st.BookData),
		CreatedAt:      st.CreatedAt,
		UpdatedAt:      st.UpdatedAt,
		Comments:       make([]commentResponse, 0, len(comments)),
	}
	for _, c := range comments {
		resp.Comments = append(resp.Comments, toCommentResponse(c))
	}
	return resp
}

// sessionUser возвращает актуального пользователя по email сессии.
// Чтение из БД гарантирует, что блокировка действует немедленно,
// а не после истечения сессии.
func (h *StatusesHandler) sessionUser(w http.ResponseWriter, r *http.Request) *model.User {
	session := apimw.SessionFromContext(r.Context())
	if session == nil {
		apierrors.Unauthorized(w, "требуется аутентификация")
		return nil
	}

	user, err := h.userSvc.GetByEmail(r.Context(), session.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apierrors.Unauthorized(w, "пользователь не найден")
			return nil
		}
		apierrors.InternalError(w, "ошибка получения пользователя")
		return nil
	}
	return user
}

// idParam извлекает числовой идентификатор из URL.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		apierrors.ValidationError(w, "невалидный идентификатор")
		return 0, false
	}
	return id, true
}

// List обрабатывает GET /api/statuses. Доступен без аутентификации.
func (h *StatusesHandler) List(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.statusSvc.List(r.Context())
	if err != nil {
		apierrors.InternalError(w, "ошибка чтения ленты статусов")
		return
	}

	items := make([]statusResponse, 0, len(statuses))
	for _, st := range statuses {
		items = append(items, toStatusResponse(st.Status, st.Comments))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// statusRequest — тело POST /api/statuses.
type statusRequest struct {
	Body     string          `json:"body"`
	IsQuote  bool            `json:"isQuote"`
	BookData json.RawMessage `json:"bookData"`
}

// Create обрабатывает POST /api/statuses.
func (h *StatusesHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := h.sessionUser(w, r)
	if user == nil {
		return
	}

	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	st, err := h.statusSvc.Create(r.Context(), user, req.Body, req.IsQuote, req.BookData)
	if err != nil {
		writeStatusError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStatusResponse(st, nil))
}

// updateStatusRequest — тело PUT /api/statuses/{id}.
type updateStatusRequest struct {
	Body string `json:"body"`
}

// Update обрабатывает PUT /api/statuses/{id}. Только автор.
func (h *StatusesHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := h.sessionUser(w, r)
	if user == nil {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.statusSvc.Update(r.Context(), user, id, req.Body); err != nil {
		writeStatusError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete обрабатывает DELETE /api/statuses/{id}.
// Автор удаляет свои статусы, администратор — любые.
func (h *StatusesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := h.sessionUser(w, r)
	if user == nil {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	session := apimw.SessionFromContext(r.Context())
	if err := h.statusSvc.Delete(r.Context(), user, id, session.IsAdmin); err != nil {
		writeStatusError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// commentRequest — тело POST /api/statuses/{id}/comments.
type commentRequest struct {
	Body string `json:"body"`
}

// AddComment обрабатывает POST /api/statuses/{id}/comments.
func (h *StatusesHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := h.sessionUser(w, r)
	if user == nil {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.statusSvc.AddComment(r.Context(), user, id, req.Body)
	if err != nil {
		writeStatusError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentResponse(c))
}

// DeleteComment обрабатывает DELETE /api/comments/{id}.
// Автор удаляет свои комментарии, администратор — любые.
func (h *StatusesHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user := h.sessionUser(w, r)
	if user == nil {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	session := apimw.SessionFromContext(r.Context())
	if err := h.statusSvc.DeleteComment(r.Context(), user, id, session.IsAdmin); err != nil {
		writeStatusError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeStatusError преобразует ошибки сервиса статусов в HTTP-ответ.
func writeStatusError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrStatusNotFound):
		apierrors.NotFound(w, "статус не найден")
	case errors.Is(err, service.ErrEmptyBody):
		apierrors.ValidationError(w, "текст не может быть пустым")
	case errors.Is(err, service.ErrUserBanned):
		apierrors.Forbidden(w, "пользователь заблокирован")
	default:
		apierrors.InternalError(w, "ошибка обработки статуса")
	}
}
