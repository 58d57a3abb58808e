// handler.go — основной обработчик API Book Library.
// Объединяет обработчики по зонам ответственности и регистрирует маршруты.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/gobooklib/internal/api/errors"
	apimw "github.com/bigkaa/gobooklib/internal/api/middleware"
	"github.com/bigkaa/gobooklib/internal/ui/auth"
)

// APIHandler — основной обработчик API Book Library.
// Делегирует запросы в обработчики по зонам ответственности.
type APIHandler struct {
	health   *HealthHandler
	books    *BooksHandler
	download *DownloadHandler
	statuses *StatusesHandler
	auth     *AuthHandler
	admin    *AdminHandler
	sessions *auth.SessionManager
	logger   *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	books *BooksHandler,
	download *DownloadHandler,
	statuses *StatusesHandler,
	authHandler *AuthHandler,
	admin *AdminHandler,
	sessions *auth.SessionManager,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:   health,
		books:    books,
		download: download,
		statuses: statuses,
		auth:     authHandler,
		admin:    admin,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// RegisterRoutes регистрирует маршруты API на роутере chi.
func (h *APIHandler) RegisterRoutes(r chi.Router) {
	// Health и метрики — без сессии
	r.Get("/health/live", h.health.HealthLive)
	r.Get("/health/ready", h.health.HealthReady)
	r.Get("/metrics", h.health.GetMetrics)

	// Все остальные маршруты читают сессионную cookie
	r.Group(func(r chi.Router) {
		r.Use(apimw.SessionMiddleware(h.sessions, h.logger))

		// Аутентификация
		r.Get("/auth/google", h.auth.GoogleLogin)
		r.Get("/auth/google/callback", h.auth.GoogleCallback)
		r.Post("/auth/logout", h.auth.Logout)
		r.Get("/api/me", h.auth.Me)

		// Каталог книг — публичный
		r.Get("/api/books", h.books.ListAll)
		r.Post("/api/books/query", h.books.Query)
		r.Get("/api/books/categories", h.books.Categories)
		r.Get("/api/books/{fileId}", h.books.Get)
		r.Post("/api/books/{fileId}/view", h.books.RegisterView)
		r.Get("/download/{fileId}", h.download.Download)

		// Статусы — чтение публичное, запись требует сессию
		r.Get("/api/statuses", h.statuses.List)
		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireAuth)
			r.Post("/api/statuses", h.statuses.Create)
			r.Put("/api/statuses/{id}", h.statuses.Update)
			r.Delete("/api/statuses/{id}", h.statuses.Delete)
			r.Post("/api/statuses/{id}/comments", h.statuses.AddComment)
			r.Delete("/api/comments/{id}", h.statuses.DeleteComment)
		})

		// Администрирование
		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireAdmin)
			r.Get("/api/admin/users", h.admin.ListUsers)
			r.Post("/api/admin/users/{email}/verify", h.admin.SetVerified)
			r.Post("/api/admin/users/{email}/ban", h.admin.SetBanned)
			r.Post("/api/admin/books", h.admin.CreateBook)
			r.Put("/api/admin/books/{fileId}", h.admin.UpdateBook)
			r.Delete("/api/admin/books/{fileId}", h.admin.DeleteBook)
			r.Post("/api/admin/books/{fileId}/image", h.admin.UploadImage)
			r.Delete("/api/admin/categories/{name}", h.admin.DeleteCategory)
		})
	})
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON декодирует тело запроса в dst.
// Возвращает false и пишет 400, если тело невалидно.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.ValidationError(w, "невалидное JSON-тело запроса")
		return false
	}
	return true
}
