// download.go — HTTP handler скачивания книг.
// Проксирует PDF от файлового хранилища Telegram клиенту.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/gobooklib/internal/api/errors"
	"github.com/bigkaa/gobooklib/internal/service"
)

// DownloadHandler — обработчик endpoint скачивания.
type DownloadHandler struct {
	downloadSvc *service.DownloadService
	catalogSvc  *service.CatalogService
}

// NewDownloadHandler создаёт обработчик скачивания.
func NewDownloadHandler(downloadSvc *service.DownloadService, catalogSvc *service.CatalogService) *DownloadHandler {
	return &DownloadHandler{
		downloadSvc: downloadSvc,
		catalogSvc:  catalogSvc,
	}
}

// Download обрабатывает GET /download/{fileId}.
// Большие файлы не проксируются: клиент получает redirect на пост
// в архивном канале Telegram.
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")

	err := h.downloadSvc.Download(r.Context(), w, fileID)
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, "книга не найдена")
	case errors.Is(err, service.ErrLargeFile):
		h.redirectToArchive(w, r, fileID)
	default:
		apierrors.UpstreamError(w, "ошибка скачивания файла")
	}
}

// redirectToArchive отправляет клиента на пост книги в архивном канале.
func (h *DownloadHandler) redirectToArchive(w http.ResponseWriter, r *http.Request, fileID string) {
	book, err := h.catalogSvc.GetBook(r.Context(), fileID)
	if err != nil || book.MessageLink == nil || *book.MessageLink == "" {
		apierrors.NotFound(w, "ссылка на архивный канал недоступна")
		return
	}
	http.Redirect(w, r, *book.MessageLink, http.StatusFound)
}
