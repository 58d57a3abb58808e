// admin.go — HTTP handlers администрирования.
// Управление пользователями и редактирование каталога.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/gobooklib/internal/api/errors"
	"github.com/bigkaa/gobooklib/internal/domain/model"
	"github.com/bigkaa/gobooklib/internal/service"
)

// AdminHandler — обработчик админских endpoints.
type AdminHandler struct {
	userSvc    *service.UserService
	catalogSvc *service.CatalogService
	ingestSvc  *service.IngestService
	uploadDir  string
}

// NewAdminHandler создаёт обработчик админских endpoints.
// uploadDir — каталог для PDF и обложек, загружаемых через веб-интерфейс.
func NewAdminHandler(
	userSvc *service.UserService,
	catalogSvc *service.CatalogService,
	ingestSvc *service.IngestService,
	uploadDir string,
) *AdminHandler {
	return &AdminHandler{
		userSvc:    userSvc,
		catalogSvc: catalogSvc,
		ingestSvc:  ingestSvc,
		uploadDir:  uploadDir,
	}
}

// userResponse — представление пользователя в API.
type userResponse struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	Verified  bool      `json:"verified"`
	Banned    bool      `json:"banned"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		Verified:  u.Verified,
		Banned:    u.Banned,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

// ListUsers обрабатывает GET /api/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userSvc.ListAll(r.Context())
	if err != nil {
		apierrors.InternalError(w, "ошибка получения списка пользователей")
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// setFlagRequest — тело запросов verify/ban.
type setFlagRequest struct {
	Value bool `json:"value"`
}

// SetVerified обрабатывает POST /api/admin/users/{email}/verify.
func (h *AdminHandler) SetVerified(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var req setFlagRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.userSvc.SetVerified(r.Context(), email, req.Value); err != nil {
		writeUserError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetBanned обрабатывает POST /api/admin/users/{email}/ban.
func (h *AdminHandler) SetBanned(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var req setFlagRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.userSvc.SetBanned(r.Context(), email, req.Value); err != nil {
		writeUserError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updateBookRequest — тело PUT /api/admin/books/{fileId}.
type updateBookRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	ImageURL    *string  `json:"imageUrl"`
}

// UpdateBook обрабатывает PUT /api/admin/books/{fileId}.
// Редактируются только метаданные карточки.
func (h *AdminHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")

	var req updateBookRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		apierrors.ValidationError(w, "название книги не может быть пустым")
		return
	}

	book := &model.Book{
		FileID:      fileID,
		Title:       req.Title,
		Description: req.Description,
		Categories:  req.Categories,
		ImageURL:    req.ImageURL,
	}
	if err := h.catalogSvc.UpdateBook(r.Context(), book); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "книга не найдена")
			return
		}
		apierrors.InternalError(w, "ошибка обновления книги")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteBook обрабатывает DELETE /api/admin/books/{fileId}.
func (h *AdminHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")

	if err := h.catalogSvc.DeleteBook(r.Context(), fileID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "книга не найдена")
			return
		}
		apierrors.InternalError(w, "ошибка удаления книги")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// maxUploadSize ограничивает размер multipart-загрузки (PDF + обложка).
const maxUploadSize = 100 << 20 // 100 MiB

// CreateBook обрабатывает POST /api/admin/books.
// Multipart-форма: pdf (обязателен), image (опционально),
// title, description, categories (теги через запятую).
func (h *AdminHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		apierrors.ValidationError(w, "невалидная multipart-форма")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		apierrors.ValidationError(w, "название книги не может быть пустым")
		return
	}

	pdf, pdfHeader, err := r.FormFile("pdf")
	if err != nil {
		apierrors.ValidationError(w, "PDF-файл обязателен")
		return
	}
	defer pdf.Close()

	book, err := h.ingestSvc.AddManual(r.Context(), service.ManualParams{
		Title:       title,
		Description: strings.TrimSpace(r.FormValue("description")),
		Categories:  parseCategories(r.FormValue("categories")),
		Filename:    pdfHeader.Filename,
	})
	if err != nil {
		apierrors.InternalError(w, "ошибка добавления книги")
		return
	}

	if err := h.saveUpload(pdf, filepath.Base(book.FileURL)); err != nil {
		_ = h.catalogSvc.DeleteBook(r.Context(), book.FileID)
		apierrors.InternalError(w, "ошибка сохранения файла")
		return
	}

	if image, imageHeader, err := r.FormFile("image"); err == nil {
		defer image.Close()
		name := book.FileID + "-cover" + imageExt(imageHeader.Filename)
		if err := h.saveUpload(image, name); err == nil {
			imageURL := "/uploads/" + name
			if err := h.ingestSvc.SetCover(r.Context(), book.FileID, imageURL); err == nil {
				book.ImageURL = &imageURL
			}
		}
	}

	writeJSON(w, http.StatusCreated, toBookResponse(book))
}

// UploadImage обрабатывает POST /api/admin/books/{fileId}/image.
// Заменяет обложку существующей книги.
func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		apierrors.ValidationError(w, "невалидная multipart-форма")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	image, header, err := r.FormFile("image")
	if err != nil {
		apierrors.ValidationError(w, "файл обложки обязателен")
		return
	}
	defer image.Close()

	name := fileID + "-cover" + imageExt(header.Filename)
	if err := h.saveUpload(image, name); err != nil {
		apierrors.InternalError(w, "ошибка сохранения обложки")
		return
	}

	if err := h.ingestSvc.SetCover(r.Context(), fileID, "/uploads/"+name); err != nil {
		_ = os.Remove(filepath.Join(h.uploadDir, name))
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "книга не найдена")
			return
		}
		apierrors.InternalError(w, "ошибка сохранения обложки")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteCategoryResponse — ответ DELETE /api/admin/categories/{name}.
type deleteCategoryResponse struct {
	Affected int64 `json:"affected"`
}

// DeleteCategory обрабатывает DELETE /api/admin/categories/{name}.
// Убирает категорию у всех книг каталога.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		apierrors.ValidationError(w, "имя категории не может быть пустым")
		return
	}

	affected, err := h.catalogSvc.RemoveCategory(r.Context(), name)
	if err != nil {
		apierrors.InternalError(w, "ошибка удаления категории")
		return
	}
	writeJSON(w, http.StatusOK, deleteCategoryResponse{Affected: affected})
}

// saveUpload записывает загруженный файл в uploadDir под заданным именем.
func (h *AdminHandler) saveUpload(src io.Reader, name string) error {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return err
	}
	dst, err := os.Create(filepath.Join(h.uploadDir, filepath.Base(name)))
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}

// parseCategories разбирает список тегов: запятая как разделитель,
// пробелы и ведущий '#' отбрасываются.
func parseCategories(raw string) []string {
	var result []string
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimPrefix(strings.TrimSpace(part), "#")
		if tag != "" {
			result = append(result, tag)
		}
	}
	return result
}

// imageExt возвращает расширение файла обложки; неизвестное
// заменяется на ".jpg".
func imageExt(filename string) string {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return ext
	}
	return ".jpg"
}

// writeUserError преобразует ошибки сервиса пользователей в HTTP-ответ.
func writeUserError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		apierrors.NotFound(w, "пользователь не найден")
		return
	}
	apierrors.InternalError(w, "ошибка обновления пользователя")
}
