// books.go — HTTP handlers каталога книг.
// Запросы с фильтрацией и пагинацией, карточка книги, счётчик просмотров.
package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/gobooklib/internal/api/errors"
	"github.com/bigkaa/gobooklib/internal/catalog"
	"github.com/bigkaa/gobooklib/internal/domain/model"
	"github.com/bigkaa/gobooklib/internal/service"
)

// BooksHandler — обработчик endpoints каталога.
type BooksHandler struct {
	catalogSvc *service.CatalogService
}

// NewBooksHandler создаёт обработчик каталога.
func NewBooksHandler(catalogSvc *service.CatalogService) *BooksHandler {
	return &BooksHandler{catalogSvc: catalogSvc}
}

// bookResponse — представление книги в API.
type bookResponse struct {
	ID            int64    `json:"id"`
	FileID        string   `json:"fileId"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	Filename      string   `json:"filename"`
	ImageURL      *string  `json:"imageUrl"`
	MessageLink   *string  `json:"messageLink"`
	IsLargeFile   bool     `json:"isLargeFile"`
	ViewCount     int64    `json:"viewCount"`
	DownloadCount int64    `json:"downloadCount"`
	AddedAt       string   `json:"addedAt"`
}

func toBookResponse(b *model.Book) bookResponse {
	categories := b.Categories
	if categories == nil {
		categories = []string{}
	}
	return bookResponse{
		ID:            b.ID,
		FileID:        b.FileID,
		Title:         b.Title,
		Description:   b.Description,
		Categories:    categories,
		Filename:      b.Filename,
		ImageURL:      b.ImageURL,
		MessageLink:   b.MessageLink,
		IsLargeFile:   b.IsLargeFile,
		ViewCount:     b.ViewCount,
		DownloadCount: b.DownloadCount,
		AddedAt:       b.AddedAtDisplay(),
	}
}

// queryRequest — тело POST /api/books/query.
// readList и willReadList приходят от клиента: персональные списки
// хранятся на стороне браузера.
type queryRequest struct {
	Query        string   `json:"query"`
	Category     string   `json:"category"`
	PageSize     int      `json:"pageSize"`
	Page         int      `json:"page"`
	ReadList     []string `json:"readList"`
	WillReadList []string `json:"willReadList"`
}

// queryResponse — ответ POST /api/books/query.
type queryResponse struct {
	Items        []bookResponse `json:"items"`
	TotalMatched int            `json:"totalMatched"`
	TotalPages   int            `json:"totalPages"`
	CurrentPage  int            `json:"currentPage"`
	VisiblePages []int          `json:"visiblePages"`
}

// Query обрабатывает POST /api/books/query.
// Фильтрация по подстроке и селектору категории, пагинация.
func (h *BooksHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.catalogSvc.Query(r.Context(), service.QueryParams{
		Query:    req.Query,
		Selector: catalog.ParseSelector(req.Category),
		Lists: catalog.PersonalLists{
			Read:     catalog.NewIDSet(req.ReadList),
			WillRead: catalog.NewIDSet(req.WillReadList),
		},
		PageSize: req.PageSize,
		Page:     req.Page,
	})
	if err != nil {
		apierrors.InternalError(w, "ошибка запроса к каталогу")
		return
	}

	items := make([]bookResponse, 0, len(result.PageItems))
	for _, b := range result.PageItems {
		items = append(items, toBookResponse(b))
	}

	visiblePages := catalog.VisiblePages(result.TotalPages, result.ClampedPage)
	if visiblePages == nil {
		visiblePages = []int{}
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Items:        items,
		TotalMatched: result.TotalMatched,
		TotalPages:   result.TotalPages,
		CurrentPage:  result.ClampedPage,
		VisiblePages: visiblePages,
	})
}

// listResponse — ответ GET /api/books.
type listResponse struct {
	Items []bookResponse `json:"items"`
	Total int            `json:"total"`
}

// ListAll обрабатывает GET /api/books: весь каталог без пагинации,
// отсортированный по дате добавления. Используется фронтендом при
// первичной загрузке страницы.
func (h *BooksHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.catalogSvc.Query(r.Context(), service.QueryParams{
		Selector: catalog.Selector{Kind: catalog.SelectAll},
		PageSize: catalog.PageSizeAll,
		Page:     1,
	})
	if err != nil {
		apierrors.InternalError(w, "ошибка загрузки каталога")
		return
	}

	items := make([]bookResponse, 0, len(result.PageItems))
	for _, b := range result.PageItems {
		items = append(items, toBookResponse(b))
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: result.TotalMatched})
}

// categoriesResponse — ответ GET /api/books/categories.
type categoriesResponse struct {
	Categories []string `json:"categories"`
}

// Categories обрабатывает GET /api/books/categories.
func (h *BooksHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogSvc.Categories(r.Context())
	if err != nil {
		apierrors.InternalError(w, "ошибка получения категорий")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: categories})
}

// Get обрабатывает GET /api/books/{fileId}.
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")

	book, err := h.catalogSvc.GetBook(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "книга не найдена")
			return
		}
		apierrors.InternalError(w, "ошибка получения книги")
		return
	}

	writeJSON(w, http.StatusOK, toBookResponse(book))
}

// viewResponse — ответ POST /api/books/{fileId}/view.
type viewResponse struct {
	ViewCount int64 `json:"viewCount"`
}

// RegisterView обрабатывает POST /api/books/{fileId}/view.
// Инкрементирует счётчик просмотров и возвращает новое значение.
func (h *BooksHandler) RegisterView(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileId")

	count, err := h.catalogSvc.RegisterView(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "книга не найдена")
			return
		}
		apierrors.InternalError(w, "ошибка регистрации просмотра")
		return
	}

	writeJSON(w, http.StatusOK, viewResponse{ViewCount: count})
}
