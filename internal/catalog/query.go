package catalog

import (
	"strings"

	"github.com/bigkaa/gobooklib/internal/domain/model"
)

// SelectorKind — вид селектора категории.
// Типизированная замена строкового поля фронтенда, в котором смешивались
// системные категории и персональные списки чтения.
type SelectorKind int

const (
	// SelectAll — без фильтрации по категории.
	SelectAll SelectorKind = iota
	// SelectCategory — книга должна содержать указанный тег (exact, case-sensitive).
	SelectCategory
	// SelectRead — персональный список «прочитано» (по fileId).
	SelectRead
	// SelectWillRead — персональный список «буду читать» (по fileId).
	SelectWillRead
)

// Строковая кодировка селектора на HTTP-границе (значения фронтенда).
const (
	selectorAll      = "all"
	selectorRead     = "user-read"
	selectorWillRead = "user-will-read"
)

// Selector — типизированный селектор категории.
type Selector struct {
	Kind SelectorKind
	// Category — тег для SelectCategory, иначе "".
	Category string
}

// ParseSelector разбирает строковую кодировку селектора:
// "all", "user-read", "user-will-read" или литеральный тег категории.
func ParseSelector(s string) Selector {
	switch s {
	case selectorAll, "":
		return Selector{Kind: SelectAll}
	case selectorRead:
		return Selector{Kind: SelectRead}
	case selectorWillRead:
		return Selector{Kind: SelectWillRead}
	default:
		return Selector{Kind: SelectCategory, Category: s}
	}
}

// IDSet — множество fileId.
type IDSet map[string]struct{}

// NewIDSet строит множество из списка fileId.
func NewIDSet(ids []string) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains сообщает о принадлежности fileId множеству.
func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// PersonalLists — персональные списки пользователя, владелец — клиент.
// Передаются явно при каждом запросе; движок не хранит их.
type PersonalLists struct {
	// Read — fileId прочитанных книг.
	Read IDSet
	// WillRead — fileId книг «буду читать».
	WillRead IDSet
}

// PageSizeAll — sentinel «без ограничения размера страницы».
const PageSizeAll = 0

// Result — страница результата запроса с метаданными пагинации.
type Result struct {
	// PageItems — книги запрошенной страницы, исходный относительный порядок.
	PageItems []*model.Book
	// TotalMatched — количество совпадений до пагинации.
	TotalMatched int
	// TotalPages — количество страниц (минимум 1, даже при нуле совпадений).
	TotalPages int
	// ClampedPage — фактически выданная страница (page, приведённый в диапазон).
	ClampedPage int
}

// Query фильтрует каталог по подстроке и селектору категории, затем
// нарезает страницу. Фильтрация стабильна (сохраняет порядок каталога),
// некорректные номера страниц приводятся в диапазон, ошибок нет.
//
// pageSize <= 0 (PageSizeAll) означает «вся выборка одной страницей».
// page — 1-based.
func Query(books []*model.Book, query string, sel Selector, lists PersonalLists, pageSize, page int) Result {
	filtered := filter(books, query, sel, lists)
	total := len(filtered)

	totalPages := 1
	unbounded := pageSize <= PageSizeAll
	if !unbounded && total > pageSize {
		totalPages = (total + pageSize - 1) / pageSize
	}

	clamped := page
	if clamped < 1 {
		clamped = 1
	}
	if clamped > totalPages {
		clamped = totalPages
	}

	items := filtered
	if !unbounded {
		start := (clamped - 1) * pageSize
		end := start + pageSize
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}
		items = filtered[start:end]
	}

	return Result{
		PageItems:    items,
		TotalMatched: total,
		TotalPages:   totalPages,
		ClampedPage:  clamped,
	}
}

// filter применяет подстрочный и категорийный фильтры, сохраняя порядок.
func filter(books []*model.Book, query string, sel Selector, lists PersonalLists) []*model.Book {
	q := strings.ToLower(strings.TrimSpace(query))

	result := make([]*model.Book, 0, len(books))
	for _, b := range books {
		if q != "" &&
			!strings.Contains(strings.ToLower(b.Title), q) &&
			!strings.Contains(strings.ToLower(b.Description), q) {
			continue
		}
		if !matchSelector(b, sel, lists) {
			continue
		}
		result = append(result, b)
	}
	return result
}

// matchSelector проверяет книгу против селектора категории.
// Теги сравниваются как сохранены — без нормализации регистра.
func matchSelector(b *model.Book, sel Selector, lists PersonalLists) bool {
	switch sel.Kind {
	case SelectCategory:
		for _, c := range b.Categories {
			if c == sel.Category {
				return true
			}
		}
		return false
	case SelectRead:
		return lists.Read.Contains(b.FileID)
	case SelectWillRead:
		return lists.WillRead.Contains(b.FileID)
	default:
		return true
	}
}
