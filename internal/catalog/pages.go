package catalog

// PageEllipsis — маркер «...» в последовательности видимых номеров страниц.
const PageEllipsis = -1

// VisiblePages строит компактную последовательность индикаторов страниц
// для пагинации фронтенда. Правила:
//
//   - totalPages <= 5 — все страницы;
//   - currentPage <= 3 — страницы 1-4, многоточие, последняя;
//   - currentPage >= totalPages-2 — первая, многоточие, последние 4;
//   - иначе — первая, многоточие, три страницы вокруг currentPage,
//     многоточие, последняя.
//
// currentPage вне диапазона приводится к границам.
func VisiblePages(totalPages, currentPage int) []int {
	if totalPages < 1 {
		return nil
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	if totalPages <= 5 {
		pages := make([]int, 0, totalPages)
		for i := 1; i <= totalPages; i++ {
			pages = append(pages, i)
		}
		return pages
	}

	switch {
	case currentPage <= 3:
		return []int{1, 2, 3, 4, PageEllipsis, totalPages}
	case currentPage >= totalPages-2:
		return []int{1, PageEllipsis, totalPages - 3, totalPages - 2, totalPages - 1, totalPages}
	default:
		return []int{
			1, PageEllipsis,
			currentPage - 1, currentPage, currentPage + 1,
			PageEllipsis, totalPages,
		}
	}
}
