// pdftitle.go — извлечение кандидата в название книги из текста PDF.
// Используется ботом как последний источник метаданных, когда caption
// и имя файла ничего не дали. Парсер ledongthuc/pdf, чистый Go.
package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ParsePDFTitle возвращает первую непустую строку текста первой
// читаемой страницы PDF. Пустая строка — «название извлечь не удалось»:
// документ больше limit, нечитаем или не содержит текста.
// Функция никогда не возвращает ошибку наружу: неудача парсинга —
// штатный случай fallback-цепочки.
func ParsePDFTitle(content []byte, limit int64) string {
	if len(content) == 0 || (limit > 0 && int64(len(content)) > limit) {
		return ""
	}

	// Библиотека паникует на повреждённых xref-таблицах.
	defer func() { _ = recover() }()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ""
	}

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if title := firstLine(text); title != "" {
			return title
		}
	}
	return ""
}

// firstLine возвращает первую непустую строку текста, обрезанную
// до разумной длины названия.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Слишком длинная «строка» — скорее абзац, чем название.
		if len(line) > 200 {
			runes := []rune(line)
			if len(runes) > 200 {
				line = fmt.Sprintf("%s…", strings.TrimSpace(string(runes[:200])))
			}
		}
		return line
	}
	return ""
}
