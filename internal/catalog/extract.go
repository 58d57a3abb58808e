// Пакет catalog — чистая доменная логика каталога книг:
// извлечение метаданных из caption и движок запросов (фильтрация + пагинация).
// Все функции пакета — тотальные и детерминированные: никакого I/O,
// никакого скрытого состояния, ошибки невозможны по построению.
package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// Wire-литералы оригинального каталога. Сохраняются для совместимости
// с существующими записями и фронтендом.
const (
	// TitleUnknown — итоговый fallback названия.
	TitleUnknown = "Bilinməyən"
	// FilenameUnknown — sentinel «имя файла неизвестно».
	FilenameUnknown = "Bilinməyən.pdf"
)

// tagPattern — категория в caption: '#' и один или более word-символов.
// Регистр сохраняется, несколько тегов в одной строке допустимы.
var tagPattern = regexp.MustCompile(`#\w+`)

// Metadata — каноническая тройка, извлечённая из источников документа.
type Metadata struct {
	// Title — название, никогда не пустое.
	Title string
	// Description — описание; при отсутствии синтезируется из имени файла.
	Description string
	// Categories — теги без '#', без дедупликации, порядок первого вхождения.
	Categories []string
}

// Extract строит (title, description, categories) из трёх недоверенных
// источников с фиксированным приоритетом:
//
//  1. Непустой caption: строки без тегов → первая = title, остальные = description;
//     все #теги собираются в categories.
//  2. Иначе имя файла (минус .pdf, '_' → пробел), если оно известно.
//  3. Иначе parsedTitle (первая строка текста PDF), если парсинг удался.
//  4. Иначе — литерал TitleUnknown.
//
// parsedTitle == "" означает «парсинг не выполнялся или не удался».
// Функция не может завершиться ошибкой: любой вход отображается в
// корректный результат через fallback-правила.
func Extract(caption, filename, parsedTitle string) Metadata {
	var categories []string

	caption = strings.TrimSpace(caption)
	if caption != "" {
		var content []string
		for _, line := range strings.Split(caption, "\n") {
			line = strings.TrimSpace(line)

			// Собираем все теги строки, затем убираем их из текста.
			for _, m := range tagPattern.FindAllString(line, -1) {
				categories = append(categories, m[1:])
			}
			rest := strings.TrimSpace(tagPattern.ReplaceAllString(line, ""))
			if rest != "" {
				content = append(content, rest)
			}
		}

		if len(content) > 0 {
			title := content[0]
			description := strings.TrimSpace(strings.Join(content[1:], "\n"))
			if description == "" {
				description = synthDescription(filename)
			}
			return Metadata{Title: title, Description: description, Categories: categories}
		}
		// Caption состоял из одних тегов — название берём по правилам
		// отсутствующего caption, теги сохраняем.
	}

	return Metadata{
		Title:       fallbackTitle(filename, parsedTitle),
		Description: synthDescription(filename),
		Categories:  categories,
	}
}

// fallbackTitle выбирает название при отсутствии содержательного caption:
// имя файла → parsedTitle → TitleUnknown.
func fallbackTitle(filename, parsedTitle string) string {
	if filename != "" && filename != FilenameUnknown {
		return strings.ReplaceAll(strings.TrimSuffix(filename, ".pdf"), "_", " ")
	}
	if parsedTitle != "" && parsedTitle != TitleUnknown {
		return parsedTitle
	}
	return TitleUnknown
}

// synthDescription синтезирует описание-заглушку со ссылкой на имя файла.
func synthDescription(filename string) string {
	return fmt.Sprintf("PDF faylı: %s", filename)
}
