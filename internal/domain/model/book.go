// Пакет model — доменные модели каталога книг.
// Book — маппинг таблицы books (owned by Bot Module при ингестии,
// Catalog Module выполняет чтение и админ-правки).
package model

import "time"

// Book — запись книги в каталоге.
// Создаётся один раз при ингестии (бот или админ-загрузка),
// далее изменяется только явными админ-операциями.
type Book struct {
	// ID — порядковый номер вставки (порядок каталога).
	ID int64
	// FileID — внешний идентификатор файла (Telegram file_id или manual-<uuid>).
	// Первичный ключ каталога.
	FileID string
	// Title — отображаемое название, никогда не пустое.
	Title string
	// Description — описание (синтезируется из имени файла, если отсутствует).
	Description string
	// Categories — теги из caption (#Tag), без '#', порядок первого вхождения.
	Categories []string
	// Filename — объявленное имя загруженного файла.
	Filename string
	// FileURL — разрешимый адрес файла (URL Bot API или /uploads/...), "" если недоступен.
	FileURL string
	// ImageURL — обложка книги (опционально).
	ImageURL *string
	// MessageLink — ссылка на сообщение в канале (опционально).
	MessageLink *string
	// ChannelID — идентификатор чата/канала-источника (опционально).
	ChannelID *int64
	// MessageID — идентификатор сообщения-источника (опционально).
	MessageID *int64
	// IsLargeFile — файл превышает лимит и отдаётся через redirect, а не стримингом.
	IsLargeFile bool
	// ViewCount — счётчик просмотров (атомарные инкременты в БД).
	ViewCount int64
	// DownloadCount — счётчик скачиваний (атомарные инкременты в БД).
	DownloadCount int64
	// CreatedAt — машинное время добавления (сортируемое).
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления записи.
	UpdatedAt time.Time
}

// AddedAtDisplay форматирует время добавления в человекочитаемую строку
// формата оригинального фронтенда (dd.mm.yyyy hh:mm:ss).
// Только для отображения — сортировка всегда по ID/CreatedAt.
func (b *Book) AddedAtDisplay() string {
	return b.CreatedAt.Format("02.01.2006 15:04:05")
}
