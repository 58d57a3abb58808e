// ingest.go — сервис добавления книг в каталог.
// Вызывается ботом при получении PDF-документа или поста из канала.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gobooklib/internal/catalog"
	"github.com/bigkaa/gobooklib/internal/domain/model"
	"github.com/bigkaa/gobooklib/internal/repository"
)

// Ошибки ingest.
var (
	// ErrDuplicate — книга с таким file_id уже есть в каталоге.
	ErrDuplicate = errors.New("книга уже есть в каталоге")
)

// Prometheus-метрики ingest.
var (
	ingestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bl_ingest_total",
		Help: "Общее количество попыток добавления книг (по статусу).",
	}, []string{"status"})
)

// IngestParams — параметры добавления книги.
type IngestParams struct {
	// FileID — Telegram file_id документа.
	FileID string
	// Caption — подпись к документу (может быть пустой).
	Caption string
	// Filename — имя файла; пустое заменяется sentinel-значением.
	Filename string
	// ParsedTitle — первая строка текста PDF; "" если парсинг не выполнялся.
	ParsedTitle string
	// FileURL — прямая ссылка на файл (пустая для больших файлов).
	FileURL string
	// FileSize — размер файла в байтах.
	FileSize int64
	// MessageLink — ссылка на сообщение в канале (для больших файлов).
	MessageLink *string
	// ChannelID, MessageID — координаты исходного сообщения.
	ChannelID *int64
	MessageID *int64
	// LargeFileLimit — порог «большого файла» в байтах.
	LargeFileLimit int64
}

// IngestService — сервис добавления книг в каталог.
type IngestService struct {
	bookRepo repository.BookRepository
	logger   *slog.Logger
}

// NewIngestService создаёт сервис ingest.
func NewIngestService(bookRepo repository.BookRepository, logger *slog.Logger) *IngestService {
	return &IngestService{
		bookRepo: bookRepo,
		logger:   logger.With(slog.String("component", "ingest_service")),
	}
}

// AddBook извлекает метаданные и добавляет книгу в каталог.
// Возвращает созданную запись. ErrDuplicate при повторном file_id.
func (s *IngestService) AddBook(ctx context.Context, params IngestParams) (*model.Book, error) {
	filename := params.Filename
	if filename == "" {
		filename = catalog.FilenameUnknown
	}

	md := catalog.Extract(params.Caption, filename, params.ParsedTitle)

	book := &model.Book{
		FileID:      params.FileID,
		Title:       md.Title,
		Description: md.Description,
		Categories:  md.Categories,
		Filename:    filename,
		FileURL:     params.FileURL,
		MessageLink: params.MessageLink,
		ChannelID:   params.ChannelID,
		MessageID:   params.MessageID,
		IsLargeFile: params.LargeFileLimit > 0 && params.FileSize > params.LargeFileLimit,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			ingestTotal.WithLabelValues("duplicate").Inc()
			return nil, ErrDuplicate
		}
		ingestTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("добавление книги: %w", err)
	}

	ingestTotal.WithLabelValues("success").Inc()
	s.logger.Info("Книга добавлена в каталог",
		slog.String("file_id", book.FileID),
		slog.String("title", book.Title),
		slog.Int("categories", len(book.Categories)),
		slog.Bool("large_file", book.IsLargeFile),
	)

	return book, nil
}

// ManualParams — параметры ручного добавления книги через веб-интерфейс.
type ManualParams struct {
	Title       string
	Description string
	Categories  []string
	Filename    string
}

// AddManual добавляет книгу, загруженную администратором через веб-интерфейс.
// file_id генерируется локально с префиксом "manual-", чтобы не пересекаться
// с идентификаторами Telegram; file_url указывает на локальный каталог
// загрузок, PDF по этому пути сохраняет вызывающая сторона.
func (s *IngestService) AddManual(ctx context.Context, params ManualParams) (*model.Book, error) {
	filename := params.Filename
	if filename == "" {
		filename = catalog.FilenameUnknown
	}

	fileID := "manual-" + uuid.NewString()
	book := &model.Book{
		FileID:      fileID,
		Title:       params.Title,
		Description: params.Description,
		Categories:  params.Categories,
		Filename:    filename,
		FileURL:     "/uploads/" + fileID + ".pdf",
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		ingestTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("добавление книги: %w", err)
	}

	ingestTotal.WithLabelValues("success").Inc()
	s.logger.Info("Книга добавлена вручную",
		slog.String("file_id", book.FileID),
		slog.String("title", book.Title),
	)

	return book, nil
}

// SetCover сохраняет URL обложки книги.
// Вызывается ботом при получении фото вслед за документом.
func (s *IngestService) SetCover(ctx context.Context, fileID, imageURL string) error {
	book, err := s.bookRepo.GetByFileID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("получение книги: %w", err)
	}

	book.ImageURL = &imageURL
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return fmt.Errorf("сохранение обложки: %w", err)
	}

	s.logger.Info("Обложка книги сохранена", slog.String("file_id", fileID))
	return nil
}
