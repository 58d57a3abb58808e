// download.go — сервис proxy download книг из Telegram.
// Pipeline: книга (cache/DB) → актуальный file URL → streaming copy клиенту.
// Большие файлы не проксируются — клиент перенаправляется на сообщение в канале.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gobooklib/internal/domain/model"
)

// Ошибки download service.
var (
	// ErrLargeFile — книга хранится только в архивном канале,
	// скачивание возможно по MessageLink.
	ErrLargeFile = errors.New("файл доступен только через архивный канал")
)

// Prometheus-метрики download.
var (
	downloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bl_downloads_total",
		Help: "Общее количество запросов на скачивание (по статусу).",
	}, []string{"status"})

	downloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bl_download_duration_seconds",
		Help:    "Длительность proxy download (от запроса до завершения streaming).",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})

	downloadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bl_download_bytes_total",
		Help: "Общее количество переданных байт при скачивании.",
	})

	activeDownloads = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bl_active_downloads",
		Help: "Количество активных (in-progress) proxy downloads.",
	})
)

// FileURLResolver возвращает актуальную прямую ссылку на файл Telegram.
// Ссылки из getFile живут около часа, поэтому сохранённый file_url
// может протухнуть и требует обновления перед скачиванием.
type FileURLResolver interface {
	ResolveFileURL(ctx context.Context, fileID string) (string, error)
}

// DownloadService — сервис proxy download книг.
type DownloadService struct {
	catalog   *CatalogService
	resolver  FileURLResolver
	client    *http.Client
	uploadDir string
	logger    *slog.Logger
}

// NewDownloadService создаёт сервис proxy download.
// resolver может быть nil — тогда используется сохранённый file_url.
// uploadDir — каталог локально загруженных книг (file_url вида "/uploads/...").
func NewDownloadService(
	catalog *CatalogService,
	resolver FileURLResolver,
	uploadDir string,
	logger *slog.Logger,
) *DownloadService {
	return &DownloadService{
		catalog:   catalog,
		resolver:  resolver,
		client:    &http.Client{Timeout: 5 * time.Minute},
		uploadDir: uploadDir,
		logger:    logger.With(slog.String("component", "download_service")),
	}
}

// Download выполняет полный pipeline proxy download книги.
//
// Pipeline:
//  1. Получить книгу (из кэша или БД)
//  2. Большой файл → ErrLargeFile (handler делает redirect на MessageLink)
//  3. Обновить file URL через resolver (ссылки Telegram истекают)
//  4. Streaming copy в ResponseWriter с пробросом заголовков
//  5. Инкремент счётчика скачиваний
//
// При ошибке после отправки заголовков возвращает nil: ответить клиенту
// уже нечем, ошибка только логируется.
func (ds *DownloadService) Download(ctx context.Context, w http.ResponseWriter, fileID string) error {
	start := time.Now()
	activeDownloads.Inc()
	defer activeDownloads.Dec()

	// 1. Получить книгу
	book, err := ds.catalog.GetBook(ctx, fileID)
	if err != nil {
		downloadsTotal.WithLabelValues("not_found").Inc()
		return err
	}

	// 2. Большие файлы живут только в архивном канале
	if book.IsLargeFile {
		downloadsTotal.WithLabelValues("large_file").Inc()
		return ErrLargeFile
	}

	// Локально загруженные книги отдаются с диска
	if strings.HasPrefix(book.FileURL, "/") {
		return ds.downloadLocal(ctx, w, book, start)
	}

	// 3. Актуализировать ссылку на файл
	fileURL := book.FileURL
	if ds.resolver != nil {
		resolved, err := ds.resolver.ResolveFileURL(ctx, fileID)
		if err != nil {
			ds.logger.Warn("Не удалось обновить file URL, используется сохранённый",
				slog.String("file_id", fileID),
				slog.String("error", err.Error()),
			)
		} else {
			fileURL = resolved
		}
	}
	if fileURL == "" {
		downloadsTotal.WithLabelValues("no_url").Inc()
		return ErrNotFound
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		downloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("построение запроса к Telegram: %w", err)
	}

	resp, err := ds.client.Do(req)
	if err != nil {
		downloadsTotal.WithLabelValues("upstream_error").Inc()
		return fmt.Errorf("скачивание файла %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		downloadsTotal.WithLabelValues("upstream_error").Inc()
		return fmt.Errorf("Telegram вернул неожиданный статус %d для файла %s", resp.StatusCode, fileID)
	}

	// 4. Streaming copy: заголовки, затем тело
	ds.writeHeaders(w, resp, book)
	w.WriteHeader(http.StatusOK)

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		ds.logger.Error("Ошибка streaming download",
			slog.String("file_id", fileID),
			slog.Int64("bytes_written", written),
			slog.String("error", err.Error()),
		)
		downloadsTotal.WithLabelValues("stream_error").Inc()
		return nil // заголовки уже отправлены, не можем вернуть ошибку клиенту
	}

	// 5. Счётчик скачиваний; ошибка не прерывает ответ
	if _, err := ds.catalog.bookRepo.IncrementDownloads(ctx, fileID); err != nil {
		ds.logger.Error("Ошибка инкремента счётчика скачиваний",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()),
		)
	}

	duration := time.Since(start)
	downloadsTotal.WithLabelValues("success").Inc()
	downloadDuration.Observe(duration.Seconds())
	downloadBytesTotal.Add(float64(written))

	ds.logger.Debug("Download завершён",
		slog.String("file_id", fileID),
		slog.Int64("bytes", written),
		slog.Duration("duration", duration),
	)

	return nil
}

// downloadLocal отдаёт книгу из локального каталога загрузок.
// Путь берётся только по базовому имени file_url, выход за пределы
// uploadDir невозможен.
func (ds *DownloadService) downloadLocal(ctx context.Context, w http.ResponseWriter, book *model.Book, start time.Time) error {
	path := filepath.Join(ds.uploadDir, filepath.Base(book.FileURL))
	f, err := os.Open(path)
	if err != nil {
		downloadsTotal.WithLabelValues("not_found").Inc()
		ds.logger.Error("Локальный файл книги не найден",
			slog.String("file_id", book.FileID),
			slog.String("path", path),
		)
		return ErrNotFound
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", SanitizeFilename(book.Filename)))
	w.WriteHeader(http.StatusOK)

	written, err := io.Copy(w, f)
	if err != nil {
		ds.logger.Error("Ошибка streaming download",
			slog.String("file_id", book.FileID),
			slog.Int64("bytes_written", written),
			slog.String("error", err.Error()),
		)
		downloadsTotal.WithLabelValues("stream_error").Inc()
		return nil
	}

	if _, err := ds.catalog.bookRepo.IncrementDownloads(ctx, book.FileID); err != nil {
		ds.logger.Error("Ошибка инкремента счётчика скачиваний",
			slog.String("file_id", book.FileID),
			slog.String("error", err.Error()),
		)
	}

	downloadsTotal.WithLabelValues("success").Inc()
	downloadDuration.Observe(time.Since(start).Seconds())
	downloadBytesTotal.Add(float64(written))
	return nil
}

// writeHeaders выставляет заголовки ответа: тип, длина и attachment
// с безопасным ASCII-именем файла.
func (ds *DownloadService) writeHeaders(w http.ResponseWriter, resp *http.Response, book *model.Book) {
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)

	if cl := resp.Header.Get("Content-Length"); cl != "" {
		w.Header().Set("Content-Length", cl)
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", SanitizeFilename(book.Filename)))
}

// SanitizeFilename приводит имя файла к безопасному ASCII-виду для
// заголовка Content-Disposition: не-ASCII и служебные символы
// заменяются подчёркиванием, расширение .pdf гарантируется.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	result := strings.TrimSpace(b.String())
	if result == "" || result == ".pdf" {
		result = "book.pdf"
	}
	if !strings.HasSuffix(strings.ToLower(result), ".pdf") {
		result += ".pdf"
	}
	return result
}
