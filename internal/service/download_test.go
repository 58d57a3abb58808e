package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bigkaa/gobooklib/internal/domain/model"
)

// --- Тесты DownloadService ---

// catalogFor строит CatalogService с единственной книгой в репозитории.
func catalogFor(book *model.Book, downloads *int) *CatalogService {
	repo := &mockBookRepo{
		getByFileIDFn: func(_ context.Context, _ string) (*model.Book, error) {
			return book, nil
		},
		incrementDownloadsFn: func(_ context.Context, _ string) (int64, error) {
			if downloads != nil {
				*downloads++
			}
			return 1, nil
		},
	}
	return NewCatalogService(repo, NewCacheService(100, time.Minute), slog.Default())
}

// TestDownloadService_Download проверяет полный proxy pipeline:
// заголовки, тело и инкремент счётчика.
func TestDownloadService_Download(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake body"))
	}))
	defer upstream.Close()

	downloads := 0
	book := &model.Book{
		FileID:   "f-1",
		Title:    "Dune",
		Filename: "dune.pdf",
		FileURL:  upstream.URL,
	}
	svc := NewDownloadService(catalogFor(book, &downloads), nil, t.TempDir(), slog.Default())

	rec := httptest.NewRecorder()
	if err := svc.Download(context.Background(), rec, "f-1"); err != nil {
		t.Fatalf("Download ошибка: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("статус = %d, ожидался 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, ожидался application/pdf", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="dune.pdf"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "%PDF-1.4 fake body" {
		t.Errorf("тело = %q, ожидалось проксирование без изменений", body)
	}
	if downloads != 1 {
		t.Errorf("счётчик скачиваний = %d, ожидался 1", downloads)
	}
}

// TestDownloadService_Download_LargeFile проверяет ErrLargeFile.
func TestDownloadService_Download_LargeFile(t *testing.T) {
	link := "https://t.me/c/123/45"
	book := &model.Book{FileID: "f-big", IsLargeFile: true, MessageLink: &link}
	svc := NewDownloadService(catalogFor(book, nil), nil, t.TempDir(), slog.Default())

	rec := httptest.NewRecorder()
	err := svc.Download(context.Background(), rec, "f-big")
	if !errors.Is(err, ErrLargeFile) {
		t.Errorf("ошибка = %v, ожидалась ErrLargeFile", err)
	}
}

// TestDownloadService_Download_Resolver проверяет обновление ссылки
// через FileURLResolver.
func TestDownloadService_Download_Resolver(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("fresh"))
	}))
	defer upstream.Close()

	book := &model.Book{
		FileID:   "f-1",
		Filename: "x.pdf",
		FileURL:  "http://127.0.0.1:1/expired", // протухшая ссылка
	}
	resolver := resolverFunc(func(_ context.Context, fileID string) (string, error) {
		if fileID != "f-1" {
			t.Errorf("резолвер вызван с fileID = %q", fileID)
		}
		return upstream.URL, nil
	})
	svc := NewDownloadService(catalogFor(book, nil), resolver, t.TempDir(), slog.Default())

	rec := httptest.NewRecorder()
	if err := svc.Download(context.Background(), rec, "f-1"); err != nil {
		t.Fatalf("Download ошибка: %v", err)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "fresh" {
		t.Errorf("тело = %q, должна использоваться обновлённая ссылка", body)
	}
}

// TestDownloadService_Download_Local проверяет отдачу локально
// загруженной книги с диска.
func TestDownloadService_Download_Local(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "manual-1.pdf"), []byte("%PDF-local"), 0o644); err != nil {
		t.Fatalf("подготовка файла: %v", err)
	}

	downloads := 0
	book := &model.Book{
		FileID:   "manual-1",
		Filename: "yerli.pdf",
		FileURL:  "/uploads/manual-1.pdf",
	}
	svc := NewDownloadService(catalogFor(book, &downloads), nil, dir, slog.Default())

	rec := httptest.NewRecorder()
	if err := svc.Download(context.Background(), rec, "manual-1"); err != nil {
		t.Fatalf("Download ошибка: %v", err)
	}

	body, _ := io.ReadAll(rec.Body)
	if string(body) != "%PDF-local" {
		t.Errorf("тело = %q, ожидалось содержимое локального файла", body)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="yerli.pdf"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if downloads != 1 {
		t.Errorf("счётчик скачиваний = %d, ожидался 1", downloads)
	}
}

// resolverFunc — адаптер функции к FileURLResolver.
type resolverFunc func(ctx context.Context, fileID string) (string, error)

func (f resolverFunc) ResolveFileURL(ctx context.Context, fileID string) (string, error) {
	return f(ctx, fileID)
}

// TestSanitizeFilename проверяет приведение имён к безопасному ASCII-виду.
func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"dune.pdf", "dune.pdf"},
		{"The_Hobbit.pdf", "The_Hobbit.pdf"},
		{"Dünya Tarixi.pdf", "D_nya Tarixi.pdf"},
		{"kitab", "kitab.pdf"},
		{"", "book.pdf"},
		{"....pdf", "....pdf"},
		{"такой.pdf", "_____.pdf"},
	}

	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, ожидался %q", tc.in, got, tc.want)
		}
	}
}
