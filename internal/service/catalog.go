// catalog.go — сервис запросов к каталогу книг.
// Координирует repository, движок catalog.Query, LRU cache и Prometheus-метрики.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gobooklib/internal/catalog"
	"github.com/bigkaa/gobooklib/internal/domain/model"
	"github.com/bigkaa/gobooklib/internal/repository"
)

// Ошибки сервисного слоя.
var (
	// ErrNotFound — книга не найдена.
	ErrNotFound = errors.New("книга не найдена")
)

// Prometheus-метрики каталога.
var (
	queryTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bl_catalog_queries_total",
		Help: "Общее количество запросов к каталогу.",
	})
	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bl_catalog_query_duration_seconds",
		Help:    "Длительность запросов к каталогу.",
		Buckets: prometheus.DefBuckets,
	})
	catalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bl_catalog_books",
		Help: "Размер каталога по данным последнего запроса.",
	})
)

// QueryParams — параметры запроса к каталогу.
type QueryParams struct {
	// Query — поисковая подстрока (title или description).
	Query string
	// Selector — селектор категории.
	Selector catalog.Selector
	// Lists — персональные списки пользователя.
	Lists catalog.PersonalLists
	// PageSize — размер страницы; <= 0 — без пагинации.
	PageSize int
	// Page — номер страницы, 1-based.
	Page int
}

// CatalogService — сервис запросов и изменений каталога книг.
type CatalogService struct {
	bookRepo repository.BookRepository
	cache    *CacheService
	logger   *slog.Logger
}

// NewCatalogService создаёт сервис каталога.
func NewCatalogService(
	bookRepo repository.BookRepository,
	cache *CacheService,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		bookRepo: bookRepo,
		cache:    cache,
		logger:   logger.With(slog.String("component", "catalog_service")),
	}
}

// Query выполняет запрос к каталогу: полная загрузка из БД, затем
// фильтрация и пагинация движком catalog.Query.
// Каждый запрос читает актуальное состояние каталога.
func (s *CatalogService) Query(ctx context.Context, params QueryParams) (catalog.Result, error) {
	start := time.Now()
	queryTotal.Inc()

	books, err := s.bookRepo.ListAll(ctx)
	if err != nil {
		return catalog.Result{}, fmt.Errorf("загрузка каталога: %w", err)
	}
	catalogSize.Set(float64(len(books)))

	result := catalog.Query(books, params.Query, params.Selector, params.Lists,
		params.PageSize, params.Page)

	duration := time.Since(start)
	queryDuration.Observe(duration.Seconds())

	s.logger.Debug("Запрос к каталогу выполнен",
		slog.Int("catalog_size", len(books)),
		slog.Int("matched", result.TotalMatched),
		slog.Int("page", result.ClampedPage),
		slog.Duration("duration", duration),
	)

	return result, nil
}

// Categories возвращает все теги каталога в порядке первого появления,
// без дубликатов. Используется фронтендом для панели фильтров.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	books, err := s.bookRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("загрузка каталога: %w", err)
	}

	seen := make(map[string]struct{})
	var result []string
	for _, b := range books {
		for _, c := range b.Categories {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			result = append(result, c)
		}
	}
	return result, nil
}

// GetBook возвращает книгу по fileID.
// Сначала проверяет LRU-кэш, при промахе — запрос к PostgreSQL.
func (s *CatalogService) GetBook(ctx context.Context, fileID string) (*model.Book, error) {
	if book, ok := s.cache.Get(fileID); ok {
		return book, nil
	}

	book, err := s.bookRepo.GetByFileID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение книги: %w", err)
	}

	s.cache.Set(fileID, book)
	return book, nil
}

// UpdateBook обновляет редактируемые поля книги (админ-операция).
func (s *CatalogService) UpdateBook(ctx context.Context, b *model.Book) error {
	if err := s.bookRepo.Update(ctx, b); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("обновление книги: %w", err)
	}
	s.cache.Delete(b.FileID)

	s.logger.Info("Книга обновлена", slog.String("file_id", b.FileID))
	return nil
}

// DeleteBook удаляет книгу из каталога (админ-операция).
func (s *CatalogService) DeleteBook(ctx context.Context, fileID string) error {
	if err := s.bookRepo.Delete(ctx, fileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление книги: %w", err)
	}
	s.cache.Delete(fileID)

	s.logger.Info("Книга удалена из каталога", slog.String("file_id", fileID))
	return nil
}

// RemoveCategory убирает категорию у всех книг каталога (админ-операция).
// Возвращает число затронутых книг.
func (s *CatalogService) RemoveCategory(ctx context.Context, category string) (int64, error) {
	affected, err := s.bookRepo.RemoveCategory(ctx, category)
	if err != nil {
		return 0, fmt.Errorf("удаление категории: %w", err)
	}
	s.cache.Purge()

	s.logger.Info("Категория удалена",
		slog.String("category", category),
		slog.Int64("books", affected),
	)
	return affected, nil
}

// RegisterView атомарно увеличивает счётчик просмотров книги.
func (s *CatalogService) RegisterView(ctx context.Context, fileID string) (int64, error) {
	count, err := s.bookRepo.IncrementViews(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("инкремент просмотров: %w", err)
	}
	s.cache.Delete(fileID)
	return count, nil
}
