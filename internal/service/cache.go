// Пакет service — бизнес-логика Book Library.
// CacheService — LRU-кэш карточек книг с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gobooklib/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bl_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш книг.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bl_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша книг.",
	})
)

// CacheService — LRU-кэш карточек книг с автоматическим TTL.
// Каждый экземпляр сервиса имеет собственный in-memory кэш.
type CacheService struct {
	cache *expirable.LRU[string, *model.Book]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
// maxSize — максимальное количество записей, ttl — время жизни записи.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, *model.Book](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает книгу из кэша по fileID.
// Возвращает (книга, true) при hit или (nil, false) при miss.
func (c *CacheService) Get(fileID string) (*model.Book, bool) {
	val, ok := c.cache.Get(fileID)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись в кэше.
func (c *CacheService) Set(fileID string, book *model.Book) {
	c.cache.Add(fileID, book)
}

// Delete удаляет запись из кэша (инвалидация при изменении книги).
func (c *CacheService) Delete(fileID string) {
	c.cache.Remove(fileID)
}

// Purge сбрасывает весь кэш (массовые изменения каталога).
func (c *CacheService) Purge() {
	c.cache.Purge()
}
