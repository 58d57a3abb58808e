// metrics.go — Prometheus HTTP метрики Book Library.
// Регистрирует метрики: bl_http_requests_total, bl_http_request_duration_seconds.
// Нормализация путей предотвращает взрывной рост кардинальности.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики Book Library
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bl_http_requests_total",
			Help: "Общее количество HTTP-запросов к Book Library",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bl_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Book Library в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (заменяем идентификаторы на {id} для предотвращения кардинальности)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет динамические сегменты пути на плейсхолдеры.
// Telegram file_id и email имеют переменную длину, поэтому нормализация
// идёт по позиции сегмента, а не по формату.
//
//	/api/books/AgAD123/view   → /api/books/{fileId}/view
//	/download/AgAD123         → /download/{fileId}
//	/api/statuses/42/comments → /api/statuses/{id}/comments
func normalizePath(path string) string {
	// Статические пути — возвращаем как есть
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/api/books", "/api/books/query", "/api/books/categories",
		"/api/statuses", "/api/me",
		"/auth/google", "/auth/google/callback", "/auth/logout",
		"/api/admin/users":
		return path
	}

	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")

	replaceAt := func(idx int, placeholder string) string {
		segments[idx] = placeholder
		return "/" + strings.Join(segments, "/")
	}

	switch {
	case len(segments) >= 3 && segments[0] == "api" && segments[1] == "books":
		return replaceAt(2, "{fileId}")
	case len(segments) >= 2 && segments[0] == "download":
		return replaceAt(1, "{fileId}")
	case len(segments) >= 3 && segments[0] == "api" && segments[1] == "statuses":
		return replaceAt(2, "{id}")
	case len(segments) >= 3 && segments[0] == "api" && segments[1] == "comments":
		return replaceAt(2, "{id}")
	case len(segments) >= 4 && segments[0] == "api" && segments[1] == "admin" && segments[2] == "users":
		return replaceAt(3, "{email}")
	case len(segments) >= 4 && segments[0] == "api" && segments[1] == "admin" && segments[2] == "books":
		return replaceAt(3, "{fileId}")
	case len(segments) >= 4 && segments[0] == "api" && segments[1] == "admin" && segments[2] == "categories":
		return replaceAt(3, "{name}")
	case len(segments) >= 2 && segments[0] == "uploads":
		return replaceAt(1, "{file}")
	}

	return path
}
