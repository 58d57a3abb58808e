// Пакет config — загрузка и валидация конфигурации Book Library
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Лимиты размеров файлов по умолчанию.
const (
	// DefaultLargeFileLimit — порог «большого файла»: такие PDF не скачиваются
	// ботом, а пересылаются в архивный канал (50 MB).
	DefaultLargeFileLimit = 50 * 1024 * 1024
	// DefaultPDFParseLimit — максимальный размер PDF для извлечения
	// названия из текста (20 MB).
	DefaultPDFParseLimit = 20 * 1024 * 1024
)

// Config содержит все параметры конфигурации Book Library.
// Один Config обслуживает оба бинаря: catalog-module и bot-module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Публичный базовый URL сервиса (для ссылок скачивания и OAuth redirect)
	BaseURL string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 120s — стриминг PDF)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Google OAuth ---

	// Client ID OAuth-приложения Google
	GoogleClientID string
	// Client Secret OAuth-приложения Google
	GoogleClientSecret string
	// Redirect URL (авто-вычисляется из BaseURL, если не задан)
	GoogleRedirectURL string
	// URL JWKS endpoint Google для валидации id_token
	GoogleJWKSURL string

	// --- Сессии и доступ ---

	// Ключ шифрования session cookie (base64 32 bytes или произвольная строка)
	SessionKey string
	// Secure flag для cookie (true при работе за HTTPS)
	SessionSecure bool
	// Email-адреса администраторов (через запятую)
	AdminEmails []string

	// --- Telegram ---

	// Токен Telegram-бота (обязателен только для bot-module)
	BotToken string
	// ID архивного канала для больших файлов (опционально)
	ArchiveChannelID int64

	// --- Файлы ---

	// Каталог для загруженных обложек и вложений статусов
	UploadDir string
	// Порог «большого файла» в байтах
	LargeFileLimit int64
	// Максимальный размер PDF для извлечения названия, в байтах
	PDFParseLimit int64

	// --- Кэш ---

	// Размер LRU-кэша страниц каталога
	CacheSize int
	// TTL записей кэша
	CacheTTL time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// BL_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("BL_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("BL_PORT: %w", err)
	}

	// BL_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("BL_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("BL_LOG_LEVEL: %w", err)
	}

	// BL_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("BL_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("BL_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// BL_BASE_URL — публичный базовый URL (по умолчанию http://localhost:<port>)
	cfg.BaseURL = strings.TrimRight(
		getEnvDefault("BL_BASE_URL", fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")

	// --- HTTP Server Timeouts ---

	// BL_HTTP_READ_TIMEOUT — таймаут чтения (по умолчанию 30s)
	cfg.HTTPReadTimeout, err = getEnvDuration("BL_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BL_HTTP_READ_TIMEOUT: %w", err)
	}

	// BL_HTTP_WRITE_TIMEOUT — таймаут записи (по умолчанию 120s)
	cfg.HTTPWriteTimeout, err = getEnvDuration("BL_HTTP_WRITE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BL_HTTP_WRITE_TIMEOUT: %w", err)
	}

	// BL_HTTP_IDLE_TIMEOUT — таймаут простоя (по умолчанию 120s)
	cfg.HTTPIdleTimeout, err = getEnvDuration("BL_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BL_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	// BL_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("BL_DB_HOST")
	if err != nil {
		return nil, err
	}

	// BL_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("BL_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("BL_DB_PORT: %w", err)
	}

	// BL_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("BL_DB_NAME")
	if err != nil {
		return nil, err
	}

	// BL_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("BL_DB_USER")
	if err != nil {
		return nil, err
	}

	// BL_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("BL_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// BL_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("BL_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("BL_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Google OAuth ---

	// BL_GOOGLE_CLIENT_ID — Client ID (пустой — вход через Google отключён)
	cfg.GoogleClientID = getEnvDefault("BL_GOOGLE_CLIENT_ID", "")

	// BL_GOOGLE_CLIENT_SECRET — Client Secret
	cfg.GoogleClientSecret = getEnvDefault("BL_GOOGLE_CLIENT_SECRET", "")

	// BL_GOOGLE_REDIRECT_URL — авто-вычисляется из BaseURL, если не задан
	cfg.GoogleRedirectURL = getEnvDefault("BL_GOOGLE_REDIRECT_URL",
		cfg.BaseURL+"/auth/google/callback")

	// BL_GOOGLE_JWKS_URL — JWKS endpoint Google
	cfg.GoogleJWKSURL = getEnvDefault("BL_GOOGLE_JWKS_URL",
		"https://www.googleapis.com/oauth2/v3/certs")

	// --- Сессии и доступ ---

	// BL_SESSION_KEY — ключ шифрования cookie (пустой — случайный ключ)
	cfg.SessionKey = getEnvDefault("BL_SESSION_KEY", "")

	// BL_SESSION_SECURE — Secure flag для cookie (по умолчанию false)
	cfg.SessionSecure, err = getEnvBool("BL_SESSION_SECURE", false)
	if err != nil {
		return nil, fmt.Errorf("BL_SESSION_SECURE: %w", err)
	}

	// BL_ADMIN_EMAILS — email администраторов (через запятую)
	cfg.AdminEmails = parseCSV(getEnvDefault("BL_ADMIN_EMAILS", ""))

	// --- Telegram ---

	// BL_BOT_TOKEN — токен бота (проверяется в bot-module)
	cfg.BotToken = getEnvDefault("BL_BOT_TOKEN", "")

	// BL_ARCHIVE_CHANNEL_ID — ID архивного канала (опционально)
	cfg.ArchiveChannelID, err = getEnvInt64("BL_ARCHIVE_CHANNEL_ID", 0)
	if err != nil {
		return nil, fmt.Errorf("BL_ARCHIVE_CHANNEL_ID: %w", err)
	}

	// --- Файлы ---

	// BL_UPLOAD_DIR — каталог загрузок (по умолчанию uploads)
	cfg.UploadDir = getEnvDefault("BL_UPLOAD_DIR", "uploads")

	// BL_LARGE_FILE_LIMIT — порог большого файла (по умолчанию 50 MB)
	cfg.LargeFileLimit, err = getEnvInt64("BL_LARGE_FILE_LIMIT", DefaultLargeFileLimit)
	if err != nil {
		return nil, fmt.Errorf("BL_LARGE_FILE_LIMIT: %w", err)
	}
	if cfg.LargeFileLimit <= 0 {
		return nil, fmt.Errorf("BL_LARGE_FILE_LIMIT: значение должно быть > 0")
	}

	// BL_PDF_PARSE_LIMIT — лимит парсинга PDF (по умолчанию 20 MB)
	cfg.PDFParseLimit, err = getEnvInt64("BL_PDF_PARSE_LIMIT", DefaultPDFParseLimit)
	if err != nil {
		return nil, fmt.Errorf("BL_PDF_PARSE_LIMIT: %w", err)
	}
	if cfg.PDFParseLimit <= 0 {
		return nil, fmt.Errorf("BL_PDF_PARSE_LIMIT: значение должно быть > 0")
	}

	// --- Кэш ---

	// BL_CACHE_SIZE — размер LRU-кэша (по умолчанию 1000)
	cfg.CacheSize, err = getEnvInt("BL_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("BL_CACHE_SIZE: %w", err)
	}
	if cfg.CacheSize < 1 {
		return nil, fmt.Errorf("BL_CACHE_SIZE: значение должно быть >= 1")
	}

	// BL_CACHE_TTL — TTL кэша (по умолчанию 5m)
	cfg.CacheTTL, err = getEnvDuration("BL_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("BL_CACHE_TTL: %w", err)
	}

	// --- Graceful shutdown ---

	// BL_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("BL_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BL_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// IsAdmin сообщает, входит ли email в список администраторов.
// Сравнение регистронезависимое.
func (c *Config) IsAdmin(email string) bool {
	for _, admin := range c.AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64-значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseCSV разбирает строку, разделённую запятыми, на срез строк.
// Пустые элементы отбрасываются, пробелы обрезаются.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
