// Точка входа Bot Module — Telegram-бот приёма книг Book Library.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// запускает long polling Telegram и служебный HTTP-сервер
// (health, metrics) с graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bigkaa/gobooklib/internal/api/handlers"
	"github.com/bigkaa/gobooklib/internal/bot"
	"github.com/bigkaa/gobooklib/internal/config"
	"github.com/bigkaa/gobooklib/internal/database"
	"github.com/bigkaa/gobooklib/internal/repository"
	"github.com/bigkaa/gobooklib/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.BotToken == "" {
		slog.Error("BL_BOT_TOKEN обязателен для Bot Module")
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Bot Module запускается",
		slog.String("version", config.Version),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Repositories и services
	bookRepo := repository.NewBookRepository(pool)
	cache := service.NewCacheService(cfg.CacheSize, cfg.CacheTTL)
	catalogSvc := service.NewCatalogService(bookRepo, cache, logger)
	ingestSvc := service.NewIngestService(bookRepo, logger)

	// 6. Telegram Bot API
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error("Ошибка подключения к Telegram Bot API", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Telegram Bot API подключён",
		slog.String("username", api.Self.UserName),
	)

	tgBot := bot.New(api, ingestSvc, catalogSvc, bot.Options{
		ArchiveChannelID: cfg.ArchiveChannelID,
		LargeFileLimit:   cfg.LargeFileLimit,
		PDFParseLimit:    cfg.PDFParseLimit,
		BaseURL:          cfg.BaseURL,
	}, logger)

	// 7. Служебный HTTP-сервер: health probes и метрики
	pgChecker := database.NewReadinessChecker(pool)
	healthHandler := handlers.NewHealthHandler(pgChecker)

	router := chi.NewRouter()
	router.Get("/health/live", healthHandler.HealthLive)
	router.Get("/health/ready", healthHandler.HealthReady)
	router.Get("/metrics", healthHandler.GetMetrics)

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
	go func() {
		logger.Info("Служебный HTTP-сервер запущен", slog.String("addr", httpSrv.Addr))
		if srvErr := httpSrv.ListenAndServe(); srvErr != nil && srvErr != http.ErrServerClosed {
			logger.Error("Ошибка служебного HTTP-сервера", slog.String("error", srvErr.Error()))
		}
	}()

	// 8. Long polling до сигнала завершения
	if err := tgBot.Run(ctx); err != nil {
		logger.Error("Ошибка Telegram-бота", slog.String("error", err.Error()))
	}

	// 9. Graceful shutdown служебного сервера
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при graceful shutdown", slog.String("error", err.Error()))
	}

	logger.Info("Bot Module остановлен")
}
