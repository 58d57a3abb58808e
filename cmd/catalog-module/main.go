// Точка входа Catalog Module — веб-модуль системы Book Library.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт сервисный слой и API handlers, запускает HTTP-сервер с
// graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bigkaa/gobooklib/internal/api/handlers"
	"github.com/bigkaa/gobooklib/internal/api/middleware"
	"github.com/bigkaa/gobooklib/internal/bot"
	"github.com/bigkaa/gobooklib/internal/config"
	"github.com/bigkaa/gobooklib/internal/database"
	"github.com/bigkaa/gobooklib/internal/repository"
	"github.com/bigkaa/gobooklib/internal/server"
	"github.com/bigkaa/gobooklib/internal/service"
	"github.com/bigkaa/gobooklib/internal/ui/auth"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Catalog Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Repositories
	bookRepo := repository.NewBookRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	statusRepo := repository.NewStatusRepository(pool)

	// 6. Services
	cache := service.NewCacheService(cfg.CacheSize, cfg.CacheTTL)
	catalogSvc := service.NewCatalogService(bookRepo, cache, logger)
	statusSvc := service.NewStatusService(statusRepo, userRepo, logger)
	userSvc := service.NewUserService(userRepo, logger)
	ingestSvc := service.NewIngestService(bookRepo, logger)

	// 6.1 Resolver ссылок Telegram — опционален, без него используются
	// сохранённые ссылки из каталога
	var resolver service.FileURLResolver
	if cfg.BotToken != "" {
		api, botErr := tgbotapi.NewBotAPI(cfg.BotToken)
		if botErr != nil {
			logger.Warn("Telegram Bot API недоступен, ссылки на файлы не обновляются",
				slog.String("error", botErr.Error()),
			)
		} else {
			resolver = bot.NewFileResolver(api)
			logger.Info("Resolver ссылок Telegram инициализирован")
		}
	}
	downloadSvc := service.NewDownloadService(catalogSvc, resolver, cfg.UploadDir, logger)

	// 7. Сессии (AES-256-GCM cookie)
	sessionMgr, err := auth.NewSessionManager(cfg.SessionKey, cfg.SessionSecure)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.SessionKey == "" {
		logger.Warn("BL_SESSION_KEY не задан, сессии не сохраняются между рестартами")
	}

	// 8. Google OAuth + верификатор id_token
	googleClient := auth.NewGoogleClient(auth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURI:  cfg.GoogleRedirectURL,
	})
	var verifier *auth.IDTokenVerifier
	if googleClient.Enabled() {
		verifier, err = auth.NewIDTokenVerifier(cfg.GoogleJWKSURL, cfg.GoogleClientID, logger)
		if err != nil {
			logger.Error("Ошибка создания верификатора id_token", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Google OAuth инициализирован",
			slog.String("redirect_url", cfg.GoogleRedirectURL),
		)
	} else {
		logger.Info("Google OAuth отключён: BL_GOOGLE_CLIENT_ID не задан")
	}

	// 9. Handlers
	pgChecker := database.NewReadinessChecker(pool)
	secureCookie := cfg.SessionSecure || strings.HasPrefix(cfg.BaseURL, "https")

	apiHandler := handlers.NewAPIHandler(
		handlers.NewHealthHandler(pgChecker),
		handlers.NewBooksHandler(catalogSvc),
		handlers.NewDownloadHandler(downloadSvc, catalogSvc),
		handlers.NewStatusesHandler(statusSvc, userSvc),
		handlers.NewAuthHandler(
			googleClient, verifier, userSvc, sessionMgr,
			cfg.IsAdmin, cfg.BaseURL, secureCookie,
			logger,
		),
		handlers.NewAdminHandler(userSvc, catalogSvc, ingestSvc, cfg.UploadDir),
		sessionMgr,
		logger,
	)

	// 10. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Catalog Module остановлен")
}
