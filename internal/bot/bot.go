// Пакет bot — Telegram-бот приёма книг.
// Принимает PDF-документы в личных сообщениях и постах канала,
// извлекает метаданные и добавляет книги в каталог.
package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gobooklib/internal/service"
)

// Метрики бота
var (
	updatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bl_bot_updates_total",
			Help: "Общее количество обработанных обновлений Telegram по типам",
		},
		[]string{"type"},
	)
)

// Options — параметры бота.
type Options struct {
	// ArchiveChannelID — канал хранения больших файлов (0 — выключено).
	ArchiveChannelID int64
	// LargeFileLimit — порог большого файла в байтах.
	LargeFileLimit int64
	// PDFParseLimit — максимальный размер PDF для извлечения заголовка.
	PDFParseLimit int64
	// BaseURL — внешний адрес веб-каталога для ссылок в ответах.
	BaseURL string
}

// Bot — Telegram-бот приёма книг.
type Bot struct {
	api     *tgbotapi.BotAPI
	ingest  *service.IngestService
	catalog *service.CatalogService
	opts    Options
	logger  *slog.Logger
}

// New создаёт бота поверх подключённого Telegram API.
func New(
	api *tgbotapi.BotAPI,
	ingest *service.IngestService,
	catalog *service.CatalogService,
	opts Options,
	logger *slog.Logger,
) *Bot {
	return &Bot{
		api:     api,
		ingest:  ingest,
		catalog: catalog,
		opts:    opts,
		logger:  logger.With(slog.String("component", "telegram_bot")),
	}
}

// Run запускает long polling и обрабатывает обновления до отмены контекста.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Telegram-бот запущен",
		slog.String("username", b.api.Self.UserName),
	)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Telegram-бот остановлен")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

// dispatch обрабатывает одно обновление.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.ChannelPost != nil:
		updatesTotal.WithLabelValues("channel_post").Inc()
		b.handleMessage(ctx, update.ChannelPost, true)
	case update.Message != nil:
		updatesTotal.WithLabelValues("message").Inc()
		b.handleMessage(ctx, update.Message, false)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

// handleMessage маршрутизирует сообщение по содержимому.
// channelPost — пост канала: бот не отвечает в канал.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message, channelPost bool) {
	switch {
	case msg.Document != nil:
		b.handleDocument(ctx, msg, channelPost)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg, channelPost)
	case msg.IsCommand():
		if !channelPost {
			b.handleCommand(ctx, msg)
		}
	case msg.Text != "" && !channelPost:
		b.handleSearch(ctx, msg)
	}
}

// reply отправляет текстовый ответ на сообщение.
func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		b.logger.Warn("Ошибка отправки ответа", "error", err)
	}
}

// send отправляет сообщение в чат без привязки к исходному сообщению.
func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("Ошибка отправки сообщения", "error", err)
	}
}
