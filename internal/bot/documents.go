// documents.go — приём PDF-документов и обложек.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bigkaa/gobooklib/internal/service"
)

// handleDocument обрабатывает сообщение с документом.
// Не-PDF документы игнорируются.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message, channelPost bool) {
	doc := msg.Document
	if !isPDFDocument(doc) {
		if !channelPost {
			b.reply(msg, "Yalnız PDF faylları qəbul olunur.")
		}
		return
	}

	fileSize := int64(doc.FileSize)
	large := b.opts.LargeFileLimit > 0 && fileSize > b.opts.LargeFileLimit

	params := service.IngestParams{
		FileID:         doc.FileID,
		Caption:        msg.Caption,
		Filename:       doc.FileName,
		FileSize:       fileSize,
		LargeFileLimit: b.opts.LargeFileLimit,
	}

	if !large {
		// Bot API отдаёт прямую ссылку только для файлов умеренного размера
		fileURL, err := b.api.GetFileDirectURL(doc.FileID)
		if err != nil {
			b.logger.Error("Ошибка получения ссылки на файл",
				slog.String("file_id", doc.FileID),
				"error", err,
			)
		} else {
			params.FileURL = fileURL
			params.ParsedTitle = b.parseTitle(ctx, fileURL, fileSize)
		}
	}

	b.attachMessageLink(msg, large, channelPost, &params)

	book, err := b.ingest.AddBook(ctx, params)
	if err != nil {
		if errors.Is(err, service.ErrDuplicate) {
			if !channelPost {
				b.reply(msg, "Bu kitab artıq kataloqda var.")
			}
			return
		}
		b.logger.Error("Ошибка добавления книги",
			slog.String("file_id", doc.FileID),
			"error", err,
		)
		if !channelPost {
			b.reply(msg, "Kitab əlavə edilərkən xəta baş verdi.")
		}
		return
	}

	if !channelPost {
		b.reply(msg, fmt.Sprintf("«%s» kataloqa əlavə edildi: %s", book.Title, b.opts.BaseURL))
	}
}

// attachMessageLink заполняет ссылку на пост с файлом.
// Посты канала ссылаются на себя; большие файлы из личных сообщений
// пересылаются в архивный канал.
func (b *Bot) attachMessageLink(msg *tgbotapi.Message, large, channelPost bool, params *service.IngestParams) {
	if channelPost {
		link := messageLink(msg.Chat, msg.MessageID)
		channelID := msg.Chat.ID
		messageID := int64(msg.MessageID)
		params.MessageLink = &link
		params.ChannelID = &channelID
		params.MessageID = &messageID
		return
	}

	if !large || b.opts.ArchiveChannelID == 0 {
		return
	}

	forwarded, err := b.api.Send(tgbotapi.NewForward(b.opts.ArchiveChannelID, msg.Chat.ID, msg.MessageID))
	if err != nil {
		b.logger.Error("Ошибка пересылки в архивный канал",
			slog.Int64("channel_id", b.opts.ArchiveChannelID),
			"error", err,
		)
		return
	}

	link := messageLink(forwarded.Chat, forwarded.MessageID)
	channelID := forwarded.Chat.ID
	messageID := int64(forwarded.MessageID)
	params.MessageLink = &link
	params.ChannelID = &channelID
	params.MessageID = &messageID
}

// parseTitle скачивает PDF и извлекает заголовок с первой страницы.
// Возвращает пустую строку, если файл слишком большой или нечитаемый.
func (b *Bot) parseTitle(ctx context.Context, fileURL string, fileSize int64) string {
	if b.opts.PDFParseLimit > 0 && fileSize > b.opts.PDFParseLimit {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return ""
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		b.logger.Warn("Ошибка скачивания PDF для парсинга", "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, b.opts.PDFParseLimit))
	if err != nil {
		return ""
	}
	return service.ParsePDFTitle(content, b.opts.PDFParseLimit)
}

// handlePhoto обрабатывает фото-ответ на документ: фото становится
// обложкой книги.
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, channelPost bool) {
	if msg.ReplyToMessage == nil || msg.ReplyToMessage.Document == nil {
		return
	}

	// Telegram присылает размеры по возрастанию, берём самый крупный
	photo := msg.Photo[len(msg.Photo)-1]
	imageURL, err := b.api.GetFileDirectURL(photo.FileID)
	if err != nil {
		b.logger.Error("Ошибка получения ссылки на обложку", "error", err)
		return
	}

	fileID := msg.ReplyToMessage.Document.FileID
	if err := b.ingest.SetCover(ctx, fileID, imageURL); err != nil {
		b.logger.Error("Ошибка установки обложки",
			slog.String("file_id", fileID),
			"error", err,
		)
		if !channelPost {
			b.reply(msg, "Üz qabığı təyin edilərkən xəta baş verdi.")
		}
		return
	}

	if !channelPost {
		b.reply(msg, "Üz qabığı təyin edildi.")
	}
}

// isPDFDocument определяет PDF по MIME-типу или расширению имени файла.
func isPDFDocument(doc *tgbotapi.Document) bool {
	if doc.MimeType == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(doc.FileName), ".pdf")
}
