// search.go — текстовый поиск по каталогу и команды бота.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bigkaa/gobooklib/internal/catalog"
	"github.com/bigkaa/gobooklib/internal/domain/model"
	"github.com/bigkaa/gobooklib/internal/service"
)

// searchPageSize — количество книг в одном ответе бота.
const searchPageSize = 5

// listPageSize — количество книг в ответе команды /list.
const listPageSize = 10

// sendBookPrefix — префикс callback-данных кнопки отправки книги.
const sendBookPrefix = "send_book_"

// handleCommand обрабатывает команды бота.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.reply(msg, strings.Join([]string{
			"Salam! Mən kitab kataloqu botuyam.",
			"PDF faylı göndərin — kataloqa əlavə edim.",
			"Kitab axtarmaq üçün adını yazın.",
			"Son kitablar üçün /list yazın.",
			"Veb kataloq: " + b.opts.BaseURL,
		}, "\n"))
	case "list":
		b.handleList(ctx, msg)
	default:
		b.reply(msg, "Naməlum əmr. /help yazın.")
	}
}

// handleList показывает последние добавленные книги.
func (b *Bot) handleList(ctx context.Context, msg *tgbotapi.Message) {
	result, err := b.catalog.Query(ctx, service.QueryParams{
		Selector: catalog.Selector{Kind: catalog.SelectAll},
		PageSize: listPageSize,
		Page:     1,
	})
	if err != nil {
		b.logger.Error("Ошибка запроса каталога", "error", err)
		b.reply(msg, "Axtarış zamanı xəta baş verdi.")
		return
	}
	if result.TotalMatched == 0 {
		b.reply(msg, "Kataloq hələ boşdur.")
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, formatListReply(result))
	out.ReplyToMessageID = msg.MessageID
	out.ReplyMarkup = b.searchKeyboard(result.PageItems)
	if _, err := b.api.Send(out); err != nil {
		b.logger.Warn("Ошибка отправки списка книг", "error", err)
	}
}

// handleSearch ищет книги по тексту сообщения и отвечает списком
// с кнопками скачивания.
func (b *Bot) handleSearch(ctx context.Context, msg *tgbotapi.Message) {
	updatesTotal.WithLabelValues("search").Inc()

	result, err := b.catalog.Query(ctx, service.QueryParams{
		Query:    strings.TrimSpace(msg.Text),
		Selector: catalog.Selector{Kind: catalog.SelectAll},
		PageSize: searchPageSize,
		Page:     1,
	})
	if err != nil {
		b.logger.Error("Ошибка поиска по каталогу", "error", err)
		b.reply(msg, "Axtarış zamanı xəta baş verdi.")
		return
	}

	if result.TotalMatched == 0 {
		b.reply(msg, "Heç bir kitab tapılmadı.")
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, formatSearchReply(result))
	out.ReplyToMessageID = msg.MessageID
	out.ReplyMarkup = b.searchKeyboard(result.PageItems)
	if _, err := b.api.Send(out); err != nil {
		b.logger.Warn("Ошибка отправки результатов поиска", "error", err)
	}
}

// formatSearchReply строит текст ответа со списком найденных книг.
func formatSearchReply(result catalog.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tapıldı: %d kitab\n", result.TotalMatched)
	for i, book := range result.PageItems {
		fmt.Fprintf(&sb, "%d. %s", i+1, book.Title)
		if len(book.Categories) > 0 {
			sb.WriteString(" (#" + strings.Join(book.Categories, " #") + ")")
		}
		sb.WriteString("\n")
	}
	if result.TotalMatched > searchPageSize {
		sb.WriteString("Tam siyahı veb kataloqdadır.")
	}
	return sb.String()
}

// formatListReply строит текст ответа команды /list.
func formatListReply(result catalog.Result) string {
	var sb strings.Builder
	sb.WriteString("Son əlavə olunan kitablar:\n")
	for i, book := range result.PageItems {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, book.Title)
	}
	if result.TotalMatched > listPageSize {
		fmt.Fprintf(&sb, "Cəmi %d kitab. Tam siyahı veb kataloqdadır.", result.TotalMatched)
	}
	return sb.String()
}

// searchKeyboard строит inline-клавиатуру: нажатие кнопки присылает
// книгу документом. callback_data ограничен 64 байтами, книги с
// длинным file_id получают URL-кнопку на веб-скачивание.
func (b *Bot) searchKeyboard(books []*model.Book) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(books))
	for _, book := range books {
		var btn tgbotapi.InlineKeyboardButton
		if data := sendBookPrefix + book.FileID; len(data) <= 64 {
			btn = tgbotapi.NewInlineKeyboardButtonData(book.Title, data)
		} else {
			url := fmt.Sprintf("%s/download/%s", b.opts.BaseURL, book.FileID)
			btn = tgbotapi.NewInlineKeyboardButtonURL(book.Title, url)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// handleCallback отправляет выбранную книгу документом в чат.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	updatesTotal.WithLabelValues("callback").Inc()

	fileID, ok := strings.CutPrefix(cb.Data, sendBookPrefix)
	if !ok || cb.Message == nil {
		return
	}
	// убрать «часики» на кнопке
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("Ошибка подтверждения callback", "error", err)
	}

	chatID := cb.Message.Chat.ID
	book, err := b.catalog.GetBook(ctx, fileID)
	if err != nil {
		b.send(chatID, "Kitab tapılmadı.")
		return
	}

	if book.IsLargeFile {
		text := "Bu kitab böyükdür, kanaldan yükləyin."
		if book.MessageLink != nil {
			text += "\n" + *book.MessageLink
		}
		b.send(chatID, text)
		return
	}
	if strings.HasPrefix(book.FileURL, "/") {
		// книга загружена через веб-интерфейс, в Telegram её файла нет
		b.send(chatID, "Yükləmə linki: "+b.opts.BaseURL+"/download/"+book.FileID)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(book.FileID))
	doc.Caption = book.Title
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Warn("Ошибка отправки документа", "error", err)
		b.send(chatID, "Kitabı göndərmək mümkün olmadı.")
	}
}
