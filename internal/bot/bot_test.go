package bot

import (
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bigkaa/gobooklib/internal/catalog"
	"github.com/bigkaa/gobooklib/internal/domain/model"
)

func TestMessageLink(t *testing.T) {
	tests := []struct {
		name      string
		chat      *tgbotapi.Chat
		messageID int
		want      string
	}{
		{
			name:      "публичный канал по username",
			chat:      &tgbotapi.Chat{ID: -1001234567890, UserName: "booklib_archive"},
			messageID: 42,
			want:      "https://t.me/booklib_archive/42",
		},
		{
			name:      "приватный канал без префикса -100",
			chat:      &tgbotapi.Chat{ID: -1001234567890},
			messageID: 7,
			want:      "https://t.me/c/1234567890/7",
		},
		{
			name:      "nil-чат",
			chat:      nil,
			messageID: 1,
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := messageLink(tt.chat, tt.messageID); got != tt.want {
				t.Errorf("messageLink() = %q, ожидалось %q", got, tt.want)
			}
		})
	}
}

func TestIsPDFDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  *tgbotapi.Document
		want bool
	}{
		{"MIME application/pdf", &tgbotapi.Document{MimeType: "application/pdf"}, true},
		{"расширение .pdf", &tgbotapi.Document{FileName: "Dune.PDF"}, true},
		{"MIME и расширение", &tgbotapi.Document{MimeType: "application/pdf", FileName: "dune.pdf"}, true},
		{"EPUB", &tgbotapi.Document{MimeType: "application/epub+zip", FileName: "dune.epub"}, false},
		{"без метаданных", &tgbotapi.Document{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPDFDocument(tt.doc); got != tt.want {
				t.Errorf("isPDFDocument() = %v, ожидалось %v", got, tt.want)
			}
		})
	}
}

func TestFormatSearchReply(t *testing.T) {
	result := catalog.Result{
		PageItems: []*model.Book{
			{Title: "Dune", Categories: []string{"Fantastika", "Klassik"}},
			{Title: "Hobbit"},
		},
		TotalMatched: 2,
	}

	got := formatSearchReply(result)

	if !strings.Contains(got, "Tapıldı: 2 kitab") {
		t.Errorf("ожидался заголовок с количеством, получено %q", got)
	}
	if !strings.Contains(got, "1. Dune (#Fantastika #Klassik)") {
		t.Errorf("ожидалась строка с категориями, получено %q", got)
	}
	if !strings.Contains(got, "2. Hobbit\n") {
		t.Errorf("ожидалась строка без категорий, получено %q", got)
	}
	if strings.Contains(got, "Tam siyahı") {
		t.Errorf("подсказка про веб-каталог не ожидалась при полном ответе: %q", got)
	}
}

func TestFormatSearchReply_Truncated(t *testing.T) {
	result := catalog.Result{
		PageItems: []*model.Book{
			{Title: "1"}, {Title: "2"}, {Title: "3"}, {Title: "4"}, {Title: "5"},
		},
		TotalMatched: 12,
	}

	got := formatSearchReply(result)
	if !strings.Contains(got, "Tam siyahı") {
		t.Errorf("ожидалась подсказка про веб-каталог, получено %q", got)
	}
}

func TestFormatListReply(t *testing.T) {
	result := catalog.Result{
		PageItems: []*model.Book{
			{Title: "Dune"}, {Title: "Hobbit"},
		},
		TotalMatched: 2,
	}

	got := formatListReply(result)
	if !strings.Contains(got, "Son əlavə olunan kitablar:") {
		t.Errorf("ожидался заголовок списка, получено %q", got)
	}
	if !strings.Contains(got, "2. Hobbit") {
		t.Errorf("ожидалась нумерованная строка, получено %q", got)
	}
	if strings.Contains(got, "Tam siyahı") {
		t.Errorf("подсказка про веб-каталог не ожидалась: %q", got)
	}

	result.TotalMatched = 25
	if got := formatListReply(result); !strings.Contains(got, "Cəmi 25 kitab") {
		t.Errorf("ожидалась подсказка об усечении, получено %q", got)
	}
}

func TestSearchKeyboard(t *testing.T) {
	b := &Bot{opts: Options{BaseURL: "https://books.example.com"}}
	longID := strings.Repeat("x", 80)

	kb := b.searchKeyboard([]*model.Book{
		{FileID: "short-id", Title: "Dune"},
		{FileID: longID, Title: "Hobbit"},
	})

	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("ожидалось 2 ряда кнопок, получено %d", len(kb.InlineKeyboard))
	}

	first := kb.InlineKeyboard[0][0]
	if first.CallbackData == nil || *first.CallbackData != "send_book_short-id" {
		t.Errorf("ожидалась callback-кнопка send_book_short-id, получено %+v", first)
	}

	// Длинный file_id не помещается в callback_data (лимит 64 байта)
	second := kb.InlineKeyboard[1][0]
	if second.URL == nil || *second.URL != "https://books.example.com/download/"+longID {
		t.Errorf("ожидалась URL-кнопка для длинного file_id, получено %+v", second)
	}
}

func TestInternalChatID(t *testing.T) {
	tests := []struct {
		chatID int64
		want   string
	}{
		{-1001234567890, "1234567890"},
		{-987654, "987654"},
		{123456, "123456"},
	}

	for _, tt := range tests {
		if got := internalChatID(tt.chatID); got != tt.want {
			t.Errorf("internalChatID(%d) = %q, ожидалось %q", tt.chatID, got, tt.want)
		}
	}
}
