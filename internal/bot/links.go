// links.go — построение ссылок t.me на посты каналов.
package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messageLink строит публичную ссылку на сообщение в чате.
// Публичные каналы адресуются по username, приватные — по внутреннему
// идентификатору без служебного префикса -100.
func messageLink(chat *tgbotapi.Chat, messageID int) string {
	if chat == nil {
		return ""
	}
	if chat.UserName != "" {
		return fmt.Sprintf("https://t.me/%s/%d", chat.UserName, messageID)
	}
	return fmt.Sprintf("https://t.me/c/%s/%d", internalChatID(chat.ID), messageID)
}

// internalChatID убирает префикс -100 из идентификатора канала.
func internalChatID(chatID int64) string {
	s := strconv.FormatInt(chatID, 10)
	if rest, ok := strings.CutPrefix(s, "-100"); ok {
		return rest
	}
	return strings.TrimPrefix(s, "-")
}
