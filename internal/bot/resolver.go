// resolver.go — получение актуальных ссылок на файлы Telegram.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FileResolver запрашивает у Bot API свежую прямую ссылку на файл.
// Сохранённые в каталоге ссылки протухают: Telegram выдаёт их
// с ограниченным сроком жизни.
type FileResolver struct {
	api *tgbotapi.BotAPI
}

// NewFileResolver создаёт resolver поверх подключённого Bot API.
func NewFileResolver(api *tgbotapi.BotAPI) *FileResolver {
	return &FileResolver{api: api}
}

// ResolveFileURL возвращает свежую прямую ссылку на файл.
func (r *FileResolver) ResolveFileURL(_ context.Context, fileID string) (string, error) {
	url, err := r.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("запрос ссылки на файл %s: %w", fileID, err)
	}
	return url, nil
}
