// Пакет static — встроенные статические файлы веб-интерфейса каталога.
// Файлы встраиваются в бинарник через //go:embed и раздаются через HTTP.
package static

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed web
var content embed.FS

// Handler возвращает HTTP handler статических файлов.
// Неизвестные пути получают index.html: маршрутизация SPA выполняется
// на стороне браузера.
func Handler() http.Handler {
	sub, err := fs.Sub(content, "web")
	if err != nil {
		panic(err)
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}
		if _, err := fs.Stat(sub, path); err != nil {
			r.URL.Path = "/"
		}
		fileServer.ServeHTTP(w, r)
	})
}
