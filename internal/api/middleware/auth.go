// auth.go — middleware аутентификации по сессионной cookie.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/gobooklib/internal/api/errors"
	"github.com/bigkaa/gobooklib/internal/ui/auth"
)

type contextKey string

// sessionContextKey — ключ контекста для данных сессии.
const sessionContextKey contextKey = "session"

// SessionFromContext возвращает данные сессии из контекста запроса.
// Возвращает nil, если запрос не аутентифицирован.
func SessionFromContext(ctx context.Context) *auth.SessionData {
	session, _ := ctx.Value(sessionContextKey).(*auth.SessionData)
	return session
}

// SessionMiddleware читает сессионную cookie и помещает данные сессии
// в контекст запроса. Невалидная или просроченная сессия игнорируется:
// запрос продолжается как анонимный.
func SessionMiddleware(sm *auth.SessionManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sm.GetSessionFromRequest(r)
			if err != nil {
				logger.Debug("невалидная сессионная cookie", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if session == nil || session.IsExpired() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth требует аутентифицированную сессию.
// Без сессии возвращает 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == nil {
			apierrors.Unauthorized(w, "требуется аутентификация")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin требует сессию администратора.
// Без сессии возвращает 401, без прав администратора — 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil {
			apierrors.Unauthorized(w, "требуется аутентификация")
			return
		}
		if !session.IsAdmin {
			apierrors.Forbidden(w, "требуются права администратора")
			return
		}
		next.ServeHTTP(w, r)
	})
}
