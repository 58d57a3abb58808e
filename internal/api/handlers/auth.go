// auth.go — HTTP handlers аутентификации через Google OAuth 2.0.
// Authorization Code Flow: /auth/google → Google → /auth/google/callback.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/bigkaa/gobooklib/internal/api/errors"
	apimw "github.com/bigkaa/gobooklib/internal/api/middleware"
	"github.com/bigkaa/gobooklib/internal/service"
	"github.com/bigkaa/gobooklib/internal/ui/auth"
)

// stateCookieName — cookie для защиты от CSRF в OAuth flow.
const stateCookieName = "booklib_oauth_state"

// stateCookieMaxAge — время жизни state cookie.
const stateCookieMaxAge = 10 * time.Minute

// AuthHandler — обработчик endpoints аутентификации.
type AuthHandler struct {
	google   *auth.GoogleClient
	verifier *auth.IDTokenVerifier
	userSvc  *service.UserService
	sessions *auth.SessionManager
	isAdmin  func(email string) bool
	baseURL  string
	secure   bool
	logger   *slog.Logger
}

// NewAuthHandler создаёт обработчик аутентификации.
// isAdmin — проверка принадлежности email к списку администраторов.
func NewAuthHandler(
	google *auth.GoogleClient,
	verifier *auth.IDTokenVerifier,
	userSvc *service.UserService,
	sessions *auth.SessionManager,
	isAdmin func(email string) bool,
	baseURL string,
	secure bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		google:   google,
		verifier: verifier,
		userSvc:  userSvc,
		sessions: sessions,
		isAdmin:  isAdmin,
		baseURL:  baseURL,
		secure:   secure,
		logger:   logger.With(slog.String("component", "auth_handler")),
	}
}

// GoogleLogin обрабатывает GET /auth/google.
// Генерирует state, сохраняет его в cookie и отправляет клиента на Google.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.google.Enabled() {
		apierrors.WriteError(w, http.StatusServiceUnavailable, "AUTH_DISABLED",
			"аутентификация через Google не настроена")
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		apierrors.InternalError(w, "ошибка генерации state")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthorizeURL(state), http.StatusFound)
}

// GoogleCallback обрабатывает GET /auth/google/callback.
// Проверяет state, обменивает код на id_token, верифицирует подпись
// и создаёт сессию.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("Google вернул ошибку OAuth", slog.String("error", errParam))
		apierrors.Unauthorized(w, "аутентификация отклонена")
		return
	}

	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || state == "" || state != stateCookie.Value {
		apierrors.Unauthorized(w, "невалидный параметр state")
		return
	}
	// State одноразовый
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		apierrors.ValidationError(w, "отсутствует параметр code")
		return
	}

	token, err := h.google.ExchangeCode(r.Context(), code)
	if err != nil {
		h.logger.Error("Ошибка обмена authorization code", "error", err)
		apierrors.UpstreamError(w, "ошибка обмена кода авторизации")
		return
	}

	profile, err := h.verifier.Verify(token.IDToken)
	if err != nil {
		h.logger.Error("Невалидный id_token", "error", err)
		apierrors.Unauthorized(w, "невалидный id_token")
		return
	}

	user, err := h.userSvc.Login(r.Context(), profile.Email, profile.Name, profile.Picture)
	if err != nil {
		if errors.Is(err, service.ErrUserBanned) {
			apierrors.Forbidden(w, "пользователь заблокирован")
			return
		}
		h.logger.Error("Ошибка входа пользователя", "error", err)
		apierrors.InternalError(w, "ошибка входа")
		return
	}

	session := &auth.SessionData{
		Email:     user.Email,
		Name:      user.Name,
		Picture:   user.Picture,
		Verified:  user.Verified,
		IsAdmin:   h.isAdmin(user.Email),
		ExpiresAt: time.Now().Add(auth.SessionCookieMaxAge * time.Second).Unix(),
	}
	if err := h.sessions.SetSessionCookie(w, session); err != nil {
		h.logger.Error("Ошибка создания сессии", "error", err)
		apierrors.InternalError(w, "ошибка создания сессии")
		return
	}

	h.logger.Info("Пользователь вошёл",
		slog.String("email", user.Email),
		slog.Bool("admin", session.IsAdmin),
	)
	http.Redirect(w, r, h.baseURL+"/", http.StatusFound)
}

// Logout обрабатывает POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.sessions.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// meResponse — ответ GET /api/me.
type meResponse struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Verified bool   `json:"verified"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Me обрабатывает GET /api/me. Возвращает данные текущей сессии.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := apimw.SessionFromContext(r.Context())
	if session == nil {
		apierrors.Unauthorized(w, "требуется аутентификация")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		Email:    session.Email,
		Name:     session.Name,
		Picture:  session.Picture,
		Verified: session.Verified,
		IsAdmin:  session.IsAdmin,
	})
}
