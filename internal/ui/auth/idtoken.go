// idtoken.go — валидация Google id_token.
// Подпись проверяется по JWKS Google с фоновым обновлением ключей.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Допустимые значения iss в Google id_token.
var googleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// Profile — проверенный профиль пользователя из id_token.
type Profile struct {
	// Email — email пользователя.
	Email string
	// EmailVerified — Google подтвердил владение адресом.
	EmailVerified bool
	// Name — отображаемое имя.
	Name string
	// Picture — URL аватара.
	Picture string
}

// googleClaims — raw claims из Google id_token.
type googleClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// IDTokenVerifier — верификатор Google id_token через JWKS.
type IDTokenVerifier struct {
	jwks     keyfunc.Keyfunc
	clientID string
	logger   *slog.Logger
}

// NewIDTokenVerifier создаёт верификатор id_token.
// jwksURL — JWKS endpoint Google, clientID — ожидаемый aud.
func NewIDTokenVerifier(jwksURL, clientID string, logger *slog.Logger) (*IDTokenVerifier, error) {
	// JWKS Storage с фоновым обновлением.
	// NoErrorReturnFirstHTTPReq — стартуем даже если Google временно недоступен.
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           time.Hour,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", jwksURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	return &IDTokenVerifier{
		jwks:     k,
		clientID: clientID,
		logger:   logger.With(slog.String("component", "idtoken_verifier")),
	}, nil
}

// NewIDTokenVerifierWithKeyfunc создаёт верификатор с готовым keyfunc
// (для тестов и нестандартных JWKS-источников).
func NewIDTokenVerifierWithKeyfunc(k keyfunc.Keyfunc, clientID string, logger *slog.Logger) *IDTokenVerifier {
	return &IDTokenVerifier{
		jwks:     k,
		clientID: clientID,
		logger:   logger.With(slog.String("component", "idtoken_verifier")),
	}
}

// Verify проверяет подпись, issuer, audience и срок действия id_token.
// Возвращает профиль пользователя при успехе.
func (v *IDTokenVerifier) Verify(tokenString string) (*Profile, error) {
	claims := &googleClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.clientID),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("невалидный id_token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("id_token не прошёл валидацию")
	}

	if !validIssuer(claims.Issuer) {
		return nil, fmt.Errorf("неожиданный issuer id_token: %q", claims.Issuer)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("id_token не содержит email")
	}

	return &Profile{
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

// validIssuer проверяет iss против допустимых значений Google.
func validIssuer(iss string) bool {
	for _, allowed := range googleIssuers {
		if iss == allowed {
			return true
		}
	}
	return false
}
