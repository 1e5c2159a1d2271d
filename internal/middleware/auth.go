// Package middleware содержит HTTP middleware сервиса клиентского дашборда.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/veloxhost/dashboard-system/internal/model"
)

type contextKey string

const identityKey contextKey = "identity"

const (
	authCookieName = "session_token"
	authCookieTTL  = 30 * 24 * time.Hour
)

// AuthMiddleware проверяет подписанный cookie сессии, выданный внешним
// провайдером аутентификации. Сам вход и выдача cookie происходят на
// стороне провайдера; здесь только проверка подписи общим секретом.
type AuthMiddleware struct {
	secretKey []byte
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware с указанным секретным ключом.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &AuthMiddleware{
		secretKey: key,
	}
}

// Middleware проверяет cookie сессии и кладёт личность пользователя в
// контекст запроса.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ident, ok := a.parseCookie(cookie.Value)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetAuthCookie устанавливает cookie сессии для указанной личности.
// В проде этим занимается провайдер аутентификации с тем же секретом;
// метод нужен тестам и локальной отладке.
func (a *AuthMiddleware) SetAuthCookie(w http.ResponseWriter, ident model.Identity) {
	value := a.sign(encodePayload(ident))

	cookie := &http.Cookie{
		Name:     authCookieName,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(authCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

func encodePayload(ident model.Identity) string {
	raw := strconv.FormatInt(ident.UserID, 10) + "|" + ident.Email + "|" + ident.DisplayName
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodePayload(payload string) (model.Identity, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return model.Identity{}, false
	}

	parts := strings.SplitN(string(raw), "|", 3)
	if len(parts) != 3 {
		return model.Identity{}, false
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return model.Identity{}, false
	}

	return model.Identity{
		UserID:      id,
		Email:       parts[1],
		DisplayName: parts[2],
	}, true
}

func (a *AuthMiddleware) sign(payload string) string {
	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(payload))
	signature := mac.Sum(nil)
	return payload + "." + hex.EncodeToString(signature)
}

func (a *AuthMiddleware) parseCookie(cookieValue string) (model.Identity, bool) {
	parts := strings.Split(cookieValue, ".")
	if len(parts) != 2 {
		return model.Identity{}, false
	}

	payload := parts[0]
	signature := parts[1]

	expected := a.sign(payload)
	expectedParts := strings.Split(expected, ".")
	if len(expectedParts) != 2 {
		return model.Identity{}, false
	}

	if !hmac.Equal([]byte(signature), []byte(expectedParts[1])) {
		return model.Identity{}, false
	}

	return decodePayload(payload)
}

// GetIdentityFromContext извлекает личность пользователя из контекста запроса.
func GetIdentityFromContext(ctx context.Context) (model.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(model.Identity)
	return ident, ok
}
