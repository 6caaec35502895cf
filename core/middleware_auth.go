package core

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminAuth requires "Authorization: Bearer <admin key>". The key is checked
// against admin.api_key_hash (bcrypt) when set, otherwise against
// admin.api_key.
func (a *App) AdminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" || !a.validAdminKey(token) {
			writeJsonError(w, errorUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) validAdminKey(token string) bool {
	cfg := a.Config().Admin
	if cfg.APIKeyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cfg.APIKeyHash), []byte(token)) == nil
	}
	if cfg.APIKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(cfg.APIKey)) == 1
}
