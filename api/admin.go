package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// AdminGate guards mutating operations with a single shared secret.
type AdminGate struct {
	secret string
}

// NewAdminGate returns a gate for secret. An empty secret rejects every request.
func NewAdminGate(secret string) AdminGate {
	return AdminGate{secret: secret}
}

// BearerToken extracts the token following a literal "Bearer " prefix.
// Any other header shape yields "".
func BearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, bearerPrefix) {
		return ""
	}
	return auth[len(bearerPrefix):]
}

// Authorized reports whether r carries the configured secret.
func (g AdminGate) Authorized(r *http.Request) bool {
	if g.secret == "" {
		return false
	}
	token := BearerToken(r)
	return subtle.ConstantTimeCompare([]byte(token), []byte(g.secret)) == 1
}

// Require writes a 401 and returns false unless r is authorized.
func (g AdminGate) Require(w http.ResponseWriter, r *http.Request) bool {
	if !g.Authorized(r) {
		WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized)
		return false
	}
	return true
}
