// Package auth decides whether a request may reach an owner-only handler.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Header names read by the gate.
const (
	HeaderAuthorization  = "Authorization"
	HeaderOwnerToken     = "X-Owner-Token"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// Gate errors.
var (
	ErrUnauthorized           = errors.New("missing or invalid owner token")
	ErrIdempotencyKeyRequired = errors.New("Idempotency-Key required")
)

// Gate checks the owner token and idempotency key of protected requests.
type Gate struct {
	token        []byte
	hash         []byte
	acceptLegacy bool
}

// NewGate returns a gate for the configured owner secret. token is compared
// as-is; tokenHash is a bcrypt hash and takes precedence when both are set.
// With neither set the token check is disabled.
func NewGate(token, tokenHash string, acceptLegacy bool) *Gate {
	g := &Gate{acceptLegacy: acceptLegacy}
	if tokenHash != "" {
		g.hash = []byte(tokenHash)
	} else if token != "" {
		g.token = []byte(token)
	}
	return g
}

// Enabled reports whether an owner secret is configured.
func (g *Gate) Enabled() bool {
	return len(g.token) > 0 || len(g.hash) > 0
}

// Token extracts the supplied owner token. A bearer token wins over the
// legacy header.
func (g *Gate) Token(h http.Header) string {
	if v := h.Get(HeaderAuthorization); v != "" {
		if scheme, tok, ok := strings.Cut(v, " "); ok && strings.EqualFold(scheme, "Bearer") {
			if tok = strings.TrimSpace(tok); tok != "" {
				return tok
			}
		}
	}
	if g.acceptLegacy {
		return strings.TrimSpace(h.Get(HeaderOwnerToken))
	}
	return ""
}

// Authenticated reports whether the request carries the configured owner
// token. It is always false when no secret is configured.
func (g *Gate) Authenticated(h http.Header) bool {
	if !g.Enabled() {
		return false
	}
	tok := g.Token(h)
	if tok == "" {
		return false
	}
	if len(g.hash) > 0 {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(tok)) == nil
	}
	return subtle.ConstantTimeCompare(g.token, []byte(tok)) == 1
}

// Check validates a protected request. The token is checked first, then
// non-GET/HEAD methods must carry an Idempotency-Key.
func (g *Gate) Check(h http.Header, method string) error {
	if g.Enabled() && !g.Authenticated(h) {
		return ErrUnauthorized
	}
	if method != http.MethodGet && method != http.MethodHead && strings.TrimSpace(h.Get(HeaderIdempotencyKey)) == "" {
		return ErrIdempotencyKeyRequired
	}
	return nil
}
