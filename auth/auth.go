// Package auth identifies the acting user from a signed "uid.signature" value,
// carried either in the session cookie or as a bearer token.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-retail/httpx"
)

type ctxKey string

const (
	SessionCookieName = "session"
	userIDCtxKey      = ctxKey("userID")
)

// UserVerifier reports whether a signed user id still refers to an allowed user.
type UserVerifier func(ctx context.Context, uid uint) bool

// Signer issues and checks signed user tokens.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) sign(uidStr string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(uidStr))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Token returns the signed "uid.signature" value for a user.
func (s *Signer) Token(userID uint) string {
	uidStr := strconv.FormatUint(uint64(userID), 10)
	return uidStr + "." + s.sign(uidStr)
}

// Parse validates a token and returns the user id it carries.
func (s *Signer) Parse(token string) (uint, bool) {
	uidStr, sig, found := strings.Cut(token, ".")
	if !found || uidStr == "" || sig == "" {
		return 0, false
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(uidStr))) {
		return 0, false
	}
	id64, err := strconv.ParseUint(uidStr, 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// FromRequest reads the bearer token first, then the session cookie.
func (s *Signer) FromRequest(r *http.Request) (uint, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return s.Parse(strings.TrimSpace(token))
		}
		return 0, false
	}
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	return s.Parse(c.Value)
}

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDCtxKey).(uint)
	return id, ok && id != 0
}

// Middleware attaches the user id to the request context when the request carries a valid token.
func (s *Signer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := s.FromRequest(r); ok {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth answers 401 when no user is attached or verify rejects it. verify may be nil.
func RequireAuth(verify UserVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := UserIDFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			if verify != nil && !verify(r.Context(), uid) {
				ClearSession(w)
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
