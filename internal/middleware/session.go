package middleware

import (
	"net/http"
	"time"

	"github.com/rahul4469/runtime-calculator/context"
	"github.com/rahul4469/runtime-calculator/internal/crypto"
	"github.com/rahul4469/runtime-calculator/internal/logging"
)

// SessionMiddleware gives every visitor an anonymous session. The cookie
// holds a random token; handlers only ever see the derived store key.
type SessionMiddleware struct {
	keyer      *crypto.SessionKeyer
	cookieName string
	duration   time.Duration
	secure     bool
	logger     logging.Logger
}

func NewSessionMiddleware(keyer *crypto.SessionKeyer, cookieName string, duration time.Duration, secure bool, logger logging.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		keyer:      keyer,
		cookieName: cookieName,
		duration:   duration,
		secure:     secure,
		logger:     logger,
	}
}

// SetSession loads the session from the cookie, issuing a new one when the
// cookie is missing or malformed, and stores its key in the request context.
func (m *SessionMiddleware) SetSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(m.cookieName); err == nil {
			token = cookie.Value
		}

		key, err := m.keyer.Key(token)
		if err != nil {
			token, err = m.keyer.NewToken()
			if err != nil {
				m.logger.Error("failed to issue session token", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if key, err = m.keyer.Key(token); err != nil {
				m.logger.Error("failed to derive session key", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		// Refresh the cookie on every request so an active session never expires.
		m.setCookie(w, token)

		ctx := context.ContextSetSession(r.Context(), key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession rejects requests that did not pass through SetSession.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if context.ContextGetSession(r.Context()) == "" {
			http.Error(w, "Session required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *SessionMiddleware) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.duration.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionKey is a helper to get the session store key from any handler.
func SessionKey(r *http.Request) string {
	return context.ContextGetSession(r.Context())
}
