package auth

import (
	"net/http"
)

// SessionCookie is the name of the HttpOnly cookie carrying the admin
// session token. HttpOnly keeps it out of reach of page scripts.
const SessionCookie = "artfolio_session"

// RequireAdmin is a middleware that enforces an authenticated admin
// session on mutating routes.
//
// It reads the JWT from the session cookie (or, for API clients, a
// Bearer token in the Authorization header) and validates it. Missing or
// invalid credentials end the chain with 401.
func RequireAdmin(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := tokens.Validate(sessionToken(r)); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid admin session required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetSessionCookie attaches a freshly issued session token to the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionToken extracts the token from the cookie, falling back to an
// Authorization: Bearer header. Returns "" when neither is present,
// which Validate rejects.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}
