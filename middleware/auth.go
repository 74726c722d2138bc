package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type contextKey string

const AdminKey contextKey = "admin"

// AdminCookieName holds the admin session token. It is a session cookie, so
// admin mode ends when the browser closes.
const AdminCookieName = "admin_session"

type SessionVerifier interface {
	Verify(token string) bool
}

// AdminMiddleware marks the request as admin when it carries a valid session
// token, either as the admin cookie or as a Bearer header. It never rejects.
func AdminMiddleware(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin := verifier.Verify(sessionToken(r))
			ctx := context.WithValue(r.Context(), AdminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token != authHeader {
			return token
		}
	}
	if c, err := r.Cookie(AdminCookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireAdmin rejects API requests that are not in admin mode.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			respondWithError(w, http.StatusUnauthorized, "Admin mode required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdminPage sends non-admin form posts back to the place list.
func RequireAdminPage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsAdmin reports whether AdminMiddleware accepted the request's session.
func IsAdmin(ctx context.Context) bool {
	admin, _ := ctx.Value(AdminKey).(bool)
	return admin
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(fmt.Sprintf(`{"error": %q}`, message)))
}
