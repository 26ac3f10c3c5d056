// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	userdom "pharmacy/internal/domain/user"
)

// FirebaseAuthClient is an alias for the firebase auth client so callers can
// take *middleware.FirebaseAuthClient without importing the SDK.
type FirebaseAuthClient = fbauth.Client

// context keys use a private type to avoid collisions (SA1029).
type ctxKey struct{ name string }

var (
	ctxKeyUID      = ctxKey{name: "uid"}
	ctxKeyEmail    = ctxKey{name: "email"}
	ctxKeyUsername = ctxKey{name: "username"}
	ctxKeyRole     = ctxKey{name: "role"}
)

// UserAuthMiddleware verifies the Firebase ID token on
//
//   - Authorization: Bearer <ID_TOKEN>
//
// and stores uid/email/username/role in the request context. The username and
// role come from the user directory when a document exists, falling back to
// the token's name claim and the customer role.
type UserAuthMiddleware struct {
	FirebaseAuth *FirebaseAuthClient
	Users        userdom.Repository
}

func (m *UserAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.FirebaseAuth == nil {
			http.Error(w, "user auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
			return
		}

		token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			http.Error(w, "invalid uid in token", http.StatusUnauthorized)
			return
		}

		email := claimString(token.Claims, "email")
		username := claimString(token.Claims, "name")
		role := userdom.RoleCustomer

		if m.Users != nil {
			u, err := m.Users.GetByUID(r.Context(), uid)
			if err != nil {
				log.Printf("[user_auth] WARN: directory lookup for %s failed: %v (token claims only)", uid, err)
			} else if u != nil {
				role = u.Role
				if u.Username != "" {
					username = u.Username
				}
				if u.Email != "" {
					email = u.Email
				}
			}
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), uid, username, email, role)))
	})
}

// WithIdentity stores the authenticated identity in ctx.
// Exposed so handler tests can seed a request context without a real token.
func WithIdentity(ctx context.Context, uid, username, email, role string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUID, uid)
	if username != "" {
		ctx = context.WithValue(ctx, ctxKeyUsername, username)
	}
	if email != "" {
		ctx = context.WithValue(ctx, ctxKeyEmail, email)
	}
	if role != "" {
		ctx = context.WithValue(ctx, ctxKeyRole, role)
	}
	return ctx
}

// UIDFromContext returns the authenticated uid.
func UIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyUID).(string)
	return v, ok && v != ""
}

// UsernameFromContext returns the display name, "" when absent.
func UsernameFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyUsername).(string)
	return v
}

// EmailFromContext returns the email claim, "" when absent.
func EmailFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyEmail).(string)
	return v
}

// RoleFromContext returns the directory role, "" when absent.
func RoleFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRole).(string)
	return v
}

// IsAdmin reports whether the request identity carries the admin role.
func IsAdmin(ctx context.Context) bool {
	return RoleFromContext(ctx) == userdom.RoleAdmin
}

func claimString(claims map[string]any, key string) string {
	if claims == nil {
		return ""
	}
	if raw, ok := claims[key]; ok {
		if s, ok2 := raw.(string); ok2 {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
