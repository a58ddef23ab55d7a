package middleware

import (
	"context"
	"net/http"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"

	"mindjournal/internal/services"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	requestInfoKey
)

// Claims is the bearer token payload: sub is the user id, adm the admin flag.
type Claims struct {
	Admin bool `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	jwtSecret []byte
	now       services.Clock
}

// NewAuthMiddleware validates tokens signed with secret; now decides expiry.
func NewAuthMiddleware(secret []byte, now services.Clock) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: secret, now: now}
}

// WithSession stores sess in ctx. Handlers read it back with SessionFrom.
func WithSession(ctx context.Context, sess services.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFrom returns the request session, or an unauthenticated one.
func SessionFrom(ctx context.Context) services.Session {
	sess, _ := ctx.Value(sessionKey).(services.Session)
	return sess
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")
		var claims Claims
		token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.jwtSecret, nil
		}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(m.now))
		if err != nil || !token.Valid {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if claims.Subject == "" {
			http.Error(w, "invalid subject", http.StatusUnauthorized)
			return
		}
		sess := services.Session{UserID: claims.Subject, Authenticated: true, Admin: claims.Admin}
		noteUser(r.Context(), sess.UserID)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFrom(r.Context()).Admin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
