package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"mindjournal/internal/services"
)

var (
	secret = []byte("test-secret")
	now    = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

func clock() time.Time { return now }

func sign(t *testing.T, key any, method jwt.SigningMethod, c Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, c).SignedString(key)
	require.NoError(t, err)
	return s
}

func claimsFor(sub string, admin bool, exp time.Time) Claims {
	return Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthBuildsSession(t *testing.T) {
	var got services.Session
	h := NewAuthMiddleware(secret, clock).RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFrom(r.Context())
	}))

	rec := serve(h, sign(t, secret, jwt.SigningMethodHS256, claimsFor("u1", true, now.Add(time.Hour))))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, services.Session{UserID: "u1", Authenticated: true, Admin: true}, got)
}

func TestRequireAuthRejects(t *testing.T) {
	h := NewAuthMiddleware(secret, clock).RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for name, token := range map[string]string{
		"missing":     "",
		"garbage":     "not-a-jwt",
		"wrong key":   sign(t, []byte("other"), jwt.SigningMethodHS256, claimsFor("u1", false, now.Add(time.Hour))),
		"expired":     sign(t, secret, jwt.SigningMethodHS256, claimsFor("u1", false, now.Add(-time.Minute))),
		"no subject":  sign(t, secret, jwt.SigningMethodHS256, claimsFor("", false, now.Add(time.Hour))),
		"no expiry":   sign(t, secret, jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}),
		"none method": sign(t, jwt.UnsafeAllowNoneSignatureType, jwt.SigningMethodNone, claimsFor("u1", true, now.Add(time.Hour))),
	} {
		rec := serve(h, token)
		require.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestRequireAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := NewAuthMiddleware(secret, clock).RequireAuth(RequireAdmin(ok))

	rec := serve(h, sign(t, secret, jwt.SigningMethodHS256, claimsFor("u1", false, now.Add(time.Hour))))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, sign(t, secret, jwt.SigningMethodHS256, claimsFor("admin-1", true, now.Add(time.Hour))))
	require.Equal(t, http.StatusOK, rec.Code)
}
