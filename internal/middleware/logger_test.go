package middleware

import (
	"net/http"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapRequestLoggerRecordsUser(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	teapot := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := ZapRequestLogger(zap.New(core))(NewAuthMiddleware(secret, clock).RequireAuth(teapot))

	rec := serve(h, sign(t, secret, jwt.SigningMethodHS256, claimsFor("u1", false, now.Add(time.Hour))))
	require.Equal(t, http.StatusTeapot, rec.Code)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, int64(http.StatusTeapot), fields["status"])
	require.Equal(t, "u1", fields["user_id"])
}

func TestZapRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := ZapRecoverer(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := serve(h, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.FilterMessage("handler panic").Len())
}
