package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	subject string
	err     error
}

func (v *fakeValidator) ValidateToken(string) (string, error) {
	return v.subject, v.err
}

func authProbe(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = r.Context().Value(UserIDKey).(string)
		w.WriteHeader(http.StatusOK)
	})
	return next, &got
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	next, got := authProbe(t)
	handler := AuthMiddleware(&fakeValidator{subject: "u1"})(next)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", *got)
}

func TestAuthMiddleware_QueryParamFallback(t *testing.T) {
	next, got := authProbe(t)
	handler := AuthMiddleware(&fakeValidator{subject: "u1"})(next)

	req := httptest.NewRequest(http.MethodGet, "/ws?token=some-token", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", *got)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	next, _ := authProbe(t)
	handler := AuthMiddleware(&fakeValidator{subject: "u1"})(next)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	next, _ := authProbe(t)
	handler := AuthMiddleware(&fakeValidator{err: errors.New("expired")})(next)

	req := httptest.NewRequest(http.MethodGet, "/ws?token=bad", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	next, _ := authProbe(t)
	handler := AuthMiddleware(&fakeValidator{subject: "u1"})(next)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
