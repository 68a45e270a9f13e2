package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/npezzotti/go-direct-chat/internal/testutil"
	"github.com/npezzotti/go-direct-chat/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware(t *testing.T) {
	a := &ChatApp{
		log:        testutil.TestLogger(t),
		signingKey: []byte("test-key"),
	}

	handler := a.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		userId, ok := UserId(r.Context())
		assert.True(t, ok, "expected user id on request context")
		assert.Equal(t, "u1", userId)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
		w := httptest.NewRecorder()

		handler(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "expected 401 without a token")
	})

	t.Run("garbage token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
		r.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()

		handler(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "expected 401 for an unverifiable token")
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := a.createJwtForSession(types.User{Id: "u1", Email: "u1@example.com"}, time.Hour)
		assert.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler(w, r)
		assert.Equal(t, http.StatusOK, w.Code, "expected handler to run with a valid token")
		assert.Equal(t, "no-store, no-cache, must-revalidate, private", w.Header().Get("Cache-Control"))
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := a.createJwtForSession(types.User{Id: "u1"}, -time.Minute)
		assert.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handler(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "expected 401 for an expired token")
	})
}

func TestErrorHandler(t *testing.T) {
	a := &ChatApp{log: testutil.TestLogger(t)}

	h := a.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusInternalServerError, w.Code, "expected 500 after a handler panic")
}
