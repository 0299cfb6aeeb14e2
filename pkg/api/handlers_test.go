package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manenim/apigate/pkg/auth"
	"github.com/manenim/apigate/pkg/config"
)

func login(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:51234"
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func cookieByName(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestLogin(t *testing.T) {
	t.Run("success sets session and csrf cookies", func(t *testing.T) {
		s := newTestServer(t, highLimit)
		w := login(t, s, `{"username":"alice","password":"s3cret"}`)
		require.Equal(t, http.StatusOK, w.Code)

		session := cookieByName(t, w, auth.SessionCookie)
		assert.True(t, session.HttpOnly, "session cookie must not be script-readable")
		assert.NotEmpty(t, session.Value)

		csrf := cookieByName(t, w, auth.CSRFCookie)
		assert.False(t, csrf.HttpOnly, "csrf cookie must be readable for the double submit")
		assert.Len(t, csrf.Value, 64)

		var resp struct {
			User      string `json:"user"`
			CSRFToken string `json:"csrf_token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "alice", resp.User)
		assert.Equal(t, csrf.Value, resp.CSRFToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		s := newTestServer(t, highLimit)
		w := login(t, s, `{"username":"alice","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("unknown user", func(t *testing.T) {
		s := newTestServer(t, highLimit)
		w := login(t, s, `{"username":"mallory","password":"s3cret"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t, highLimit)
		w := login(t, s, `{"username":"alice"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProtectedRoutes(t *testing.T) {
	s := newTestServer(t, highLimit)

	w := login(t, s, `{"username":"alice","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	session := cookieByName(t, w, auth.SessionCookie)
	csrf := cookieByName(t, w, auth.CSRFCookie)

	t.Run("me with session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.RemoteAddr = "203.0.113.9:51234"
		req.AddCookie(session)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user":"alice"}`, rec.Body.String())
	})

	t.Run("me without session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.RemoteAddr = "203.0.113.9:51234"
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me with garbage session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.RemoteAddr = "203.0.113.9:51234"
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "garbage"})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("echo requires csrf header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/echo", strings.NewReader(`{"hello":"world"}`))
		req.RemoteAddr = "203.0.113.9:51234"
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(session)
		req.AddCookie(csrf)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("echo with csrf header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/echo", strings.NewReader(`{"hello":"world"}`))
		req.RemoteAddr = "203.0.113.9:51234"
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(auth.CSRFHeader, csrf.Value)
		req.AddCookie(session)
		req.AddCookie(csrf)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"user":"alice","echo":{"hello":"world"}}`, rec.Body.String())
	})

	t.Run("echo with mismatched csrf header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/echo", strings.NewReader(`{"hello":"world"}`))
		req.RemoteAddr = "203.0.113.9:51234"
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(auth.CSRFHeader, strings.Repeat("0", 64))
		req.AddCookie(session)
		req.AddCookie(csrf)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

// highLimit raises the test burst so login-flow tests never trip admission.
func highLimit(cfg *config.Config) {
	cfg.RateLimit.Rate = 1000
	cfg.RateLimit.Burst = 1000
}
