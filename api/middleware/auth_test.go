package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/lokapasar/lokapasar-backend/pkg/auth"
	"github.com/lokapasar/lokapasar-backend/pkg/config"
)

type stubSessions struct {
	active map[string]bool
	err    error
}

func (s stubSessions) HasSession(ctx context.Context, sessionID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.active[sessionID], nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "lokapasar-test",
		ExpirationMinutes: 30,
	}
}

func mintToken(t *testing.T, cfg config.JWTConfig, userID int64, isAdmin bool, jti string) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID:  userID,
		IsAdmin: isAdmin,
		JTI:     jti,
	})
	require.NoError(t, err)
	return token
}

func authedHandler(captured *context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = r.Context()
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthSeedsContext(t *testing.T) {
	cfg := testJWTConfig()
	sessions := stubSessions{active: map[string]bool{"jti-1": true}}

	var got context.Context
	handler := Auth(cfg, sessions, nil)(authedHandler(&got))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, 42, true, "jti-1"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(42), UserIDFromContext(got))
	assert.True(t, IsAdminFromContext(got))
}

func TestAuthRejectsMissingAndMalformedCredentials(t *testing.T) {
	cfg := testJWTConfig()
	handler := Auth(cfg, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for name, header := range map[string]string{
		"missing":      "",
		"bearer only":  "Bearer ",
		"not a jwt":    "Bearer not.a.token",
		"wrong secret": "Bearer " + mintToken(t, config.JWTConfig{Secret: "other", Issuer: "x", ExpirationMinutes: 5}, 1, false, "j"),
	} {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				r.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := testJWTConfig()
	sessions := stubSessions{active: map[string]bool{}}

	handler := Auth(cfg, sessions, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, 42, false, "revoked"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(WithIsAdmin(r.Context(), true))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(WithUserID(r.Context(), 7))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
