package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bureau/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func protectedEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User-ID", userID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	handler := Auth(testSecret)(protectedEcho(t))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teller/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	handler := Auth(testSecret)(protectedEcho(t))
	req := httptest.NewRequest(http.MethodGet, "/teller/dashboard", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsBadToken(t *testing.T) {
	token, err := auth.GenerateToken("other-secret", "user-1", "teller", time.Hour)
	require.NoError(t, err)

	handler := Auth(testSecret)(protectedEcho(t))
	req := httptest.NewRequest(http.MethodGet, "/teller/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthPassesClaimsThroughContext(t *testing.T) {
	token, err := auth.GenerateToken(testSecret, "user-1", "teller", time.Hour)
	require.NoError(t, err)

	handler := Auth(testSecret)(protectedEcho(t))
	req := httptest.NewRequest(http.MethodGet, "/teller/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Header().Get("X-User-ID"))
}

func TestRequireRole(t *testing.T) {
	adminOnly := Auth(testSecret)(RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	tellerToken, err := auth.GenerateToken(testSecret, "user-1", "teller", time.Hour)
	require.NoError(t, err)
	adminToken, err := auth.GenerateToken(testSecret, "user-2", "admin", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+tellerToken)
	rec := httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
