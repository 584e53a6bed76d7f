package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurokira/storefront-backend/pkg/auth"
	"github.com/kurokira/storefront-backend/pkg/config"
	"github.com/kurokira/storefront-backend/pkg/logger"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:     "test-secret",
		Issuer:     "kurokira-storefront",
		TTL:        time.Hour,
		CookieName: "kk_session",
	}
}

func sessionEcho(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var seen string
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	handler := Session(testSessionConfig(), logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &seen
}

func TestSessionMintsFreshWhenMissing(t *testing.T) {
	handler, seen := sessionEcho(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	require.NotEmpty(t, *seen)
	token := rec.Header().Get("X-KK-Session")
	require.NotEmpty(t, token)

	claims, err := auth.ParseSessionToken(testSessionConfig(), token)
	require.NoError(t, err)
	assert.Equal(t, *seen, claims.SessionID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "kk_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSessionHonorsExistingToken(t *testing.T) {
	cfg := testSessionConfig()
	token, sid, err := auth.MintSessionToken(cfg, time.Now(), "")
	require.NoError(t, err)

	handler, seen := sessionEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-KK-Session", token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, sid, *seen)
	assert.Empty(t, rec.Header().Get("X-KK-Session"), "valid sessions are not re-minted")
}

func TestSessionReplacesExpiredToken(t *testing.T) {
	cfg := testSessionConfig()
	token, sid, err := auth.MintSessionToken(cfg, time.Now().Add(-2*time.Hour), "")
	require.NoError(t, err)

	handler, seen := sessionEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-KK-Session", token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotEmpty(t, *seen)
	assert.NotEqual(t, sid, *seen)
	assert.NotEmpty(t, rec.Header().Get("X-KK-Session"))
}

func TestSessionReadsBearerHeader(t *testing.T) {
	cfg := testSessionConfig()
	token, sid, err := auth.MintSessionToken(cfg, time.Now(), "")
	require.NoError(t, err)

	handler, seen := sessionEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, sid, *seen)
}
