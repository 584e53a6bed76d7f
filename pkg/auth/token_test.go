package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurokira/storefront-backend/pkg/config"
)

func sessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret: "test-secret",
		Issuer: "kurokira-storefront",
		TTL:    time.Hour,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := sessionConfig()
	now := time.Now()

	token, sid, err := MintSessionToken(cfg, now, "")
	require.NoError(t, err)
	require.NotEmpty(t, sid)

	claims, err := ParseSessionToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, sid, claims.SessionID)
	assert.Equal(t, cfg.Issuer, claims.Issuer)
}

func TestMintPreservesExistingSessionID(t *testing.T) {
	cfg := sessionConfig()

	_, sid, err := MintSessionToken(cfg, time.Now(), "existing-session")
	require.NoError(t, err)
	assert.Equal(t, "existing-session", sid)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := sessionConfig()
	issued := time.Now().Add(-2 * time.Hour)

	token, _, err := MintSessionToken(cfg, issued, "")
	require.NoError(t, err)

	_, err = ParseSessionToken(cfg, token)
	require.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := sessionConfig()

	token, _, err := MintSessionToken(cfg, time.Now(), "")
	require.NoError(t, err)

	other := cfg
	other.Secret = "different-secret"
	_, err = ParseSessionToken(other, token)
	require.Error(t, err)
}

func TestMintRequiresSecret(t *testing.T) {
	cfg := sessionConfig()
	cfg.Secret = ""

	_, _, err := MintSessionToken(cfg, time.Now(), "")
	require.Error(t, err)
}
