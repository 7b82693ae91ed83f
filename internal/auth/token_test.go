package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/vaccine-scheduler/internal/auth"
	"github.com/spec-kit/vaccine-scheduler/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 15)

	token, exp, err := tm.GenerateToken(domain.Identity{Username: "alice", Role: domain.RolePatient})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RolePatient, claims.Role)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	tm := auth.NewTokenManager("secret-a", 15)
	other := auth.NewTokenManager("secret-b", 15)

	token, _, err := tm.GenerateToken(domain.Identity{Username: "carol", Role: domain.RoleCaregiver})
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenGarbageRejected(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", 15)
	_, err := tm.ParseToken("not-a-token")
	assert.Error(t, err)
}
