package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/vaccine-scheduler/internal/config"
	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	"github.com/spec-kit/vaccine-scheduler/internal/repository"
	"github.com/spec-kit/vaccine-scheduler/internal/service"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

func newAccountService() *service.AccountService {
	cfg := config.Config{}
	cfg.Auth = config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            bcrypt.MinCost,
	}
	return service.NewAccountService(cfg, repository.NewMemoryStore())
}

func TestRegisterAndLogin(t *testing.T) {
	accounts := newAccountService()
	ctx := context.Background()

	created, err := accounts.Register(ctx, domain.RolePatient, "alice", "Pass1234!")
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)
	assert.NotEqual(t, "Pass1234!", created.PasswordHash)

	account, err := accounts.Login(ctx, domain.RolePatient, "alice", "Pass1234!")
	require.NoError(t, err)
	assert.Equal(t, domain.RolePatient, account.Role)

	_, err = accounts.Login(ctx, domain.RolePatient, "alice", "Wrong1234!")
	assert.True(t, apperrors.IsCode(err, "INVALID_CREDENTIALS"))

	// unknown users get the same error as bad passwords
	_, err = accounts.Login(ctx, domain.RolePatient, "nobody", "Pass1234!")
	assert.True(t, apperrors.IsCode(err, "INVALID_CREDENTIALS"))

	// the role is part of the identity; alice is not a caregiver
	_, err = accounts.Login(ctx, domain.RoleCaregiver, "alice", "Pass1234!")
	assert.True(t, apperrors.IsCode(err, "INVALID_CREDENTIALS"))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	accounts := newAccountService()
	ctx := context.Background()

	_, err := accounts.Register(ctx, domain.RolePatient, "alice", "Pass1234!")
	require.NoError(t, err)

	_, err = accounts.Register(ctx, domain.RolePatient, "alice", "Other1234!")
	assert.True(t, apperrors.IsCode(err, "DUPLICATE_USERNAME"))

	// usernames are unique per role, not globally
	_, err = accounts.Register(ctx, domain.RoleCaregiver, "alice", "Pass1234!")
	assert.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	accounts := newAccountService()
	ctx := context.Background()

	_, err := accounts.Register(ctx, domain.RolePatient, "  ", "Pass1234!")
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))

	_, err = accounts.Register(ctx, domain.RolePatient, "alice", "short")
	assert.True(t, apperrors.IsCode(err, "WEAK_PASSWORD"))
}

func TestIssueToken(t *testing.T) {
	accounts := newAccountService()
	ctx := context.Background()

	account, err := accounts.Register(ctx, domain.RoleCaregiver, "carol", "Pass1234!")
	require.NoError(t, err)

	token, expires, err := accounts.IssueToken(account)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expires.IsZero())

	claims, err := accounts.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "carol", claims.Username)
	assert.Equal(t, domain.RoleCaregiver, claims.Role)
}
