package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/vaccine-scheduler/internal/auth"
	"github.com/spec-kit/vaccine-scheduler/internal/config"
	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	"github.com/spec-kit/vaccine-scheduler/internal/repository"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// AccountService coordinates registration and login flows.
type AccountService struct {
	accounts   repository.AccountRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, accounts repository.AccountRepository) *AccountService {
	return &AccountService{
		accounts:   accounts,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a patient or caregiver account. Usernames are unique
// per role and the password must pass the strength policy.
func (s *AccountService) Register(ctx context.Context, role domain.Role, username, password string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.NewValidationError("username required", nil)
	}

	if _, err := s.accounts.GetByUsername(ctx, role, username); err == nil {
		return nil, apperrors.NewDuplicateUsername(username)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	if err := auth.ValidatePasswordStrength(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

// Login verifies credentials and returns the authenticated account.
func (s *AccountService) Login(ctx context.Context, role domain.Role, username, password string) (*domain.Account, error) {
	account, err := s.accounts.GetByUsername(ctx, role, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}
	return account, nil
}

// IssueToken signs an access token for the account, used by the HTTP API.
func (s *AccountService) IssueToken(account *domain.Account) (string, time.Time, error) {
	return s.tokenMgr.GenerateToken(domain.Identity{
		Username: account.Username,
		Role:     account.Role,
	})
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
