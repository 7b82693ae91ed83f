package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

const pgUniqueViolation = "23505"

// AccountRepository defines persistence access for patient and
// caregiver accounts. Accounts live in role-split tables, one per role.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByUsername(ctx context.Context, role domain.Role, username string) (*domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func accountTable(role domain.Role) (string, error) {
	switch role {
	case domain.RolePatient:
		return "patients", nil
	case domain.RoleCaregiver:
		return "caregivers", nil
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	table, err := accountTable(account.Role)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
        INSERT INTO %s (username, password_hash)
        VALUES ($1, $2)
        RETURNING created_at`, table)

	err = r.pool.QueryRow(ctx, query, account.Username, account.PasswordHash).
		Scan(&account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperrors.NewDuplicateUsername(account.Username)
		}
		return err
	}
	return nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, role domain.Role, username string) (*domain.Account, error) {
	table, err := accountTable(role)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
        SELECT username, password_hash, created_at
        FROM %s WHERE username = $1`, table)

	account := &domain.Account{Role: role}
	if err := r.pool.QueryRow(ctx, query, username).Scan(
		&account.Username,
		&account.PasswordHash,
		&account.CreatedAt,
	); err != nil {
		return nil, err
	}
	return account, nil
}
