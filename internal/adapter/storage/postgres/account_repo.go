package postgres

import (
	"context"
	"errors"
	"fmt"

	"crux-escrow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Create inserts a new operator account.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	query := `INSERT INTO accounts (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, a.ID, a.Username, a.PasswordHash, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID fetches an account by its UUID.
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT id, username, password_hash, created_at FROM accounts WHERE id = $1`

	a := &domain.Account{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// GetByUsername fetches an account by username.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT id, username, password_hash, created_at FROM accounts WHERE username = $1`

	a := &domain.Account{}
	err := r.pool.QueryRow(ctx, query, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by username: %w", err)
	}
	return a, nil
}
