package service

import (
	"context"
	"fmt"
	"time"

	"crux-escrow/internal/core/domain"
	"crux-escrow/internal/core/ports"
	"crux-escrow/pkg/apperror"

	"github.com/google/uuid"
)

// AuthServiceImpl implements ports.AuthService for operator accounts.
type AuthServiceImpl struct {
	accountRepo ports.AccountRepository
	hashSvc     ports.HashService
	tokenSvc    ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	accountRepo ports.AccountRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		accountRepo: accountRepo,
		hashSvc:     hashSvc,
		tokenSvc:    tokenSvc,
	}
}

// Register creates a new operator account.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (*domain.Account, error) {
	if len(username) < 3 {
		return nil, apperror.Validation("username must be at least 3 characters")
	}
	if len(password) < 8 {
		return nil, apperror.Validation("password must be at least 8 characters")
	}

	existing, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	passwordHash, err := s.hashSvc.Hash(password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	account := &domain.Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	return account, nil
}

// Login validates credentials and returns a JWT token.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	account, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("find account: %w", err))
	}
	if account == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, account.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(account.ID, account.Username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiry, nil
}
