package ports

import (
	"context"
	"time"

	"crux-escrow/internal/core/domain"

	"github.com/google/uuid"
)

// ConditionService produces commitment/fulfillment pairs for conditional
// payments (PREIMAGE-SHA-256 crypto-conditions).
type ConditionService interface {
	// Generate draws a fresh 32-byte preimage and returns the uppercase hex
	// condition (public commitment) and fulfillment (to be kept secret).
	Generate() (condition string, fulfillment string, err error)
	// ConditionFromFulfillment recomputes the condition a fulfillment
	// satisfies. Used for round-trip checks, never for release gating: the
	// ledger is the sole arbiter of commitment matching.
	ConditionFromFulfillment(fulfillment string) (string, error)
}

// EncryptionService handles AES-256-GCM encryption of secrets at rest.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Reconciler merges the ledger's pending objects with its transaction
// history into one classified view per account and role.
type Reconciler interface {
	View(ctx context.Context, account string, role domain.Role) (*domain.EscrowView, error)
	// Find returns the reconciled entry for one sequence, or nil.
	Find(ctx context.Context, account string, role domain.Role, sequence uint32) (*domain.Escrow, error)
}

// CreateEscrowRequest holds validated input for escrow creation.
type CreateEscrowRequest struct {
	Destination string
	AmountDrops int64
	Note        string
	// FinishAfter/CancelAfter are unix timestamps; nil FinishAfter means
	// releasable immediately, nil CancelAfter defaults to 24h out.
	FinishAfter *int64
	CancelAfter *int64
}

// BuyerService drives the paying side of the escrow lifecycle for the
// configured buyer wallet.
type BuyerService interface {
	CreateEscrow(ctx context.Context, req CreateEscrowRequest) (*domain.Escrow, error)
	ListPayments(ctx context.Context) (*domain.EscrowView, error)
	CancelEscrow(ctx context.Context, sequence uint32) (*domain.Escrow, error)
	WalletBalance(ctx context.Context) (*AccountInfo, error)
	History(ctx context.Context, pageToken string) (*HistoryPage, error)
}

// SellerService drives the receiving side: observing incoming escrows and
// releasing them once the buyer discloses the fulfillment out-of-band.
type SellerService interface {
	ListIncoming(ctx context.Context) (*domain.EscrowView, error)
	Release(ctx context.Context, sequence uint32, fulfillment string) (*domain.Escrow, error)
	// Cancel always fails with Forbidden before any submission: only the
	// payer may cancel.
	Cancel(ctx context.Context, sequence uint32) error
}

// AuthService defines operator authentication.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Username  string
}

// AuditService records fund-moving and auth actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
