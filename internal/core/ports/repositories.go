package ports

import (
	"context"
	"time"

	"crux-escrow/internal/core/domain"

	"github.com/google/uuid"
)

// BookkeepingRepository persists the payer-side note and fulfillment secret
// per escrow. Writes are atomic upserts by (account, sequence); rows are
// status-updated when an escrow resolves but never deleted, so note text
// stays visible for historical entries.
type BookkeepingRepository interface {
	Put(ctx context.Context, note *domain.EscrowNote) error
	Get(ctx context.Context, account string, sequence uint32) (*domain.EscrowNote, error)
	ListByAccount(ctx context.Context, account string) ([]domain.EscrowNote, error)
	MarkResolved(ctx context.Context, account string, sequence uint32, status domain.EscrowStatus, resolvedAt time.Time) error
}

// AccountRepository persists operator accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// SnapshotCache stores the last completed reconciled view per account and
// role. Best-effort: a cache failure never fails a refresh.
type SnapshotCache interface {
	Get(ctx context.Context, account string, role domain.Role) (*domain.EscrowView, error)
	Set(ctx context.Context, view *domain.EscrowView, ttl time.Duration) error
}
