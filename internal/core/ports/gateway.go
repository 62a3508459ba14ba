package ports

import (
	"context"
	"time"

	"crux-escrow/internal/core/domain"
)

// SubmitResult is the single normalized shape for a transaction submission
// outcome. The gateway adapter resolves the ledger SDK's optional/alternate
// field locations once at the boundary; nothing past this type is duck-typed.
type SubmitResult struct {
	ResultCode string
	Sequence   uint32
	Hash       string
}

// Success reports a definitive ledger accept.
func (r *SubmitResult) Success() bool {
	return r.ResultCode == "tesSUCCESS"
}

// EscrowCreateTx locks AmountDrops from Account toward Destination.
type EscrowCreateTx struct {
	Account     string
	Destination string
	AmountDrops int64
	// Condition is the hex commitment the payee must later satisfy.
	Condition   string
	FinishAfter *int64
	CancelAfter *int64
}

// EscrowFinishTx releases the escrow identified by (Owner, OfferSequence).
type EscrowFinishTx struct {
	Account       string
	Owner         string
	OfferSequence uint32
	Condition     string
	Fulfillment   string
}

// EscrowCancelTx returns the escrowed funds to the owner.
type EscrowCancelTx struct {
	Account       string
	Owner         string
	OfferSequence uint32
}

// AccountInfo is the validated-ledger state of an account.
type AccountInfo struct {
	Address      string
	BalanceDrops int64
	Sequence     uint32
}

// ReserveInfo is the ledger's current reserve requirement, in drops.
// An account must keep Base plus Increment per open ledger object.
type ReserveInfo struct {
	BaseDrops      int64
	IncrementDrops int64
}

// HistoryPage is one page of reverse-chronological transaction history.
type HistoryPage struct {
	Records []domain.TxRecord
	// NextPageToken resumes pagination; empty when exhausted.
	NextPageToken string
}

// LedgerGateway is the injected capability to reach the ledger. Submissions
// block until a definitive accept/reject; a bounded wait that elapses first
// surfaces as a Timeout taxonomy error, which callers must not treat as a
// definite failure.
type LedgerGateway interface {
	SubmitEscrowCreate(ctx context.Context, tx EscrowCreateTx) (*SubmitResult, error)
	SubmitEscrowFinish(ctx context.Context, tx EscrowFinishTx) (*SubmitResult, error)
	SubmitEscrowCancel(ctx context.Context, tx EscrowCancelTx) (*SubmitResult, error)

	// PendingEscrows returns all currently-open escrow objects where the
	// account participates as payer or payee.
	PendingEscrows(ctx context.Context, account string) ([]domain.Escrow, error)
	// TransactionHistory pages through the account's validated transactions,
	// most recent first. pageToken resumes a previous page; empty starts over.
	TransactionHistory(ctx context.Context, account string, pageToken string, limit int) (*HistoryPage, error)

	AccountInfo(ctx context.Context, account string) (*AccountInfo, error)
	ServerReserve(ctx context.Context) (*ReserveInfo, error)

	// Now is the gateway's wall clock. Advisory only: the ledger re-validates
	// time windows at submission regardless of local clocks.
	Now() time.Time
}
