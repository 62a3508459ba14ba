package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crux-escrow/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// BookkeepingRepo implements ports.BookkeepingRepository. One row per escrow
// created through this service, keyed by (account, sequence). Rows are
// upserted on create and status-updated on resolution; never deleted, so the
// note and fulfillment stay available for historical entries.
type BookkeepingRepo struct {
	pool Pool
}

// NewBookkeepingRepo creates a new BookkeepingRepo.
func NewBookkeepingRepo(pool Pool) *BookkeepingRepo {
	return &BookkeepingRepo{pool: pool}
}

// Put inserts or replaces the bookkeeping row for (account, sequence).
func (r *BookkeepingRepo) Put(ctx context.Context, n *domain.EscrowNote) error {
	query := `INSERT INTO escrow_notes (account, sequence, fulfillment_enc, note, destination, amount_drops, condition, finish_after, cancel_after, status, tx_hash, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (account, sequence) DO UPDATE
		SET fulfillment_enc = EXCLUDED.fulfillment_enc,
		    note = EXCLUDED.note,
		    status = EXCLUDED.status,
		    tx_hash = EXCLUDED.tx_hash,
		    resolved_at = EXCLUDED.resolved_at`

	_, err := r.pool.Exec(ctx, query,
		n.Account, n.Sequence, n.FulfillmentEnc, n.Note, n.Destination,
		n.AmountDrops, n.Condition, n.FinishAfter, n.CancelAfter,
		n.Status, n.TxHash, n.CreatedAt, n.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert escrow note: %w", err)
	}
	return nil
}

// Get fetches one bookkeeping row, or nil when absent.
func (r *BookkeepingRepo) Get(ctx context.Context, account string, sequence uint32) (*domain.EscrowNote, error) {
	query := `SELECT account, sequence, fulfillment_enc, note, destination, amount_drops, condition, finish_after, cancel_after, status, tx_hash, created_at, resolved_at
		FROM escrow_notes WHERE account = $1 AND sequence = $2`

	n := &domain.EscrowNote{}
	err := r.pool.QueryRow(ctx, query, account, sequence).Scan(
		&n.Account, &n.Sequence, &n.FulfillmentEnc, &n.Note, &n.Destination,
		&n.AmountDrops, &n.Condition, &n.FinishAfter, &n.CancelAfter,
		&n.Status, &n.TxHash, &n.CreatedAt, &n.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get escrow note: %w", err)
	}
	return n, nil
}

// ListByAccount fetches all bookkeeping rows for an account, newest first.
func (r *BookkeepingRepo) ListByAccount(ctx context.Context, account string) ([]domain.EscrowNote, error) {
	query := `SELECT account, sequence, fulfillment_enc, note, destination, amount_drops, condition, finish_after, cancel_after, status, tx_hash, created_at, resolved_at
		FROM escrow_notes WHERE account = $1 ORDER BY created_at DESC, sequence DESC`

	rows, err := r.pool.Query(ctx, query, account)
	if err != nil {
		return nil, fmt.Errorf("list escrow notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.EscrowNote
	for rows.Next() {
		var n domain.EscrowNote
		if err := rows.Scan(
			&n.Account, &n.Sequence, &n.FulfillmentEnc, &n.Note, &n.Destination,
			&n.AmountDrops, &n.Condition, &n.FinishAfter, &n.CancelAfter,
			&n.Status, &n.TxHash, &n.CreatedAt, &n.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan escrow note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate escrow notes: %w", err)
	}
	return notes, nil
}

// MarkResolved records the terminal status of an escrow. A no-op when the
// row is absent or already terminal.
func (r *BookkeepingRepo) MarkResolved(ctx context.Context, account string, sequence uint32, status domain.EscrowStatus, resolvedAt time.Time) error {
	query := `UPDATE escrow_notes
		SET status = $1, resolved_at = $2
		WHERE account = $3 AND sequence = $4 AND status = $5`

	_, err := r.pool.Exec(ctx, query, status, resolvedAt, account, sequence, domain.EscrowStatusPending)
	if err != nil {
		return fmt.Errorf("mark escrow note resolved: %w", err)
	}
	return nil
}
