package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"crux-escrow/internal/core/domain"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccount = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"

func newTestNote() *domain.EscrowNote {
	finishAfter := int64(1_700_000_000)
	return &domain.EscrowNote{
		Account:        testAccount,
		Sequence:       42,
		FulfillmentEnc: "deadbeef",
		Note:           "rent deposit",
		Destination:    "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe",
		AmountDrops:    5_000_000,
		Condition:      "A0258020AA",
		FinishAfter:    &finishAfter,
		Status:         domain.EscrowStatusPending,
		TxHash:         "ABCD",
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

func noteColumns() []string {
	return []string{"account", "sequence", "fulfillment_enc", "note", "destination", "amount_drops", "condition", "finish_after", "cancel_after", "status", "tx_hash", "created_at", "resolved_at"}
}

func noteRow(n *domain.EscrowNote) *pgxmock.Rows {
	return pgxmock.NewRows(noteColumns()).AddRow(
		n.Account, n.Sequence, n.FulfillmentEnc, n.Note, n.Destination,
		n.AmountDrops, n.Condition, n.FinishAfter, n.CancelAfter,
		n.Status, n.TxHash, n.CreatedAt, n.ResolvedAt,
	)
}

func TestBookkeepingRepo_Put(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookkeepingRepo(mock)
	n := newTestNote()

	mock.ExpectExec("INSERT INTO escrow_notes").
		WithArgs(n.Account, n.Sequence, n.FulfillmentEnc, n.Note, n.Destination,
			n.AmountDrops, n.Condition, n.FinishAfter, n.CancelAfter,
			n.Status, n.TxHash, n.CreatedAt, n.ResolvedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Put(context.Background(), n)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookkeepingRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookkeepingRepo(mock)
	n := newTestNote()

	mock.ExpectQuery("SELECT .+ FROM escrow_notes WHERE account").
		WithArgs(n.Account, n.Sequence).
		WillReturnRows(noteRow(n))

	result, err := repo.Get(context.Background(), n.Account, n.Sequence)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, n.FulfillmentEnc, result.FulfillmentEnc)
	assert.Equal(t, n.Note, result.Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookkeepingRepo_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookkeepingRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM escrow_notes WHERE account").
		WithArgs(testAccount, uint32(999)).
		WillReturnRows(pgxmock.NewRows(noteColumns()))

	result, err := repo.Get(context.Background(), testAccount, 999)
	require.NoError(t, err)
	assert.Nil(t, result, "absent row should be nil, nil")
}

func TestBookkeepingRepo_ListByAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookkeepingRepo(mock)
	n1 := newTestNote()
	n2 := newTestNote()
	n2.Sequence = 43
	n2.Note = "second"

	rows := noteRow(n1).AddRow(
		n2.Account, n2.Sequence, n2.FulfillmentEnc, n2.Note, n2.Destination,
		n2.AmountDrops, n2.Condition, n2.FinishAfter, n2.CancelAfter,
		n2.Status, n2.TxHash, n2.CreatedAt, n2.ResolvedAt,
	)
	mock.ExpectQuery("SELECT .+ FROM escrow_notes WHERE account").
		WithArgs(testAccount).
		WillReturnRows(rows)

	notes, err := repo.ListByAccount(context.Background(), testAccount)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[1].Note)
}

func TestBookkeepingRepo_MarkResolved(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookkeepingRepo(mock)
	resolvedAt := time.Now().UTC()

	mock.ExpectExec("UPDATE escrow_notes").
		WithArgs(domain.EscrowStatusCancelled, resolvedAt, testAccount, uint32(42), domain.EscrowStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.MarkResolved(context.Background(), testAccount, 42, domain.EscrowStatusCancelled, resolvedAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookkeepingRepo_PutError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBookkeepingRepo(mock)
	n := newTestNote()

	mock.ExpectExec("INSERT INTO escrow_notes").
		WithArgs(n.Account, n.Sequence, n.FulfillmentEnc, n.Note, n.Destination,
			n.AmountDrops, n.Condition, n.FinishAfter, n.CancelAfter,
			n.Status, n.TxHash, n.CreatedAt, n.ResolvedAt).
		WillReturnError(errors.New("connection reset"))

	err = repo.Put(context.Background(), n)
	assert.Error(t, err)
}
