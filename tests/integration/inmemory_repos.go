package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crux-escrow/internal/core/domain"
	"crux-escrow/internal/core/ports"
	"crux-escrow/internal/service"

	"github.com/google/uuid"
)

// --- In-Memory Bookkeeping Repo ---

type noteKey struct {
	account  string
	sequence uint32
}

type inMemoryNoteRepo struct {
	mu    sync.RWMutex
	notes map[noteKey]*domain.EscrowNote
}

func newInMemoryNoteRepo() *inMemoryNoteRepo {
	return &inMemoryNoteRepo{notes: make(map[noteKey]*domain.EscrowNote)}
}

func (r *inMemoryNoteRepo) Put(ctx context.Context, note *domain.EscrowNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *note
	r.notes[noteKey{note.Account, note.Sequence}] = &cp
	return nil
}

func (r *inMemoryNoteRepo) Get(ctx context.Context, account string, sequence uint32) (*domain.EscrowNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	note, ok := r.notes[noteKey{account, sequence}]
	if !ok {
		return nil, nil
	}
	cp := *note
	return &cp, nil
}

func (r *inMemoryNoteRepo) ListByAccount(ctx context.Context, account string) ([]domain.EscrowNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.EscrowNote
	for k, note := range r.notes {
		if k.account == account {
			out = append(out, *note)
		}
	}
	return out, nil
}

func (r *inMemoryNoteRepo) MarkResolved(ctx context.Context, account string, sequence uint32, status domain.EscrowStatus, resolvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	note, ok := r.notes[noteKey{account, sequence}]
	if !ok || note.Status != domain.EscrowStatusPending {
		return nil
	}
	note.Status = status
	at := resolvedAt
	note.ResolvedAt = &at
	return nil
}

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Username == a.Username {
			return fmt.Errorf("username already exists")
		}
	}
	r.accounts[a.ID] = a
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (r *inMemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *log)
	return nil
}

// --- Fake Ledger ---

type ledgerEntry struct {
	owner       string
	destination string
	amountDrops int64
	condition   string
	finishAfter *int64
	cancelAfter *int64
	createHash  string
	createdAt   time.Time
	resolved    bool
}

// fakeLedger is a single-node stand-in implementing ports.LedgerGateway.
// It applies the same rules a validator would: sequence assignment, escrow
// object lifetime, condition matching on finish, and time windows, so the
// services under test see realistic accept/reject behaviour end to end.
type fakeLedger struct {
	condSvc ports.ConditionService

	mu       sync.Mutex
	clock    time.Time
	balances map[string]int64
	nextSeq  map[string]uint32
	escrows  map[uint32]*ledgerEntry
	history  map[string][]domain.TxRecord
	hashes   int
}

func newFakeLedger(start time.Time) *fakeLedger {
	return &fakeLedger{
		condSvc:  service.NewPreimageConditionService(),
		clock:    start,
		balances: make(map[string]int64),
		nextSeq:  make(map[string]uint32),
		escrows:  make(map[uint32]*ledgerEntry),
		history:  make(map[string][]domain.TxRecord),
	}
}

func (l *fakeLedger) fund(account string, drops int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] = drops
	if _, ok := l.nextSeq[account]; !ok {
		l.nextSeq[account] = 1000
	}
}

func (l *fakeLedger) advance(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clock = l.clock.Add(d)
}

func (l *fakeLedger) Now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clock
}

func (l *fakeLedger) takeSeq(account string) uint32 {
	seq := l.nextSeq[account]
	if seq == 0 {
		seq = 1000
	}
	l.nextSeq[account] = seq + 1
	return seq
}

func (l *fakeLedger) nextHash() string {
	l.hashes++
	return fmt.Sprintf("FAKEHASH%08d", l.hashes)
}

func (l *fakeLedger) record(rec domain.TxRecord, accounts ...string) {
	seen := make(map[string]bool)
	for _, a := range accounts {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		// Prepend: history reads newest first.
		l.history[a] = append([]domain.TxRecord{rec}, l.history[a]...)
	}
}

func (l *fakeLedger) SubmitEscrowCreate(ctx context.Context, tx ports.EscrowCreateTx) (*ports.SubmitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seq := l.takeSeq(tx.Account)
	hash := l.nextHash()
	if l.balances[tx.Account] < tx.AmountDrops {
		return &ports.SubmitResult{ResultCode: "tecUNFUNDED", Sequence: seq, Hash: hash}, nil
	}
	l.balances[tx.Account] -= tx.AmountDrops

	l.escrows[seq] = &ledgerEntry{
		owner:       tx.Account,
		destination: tx.Destination,
		amountDrops: tx.AmountDrops,
		condition:   tx.Condition,
		finishAfter: tx.FinishAfter,
		cancelAfter: tx.CancelAfter,
		createHash:  hash,
		createdAt:   l.clock,
	}
	l.record(domain.TxRecord{
		Type:        domain.TxRecordEscrowCreate,
		Account:     tx.Account,
		Destination: tx.Destination,
		Sequence:    seq,
		AmountDrops: tx.AmountDrops,
		Condition:   tx.Condition,
		FinishAfter: tx.FinishAfter,
		CancelAfter: tx.CancelAfter,
		Hash:        hash,
		ResultCode:  "tesSUCCESS",
		ValidatedAt: l.clock,
	}, tx.Account, tx.Destination)

	return &ports.SubmitResult{ResultCode: "tesSUCCESS", Sequence: seq, Hash: hash}, nil
}

func (l *fakeLedger) SubmitEscrowFinish(ctx context.Context, tx ports.EscrowFinishTx) (*ports.SubmitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seq := l.takeSeq(tx.Account)
	hash := l.nextHash()
	entry, ok := l.escrows[tx.OfferSequence]
	if !ok || entry.resolved || entry.owner != tx.Owner {
		return &ports.SubmitResult{ResultCode: "tecNO_TARGET", Sequence: seq, Hash: hash}, nil
	}
	if entry.finishAfter != nil && l.clock.Unix() < *entry.finishAfter {
		return &ports.SubmitResult{ResultCode: "tecNO_PERMISSION", Sequence: seq, Hash: hash}, nil
	}
	if entry.condition != "" {
		derived, err := l.condSvc.ConditionFromFulfillment(tx.Fulfillment)
		if err != nil || derived != entry.condition {
			return &ports.SubmitResult{ResultCode: "tecCRYPTOCONDITION_ERROR", Sequence: seq, Hash: hash}, nil
		}
	}

	entry.resolved = true
	l.balances[entry.destination] += entry.amountDrops
	l.record(domain.TxRecord{
		Type:          domain.TxRecordEscrowFinish,
		Account:       tx.Account,
		Sequence:      seq,
		OfferSequence: tx.OfferSequence,
		Hash:          hash,
		ResultCode:    "tesSUCCESS",
		ValidatedAt:   l.clock,
	}, tx.Account, entry.owner, entry.destination)

	return &ports.SubmitResult{ResultCode: "tesSUCCESS", Sequence: seq, Hash: hash}, nil
}

func (l *fakeLedger) SubmitEscrowCancel(ctx context.Context, tx ports.EscrowCancelTx) (*ports.SubmitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seq := l.takeSeq(tx.Account)
	hash := l.nextHash()
	entry, ok := l.escrows[tx.OfferSequence]
	if !ok || entry.resolved || entry.owner != tx.Owner {
		return &ports.SubmitResult{ResultCode: "tecNO_TARGET", Sequence: seq, Hash: hash}, nil
	}
	if entry.cancelAfter != nil && l.clock.Unix() < *entry.cancelAfter {
		return &ports.SubmitResult{ResultCode: "tecNO_PERMISSION", Sequence: seq, Hash: hash}, nil
	}

	entry.resolved = true
	l.balances[entry.owner] += entry.amountDrops
	l.record(domain.TxRecord{
		Type:          domain.TxRecordEscrowCancel,
		Account:       tx.Account,
		Sequence:      seq,
		OfferSequence: tx.OfferSequence,
		Hash:          hash,
		ResultCode:    "tesSUCCESS",
		ValidatedAt:   l.clock,
	}, tx.Account, entry.owner, entry.destination)

	return &ports.SubmitResult{ResultCode: "tesSUCCESS", Sequence: seq, Hash: hash}, nil
}

func (l *fakeLedger) PendingEscrows(ctx context.Context, account string) ([]domain.Escrow, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []domain.Escrow
	for seq, entry := range l.escrows {
		if entry.resolved {
			continue
		}
		if entry.owner != account && entry.destination != account {
			continue
		}
		out = append(out, domain.Escrow{
			Sequence:    seq,
			TxHash:      entry.createHash,
			Payer:       entry.owner,
			Payee:       entry.destination,
			AmountDrops: entry.amountDrops,
			Condition:   entry.condition,
			FinishAfter: entry.finishAfter,
			CancelAfter: entry.cancelAfter,
			Status:      domain.EscrowStatusPending,
			CreatedAt:   entry.createdAt,
		})
	}
	return out, nil
}

func (l *fakeLedger) TransactionHistory(ctx context.Context, account string, pageToken string, limit int) (*ports.HistoryPage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := make([]domain.TxRecord, len(l.history[account]))
	copy(records, l.history[account])
	return &ports.HistoryPage{Records: records}, nil
}

func (l *fakeLedger) AccountInfo(ctx context.Context, account string) (*ports.AccountInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return &ports.AccountInfo{
		Address:      account,
		BalanceDrops: l.balances[account],
		Sequence:     l.nextSeq[account],
	}, nil
}

func (l *fakeLedger) ServerReserve(ctx context.Context) (*ports.ReserveInfo, error) {
	return &ports.ReserveInfo{BaseDrops: 1_000_000, IncrementDrops: 200_000}, nil
}
