package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"crux-escrow/internal/core/domain"
	"crux-escrow/internal/core/ports"
	"crux-escrow/pkg/apperror"

	"github.com/rs/zerolog"
)

const snapshotTTL = 10 * time.Minute

// ReconcileService implements ports.Reconciler. It merges the ledger's
// authoritative pending-object list with a bounded window of transaction
// history to classify every escrow an account has participated in, layering
// local bookkeeping (note, fulfillment) on top by sequence.
//
// Overlapping refreshes each build an independent snapshot; the retained
// view is replaced under a lock only at completion time, so the most
// recently completed snapshot wins regardless of start order.
type ReconcileService struct {
	gw           ports.LedgerGateway
	notes        ports.BookkeepingRepository
	encSvc       ports.EncryptionService
	cache        ports.SnapshotCache
	historyLimit int
	log          zerolog.Logger

	mu       sync.Mutex
	retained map[string]*domain.EscrowView
}

// NewReconcileService creates a new ReconcileService. notes, encSvc and cache
// may be nil for payee-side use, where no local bookkeeping exists.
func NewReconcileService(
	gw ports.LedgerGateway,
	notes ports.BookkeepingRepository,
	encSvc ports.EncryptionService,
	cache ports.SnapshotCache,
	historyLimit int,
	log zerolog.Logger,
) *ReconcileService {
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &ReconcileService{
		gw:           gw,
		notes:        notes,
		encSvc:       encSvc,
		cache:        cache,
		historyLimit: historyLimit,
		log:          log,
		retained:     make(map[string]*domain.EscrowView),
	}
}

// View produces a reconciled snapshot for the account in the given role.
// A history failure degrades to a Partial pending-only view. A pending-query
// failure is fatal for this refresh: the previous completed view is returned
// alongside the error, never discarded.
func (s *ReconcileService) View(ctx context.Context, account string, role domain.Role) (*domain.EscrowView, error) {
	pending, err := s.gw.PendingEscrows(ctx, account)
	if err != nil {
		s.log.Error().Err(err).Str("account", account).Msg("pending-object query failed, retaining previous view")
		return s.lastView(ctx, account, role), apperror.ErrLedgerUnavailable(fmt.Errorf("pending escrows: %w", err))
	}

	records, partial := s.fetchHistory(ctx, account)

	view := s.classify(ctx, account, role, pending, records, partial)

	key := viewKey(account, role)
	s.mu.Lock()
	s.retained[key] = view
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Set(ctx, view, snapshotTTL); err != nil {
			s.log.Warn().Err(err).Str("account", account).Msg("snapshot cache write failed")
		}
	}
	return view, nil
}

// Find returns the reconciled entry for one sequence, or nil when absent.
func (s *ReconcileService) Find(ctx context.Context, account string, role domain.Role, sequence uint32) (*domain.Escrow, error) {
	view, err := s.View(ctx, account, role)
	if err != nil {
		return nil, err
	}
	for i := range view.Escrows {
		if view.Escrows[i].Sequence == sequence {
			return &view.Escrows[i], nil
		}
	}
	return nil, nil
}

// fetchHistory pages through history up to the configured window. Any fetch
// error degrades the refresh to pending-only data rather than aborting it.
func (s *ReconcileService) fetchHistory(ctx context.Context, account string) ([]domain.TxRecord, bool) {
	var records []domain.TxRecord
	pageToken := ""
	for len(records) < s.historyLimit {
		page, err := s.gw.TransactionHistory(ctx, account, pageToken, s.historyLimit-len(records))
		if err != nil {
			s.log.Warn().Err(err).Str("account", account).Msg("history fetch failed, degrading to pending-only view")
			return nil, true
		}
		records = append(records, page.Records...)
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	return records, false
}

func (s *ReconcileService) classify(
	ctx context.Context,
	account string,
	role domain.Role,
	pending []domain.Escrow,
	records []domain.TxRecord,
	partial bool,
) *domain.EscrowView {
	// Resolution index: every Finish/Cancel keyed by the sequence of the
	// Create it resolves.
	resolved := make(map[uint32]domain.TxRecord)
	for _, rec := range records {
		if rec.Type == domain.TxRecordEscrowFinish || rec.Type == domain.TxRecordEscrowCancel {
			resolved[rec.OfferSequence] = rec
		}
	}

	entries := make(map[uint32]*domain.Escrow)

	// Create records in the history window, scoped to the role.
	for _, rec := range records {
		if rec.Type != domain.TxRecordEscrowCreate {
			continue
		}
		if (role == domain.RolePayer && rec.Account != account) ||
			(role == domain.RolePayee && rec.Destination != account) {
			continue
		}
		e := &domain.Escrow{
			Sequence:    rec.Sequence,
			TxHash:      rec.Hash,
			Payer:       rec.Account,
			Payee:       rec.Destination,
			AmountDrops: rec.AmountDrops,
			Condition:   rec.Condition,
			FinishAfter: rec.FinishAfter,
			CancelAfter: rec.CancelAfter,
			Status:      domain.EscrowStatusPending,
			CreatedAt:   rec.ValidatedAt,
		}
		if res, ok := resolved[rec.Sequence]; ok {
			if res.Type == domain.TxRecordEscrowFinish {
				e.Status = domain.EscrowStatusReleased
			} else {
				e.Status = domain.EscrowStatusCancelled
			}
			at := res.ValidatedAt
			e.ResolvedAt = &at
		}
		entries[rec.Sequence] = e
	}

	// Pending objects. Entries older than the history window appear here
	// with no Create record; classify them Pending from object fields alone.
	// A resolved historical entry beats a stale pending snapshot of the same
	// sequence (terminal wins).
	for i := range pending {
		obj := &pending[i]
		if (role == domain.RolePayer && obj.Payer != account) ||
			(role == domain.RolePayee && obj.Payee != account) {
			continue
		}
		if existing, ok := entries[obj.Sequence]; ok {
			if existing.IsTerminal() {
				continue
			}
			if existing.TxHash == "" {
				existing.TxHash = obj.TxHash
			}
			continue
		}
		e := *obj
		e.Status = domain.EscrowStatusPending
		entries[obj.Sequence] = &e
	}

	// Layer local bookkeeping on top: note text and fulfillment for entries
	// we created, plus placeholder rows for escrows submitted but not yet
	// visible in the pending snapshot.
	if role == domain.RolePayer && s.notes != nil {
		s.mergeBookkeeping(ctx, account, entries)
	}

	escrows := make([]domain.Escrow, 0, len(entries))
	for _, e := range entries {
		escrows = append(escrows, *e)
	}
	sort.Slice(escrows, func(i, j int) bool {
		if escrows[i].CreatedAt.Equal(escrows[j].CreatedAt) {
			return escrows[i].Sequence > escrows[j].Sequence
		}
		return escrows[i].CreatedAt.After(escrows[j].CreatedAt)
	})

	return &domain.EscrowView{
		Account:     account,
		Role:        role,
		Escrows:     escrows,
		Partial:     partial,
		RefreshedAt: s.gw.Now(),
	}
}

func (s *ReconcileService) mergeBookkeeping(ctx context.Context, account string, entries map[uint32]*domain.Escrow) {
	notes, err := s.notes.ListByAccount(ctx, account)
	if err != nil {
		s.log.Warn().Err(err).Str("account", account).Msg("bookkeeping lookup failed, view stays ledger-only")
		return
	}
	for i := range notes {
		note := &notes[i]
		e, ok := entries[note.Sequence]
		if !ok {
			// Submitted but not yet reflected on the ledger: retain as a
			// placeholder so there is no visible gap between submission and
			// the next poll.
			e = &domain.Escrow{
				Sequence:    note.Sequence,
				TxHash:      note.TxHash,
				Payer:       account,
				Payee:       note.Destination,
				AmountDrops: note.AmountDrops,
				Condition:   note.Condition,
				FinishAfter: note.FinishAfter,
				CancelAfter: note.CancelAfter,
				Status:      note.Status,
				CreatedAt:   note.CreatedAt,
				ResolvedAt:  note.ResolvedAt,
				LocalOnly:   true,
			}
			entries[note.Sequence] = e
		}
		e.Note = note.Note
		if e.CreatedAt.IsZero() {
			e.CreatedAt = note.CreatedAt
		}
		if note.FulfillmentEnc != "" && s.encSvc != nil {
			fulfillment, err := s.encSvc.Decrypt(note.FulfillmentEnc)
			if err != nil {
				s.log.Error().Err(err).Uint32("sequence", note.Sequence).Msg("fulfillment decrypt failed")
			} else {
				e.Fulfillment = fulfillment
			}
		}
	}
}

// lastView returns the retained in-memory view, falling back to the snapshot
// cache. May be nil when no refresh has ever completed.
func (s *ReconcileService) lastView(ctx context.Context, account string, role domain.Role) *domain.EscrowView {
	s.mu.Lock()
	view := s.retained[viewKey(account, role)]
	s.mu.Unlock()
	if view != nil {
		return view
	}
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, account, role)
	if err != nil {
		s.log.Warn().Err(err).Str("account", account).Msg("snapshot cache read failed")
		return nil
	}
	return cached
}

func viewKey(account string, role domain.Role) string {
	return account + "|" + string(role)
}
