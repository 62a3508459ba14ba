package service

import (
	"context"
	"fmt"
	"time"

	"crux-escrow/internal/core/domain"
	"crux-escrow/internal/core/ports"
	"crux-escrow/pkg/apperror"

	"github.com/rs/zerolog"
)

const defaultCancelAfterWindow = 24 * time.Hour

// BuyerServiceImpl implements ports.BuyerService for one configured buyer
// wallet: it creates conditional payments, keeps the fulfillment secret in
// local bookkeeping, and exposes the reconciled payer-side view. Disclosure
// of the secret to the payee stays out-of-band by design.
type BuyerServiceImpl struct {
	address    string
	gw         ports.LedgerGateway
	condSvc    ports.ConditionService
	encSvc     ports.EncryptionService
	notes      ports.BookkeepingRepository
	reconciler ports.Reconciler
	gate       *EligibilityGate
	feeDrops   int64
	log        zerolog.Logger
}

// NewBuyerService creates a new BuyerServiceImpl.
func NewBuyerService(
	address string,
	gw ports.LedgerGateway,
	condSvc ports.ConditionService,
	encSvc ports.EncryptionService,
	notes ports.BookkeepingRepository,
	reconciler ports.Reconciler,
	gate *EligibilityGate,
	feeDrops int64,
	log zerolog.Logger,
) *BuyerServiceImpl {
	if feeDrops <= 0 {
		feeDrops = 12
	}
	return &BuyerServiceImpl{
		address:    address,
		gw:         gw,
		condSvc:    condSvc,
		encSvc:     encSvc,
		notes:      notes,
		reconciler: reconciler,
		gate:       gate,
		feeDrops:   feeDrops,
		log:        log,
	}
}

// CreateEscrow validates input, verifies the balance covers the amount plus
// the reserve for one more open escrow, then submits an EscrowCreate with a
// fresh commitment. Input and balance failures happen before any submission;
// a ledger rejection is surfaced verbatim and never retried automatically.
func (s *BuyerServiceImpl) CreateEscrow(ctx context.Context, req ports.CreateEscrowRequest) (*domain.Escrow, error) {
	if !domain.IsValidAddress(req.Destination) {
		return nil, apperror.ErrInvalidDestination(req.Destination)
	}
	if req.AmountDrops <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	if err := s.checkBalance(ctx, req.AmountDrops); err != nil {
		return nil, err
	}

	condition, fulfillment, err := s.condSvc.Generate()
	if err != nil {
		return nil, err
	}

	cancelAfter := req.CancelAfter
	if cancelAfter == nil {
		t := s.gw.Now().Add(defaultCancelAfterWindow).Unix()
		cancelAfter = &t
	}

	result, err := s.gw.SubmitEscrowCreate(ctx, ports.EscrowCreateTx{
		Account:     s.address,
		Destination: req.Destination,
		AmountDrops: req.AmountDrops,
		Condition:   condition,
		FinishAfter: req.FinishAfter,
		CancelAfter: cancelAfter,
	})
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, apperror.ErrSubmissionRejected(result.ResultCode)
	}

	now := s.gw.Now()
	escrow := &domain.Escrow{
		Sequence:    result.Sequence,
		TxHash:      result.Hash,
		Payer:       s.address,
		Payee:       req.Destination,
		AmountDrops: req.AmountDrops,
		Condition:   condition,
		FinishAfter: req.FinishAfter,
		CancelAfter: cancelAfter,
		Status:      domain.EscrowStatusPending,
		CreatedAt:   now,
		Note:        req.Note,
		Fulfillment: fulfillment,
	}

	if err := s.persistBookkeeping(ctx, escrow, fulfillment); err != nil {
		// The escrow exists on the ledger; losing the secret is the worst
		// failure this flow has. Surface it loudly instead of swallowing.
		s.log.Error().Err(err).Uint32("sequence", escrow.Sequence).Msg("escrow created but bookkeeping write failed")
		return escrow, err
	}

	s.log.Info().
		Uint32("sequence", escrow.Sequence).
		Str("destination", req.Destination).
		Int64("amount_drops", req.AmountDrops).
		Str("hash", result.Hash).
		Msg("escrow created")

	return escrow, nil
}

// ListPayments returns the reconciled view of escrows this wallet created.
func (s *BuyerServiceImpl) ListPayments(ctx context.Context) (*domain.EscrowView, error) {
	return s.reconciler.View(ctx, s.address, domain.RolePayer)
}

// CancelEscrow submits an EscrowCancel for an escrow this wallet created.
// Only the payer may cancel, the escrow must still be pending, and the
// attempt is gated locally against CancelAfter to avoid a doomed submission.
func (s *BuyerServiceImpl) CancelEscrow(ctx context.Context, sequence uint32) (*domain.Escrow, error) {
	escrow, err := s.reconciler.Find(ctx, s.address, domain.RolePayer, sequence)
	if err != nil {
		return nil, err
	}
	if escrow == nil {
		return nil, apperror.ErrEscrowNotFound(sequence)
	}
	if escrow.Payer != s.address {
		return nil, apperror.ErrForbidden("only the original payer may cancel an escrow")
	}
	if escrow.IsTerminal() {
		return nil, apperror.ErrAlreadyResolved(sequence)
	}
	if s.gate.CancelState(escrow) == GateBlocked {
		return nil, apperror.ErrNotYetEligible("cancel", *escrow.CancelAfter)
	}

	result, err := s.gw.SubmitEscrowCancel(ctx, ports.EscrowCancelTx{
		Account:       s.address,
		Owner:         s.address,
		OfferSequence: sequence,
	})
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, apperror.ErrSubmissionRejected(result.ResultCode)
	}

	now := s.gw.Now()
	if err := s.notes.MarkResolved(ctx, s.address, sequence, domain.EscrowStatusCancelled, now); err != nil {
		s.log.Warn().Err(err).Uint32("sequence", sequence).Msg("bookkeeping status update failed after cancel")
	}

	escrow.Status = domain.EscrowStatusCancelled
	escrow.ResolvedAt = &now
	s.gate.Forget(escrow)

	s.log.Info().Uint32("sequence", sequence).Str("hash", result.Hash).Msg("escrow cancelled")
	return escrow, nil
}

// WalletBalance returns the buyer wallet's validated-ledger account state.
func (s *BuyerServiceImpl) WalletBalance(ctx context.Context) (*ports.AccountInfo, error) {
	return s.gw.AccountInfo(ctx, s.address)
}

// History returns one page of the buyer wallet's transaction log.
func (s *BuyerServiceImpl) History(ctx context.Context, pageToken string) (*ports.HistoryPage, error) {
	return s.gw.TransactionHistory(ctx, s.address, pageToken, 0)
}

// checkBalance fails fast when the spendable balance cannot cover the new
// escrow. The reserve requirement grows by one increment per open escrow, so
// the check uses base + increment x (open count + 1) + amount + fee.
func (s *BuyerServiceImpl) checkBalance(ctx context.Context, amountDrops int64) error {
	info, err := s.gw.AccountInfo(ctx, s.address)
	if err != nil {
		return err
	}
	reserve, err := s.gw.ServerReserve(ctx)
	if err != nil {
		return err
	}
	open, err := s.gw.PendingEscrows(ctx, s.address)
	if err != nil {
		return err
	}

	openCount := int64(0)
	for i := range open {
		if open[i].Payer == s.address {
			openCount++
		}
	}

	required := reserve.BaseDrops + reserve.IncrementDrops*(openCount+1) + amountDrops + s.feeDrops
	if info.BalanceDrops < required {
		return apperror.ErrInsufficientBalance(required, info.BalanceDrops)
	}
	return nil
}

func (s *BuyerServiceImpl) persistBookkeeping(ctx context.Context, e *domain.Escrow, fulfillment string) error {
	fulfillmentEnc, err := s.encSvc.Encrypt(fulfillment)
	if err != nil {
		return apperror.ErrEncryptionFailure(fmt.Errorf("encrypt fulfillment: %w", err))
	}
	note := &domain.EscrowNote{
		Account:        e.Payer,
		Sequence:       e.Sequence,
		FulfillmentEnc: fulfillmentEnc,
		Note:           e.Note,
		Destination:    e.Payee,
		AmountDrops:    e.AmountDrops,
		Condition:      e.Condition,
		FinishAfter:    e.FinishAfter,
		CancelAfter:    e.CancelAfter,
		Status:         domain.EscrowStatusPending,
		TxHash:         e.TxHash,
		CreatedAt:      e.CreatedAt,
	}
	if err := s.notes.Put(ctx, note); err != nil {
		return apperror.InternalError(fmt.Errorf("persist bookkeeping: %w", err))
	}
	return nil
}
