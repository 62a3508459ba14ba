package service

import (
	"context"
	"time"

	"crux-escrow/internal/core/domain"
	"crux-escrow/internal/core/ports"
	"crux-escrow/pkg/apperror"

	"github.com/rs/zerolog"
)

// SellerServiceImpl implements ports.SellerService for one configured seller
// wallet. It observes incoming escrows and releases them with a fulfillment
// the buyer disclosed out-of-band. The fulfillment is forwarded as-is; the
// ledger alone decides whether it satisfies the commitment.
type SellerServiceImpl struct {
	address    string
	gw         ports.LedgerGateway
	reconciler ports.Reconciler
	gate       *EligibilityGate
	log        zerolog.Logger
}

// NewSellerService creates a new SellerServiceImpl.
func NewSellerService(
	address string,
	gw ports.LedgerGateway,
	reconciler ports.Reconciler,
	gate *EligibilityGate,
	log zerolog.Logger,
) *SellerServiceImpl {
	return &SellerServiceImpl{
		address:    address,
		gw:         gw,
		reconciler: reconciler,
		gate:       gate,
		log:        log,
	}
}

// ListIncoming returns the reconciled view of escrows destined to this wallet.
// For each pending escrow whose release window has not opened yet, a timer is
// armed to refresh the view at the boundary, so the snapshot served right
// after the window opens is already warm.
func (s *SellerServiceImpl) ListIncoming(ctx context.Context) (*domain.EscrowView, error) {
	view, err := s.reconciler.View(ctx, s.address, domain.RolePayee)
	if err != nil {
		return view, err
	}

	for i := range view.Escrows {
		e := view.Escrows[i]
		if e.IsTerminal() {
			s.gate.Forget(&e)
			continue
		}
		if e.Status != domain.EscrowStatusPending || s.gate.ReleaseState(&e) == GateEligible {
			continue
		}
		s.gate.ScheduleRelease(&e, func() {
			refreshCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := s.reconciler.View(refreshCtx, s.address, domain.RolePayee); err != nil {
				s.log.Warn().Err(err).Uint32("sequence", e.Sequence).Msg("view refresh at release boundary failed")
			}
		})
	}

	return view, nil
}

// Release submits an EscrowFinish for an incoming escrow. The local check
// covers existence, terminal state and the FinishAfter window; the supplied
// fulfillment is never validated locally, so a wrong secret comes back as the
// ledger's own rejection code.
func (s *SellerServiceImpl) Release(ctx context.Context, sequence uint32, fulfillment string) (*domain.Escrow, error) {
	escrow, err := s.reconciler.Find(ctx, s.address, domain.RolePayee, sequence)
	if err != nil {
		return nil, err
	}
	if escrow == nil {
		return nil, apperror.ErrEscrowNotFound(sequence)
	}
	if escrow.IsTerminal() {
		return nil, apperror.ErrAlreadyResolved(sequence)
	}
	if s.gate.ReleaseState(escrow) == GateBlocked {
		return nil, apperror.ErrNotYetEligible("release", *escrow.FinishAfter)
	}

	result, err := s.gw.SubmitEscrowFinish(ctx, ports.EscrowFinishTx{
		Account:       s.address,
		Owner:         escrow.Payer,
		OfferSequence: sequence,
		Condition:     escrow.Condition,
		Fulfillment:   fulfillment,
	})
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, apperror.ErrSubmissionRejected(result.ResultCode)
	}

	now := s.gw.Now()
	escrow.Status = domain.EscrowStatusReleased
	escrow.ResolvedAt = &now
	s.gate.Forget(escrow)

	s.log.Info().
		Uint32("sequence", sequence).
		Str("owner", escrow.Payer).
		Str("hash", result.Hash).
		Msg("escrow released")

	return escrow, nil
}

// Cancel is rejected outright. Returning the funds is the payer's move; a
// payee-side attempt never reaches the ledger.
func (s *SellerServiceImpl) Cancel(ctx context.Context, sequence uint32) error {
	s.log.Warn().Uint32("sequence", sequence).Msg("payee cancel attempt rejected")
	return apperror.ErrForbidden("only the original payer may cancel an escrow")
}
