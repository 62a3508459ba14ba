package service

import (
	"context"
	"io"
	"testing"
	"time"

	"crux-escrow/internal/core/domain"
	"crux-escrow/internal/core/ports"
	"crux-escrow/internal/core/ports/mocks"
	"crux-escrow/pkg/apperror"
	"crux-escrow/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type sellerFixture struct {
	gw         *mocks.MockLedgerGateway
	reconciler *mocks.MockReconciler
	svc        *SellerServiceImpl
}

func newSellerFixture(t *testing.T) *sellerFixture {
	ctrl := gomock.NewController(t)
	f := &sellerFixture{
		gw:         mocks.NewMockLedgerGateway(ctrl),
		reconciler: mocks.NewMockReconciler(ctrl),
	}
	f.gw.EXPECT().Now().Return(time.Unix(10_000, 0)).AnyTimes()
	gate := NewEligibilityGate(func() time.Time { return time.Unix(10_000, 0) })
	f.svc = NewSellerService(testPayee, f.gw, f.reconciler, gate, logger.NewWithWriter("error", io.Discard))
	return f
}

func pendingIncoming(seq uint32) *domain.Escrow {
	return &domain.Escrow{
		Sequence:  seq,
		Payer:     testPayer,
		Payee:     testPayee,
		Condition: testCondition,
		Status:    domain.EscrowStatusPending,
	}
}

func TestSeller_Release_Success(t *testing.T) {
	f := newSellerFixture(t)

	f.reconciler.EXPECT().Find(gomock.Any(), testPayee, domain.RolePayee, uint32(40)).
		Return(pendingIncoming(40), nil)

	var submitted ports.EscrowFinishTx
	f.gw.EXPECT().SubmitEscrowFinish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx ports.EscrowFinishTx) (*ports.SubmitResult, error) {
			submitted = tx
			return &ports.SubmitResult{ResultCode: "tesSUCCESS", Hash: "EEEE"}, nil
		})

	escrow, err := f.svc.Release(context.Background(), 40, testFulfillment)
	require.NoError(t, err)

	assert.Equal(t, domain.EscrowStatusReleased, escrow.Status)
	require.NotNil(t, escrow.ResolvedAt)
	// Finish references the creating account as owner and carries the stored
	// condition plus the caller-supplied fulfillment untouched.
	assert.Equal(t, testPayee, submitted.Account)
	assert.Equal(t, testPayer, submitted.Owner)
	assert.EqualValues(t, 40, submitted.OfferSequence)
	assert.Equal(t, testCondition, submitted.Condition)
	assert.Equal(t, testFulfillment, submitted.Fulfillment)
}

func TestSeller_Release_NotFound(t *testing.T) {
	f := newSellerFixture(t)

	f.reconciler.EXPECT().Find(gomock.Any(), testPayee, domain.RolePayee, uint32(99)).Return(nil, nil)

	_, err := f.svc.Release(context.Background(), 99, testFulfillment)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ESC_004", appErr.Code)
}

func TestSeller_Release_AlreadyResolved(t *testing.T) {
	f := newSellerFixture(t)

	e := pendingIncoming(40)
	e.Status = domain.EscrowStatusReleased
	f.reconciler.EXPECT().Find(gomock.Any(), testPayee, domain.RolePayee, uint32(40)).Return(e, nil)

	_, err := f.svc.Release(context.Background(), 40, testFulfillment)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ESC_003", appErr.Code)
}

func TestSeller_Release_BlockedBeforeFinishAfter(t *testing.T) {
	f := newSellerFixture(t)

	finishAfter := int64(50_000) // future relative to the fixture clock
	e := pendingIncoming(40)
	e.FinishAfter = &finishAfter
	f.reconciler.EXPECT().Find(gomock.Any(), testPayee, domain.RolePayee, uint32(40)).Return(e, nil)

	// No submit expectation: the gate stops a doomed transaction locally.
	_, err := f.svc.Release(context.Background(), 40, testFulfillment)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ESC_005", appErr.Code)
}

func TestSeller_Release_EligibleAtExactBoundary(t *testing.T) {
	f := newSellerFixture(t)

	finishAfter := int64(10_000) // exactly the fixture clock
	e := pendingIncoming(40)
	e.FinishAfter = &finishAfter
	f.reconciler.EXPECT().Find(gomock.Any(), testPayee, domain.RolePayee, uint32(40)).Return(e, nil)
	f.gw.EXPECT().SubmitEscrowFinish(gomock.Any(), gomock.Any()).
		Return(&ports.SubmitResult{ResultCode: "tesSUCCESS"}, nil)

	_, err := f.svc.Release(context.Background(), 40, testFulfillment)
	require.NoError(t, err)
}

func TestSeller_Release_WrongSecretComesBackAsLedgerRejection(t *testing.T) {
	f := newSellerFixture(t)

	f.reconciler.EXPECT().Find(gomock.Any(), testPayee, domain.RolePayee, uint32(40)).
		Return(pendingIncoming(40), nil)
	// The fulfillment is not checked locally; a mismatch surfaces only as the
	// ledger's own verdict, verbatim.
	f.gw.EXPECT().SubmitEscrowFinish(gomock.Any(), gomock.Any()).
		Return(&ports.SubmitResult{ResultCode: "tecCRYPTOCONDITION_ERROR"}, nil)

	_, err := f.svc.Release(context.Background(), 40, "A0228020"+"00")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "LGR_001", appErr.Code)
	assert.Contains(t, appErr.Message, "tecCRYPTOCONDITION_ERROR")
}

func TestSeller_Cancel_AlwaysForbiddenBeforeAnySubmission(t *testing.T) {
	f := newSellerFixture(t)

	// Neither the reconciler nor the gateway may be touched: the rejection is
	// purely local.
	err := f.svc.Cancel(context.Background(), 40)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ESC_002", appErr.Code)
}

func TestSeller_ListIncoming_DelegatesToReconciler(t *testing.T) {
	f := newSellerFixture(t)

	want := &domain.EscrowView{Account: testPayee, Role: domain.RolePayee}
	f.reconciler.EXPECT().View(gomock.Any(), testPayee, domain.RolePayee).Return(want, nil)

	view, err := f.svc.ListIncoming(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, view)
}
