package handler

import (
	"strconv"
	"time"

	"crux-escrow/internal/adapter/http/dto"
	"crux-escrow/internal/core/domain"
	"crux-escrow/internal/core/ports"
	"crux-escrow/pkg/apperror"
	"crux-escrow/pkg/response"

	"github.com/gin-gonic/gin"
)

// EscrowHandler handles the payer-side escrow endpoints.
type EscrowHandler struct {
	buyerSvc ports.BuyerService
}

// NewEscrowHandler creates a new EscrowHandler.
func NewEscrowHandler(buyerSvc ports.BuyerService) *EscrowHandler {
	return &EscrowHandler{buyerSvc: buyerSvc}
}

// Create handles POST /api/v1/escrows.
func (h *EscrowHandler) Create(c *gin.Context) {
	var req dto.CreateEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	escrow, err := h.buyerSvc.CreateEscrow(c.Request.Context(), ports.CreateEscrowRequest{
		Destination: req.Destination,
		AmountDrops: req.AmountDrops,
		Note:        req.Note,
		FinishAfter: req.FinishAfter,
		CancelAfter: req.CancelAfter,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toEscrowResponse(escrow))
}

// List handles GET /api/v1/escrows.
func (h *EscrowHandler) List(c *gin.Context) {
	view, err := h.buyerSvc.ListPayments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toEscrowListResponse(view))
}

// Cancel handles POST /api/v1/escrows/:sequence/cancel.
func (h *EscrowHandler) Cancel(c *gin.Context) {
	sequence, ok := parseSequence(c)
	if !ok {
		return
	}

	escrow, err := h.buyerSvc.CancelEscrow(c.Request.Context(), sequence)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toEscrowResponse(escrow))
}

// Balance handles GET /api/v1/wallet/balance.
func (h *EscrowHandler) Balance(c *gin.Context) {
	info, err := h.buyerSvc.WalletBalance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		Address:      info.Address,
		BalanceDrops: info.BalanceDrops,
		Sequence:     info.Sequence,
	})
}

// History handles GET /api/v1/history.
func (h *EscrowHandler) History(c *gin.Context) {
	page, err := h.buyerSvc.History(c.Request.Context(), c.Query("page_token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.HistoryResponse{
		Records:       make([]dto.TxRecordResponse, 0, len(page.Records)),
		NextPageToken: page.NextPageToken,
	}
	for _, rec := range page.Records {
		resp.Records = append(resp.Records, dto.TxRecordResponse{
			Type:          string(rec.Type),
			Account:       rec.Account,
			Destination:   rec.Destination,
			Sequence:      rec.Sequence,
			OfferSequence: rec.OfferSequence,
			AmountDrops:   rec.AmountDrops,
			Hash:          rec.Hash,
			ResultCode:    rec.ResultCode,
			ValidatedAt:   rec.ValidatedAt.Format(time.RFC3339),
		})
	}

	response.OK(c, resp)
}

// parseSequence reads the :sequence path parameter. On failure it writes a
// validation error response and returns ok=false.
func parseSequence(c *gin.Context) (uint32, bool) {
	seq, err := strconv.ParseUint(c.Param("sequence"), 10, 32)
	if err != nil {
		response.Error(c, apperror.Validation("sequence must be an unsigned 32-bit integer"))
		return 0, false
	}
	return uint32(seq), true
}

// toEscrowResponse converts domain.Escrow to DTO.
func toEscrowResponse(e *domain.Escrow) dto.EscrowResponse {
	resp := dto.EscrowResponse{
		Sequence:    e.Sequence,
		TxHash:      e.TxHash,
		Payer:       e.Payer,
		Payee:       e.Payee,
		AmountDrops: e.AmountDrops,
		Condition:   e.Condition,
		FinishAfter: e.FinishAfter,
		CancelAfter: e.CancelAfter,
		Status:      string(e.Status),
		Note:        e.Note,
		Fulfillment: e.Fulfillment,
		LocalOnly:   e.LocalOnly,
	}
	if !e.CreatedAt.IsZero() {
		resp.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	if e.ResolvedAt != nil {
		s := e.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &s
	}
	return resp
}

// toEscrowListResponse converts a reconciled view to DTO.
func toEscrowListResponse(view *domain.EscrowView) dto.EscrowListResponse {
	resp := dto.EscrowListResponse{
		Account:     view.Account,
		Role:        string(view.Role),
		Escrows:     make([]dto.EscrowResponse, 0, len(view.Escrows)),
		Partial:     view.Partial,
		RefreshedAt: view.RefreshedAt.Format(time.RFC3339),
	}
	for i := range view.Escrows {
		resp.Escrows = append(resp.Escrows, toEscrowResponse(&view.Escrows[i]))
	}
	return resp
}
