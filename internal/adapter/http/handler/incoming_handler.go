package handler

import (
	"crux-escrow/internal/adapter/http/dto"
	"crux-escrow/internal/core/ports"
	"crux-escrow/pkg/apperror"
	"crux-escrow/pkg/response"

	"github.com/gin-gonic/gin"
)

// IncomingHandler handles the payee-side escrow endpoints.
type IncomingHandler struct {
	sellerSvc ports.SellerService
}

// NewIncomingHandler creates a new IncomingHandler.
func NewIncomingHandler(sellerSvc ports.SellerService) *IncomingHandler {
	return &IncomingHandler{sellerSvc: sellerSvc}
}

// List handles GET /api/v1/incoming.
func (h *IncomingHandler) List(c *gin.Context) {
	view, err := h.sellerSvc.ListIncoming(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toEscrowListResponse(view))
}

// Release handles POST /api/v1/incoming/:sequence/release. The fulfillment
// is forwarded to the ledger as supplied; the ledger alone decides whether
// it satisfies the escrow's condition.
func (h *IncomingHandler) Release(c *gin.Context) {
	sequence, ok := parseSequence(c)
	if !ok {
		return
	}

	var req dto.ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	escrow, err := h.sellerSvc.Release(c.Request.Context(), sequence, req.Fulfillment)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toEscrowResponse(escrow))
}

// Cancel handles POST /api/v1/incoming/:sequence/cancel. Always rejected:
// only the payer may cancel an escrow.
func (h *IncomingHandler) Cancel(c *gin.Context) {
	sequence, ok := parseSequence(c)
	if !ok {
		return
	}

	if err := h.sellerSvc.Cancel(c.Request.Context(), sequence); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"cancelled": sequence})
}
