package dto

// RegisterRequest is the request body for operator registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for operator login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CreateEscrowRequest is the request body for opening a conditional payment.
// Timestamps are unix seconds; a missing cancel_after is defaulted server-side.
type CreateEscrowRequest struct {
	Destination string `json:"destination" binding:"required,ledger_address"`
	AmountDrops int64  `json:"amount_drops" binding:"required,gt=0"`
	Note        string `json:"note" binding:"max=500"`
	FinishAfter *int64 `json:"finish_after,omitempty"`
	CancelAfter *int64 `json:"cancel_after,omitempty"`
}

// ReleaseRequest carries the fulfillment preimage disclosed by the payer.
type ReleaseRequest struct {
	Fulfillment string `json:"fulfillment" binding:"required,hex_blob"`
}

// EscrowResponse is the response body for a single escrow.
type EscrowResponse struct {
	Sequence    uint32  `json:"sequence"`
	TxHash      string  `json:"tx_hash,omitempty"`
	Payer       string  `json:"payer"`
	Payee       string  `json:"payee"`
	AmountDrops int64   `json:"amount_drops"`
	Condition   string  `json:"condition,omitempty"`
	FinishAfter *int64  `json:"finish_after,omitempty"`
	CancelAfter *int64  `json:"cancel_after,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at,omitempty"`
	ResolvedAt  *string `json:"resolved_at,omitempty"`
	Note        string  `json:"note,omitempty"`
	// Fulfillment is only populated on the payer side, where the secret is
	// held; payee views learn it out-of-band.
	Fulfillment string `json:"fulfillment,omitempty"`
	LocalOnly   bool    `json:"local_only,omitempty"`
}

// EscrowListResponse wraps a reconciled escrow view.
type EscrowListResponse struct {
	Account string           `json:"account"`
	Role    string           `json:"role"`
	Escrows []EscrowResponse `json:"escrows"`
	// Partial signals that history could not be fetched this refresh and
	// resolved escrows may be missing from the list.
	Partial     bool   `json:"partial"`
	RefreshedAt string `json:"refreshed_at"`
}

// BalanceResponse is the response for a wallet balance query.
type BalanceResponse struct {
	Address      string `json:"address"`
	BalanceDrops int64  `json:"balance_drops"`
	Sequence     uint32 `json:"sequence"`
}

// TxRecordResponse is one historical ledger transaction.
type TxRecordResponse struct {
	Type          string `json:"type"`
	Account       string `json:"account"`
	Destination   string `json:"destination,omitempty"`
	Sequence      uint32 `json:"sequence"`
	OfferSequence uint32 `json:"offer_sequence,omitempty"`
	AmountDrops   int64  `json:"amount_drops,omitempty"`
	Hash          string `json:"hash"`
	ResultCode    string `json:"result_code"`
	ValidatedAt   string `json:"validated_at"`
}

// HistoryResponse wraps one page of transaction history.
type HistoryResponse struct {
	Records       []TxRecordResponse `json:"records"`
	NextPageToken string             `json:"next_page_token,omitempty"`
}
