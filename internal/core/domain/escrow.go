package domain

import (
	"regexp"
	"time"
)

// EscrowStatus is the derived lifecycle state of a conditional payment.
// Pending is the initial state; Released and Cancelled are terminal and an
// escrow that leaves Pending never returns.
type EscrowStatus string

const (
	EscrowStatusPending   EscrowStatus = "PENDING"
	EscrowStatusReleased  EscrowStatus = "RELEASED"
	EscrowStatusCancelled EscrowStatus = "CANCELLED"
)

// Escrow is a conditional payment: funds locked by a payer, released to the
// payee on presentation of the fulfillment preimage, or returned to the payer
// after expiry. Identified by the ledger-assigned sequence of its creating
// transaction, unique per payer account.
type Escrow struct {
	Sequence uint32 `json:"sequence"`
	// Hash of the validated creating transaction.
	TxHash string `json:"tx_hash,omitempty"`
	Payer  string `json:"payer"`
	Payee  string `json:"payee"`
	// Amount in drops (millionths of the native unit).
	AmountDrops int64 `json:"amount_drops"`
	// Condition is the hex crypto-condition (hash commitment), if any.
	Condition string `json:"condition,omitempty"`
	// FinishAfter / CancelAfter are unix timestamps bounding release and
	// cancellation eligibility. Nil means unrestricted.
	FinishAfter *int64 `json:"finish_after,omitempty"`
	CancelAfter *int64 `json:"cancel_after,omitempty"`

	Status     EscrowStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`

	// Local bookkeeping, owned by the payer's side. Non-authoritative and
	// never required for the ledger-derived fields above to be correct.
	Note        string `json:"note,omitempty"`
	Fulfillment string `json:"fulfillment,omitempty"`
	// LocalOnly marks an escrow submitted by us but not yet visible in the
	// ledger's pending-object snapshot.
	LocalOnly bool `json:"local_only,omitempty"`
}

// IsTerminal returns true once the escrow has been released or cancelled.
func (e *Escrow) IsTerminal() bool {
	return e.Status == EscrowStatusReleased || e.Status == EscrowStatusCancelled
}

// TxRecordType classifies a historical ledger transaction.
type TxRecordType string

const (
	TxRecordEscrowCreate TxRecordType = "EscrowCreate"
	TxRecordEscrowFinish TxRecordType = "EscrowFinish"
	TxRecordEscrowCancel TxRecordType = "EscrowCancel"
	TxRecordPayment      TxRecordType = "Payment"
)

// TxRecord is an immutable, append-only entry from the ledger's transaction
// history. Never mutated locally; used only for reconciliation.
type TxRecord struct {
	Type    TxRecordType `json:"type"`
	Account string       `json:"account"`
	// Destination is set for EscrowCreate and Payment records.
	Destination string `json:"destination,omitempty"`
	// Sequence of the transaction itself; for EscrowCreate this is the
	// identity of the escrow it opened.
	Sequence uint32 `json:"sequence"`
	// OfferSequence references the EscrowCreate a Finish/Cancel resolves.
	OfferSequence uint32 `json:"offer_sequence,omitempty"`
	AmountDrops   int64  `json:"amount_drops,omitempty"`
	Condition     string `json:"condition,omitempty"`
	FinishAfter   *int64 `json:"finish_after,omitempty"`
	CancelAfter   *int64 `json:"cancel_after,omitempty"`
	Hash          string `json:"hash"`
	ResultCode    string `json:"result_code"`
	ValidatedAt   time.Time `json:"validated_at"`
}

// EscrowView is one reconciled snapshot of every escrow an account has
// participated in.
type EscrowView struct {
	Account string   `json:"account"`
	Role    Role     `json:"role"`
	Escrows []Escrow `json:"escrows"`
	// Partial is set when history could not be fetched and terminal
	// detection was skipped for this refresh.
	Partial     bool      `json:"partial"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// Role scopes a reconciled view to one side of the escrows.
type Role string

const (
	RolePayer Role = "payer"
	RolePayee Role = "payee"
)

// EscrowNote is the durable bookkeeping row for one escrow created by this
// operator: the fulfillment preimage (encrypted at rest) and free-text note,
// keyed by (account, sequence). Rows are only ever inserted or
// status-updated, never deleted.
type EscrowNote struct {
	Account string `json:"account"`
	Sequence uint32 `json:"sequence"`
	// FulfillmentEnc is the AES-GCM ciphertext of the fulfillment hex.
	FulfillmentEnc string       `json:"-"`
	Note           string       `json:"note"`
	Destination    string       `json:"destination"`
	AmountDrops    int64        `json:"amount_drops"`
	Condition      string       `json:"condition"`
	FinishAfter    *int64       `json:"finish_after,omitempty"`
	CancelAfter    *int64       `json:"cancel_after,omitempty"`
	Status         EscrowStatus `json:"status"`
	TxHash         string       `json:"tx_hash"`
	CreatedAt      time.Time    `json:"created_at"`
	ResolvedAt     *time.Time   `json:"resolved_at,omitempty"`
}

// classicAddressPattern matches the base58 form of a classic ledger address:
// 'r' followed by 24-34 base58 characters (no 0, O, I, l).
var classicAddressPattern = regexp.MustCompile(`^r[1-9A-HJ-NP-Za-km-z]{24,34}$`)

// IsValidAddress reports whether s has the form of a classic ledger address.
// Checksum verification is left to the ledger; this gate exists to reject
// obviously malformed input before any network call.
func IsValidAddress(s string) bool {
	return classicAddressPattern.MatchString(s)
}
