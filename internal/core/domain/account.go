package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is an operator login for the dashboard API. Ledger wallets are
// configured separately; this only gates access to the HTTP surface.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditAction labels an audited operation.
type AuditAction string

const (
	AuditActionRegister     AuditAction = "REGISTER"
	AuditActionLogin        AuditAction = "LOGIN"
	AuditActionEscrowCreate AuditAction = "ESCROW_CREATE"
	AuditActionEscrowCancel AuditAction = "ESCROW_CANCEL"
	AuditActionRelease      AuditAction = "ESCROW_RELEASE"
)

// AuditLog records one fund-moving or auth action for later review.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	AccountID    *uuid.UUID  `json:"account_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	IPAddress    string      `json:"ip_address"`
	Details      string      `json:"details"`
	CreatedAt    time.Time   `json:"created_at"`
}
