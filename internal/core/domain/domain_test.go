package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEscrow_IsTerminal(t *testing.T) {
	e := &Escrow{Status: EscrowStatusPending}
	assert.False(t, e.IsTerminal())

	e.Status = EscrowStatusReleased
	assert.True(t, e.IsTerminal())

	e.Status = EscrowStatusCancelled
	assert.True(t, e.IsTerminal())
}

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		address string
		valid   bool
	}{
		{"rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH", true},
		{"rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", true},
		{"", false},
		{"xN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH", false}, // wrong prefix
		{"rshort", false},
		{"rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzR0", false}, // 0 not in base58
		{"rN7n7otQ Dd6FczFgLdSqtcsAUxDkw6fz", false},  // whitespace
	}
	for _, tc := range tests {
		assert.Equal(t, tc.valid, IsValidAddress(tc.address), tc.address)
	}
}

func TestEscrowView_CarriesPartialFlag(t *testing.T) {
	v := EscrowView{
		Account:     "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		Role:        RolePayer,
		Partial:     true,
		RefreshedAt: time.Now(),
	}
	assert.True(t, v.Partial)
	assert.Empty(t, v.Escrows)
}
