package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		Username: "  alice  ",
		Password: "  pass1234  ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "pass1234", req.Password)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	note := "rent <script>alert('x')</script> deposit"
	req := CreateEscrowRequest{
		Destination: "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe",
		AmountDrops: 1000,
		Note:        note,
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.Note, "&lt;script&gt;")
	assert.NotContains(t, req.Note, "<script>")
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	s := "hello"
	SanitizeStruct(s) // should not panic
}

// --- Custom Validator tests ---

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"operator-001",
		"OP_002",
		"a.b.c",
		"simple123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"op 001",      // space
		"op<001>",     // angle brackets
		"op;DROP",     // semicolon
		"",            // empty
		"hello world", // space
		"op\n001",     // newline
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

func TestHexBlob(t *testing.T) {
	valid := []string{"AA", "a0b1c2", "A0258020"}
	for _, tc := range valid {
		assert.True(t, hexBlobRe.MatchString(tc) && len(tc)%2 == 0, "expected valid: %s", tc)
	}

	invalid := []string{"", "A", "GG", "0x11", "AA BB"}
	for _, tc := range invalid {
		ok := len(tc) > 0 && len(tc)%2 == 0 && hexBlobRe.MatchString(tc)
		assert.False(t, ok, "expected invalid: %s", tc)
	}
}
