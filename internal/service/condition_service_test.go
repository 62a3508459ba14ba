package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionService_Generate_RoundTrip(t *testing.T) {
	svc := NewPreimageConditionService()

	condition, fulfillment, err := svc.Generate()
	require.NoError(t, err)

	recomputed, err := svc.ConditionFromFulfillment(fulfillment)
	require.NoError(t, err)
	assert.Equal(t, condition, recomputed)
}

func TestConditionService_Generate_Format(t *testing.T) {
	svc := NewPreimageConditionService()

	condition, fulfillment, err := svc.Generate()
	require.NoError(t, err)

	// condition: A0 25 80 20 | 32-byte fingerprint | 81 01 20
	assert.Len(t, condition, 2*(4+32+3))
	assert.True(t, strings.HasPrefix(condition, "A0258020"))
	assert.True(t, strings.HasSuffix(condition, "810120"))
	assert.Equal(t, strings.ToUpper(condition), condition)

	// fulfillment: A0 22 80 20 | 32-byte preimage
	assert.Len(t, fulfillment, 2*(4+32))
	assert.True(t, strings.HasPrefix(fulfillment, "A0228020"))

	// The embedded fingerprint must be sha256 of the embedded preimage.
	preimage, err := hex.DecodeString(fulfillment[8:])
	require.NoError(t, err)
	fingerprint := sha256.Sum256(preimage)
	assert.Equal(t, strings.ToUpper(hex.EncodeToString(fingerprint[:])), condition[8:8+64])
}

func TestConditionService_Generate_Unique(t *testing.T) {
	svc := NewPreimageConditionService()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		_, fulfillment, err := svc.Generate()
		require.NoError(t, err)
		assert.False(t, seen[fulfillment], "preimage reused")
		seen[fulfillment] = true
	}
}

func TestConditionService_ConditionFromFulfillment_Rejects(t *testing.T) {
	svc := NewPreimageConditionService()

	_, err := svc.ConditionFromFulfillment("not-hex")
	assert.Error(t, err)

	// Wrong header
	_, err = svc.ConditionFromFulfillment("B0228020" + strings.Repeat("AB", 32))
	assert.Error(t, err)

	// Wrong length
	_, err = svc.ConditionFromFulfillment("A0228020" + strings.Repeat("AB", 16))
	assert.Error(t, err)
}
