package service

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"crux-escrow/pkg/apperror"
)

const preimageLen = 32

// PreimageConditionService implements ports.ConditionService using
// PREIMAGE-SHA-256 crypto-conditions: the condition published at creation is
// a DER-wrapped SHA-256 fingerprint of a random 32-byte preimage, and the
// fulfillment presented at release wraps the preimage itself.
type PreimageConditionService struct{}

// NewPreimageConditionService creates a new PreimageConditionService.
func NewPreimageConditionService() *PreimageConditionService {
	return &PreimageConditionService{}
}

// conditionHeader precedes sha256(preimage): preimage-sha-256 type tag,
// 37-byte body, 32-byte fingerprint.
var conditionHeader = []byte{0xA0, 0x25, 0x80, 0x20}

// conditionTrailer encodes the fulfillment cost (the 32-byte preimage length).
var conditionTrailer = []byte{0x81, 0x01, 0x20}

// fulfillmentHeader precedes the raw preimage: 34-byte body, 32-byte preimage.
var fulfillmentHeader = []byte{0xA0, 0x22, 0x80, 0x20}

// Generate draws a fresh preimage from the secure random source. Failure of
// the source is surfaced as fatal; escrow creation cannot proceed without it.
func (s *PreimageConditionService) Generate() (string, string, error) {
	preimage := make([]byte, preimageLen)
	if _, err := rand.Read(preimage); err != nil {
		return "", "", apperror.InternalError(fmt.Errorf("secure random source unavailable: %w", err))
	}
	return encodeCondition(preimage), encodeFulfillment(preimage), nil
}

// ConditionFromFulfillment recomputes the condition from a fulfillment's
// preimage. Round-trip check only; release submissions never pre-validate the
// preimage locally.
func (s *PreimageConditionService) ConditionFromFulfillment(fulfillment string) (string, error) {
	raw, err := hex.DecodeString(strings.ToLower(fulfillment))
	if err != nil {
		return "", apperror.Validation("fulfillment is not valid hex")
	}
	if len(raw) != len(fulfillmentHeader)+preimageLen || !bytes.Equal(raw[:len(fulfillmentHeader)], fulfillmentHeader) {
		return "", apperror.Validation("fulfillment is not a PREIMAGE-SHA-256 fulfillment")
	}
	return encodeCondition(raw[len(fulfillmentHeader):]), nil
}

func encodeCondition(preimage []byte) string {
	fingerprint := sha256.Sum256(preimage)
	buf := make([]byte, 0, len(conditionHeader)+len(fingerprint)+len(conditionTrailer))
	buf = append(buf, conditionHeader...)
	buf = append(buf, fingerprint[:]...)
	buf = append(buf, conditionTrailer...)
	return strings.ToUpper(hex.EncodeToString(buf))
}

func encodeFulfillment(preimage []byte) string {
	buf := make([]byte, 0, len(fulfillmentHeader)+len(preimage))
	buf = append(buf, fulfillmentHeader...)
	buf = append(buf, preimage...)
	return strings.ToUpper(hex.EncodeToString(buf))
}
