package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAESKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestAESEncryptionService_RoundTrip(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	plaintext := "A0228020" + strings.Repeat("AB", 32)
	ciphertext, err := svc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := svc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAESEncryptionService_UniqueNonces(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	c1, err := svc.Encrypt("same-secret")
	require.NoError(t, err)
	c2, err := svc.Encrypt("same-secret")
	require.NoError(t, err)

	assert.NotEqual(t, c1, c2, "same plaintext should produce different ciphertexts")
}

func TestAESEncryptionService_InvalidKey(t *testing.T) {
	_, err := NewAESEncryptionService("short")
	assert.Error(t, err)

	_, err = NewAESEncryptionService("zz" + testAESKey[2:])
	assert.Error(t, err)
}

func TestAESEncryptionService_TamperedCiphertext(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	ciphertext, err := svc.Encrypt("secret")
	require.NoError(t, err)

	tampered := []byte(ciphertext)
	if tampered[len(tampered)-1] == 'a' {
		tampered[len(tampered)-1] = 'b'
	} else {
		tampered[len(tampered)-1] = 'a'
	}

	_, err = svc.Decrypt(string(tampered))
	assert.Error(t, err, "GCM should reject tampered ciphertext")
}

func TestAESEncryptionService_DecryptGarbage(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	_, err = svc.Decrypt("not-hex")
	assert.Error(t, err)

	_, err = svc.Decrypt("abcd")
	assert.Error(t, err, "too short to contain a nonce")
}
