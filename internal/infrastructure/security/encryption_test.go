package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	s := NewAESGCMEncryptionService()

	cipherText, err := s.Encrypt("JBSWY3DPEHPK3PXP", testKeyHex)
	require.NoError(t, err)
	assert.NotEqual(t, "JBSWY3DPEHPK3PXP", cipherText)

	plain, err := s.Decrypt(cipherText, testKeyHex)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", plain)
}

func TestEncrypt_NonceMakesOutputUnique(t *testing.T) {
	s := NewAESGCMEncryptionService()

	a, err := s.Encrypt("same input", testKeyHex)
	require.NoError(t, err)
	b, err := s.Encrypt("same input", testKeyHex)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecrypt_WrongKey(t *testing.T) {
	s := NewAESGCMEncryptionService()

	cipherText, err := s.Encrypt("secret", testKeyHex)
	require.NoError(t, err)

	otherKey := "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"
	_, err = s.Decrypt(cipherText, otherKey)
	assert.Error(t, err)
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	s := NewAESGCMEncryptionService()

	cipherText, err := s.Encrypt("secret", testKeyHex)
	require.NoError(t, err)

	tampered := cipherText[:len(cipherText)-4] + "AAA="
	if tampered == cipherText {
		t.Skip("tampering produced identical ciphertext")
	}
	_, err = s.Decrypt(tampered, testKeyHex)
	assert.Error(t, err)
}

func TestEncrypt_RejectsBadKey(t *testing.T) {
	s := NewAESGCMEncryptionService()

	_, err := s.Encrypt("secret", "not-hex")
	assert.Error(t, err)

	_, err = s.Encrypt("secret", "abcd")
	assert.Error(t, err, "short keys must be rejected")
}
