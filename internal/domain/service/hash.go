package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashCode returns the SHA-256 hex digest of a one-time code. The digest is
// deterministic so the store can compare-and-consume in a single conditional
// UPDATE; the plaintext code never reaches the database.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
