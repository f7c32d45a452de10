package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText returns the sha256 hex digest of s. Used as the raw-text lookup key.
func HashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
