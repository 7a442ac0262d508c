package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashNamespaceKey returns a filesystem-safe identifier for a storage namespace.
func HashNamespaceKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
