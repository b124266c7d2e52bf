package utils

import (
	"crypto/sha256"
	"fmt"
)

// HashString produces a stable hex digest used for cache keys and seed
// passage ids.
func HashString(input string) string {
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:16])
}
