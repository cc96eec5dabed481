package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short, non-reversible identifier of a master key.
// It is logged at startup so operators can tell which key a server runs with.
func Fingerprint(master []byte) string {
	hash := sha256.Sum256(master)
	return hex.EncodeToString(hash[:8])
}
