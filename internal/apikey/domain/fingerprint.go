package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is the stored form of an SDK key. Keys are high-entropy random
// secrets, so an unsalted digest is enough for the indexed lookup while
// keeping the plain key out of the database. The scheme prefix leaves room
// to migrate the digest without rehashing every row blind.
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return "sha256:" + hex.EncodeToString(sum[:])
}
