// Package checksum derives content revisions for the content store.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Revision returns the hex-encoded SHA-256 digest of data. Equal content
// always yields the same revision.
func Revision(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether data hashes to rev.
func Matches(data []byte, rev string) bool {
	return rev != "" && Revision(data) == rev
}
