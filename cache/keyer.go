package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/mutantlab/dnascan/dna"
)

// FingerprintLength is the length in hex characters of a SHA-256
// fingerprint.
const FingerprintLength = sha256.Size * 2

// Keyer derives the cache key (fingerprint) for a validated grid.
//
// Contract:
// - Determinism: identical row content must produce identical keys.
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: a Key failure means the digest primitive is unavailable,
//   never that the grid is invalid.
type Keyer interface {
	// Key returns the fingerprint for the grid.
	Key(g dna.Grid) (string, error)
}

// SHA256Keyer fingerprints a grid as the lowercase hexadecimal SHA-256
// digest of its rows concatenated in order.
type SHA256Keyer struct{}

// NewSHA256Keyer creates the default keyer.
func NewSHA256Keyer() *SHA256Keyer {
	return &SHA256Keyer{}
}

// Key returns the full 64-character hex digest. The SHA-256
// implementation cannot fail; the error return exists for the Keyer
// contract so alternate digests can report unavailability.
func (k *SHA256Keyer) Key(g dna.Grid) (string, error) {
	sum := sha256.Sum256(g.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// Ensure SHA256Keyer implements Keyer
var _ Keyer = (*SHA256Keyer)(nil)
