// Package checksum computes and verifies the fixed-width digests embedded
// in patch containers.
//
// The wire format only fixes the digest width; the algorithm is a pluggable
// strategy selected by name. Containers do not record which algorithm
// produced their digests, so generation and verification must agree on one
// out of band (the CLI default is sha256 on both sides).
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// Size is the digest width in bytes, matching patchfmt.DigestSize.
const Size = 32

// Func computes a digest. Implementations must be deterministic and pure.
type Func func(data []byte) [Size]byte

// Algorithm names a supported digest strategy.
type Algorithm string

const (
	SHA256  Algorithm = "sha256"
	SHA3256 Algorithm = "sha3-256"
	BLAKE3  Algorithm = "blake3"
)

// Default is the algorithm used when callers do not inject one.
const Default = SHA256

// New returns the digest strategy for alg.
func New(alg Algorithm) (Func, error) {
	switch alg {
	case SHA256:
		return sha256.Sum256, nil
	case SHA3256:
		return sha3.Sum256, nil
	case BLAKE3:
		return blake3.Sum256, nil
	default:
		return nil, fmt.Errorf("checksum: unsupported algorithm %q", alg)
	}
}

// Sum computes the default digest of data.
func Sum(data []byte) [Size]byte {
	return sha256.Sum256(data)
}

// MismatchError reports a failed verification with both digests in
// lowercase hex.
type MismatchError struct {
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// Verify recomputes the digest of data with sum (nil means the default
// algorithm) and compares it against expected.
func Verify(sum Func, data []byte, expected [Size]byte) error {
	if sum == nil {
		sum = Sum
	}
	actual := sum(data)
	if actual != expected {
		return &MismatchError{
			Expected: hex.EncodeToString(expected[:]),
			Actual:   hex.EncodeToString(actual[:]),
		}
	}
	return nil
}

// Hex renders a digest in the display encoding used throughout the CLI.
func Hex(d [Size]byte) string {
	return hex.EncodeToString(d[:])
}
