// Package store provides a local content-addressed archive for patch
// artifacts.
//
// Generated patches are archived by their content identifier (see package
// patchid) so that a distribution step can fetch exactly the bytes it
// expects, and so that re-archiving the same patch is a no-op.
package store

import (
	"errors"

	"github.com/ipfs/go-cid"
)

// Store is the minimal patch-archive interface.
//
// Contract:
//   - Put MUST be idempotent and derive the ID from the bytes written.
//   - Archived artifacts MUST be immutable.
//   - Get MUST return ErrNotFound when the ID is absent and MUST verify
//     the returned bytes against the ID.
type Store interface {
	Put(data []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

var (
	ErrNotFound   = errors.New("store: patch not found")
	ErrInvalidID  = errors.New("store: invalid patch id")
	ErrIDMismatch = errors.New("store: archived bytes do not match id")
	ErrImmutable  = errors.New("store: immutable artifact mismatch")
)

// IsNotFound reports whether err means the artifact is absent.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
