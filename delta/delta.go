// Package delta adapts the external bsdiff primitives consumed by the
// patch pipelines.
//
// The delta payload format belongs entirely to the primitive; this package
// only computes deltas, applies them, and answers the two structural
// questions the pipelines need (is this payload shaped like a delta, and
// how large does it declare its output to be).
package delta

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gabstv/go-bsdiff/pkg/bsdiff"
	"github.com/gabstv/go-bsdiff/pkg/bspatch"
)

// bsdiff 4.x payload header: magic(8) + ctrl length(8) + diff length(8) +
// declared output length(8), all little-endian int64 after the magic.
const (
	payloadMagic      = "BSDIFF40"
	payloadHeaderSize = 32
)

// ErrInvalid marks a payload that fails the structural header check.
var ErrInvalid = errors.New("delta: payload is not a valid bsdiff patch")

// Op identifies which primitive failed.
type Op string

const (
	OpDiff  Op = "diff"
	OpPatch Op = "patch"
)

// Error wraps a primitive failure with the operation that produced it.
// Primitive failures are deterministic for a given input, so callers must
// never retry them.
type Error struct {
	Op    Op
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("delta: %s failed: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Diff computes a delta transforming base into target.
func Diff(base, target []byte) ([]byte, error) {
	d, err := bsdiff.Bytes(base, target)
	if err != nil {
		return nil, &Error{Op: OpDiff, Cause: err}
	}
	return d, nil
}

// Apply reconstructs the target from base and a delta previously produced
// by Diff. The payload is header-checked before the primitive runs so that
// garbage input surfaces as ErrInvalid rather than a primitive failure.
func Apply(base, delta []byte) ([]byte, error) {
	if !Valid(delta) {
		return nil, ErrInvalid
	}
	out, err := bspatch.Bytes(base, delta)
	if err != nil {
		return nil, &Error{Op: OpPatch, Cause: err}
	}
	return out, nil
}

// Valid reports whether the payload carries a structurally plausible
// header: correct magic, non-negative section lengths, and sections that
// fit inside the payload. It does not decompress or apply anything.
func Valid(delta []byte) bool {
	if len(delta) < payloadHeaderSize {
		return false
	}
	if string(delta[:8]) != payloadMagic {
		return false
	}
	ctrlLen := int64(binary.LittleEndian.Uint64(delta[8:16]))
	diffLen := int64(binary.LittleEndian.Uint64(delta[16:24]))
	newSize := int64(binary.LittleEndian.Uint64(delta[24:32]))
	if ctrlLen < 0 || diffLen < 0 || newSize < 0 {
		return false
	}
	return payloadHeaderSize+ctrlLen+diffLen <= int64(len(delta))
}

// TargetSize returns the output length the payload declares in its header,
// or false when the payload is too short to carry one.
func TargetSize(delta []byte) (int64, bool) {
	if len(delta) < payloadHeaderSize {
		return 0, false
	}
	return int64(binary.LittleEndian.Uint64(delta[24:32])), true
}
