// Package bpatch orchestrates patch generation, application, and
// inspection over the container codec, the digest strategies, and the
// external delta primitives.
//
// The package is pure computation on in-memory buffers: it never touches
// the filesystem or the console, and every operation is synchronous and
// deterministic. All failures are immediate and reproduce on retry, so
// callers should surface them rather than retry.
package bpatch

import "errors"

// ErrMissingReverse is returned when reverse application is requested but
// the container carries no reverse delta.
var ErrMissingReverse = errors.New("bpatch: patch has no reverse delta")
