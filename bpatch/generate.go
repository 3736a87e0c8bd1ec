package bpatch

import (
	"xdao.co/bpatch/checksum"
	"xdao.co/bpatch/delta"
	"xdao.co/bpatch/patchfmt"
)

// GenerateOptions selects the optional container features.
type GenerateOptions struct {
	// EmbedChecksums records digests of base and target so application
	// can verify the pre-image before patching and the post-image after.
	EmbedChecksums bool

	// EmbedReverse additionally computes a target-to-base delta, making
	// the patch bidirectional at the cost of a second diff pass.
	EmbedReverse bool

	// Metadata is free-form text carried verbatim in the container.
	Metadata string

	// Hash overrides the digest strategy. Nil means checksum.Default.
	Hash checksum.Func
}

// GenerateResult carries the assembled container and its encoded bytes.
type GenerateResult struct {
	Container *patchfmt.Container
	Encoded   []byte
}

// Generate diffs base against target and wraps the delta in a versioned
// container. Diff failures propagate immediately; nothing is retried and
// no partial result is returned.
func Generate(base, target []byte, opts GenerateOptions) (*GenerateResult, error) {
	forward, err := delta.Diff(base, target)
	if err != nil {
		return nil, err
	}

	c := &patchfmt.Container{
		Format:       patchfmt.FormatVersioned,
		ForwardDelta: forward,
		Metadata:     opts.Metadata,
	}

	if opts.EmbedChecksums {
		sum := opts.Hash
		if sum == nil {
			sum = checksum.Sum
		}
		baseDigest := sum(base)
		outputDigest := sum(target)
		c.BaseDigest = &baseDigest
		c.OutputDigest = &outputDigest
	}

	if opts.EmbedReverse {
		reverse, err := delta.Diff(target, base)
		if err != nil {
			return nil, err
		}
		c.ReverseDelta = reverse
	}

	return &GenerateResult{Container: c, Encoded: patchfmt.Encode(c)}, nil
}
