package bpatch

import (
	"xdao.co/bpatch/checksum"
	"xdao.co/bpatch/delta"
	"xdao.co/bpatch/patchfmt"
	"xdao.co/bpatch/preview"
)

// ApplyOptions controls direction, verification, and reporting.
//
// Writing the result anywhere is the caller's business (a dry run is a
// caller that verifies and then discards the output), so there is no
// write-related option here.
type ApplyOptions struct {
	// Reverse applies the embedded reverse delta instead of the forward
	// one, turning a target back into its base. The digest roles swap
	// accordingly: the container's output digest becomes the expected
	// pre-image and the base digest the expected post-image.
	Reverse bool

	// Verify checks whichever digests are present: the pre-image digest
	// against base before any patching, the post-image digest against
	// the result before it is handed back.
	Verify bool

	// Preview computes byte-level change regions between base and the
	// result for reporting.
	Preview bool

	// Hash overrides the digest strategy. Nil means checksum.Default.
	Hash checksum.Func
}

// ApplyResult is the outcome of a successful application.
type ApplyResult struct {
	// Output is the reconstructed buffer.
	Output []byte

	// UsedReverse records which direction was applied.
	UsedReverse bool

	// VerifiedBase and VerifiedOutput record which digests were actually
	// checked; a digest the container does not carry cannot be verified.
	VerifiedBase   bool
	VerifiedOutput bool

	// Changes is populated only when ApplyOptions.Preview is set.
	Changes []preview.Region
}

// Apply decodes patchFile, selects the requested direction, verifies
// digests when asked, and runs the delta primitive.
//
// A pre-image mismatch aborts before any patch attempt; a post-image
// mismatch aborts before the result is returned. No partial output ever
// escapes.
func Apply(base, patchFile []byte, opts ApplyOptions) (*ApplyResult, error) {
	c, err := patchfmt.Decode(patchFile)
	if err != nil {
		return nil, err
	}

	payload := c.ForwardDelta
	preDigest, postDigest := c.BaseDigest, c.OutputDigest
	if opts.Reverse {
		if c.ReverseDelta == nil {
			return nil, ErrMissingReverse
		}
		payload = c.ReverseDelta
		preDigest, postDigest = c.OutputDigest, c.BaseDigest
	}

	res := &ApplyResult{UsedReverse: opts.Reverse}

	if opts.Verify && preDigest != nil {
		if err := checksum.Verify(opts.Hash, base, *preDigest); err != nil {
			return nil, err
		}
		res.VerifiedBase = true
	}

	out, err := delta.Apply(base, payload)
	if err != nil {
		return nil, err
	}

	if opts.Verify && postDigest != nil {
		if err := checksum.Verify(opts.Hash, out, *postDigest); err != nil {
			return nil, err
		}
		res.VerifiedOutput = true
	}

	res.Output = out
	if opts.Preview {
		res.Changes = preview.FindChanges(base, out)
	}
	return res, nil
}
