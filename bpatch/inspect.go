package bpatch

import (
	"xdao.co/bpatch/checksum"
	"xdao.co/bpatch/delta"
	"xdao.co/bpatch/patchfmt"
	"xdao.co/bpatch/patchid"
)

// Info is the structural report for a patch file. Nothing in it requires
// a base buffer: inspection never applies the patch.
type Info struct {
	Format patchfmt.Format

	// PatchSize is the size of the whole patch file including framing.
	PatchSize int64

	// DeclaredOutputSize is the output length the forward delta declares
	// in its own header, or 0 when the payload is too short to carry one.
	DeclaredOutputSize int64

	// Valid reports whether the forward delta passes the primitive's
	// structural header check.
	Valid bool

	HasChecksums bool
	HasReverse   bool
	HasMetadata  bool
	Metadata     string

	// BaseDigest and OutputDigest are lowercase hex, empty when absent.
	BaseDigest   string
	OutputDigest string

	// ContentID is the artifact's content identifier for archive and
	// distribution lookups.
	ContentID string
}

// Inspect decodes patchFile and reports structural facts about it.
//
// A container that decodes but carries a malformed forward delta is still
// reported, with Valid false; only framing damage is an error.
func Inspect(patchFile []byte) (*Info, error) {
	c, err := patchfmt.Decode(patchFile)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Format:       c.Format,
		PatchSize:    int64(len(patchFile)),
		Valid:        delta.Valid(c.ForwardDelta),
		HasChecksums: c.HasChecksums(),
		HasReverse:   c.ReverseDelta != nil,
		HasMetadata:  c.Metadata != "",
		Metadata:     c.Metadata,
		ContentID:    patchid.String(patchFile),
	}

	if size, ok := delta.TargetSize(c.ForwardDelta); ok {
		info.DeclaredOutputSize = size
	}
	if c.BaseDigest != nil {
		info.BaseDigest = checksum.Hex(*c.BaseDigest)
	}
	if c.OutputDigest != nil {
		info.OutputDigest = checksum.Hex(*c.OutputDigest)
	}

	return info, nil
}
