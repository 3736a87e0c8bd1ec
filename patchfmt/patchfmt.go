// Package patchfmt implements the bpatch container format.
//
// A container wraps an opaque binary delta together with optional integrity
// and distribution features: pre/post-image digests, an embedded reverse
// delta, and free-form metadata. Three wire variants are recognized on
// decode; only the current versioned variant is ever produced on encode.
package patchfmt

// Magic sequences for the two framed wire variants. The first eight bytes
// of a patch file select the variant; anything else is treated as a raw,
// un-framed delta payload.
const (
	MagicVersioned = "BPATCHF2"
	MagicLegacy    = "BPATCHF1"
)

// Version is the single supported version code of the versioned variant.
const Version = 1

// DigestSize is the fixed width of embedded digests. The digest algorithm
// is pluggable (see the checksum package); the wire format only fixes the
// width.
const DigestSize = 32

// Feature flag bits of the versioned header. Flags are derived from field
// presence on encode and are only ever a reading plan on decode: every
// flagged field is still bounds-checked against the remaining buffer.
const (
	FlagBaseDigest   uint32 = 1 << 0
	FlagOutputDigest uint32 = 1 << 1
	FlagReverseDelta uint32 = 1 << 2
	FlagMetadata     uint32 = 1 << 3
)

// headerSize is magic(8) + version(1) + flags(4).
const headerSize = 13

// legacyHeaderSize is magic(8) + base digest(32) + output digest(32).
const legacyHeaderSize = 72

// Format identifies which wire variant a container was decoded from.
//
// The set is closed: adding a future variant extends Detect and Decode in
// one place rather than scattering magic-byte checks across call sites.
type Format int

const (
	// FormatRaw is the fallback for byte streams carrying no recognized
	// magic. The entire stream is offered as-is as the forward delta.
	FormatRaw Format = iota

	// FormatLegacy is the original fixed-header variant: both digests
	// always present, no reverse delta, no metadata. Decode-only.
	FormatLegacy

	// FormatVersioned is the current variant with a version code and
	// feature flags. The only variant Encode emits.
	FormatVersioned
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatLegacy:
		return "legacy"
	case FormatVersioned:
		return "versioned"
	default:
		return "unknown"
	}
}

// Container is the decoded form of a patch file.
//
// ForwardDelta is mandatory and opaque: its internal structure belongs to
// the delta primitive, not to this package. Optional fields use nil (or ""
// for Metadata) to mean absent; Encode derives the flag bits from presence.
type Container struct {
	Format Format

	// BaseDigest and OutputDigest identify the expected pre- and
	// post-image of the forward delta. Either may be nil.
	BaseDigest   *[DigestSize]byte
	OutputDigest *[DigestSize]byte

	// ForwardDelta transforms base into target.
	ForwardDelta []byte

	// ReverseDelta transforms target back into base. Nil when the patch
	// is unidirectional.
	ReverseDelta []byte

	// Metadata is free-form UTF-8 text, not interpreted here.
	Metadata string
}

// HasChecksums reports whether at least one digest is embedded.
func (c *Container) HasChecksums() bool {
	return c.BaseDigest != nil || c.OutputDigest != nil
}

// flags derives the feature flag bits from field presence.
func (c *Container) flags() uint32 {
	var f uint32
	if c.BaseDigest != nil {
		f |= FlagBaseDigest
	}
	if c.OutputDigest != nil {
		f |= FlagOutputDigest
	}
	if c.ReverseDelta != nil {
		f |= FlagReverseDelta
	}
	if c.Metadata != "" {
		f |= FlagMetadata
	}
	return f
}
