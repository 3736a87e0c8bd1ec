package patchfmt

import "encoding/binary"

// Encode serializes c as the current versioned variant.
//
// Legacy and raw containers do not round-trip through their original
// framing: re-encoding always upgrades them to the versioned form. Field
// order is fixed regardless of which optional fields are present:
//
//	MAGIC(8) VERSION(1) FLAGS(4)
//	[BASE_DIGEST(32)] [OUTPUT_DIGEST(32)]
//	[META_LEN(4) META] FWD_LEN(8) FWD [REV_LEN(8) REV]
//
// All integers are little-endian.
func Encode(c *Container) []byte {
	flags := c.flags()

	size := headerSize
	if flags&FlagBaseDigest != 0 {
		size += DigestSize
	}
	if flags&FlagOutputDigest != 0 {
		size += DigestSize
	}
	if flags&FlagMetadata != 0 {
		size += 4 + len(c.Metadata)
	}
	size += 8 + len(c.ForwardDelta)
	if flags&FlagReverseDelta != 0 {
		size += 8 + len(c.ReverseDelta)
	}

	out := make([]byte, 0, size)
	out = append(out, MagicVersioned...)
	out = append(out, Version)
	out = binary.LittleEndian.AppendUint32(out, flags)

	if c.BaseDigest != nil {
		out = append(out, c.BaseDigest[:]...)
	}
	if c.OutputDigest != nil {
		out = append(out, c.OutputDigest[:]...)
	}
	if flags&FlagMetadata != 0 {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(c.Metadata)))
		out = append(out, c.Metadata...)
	}

	out = binary.LittleEndian.AppendUint64(out, uint64(len(c.ForwardDelta)))
	out = append(out, c.ForwardDelta...)

	if c.ReverseDelta != nil {
		out = binary.LittleEndian.AppendUint64(out, uint64(len(c.ReverseDelta)))
		out = append(out, c.ReverseDelta...)
	}

	return out
}
