package patchfmt

import (
	"encoding/binary"
	"fmt"
)

// Detect inspects the first eight bytes of data and reports which wire
// variant they select. Buffers too short to hold a magic sequence are raw.
func Detect(data []byte) Format {
	if len(data) >= 8 {
		switch string(data[:8]) {
		case MagicVersioned:
			return FormatVersioned
		case MagicLegacy:
			return FormatLegacy
		}
	}
	return FormatRaw
}

// Decode parses a patch file in any of the three wire variants.
//
// Raw inputs never fail: the whole stream becomes the forward delta and its
// validity is the delta primitive's problem. Framed inputs are parsed with
// every fixed- and variable-length field bounds-checked against the
// remaining buffer; a shortfall at any field boundary yields a KindCorrupt
// error naming that field, never a silent truncation.
func Decode(data []byte) (*Container, error) {
	switch Detect(data) {
	case FormatLegacy:
		return decodeLegacy(data)
	case FormatVersioned:
		return decodeVersioned(data)
	default:
		return &Container{Format: FormatRaw, ForwardDelta: data}, nil
	}
}

func decodeVersioned(data []byte) (*Container, error) {
	r := reader{buf: data, off: 8} // magic already matched by Detect

	version, err := r.byte("version")
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, &Error{
			Kind:    KindUnsupportedVersion,
			Message: fmt.Sprintf("patchfmt: unsupported version %d (supported: %d)", version, Version),
		}
	}

	flags, err := r.uint32("flags")
	if err != nil {
		return nil, err
	}

	c := &Container{Format: FormatVersioned}

	if flags&FlagBaseDigest != 0 {
		d, err := r.digest("base digest")
		if err != nil {
			return nil, err
		}
		c.BaseDigest = d
	}
	if flags&FlagOutputDigest != 0 {
		d, err := r.digest("output digest")
		if err != nil {
			return nil, err
		}
		c.OutputDigest = d
	}

	if flags&FlagMetadata != 0 {
		n, err := r.uint32("metadata length")
		if err != nil {
			return nil, err
		}
		meta, err := r.bytes(int(n), "metadata")
		if err != nil {
			return nil, err
		}
		c.Metadata = string(meta)
	}

	fwdLen, err := r.uint64("forward delta length")
	if err != nil {
		return nil, err
	}
	c.ForwardDelta, err = r.bytes64(fwdLen, "forward delta")
	if err != nil {
		return nil, err
	}

	if flags&FlagReverseDelta != 0 {
		revLen, err := r.uint64("reverse delta length")
		if err != nil {
			return nil, err
		}
		c.ReverseDelta, err = r.bytes64(revLen, "reverse delta")
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

// decodeLegacy parses the fixed-header first revision: both digests always
// present, everything after the header is the forward delta.
func decodeLegacy(data []byte) (*Container, error) {
	if len(data) < legacyHeaderSize {
		return nil, corrupt("legacy header", fmt.Sprintf(
			"patchfmt: legacy container too small: %d bytes, need at least %d", len(data), legacyHeaderSize))
	}

	var base, output [DigestSize]byte
	copy(base[:], data[8:8+DigestSize])
	copy(output[:], data[8+DigestSize:legacyHeaderSize])

	return &Container{
		Format:       FormatLegacy,
		BaseDigest:   &base,
		OutputDigest: &output,
		ForwardDelta: data[legacyHeaderSize:],
	}, nil
}

// reader is a bounds-checked cursor over the input buffer. Every read
// names the wire field it serves so truncation errors are diagnosable
// without re-running with extra tooling.
type reader struct {
	buf []byte
	off int
}

func (r *reader) need(n int, field string) error {
	if n < 0 || len(r.buf)-r.off < n {
		return corrupt(field, fmt.Sprintf(
			"patchfmt: truncated %s: need %d bytes at offset %d, have %d",
			field, n, r.off, len(r.buf)-r.off))
	}
	return nil
}

func (r *reader) byte(field string) (byte, error) {
	if err := r.need(1, field); err != nil {
		return 0, err
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *reader) uint32(field string) (uint32, error) {
	if err := r.need(4, field); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) uint64(field string) (uint64, error) {
	if err := r.need(8, field); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

func (r *reader) bytes(n int, field string) ([]byte, error) {
	if err := r.need(n, field); err != nil {
		return nil, err
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// bytes64 guards against length fields that exceed the platform int range
// before converting; such a declared length can never fit the remaining
// buffer anyway.
func (r *reader) bytes64(n uint64, field string) ([]byte, error) {
	if n > uint64(len(r.buf)) {
		return nil, corrupt(field, fmt.Sprintf(
			"patchfmt: truncated %s: declared length %d exceeds container size %d", field, n, len(r.buf)))
	}
	return r.bytes(int(n), field)
}

func (r *reader) digest(field string) (*[DigestSize]byte, error) {
	b, err := r.bytes(DigestSize, field)
	if err != nil {
		return nil, err
	}
	var d [DigestSize]byte
	copy(d[:], b)
	return &d, nil
}
