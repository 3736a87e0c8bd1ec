package patchfmt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"testing"
)

func digestOf(fill byte) *[DigestSize]byte {
	var d [DigestSize]byte
	for i := range d {
		d[i] = fill
	}
	return &d
}

func TestEncodeDecode_RoundTripAllFeatureCombinations(t *testing.T) {
	forward := []byte("forward-delta-payload")
	reverse := []byte("reverse-delta")

	for mask := 0; mask < 16; mask++ {
		c := &Container{
			Format:       FormatVersioned,
			ForwardDelta: forward,
		}
		if mask&1 != 0 {
			c.BaseDigest = digestOf(0xaa)
		}
		if mask&2 != 0 {
			c.OutputDigest = digestOf(0xbb)
		}
		if mask&4 != 0 {
			c.ReverseDelta = reverse
		}
		if mask&8 != 0 {
			c.Metadata = "release 2.4.1 to 2.4.2"
		}

		got, err := Decode(Encode(c))
		if err != nil {
			t.Fatalf("mask %04b: decode: %v", mask, err)
		}
		if !reflect.DeepEqual(got, c) {
			t.Fatalf("mask %04b: round trip mismatch:\n got %+v\nwant %+v", mask, got, c)
		}
	}
}

func TestEncode_FlagsMirrorFieldPresence(t *testing.T) {
	c := &Container{
		ForwardDelta: []byte("fwd"),
		OutputDigest: digestOf(1),
		Metadata:     "m",
	}
	enc := Encode(c)
	flags := binary.LittleEndian.Uint32(enc[9:13])
	want := FlagOutputDigest | FlagMetadata
	if flags != want {
		t.Fatalf("flags = %#x, want %#x", flags, want)
	}
}

func TestEncode_FieldOrderIsFixed(t *testing.T) {
	c := &Container{
		ForwardDelta: []byte("FWD"),
		ReverseDelta: []byte("REV"),
		Metadata:     "meta",
		BaseDigest:   digestOf(2),
		OutputDigest: digestOf(3),
	}
	enc := Encode(c)

	off := headerSize
	if !bytes.Equal(enc[off:off+DigestSize], c.BaseDigest[:]) {
		t.Fatalf("base digest not at offset %d", off)
	}
	off += DigestSize
	if !bytes.Equal(enc[off:off+DigestSize], c.OutputDigest[:]) {
		t.Fatalf("output digest not at offset %d", off)
	}
	off += DigestSize
	if binary.LittleEndian.Uint32(enc[off:]) != uint32(len(c.Metadata)) {
		t.Fatalf("metadata length not at offset %d", off)
	}
	off += 4 + len(c.Metadata)
	if binary.LittleEndian.Uint64(enc[off:]) != uint64(len(c.ForwardDelta)) {
		t.Fatalf("forward length not at offset %d", off)
	}
	off += 8 + len(c.ForwardDelta)
	if binary.LittleEndian.Uint64(enc[off:]) != uint64(len(c.ReverseDelta)) {
		t.Fatalf("reverse length not at offset %d", off)
	}
}

func TestDecode_Legacy(t *testing.T) {
	payload := []byte("legacy-forward-payload")
	buf := append([]byte(MagicLegacy), digestOf(0x11)[:]...)
	buf = append(buf, digestOf(0x22)[:]...)
	buf = append(buf, payload...)

	c, err := Decode(buf)
	if err != nil {
		t.Fatalf("decode legacy: %v", err)
	}
	if c.Format != FormatLegacy {
		t.Fatalf("format = %v, want legacy", c.Format)
	}
	if *c.BaseDigest != *digestOf(0x11) || *c.OutputDigest != *digestOf(0x22) {
		t.Fatalf("legacy digests not preserved")
	}
	if !bytes.Equal(c.ForwardDelta, payload) {
		t.Fatalf("legacy forward delta not preserved")
	}
	if c.ReverseDelta != nil || c.Metadata != "" {
		t.Fatalf("legacy container must not carry reverse delta or metadata")
	}
}

func TestDecode_LegacyTooSmall(t *testing.T) {
	buf := append([]byte(MagicLegacy), make([]byte, 10)...)
	_, err := Decode(buf)
	if !IsKind(err, KindCorrupt) {
		t.Fatalf("expected corrupt error, got %v", err)
	}
	if FieldOf(err) != "legacy header" {
		t.Fatalf("field = %q, want legacy header", FieldOf(err))
	}
}

func TestDecode_RawFallback(t *testing.T) {
	for _, input := range [][]byte{
		[]byte("no magic here at all"),
		[]byte("short"),
		{},
	} {
		c, err := Decode(input)
		if err != nil {
			t.Fatalf("raw decode of %q: %v", input, err)
		}
		if c.Format != FormatRaw {
			t.Fatalf("format = %v, want raw", c.Format)
		}
		if !bytes.Equal(c.ForwardDelta, input) {
			t.Fatalf("raw forward delta must be the whole input")
		}
		if c.BaseDigest != nil || c.OutputDigest != nil || c.ReverseDelta != nil || c.Metadata != "" {
			t.Fatalf("raw container must carry only the forward delta")
		}
	}
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	enc := Encode(&Container{ForwardDelta: []byte("x")})
	enc[8] = 99

	_, err := Decode(enc)
	if !IsKind(err, KindUnsupportedVersion) {
		t.Fatalf("expected unsupported version error, got %v", err)
	}
	if IsKind(err, KindCorrupt) {
		t.Fatalf("unsupported version must be distinct from corruption")
	}
}

// Truncating a well-formed container at every field boundary must produce
// a corruption error naming the field that could not be read.
func TestDecode_TruncationNamesField(t *testing.T) {
	c := &Container{
		ForwardDelta: []byte("forward-payload"),
		ReverseDelta: []byte("reverse-payload"),
		Metadata:     "some metadata",
		BaseDigest:   digestOf(7),
		OutputDigest: digestOf(8),
	}
	enc := Encode(c)

	metaOff := headerSize + 2*DigestSize
	fwdLenOff := metaOff + 4 + len(c.Metadata)
	fwdOff := fwdLenOff + 8
	revLenOff := fwdOff + len(c.ForwardDelta)
	revOff := revLenOff + 8

	cases := []struct {
		cut   int
		field string
	}{
		{8, "version"},
		{10, "flags"},
		{headerSize + 10, "base digest"},
		{headerSize + DigestSize + 10, "output digest"},
		{metaOff + 2, "metadata length"},
		{metaOff + 4 + 3, "metadata"},
		{fwdLenOff + 5, "forward delta length"},
		{fwdOff + 4, "forward delta"},
		{revLenOff + 1, "reverse delta length"},
		{revOff + 2, "reverse delta"},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			_, err := Decode(enc[:tc.cut])
			if !IsKind(err, KindCorrupt) {
				t.Fatalf("cut at %d: expected corrupt error, got %v", tc.cut, err)
			}
			if FieldOf(err) != tc.field {
				t.Fatalf("cut at %d: field = %q, want %q", tc.cut, FieldOf(err), tc.field)
			}
		})
	}
}

func TestDecode_DeclaredLengthBeyondBuffer(t *testing.T) {
	enc := Encode(&Container{ForwardDelta: []byte("tiny")})
	// Inflate the declared forward length far past the container size.
	binary.LittleEndian.PutUint64(enc[headerSize:], 1<<40)

	_, err := Decode(enc)
	if !IsKind(err, KindCorrupt) {
		t.Fatalf("expected corrupt error, got %v", err)
	}
	if FieldOf(err) != "forward delta" {
		t.Fatalf("field = %q, want forward delta", FieldOf(err))
	}
}

func TestDetect(t *testing.T) {
	cases := []struct {
		input []byte
		want  Format
	}{
		{[]byte(MagicVersioned + "tail"), FormatVersioned},
		{[]byte(MagicLegacy + "tail"), FormatLegacy},
		{[]byte("BSDIFF40whatever"), FormatRaw},
		{[]byte("BPATCH"), FormatRaw},
		{nil, FormatRaw},
	}
	for _, tc := range cases {
		if got := Detect(tc.input); got != tc.want {
			t.Fatalf("Detect(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestFormat_String(t *testing.T) {
	for f, want := range map[Format]string{
		FormatRaw:       "raw",
		FormatLegacy:    "legacy",
		FormatVersioned: "versioned",
		Format(42):      "unknown",
	} {
		if got := fmt.Sprint(f); got != want {
			t.Fatalf("Format(%d).String() = %q, want %q", int(f), got, want)
		}
	}
}
