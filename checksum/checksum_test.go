package checksum

import (
	"errors"
	"strings"
	"testing"
)

func TestSum_DeterministicAndInputSensitive(t *testing.T) {
	a := Sum([]byte("same input"))
	b := Sum([]byte("same input"))
	if a != b {
		t.Fatalf("digest not deterministic")
	}
	c := Sum([]byte("same input."))
	if a == c {
		t.Fatalf("distinct inputs produced identical digests")
	}
}

func TestNew_AlgorithmsAreDistinct(t *testing.T) {
	data := []byte("the quick brown fox")
	digests := map[Algorithm][Size]byte{}
	for _, alg := range []Algorithm{SHA256, SHA3256, BLAKE3} {
		sum, err := New(alg)
		if err != nil {
			t.Fatalf("New(%s): %v", alg, err)
		}
		digests[alg] = sum(data)
	}
	if digests[SHA256] == digests[SHA3256] || digests[SHA256] == digests[BLAKE3] || digests[SHA3256] == digests[BLAKE3] {
		t.Fatalf("different algorithms must not collide on the same input")
	}
}

func TestNew_UnknownAlgorithm(t *testing.T) {
	if _, err := New("md5"); err == nil {
		t.Fatalf("expected error for unsupported algorithm")
	}
}

func TestVerify_Match(t *testing.T) {
	data := []byte("payload")
	if err := Verify(nil, data, Sum(data)); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerify_MismatchReportsBothDigestsInHex(t *testing.T) {
	data := []byte("payload")
	expected := Sum([]byte("different payload"))

	err := Verify(nil, data, expected)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected MismatchError, got %v", err)
	}
	if mismatch.Expected != Hex(expected) {
		t.Fatalf("Expected = %s, want %s", mismatch.Expected, Hex(expected))
	}
	if mismatch.Actual != Hex(Sum(data)) {
		t.Fatalf("Actual = %s, want %s", mismatch.Actual, Hex(Sum(data)))
	}
	if len(mismatch.Expected) != 2*Size || strings.ToLower(mismatch.Expected) != mismatch.Expected {
		t.Fatalf("digests must render as lowercase hex: %s", mismatch.Expected)
	}
}

func TestVerify_HonorsInjectedStrategy(t *testing.T) {
	sum, err := New(BLAKE3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := []byte("payload")
	if err := Verify(sum, data, sum(data)); err != nil {
		t.Fatalf("verify with injected strategy: %v", err)
	}
	// The default strategy must reject a blake3 digest.
	if err := Verify(nil, data, sum(data)); err == nil {
		t.Fatalf("default strategy accepted a foreign digest")
	}
}
