package sign

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"
)

func ed25519TestKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = 0x42
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return priv.Public().(ed25519.PublicKey), priv
}

func TestEd25519_SignAndVerify(t *testing.T) {
	pub, priv := ed25519TestKey(t)
	message := []byte("patch container bytes")

	armored, err := Ed25519(message, HashSHA256, priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !strings.HasPrefix(armored, "ed25519:sha256:") {
		t.Fatalf("armor = %q", armored)
	}
	if err := Verify(message, armored, pub); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerify_RejectsTamperedMessage(t *testing.T) {
	pub, priv := ed25519TestKey(t)
	message := []byte("patch container bytes")

	armored, err := Ed25519(message, HashSHA256, priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	tampered := append([]byte(nil), message...)
	tampered[0] ^= 0x80
	if err := Verify(tampered, armored, pub); err == nil {
		t.Fatalf("tampered message verified")
	}
}

func TestEd25519_AlternativeHashes(t *testing.T) {
	pub, priv := ed25519TestKey(t)
	message := []byte("artifact")

	for _, hashAlg := range []string{HashSHA512, HashSHA3256} {
		armored, err := Ed25519(message, hashAlg, priv)
		if err != nil {
			t.Fatalf("sign with %s: %v", hashAlg, err)
		}
		if err := Verify(message, armored, pub); err != nil {
			t.Fatalf("verify with %s: %v", hashAlg, err)
		}
	}

	if _, err := Ed25519(message, "md5", priv); err == nil {
		t.Fatalf("expected error for unsupported hash")
	}
}

func TestDilithium3_SignAndVerify(t *testing.T) {
	pub, priv, err := GenerateDilithium3Keypair(rand.Reader)
	if err != nil {
		t.Fatalf("keygen: %v", err)
	}
	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}

	message := []byte("patch container bytes")
	armored, err := Dilithium3(message, HashSHA3256, priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !strings.HasPrefix(armored, "dilithium3:sha3-256:") {
		t.Fatalf("armor = %q", armored)
	}
	if err := Verify(message, armored, pubBytes); err != nil {
		t.Fatalf("verify: %v", err)
	}

	tampered := append([]byte(nil), message...)
	tampered[0] ^= 0x01
	if err := Verify(tampered, armored, pubBytes); err == nil {
		t.Fatalf("tampered message verified")
	}
}

func TestParse(t *testing.T) {
	s, err := Parse("ed25519:sha256:QUJD")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Alg != "ed25519" || s.Hash != "sha256" || string(s.Sig) != "ABC" {
		t.Fatalf("parsed = %+v", s)
	}

	for _, bad := range []string{"", "ed25519", "ed25519:sha256", "ed25519:sha256:***"} {
		if _, err := Parse(bad); err == nil {
			t.Fatalf("Parse(%q) succeeded", bad)
		}
	}
}

func TestVerify_UnsupportedAlgorithm(t *testing.T) {
	if err := Verify([]byte("m"), "rsa:sha256:QUJD", []byte("key")); err == nil {
		t.Fatalf("expected error for unsupported algorithm")
	}
}

func TestRoundTrip_Armor(t *testing.T) {
	s := &Signature{Alg: AlgEd25519, Hash: HashSHA256, Sig: []byte{1, 2, 3, 4}}
	got, err := Parse(s.Armor())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Alg != s.Alg || got.Hash != s.Hash || string(got.Sig) != string(s.Sig) {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, s)
	}
}
