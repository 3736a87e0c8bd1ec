// Package sign produces and verifies detached signatures over patch
// artifacts.
//
// Signatures are detached on purpose: the container format stays byte-for-
// byte identical whether or not a patch is signed, and verification covers
// the exact artifact bytes that will be archived and distributed. The armor
// line format is "alg:hash:base64(signature)".
package sign

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// Supported signature algorithms.
const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"
)

// Supported digest algorithms for the signed message.
const (
	HashSHA256  = "sha256"
	HashSHA512  = "sha512"
	HashSHA3256 = "sha3-256"
)

// Signature is a parsed detached signature.
type Signature struct {
	Alg  string
	Hash string
	Sig  []byte
}

// Armor renders the signature in its single-line file form.
func (s *Signature) Armor() string {
	return s.Alg + ":" + s.Hash + ":" + base64.StdEncoding.EncodeToString(s.Sig)
}

// Parse parses an armored detached signature.
func Parse(armored string) (*Signature, error) {
	armored = strings.TrimSpace(armored)
	parts := strings.SplitN(armored, ":", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("sign: malformed signature: want alg:hash:base64")
	}
	raw, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("sign: invalid signature base64: %w", err)
	}
	return &Signature{Alg: parts[0], Hash: parts[1], Sig: raw}, nil
}

func digestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case HashSHA256:
		s := sha256.Sum256(message)
		return s[:], nil
	case HashSHA512:
		s := sha512.Sum512(message)
		return s[:], nil
	case HashSHA3256:
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("sign: unsupported hash algorithm %q", hashAlg)
	}
}

// Ed25519 signs hash(message) and returns the armored signature.
func Ed25519(message []byte, hashAlg string, privateKey ed25519.PrivateKey) (string, error) {
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return "", err
	}
	s := &Signature{Alg: AlgEd25519, Hash: hashAlg, Sig: ed25519.Sign(privateKey, digest)}
	return s.Armor(), nil
}

// Dilithium3 signs hash(message) with a post-quantum key and returns the
// armored signature.
func Dilithium3(message []byte, hashAlg string, privateKey *mode3.PrivateKey) (string, error) {
	if privateKey == nil {
		return "", fmt.Errorf("sign: missing private key")
	}
	digest, err := digestFor(hashAlg, message)
	if err != nil {
		return "", err
	}
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(privateKey, digest, sig)
	s := &Signature{Alg: AlgDilithium3, Hash: hashAlg, Sig: sig}
	return s.Armor(), nil
}

// Verify checks an armored detached signature over message against the raw
// public key bytes for the signature's algorithm.
func Verify(message []byte, armored string, publicKey []byte) error {
	s, err := Parse(armored)
	if err != nil {
		return err
	}
	digest, err := digestFor(s.Hash, message)
	if err != nil {
		return err
	}

	switch s.Alg {
	case AlgEd25519:
		if len(publicKey) != ed25519.PublicKeySize {
			return fmt.Errorf("sign: invalid ed25519 public key length %d", len(publicKey))
		}
		if len(s.Sig) != ed25519.SignatureSize {
			return fmt.Errorf("sign: invalid ed25519 signature length %d", len(s.Sig))
		}
		if !ed25519.Verify(ed25519.PublicKey(publicKey), digest, s.Sig) {
			return fmt.Errorf("sign: signature invalid")
		}
		return nil
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(publicKey); err != nil {
			return fmt.Errorf("sign: invalid dilithium3 public key: %w", err)
		}
		if len(s.Sig) != mode3.SignatureSize {
			return fmt.Errorf("sign: invalid dilithium3 signature length %d", len(s.Sig))
		}
		if !mode3.Verify(&pk, digest, s.Sig) {
			return fmt.Errorf("sign: signature invalid")
		}
		return nil
	default:
		return fmt.Errorf("sign: unsupported signature algorithm %q", s.Alg)
	}
}

// GenerateDilithium3Keypair returns a new Dilithium3 keypair.
func GenerateDilithium3Keypair(rand io.Reader) (*mode3.PublicKey, *mode3.PrivateKey, error) {
	return mode3.GenerateKey(rand)
}
