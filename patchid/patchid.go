// Package patchid derives content identifiers for patch artifacts.
//
// Patch files are distributed and archived by content, not by name: two
// byte-identical patches always share one identifier. IDs are CIDv1 with
// the raw multicodec over a sha2-256 multihash, so any IPFS-compatible
// tooling can address the same bytes.
package patchid

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ID derives the content identifier for a patch artifact.
func ID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// String derives the identifier in its canonical string form. With a fixed
// hash function and default length the underlying sum cannot fail, so the
// empty string is unreachable in practice.
func String(data []byte) string {
	id, err := ID(data)
	if err != nil {
		return ""
	}
	return id.String()
}
