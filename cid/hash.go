package cid

import (
	mh "github.com/multiformats/go-multihash"

	"github.com/cimcore/cim/cimerrors"
)

// HashAlgorithm names a digest function accepted for CID derivation
// (spec §4.A). The zero value is not a valid algorithm; use Default.
type HashAlgorithm string

const (
	SHA256  HashAlgorithm = "sha2-256"
	SHA512  HashAlgorithm = "sha2-512"
	SHA3256 HashAlgorithm = "sha3-256"
	Blake3  HashAlgorithm = "blake3-256"

	// Default is the hash algorithm used when callers do not select one.
	Default HashAlgorithm = SHA256
)

var multihashCode = map[HashAlgorithm]uint64{
	SHA256:  mh.SHA2_256,
	SHA512:  mh.SHA2_512,
	SHA3256: mh.SHA3_256,
	Blake3:  mh.BLAKE3,
}

var multihashName = func() map[uint64]HashAlgorithm {
	out := make(map[uint64]HashAlgorithm, len(multihashCode))
	for alg, code := range multihashCode {
		out[code] = alg
	}
	return out
}()

// multihashCodeFor resolves the registered multihash code for alg.
func multihashCodeFor(alg HashAlgorithm) (uint64, error) {
	code, ok := multihashCode[alg]
	if !ok {
		return 0, cimerrors.New(cimerrors.HashError, "unsupported hash algorithm: "+string(alg))
	}
	return code, nil
}

// algorithmForCode resolves the HashAlgorithm for a registered multihash
// code, used when re-deriving a CID's hash algorithm from its multihash.
func algorithmForCode(code uint64) (HashAlgorithm, error) {
	alg, ok := multihashName[code]
	if !ok {
		return "", cimerrors.New(cimerrors.HashError, "unrecognized multihash code")
	}
	return alg, nil
}

// defaultDigestLength is the length passed to multihash.Sum. All
// algorithms accepted here are fixed-length 256 or 512 bit digests; -1
// tells multihash.Sum to use the algorithm's default length.
const defaultDigestLength = -1
