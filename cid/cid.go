// Package cid implements the canonical serializer and CID builder
// (spec §4.A): deterministic content addressing over canonical bytes,
// using a selectable hash algorithm and multihash/CID encoding supplied
// by github.com/ipfs/go-cid and github.com/multiformats/go-multihash.
package cid

import (
	ipfscid "github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"

	"github.com/cimcore/cim/cimerrors"
)

// CID is a self-describing content address: (version, codec_code,
// multihash). Version is always v1 for CIDs produced by this package.
// Equality is bytewise on the canonical binary form, delegated to the
// embedded ipfscid.Cid.
type CID struct {
	ipfscid.Cid
}

// Undef is the zero-value, undefined CID.
var Undef = CID{Cid: ipfscid.Undef}

// Canonicalizable is implemented by any type that can produce the
// deterministic byte form used for hashing (spec §3 "Canonical bytes")
// along with the codec code identifying how that form was produced.
type Canonicalizable interface {
	// CodecCode returns the stable numeric codec code for this value's
	// encoding (spec §3 "Codec code ranges").
	CodecCode() uint64
	// CanonicalBytes returns the hashable byte form, excluding any
	// transient fields the type declares unstable.
	CanonicalBytes() ([]byte, error)
}

// Options configures CID derivation.
type Options struct {
	// Hash selects the digest function. Defaults to Default (SHA-256).
	Hash HashAlgorithm
}

// Option mutates Options.
type Option func(*Options)

// WithHash selects a non-default hash algorithm.
func WithHash(alg HashAlgorithm) Option {
	return func(o *Options) { o.Hash = alg }
}

func resolveOptions(opts []Option) Options {
	o := Options{Hash: Default}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Of computes the CID of value per the algorithm in spec §4.A:
//  1. plaintext = value.CanonicalBytes()
//  2. digest = hash(plaintext)
//  3. multihash = (hash_code, length, digest)
//  4. CID = (v1, codec_code, multihash)
//
// Returns CanonicalizationError if CanonicalBytes fails, or HashError if
// digest computation fails (not expected for in-memory buffers).
func Of(value Canonicalizable, opts ...Option) (CID, error) {
	plaintext, err := value.CanonicalBytes()
	if err != nil {
		return Undef, cimerrors.Wrap(cimerrors.CanonicalizationError, "canonical-bytes hook failed", err)
	}
	return FromPlaintext(value.CodecCode(), plaintext, opts...)
}

// FromPlaintext computes the CID directly from already-canonicalized
// plaintext bytes and an explicit codec code. Of and Verify build on it,
// and the object store calls it directly when it already holds the
// plaintext bytes and codec code rather than a Canonicalizable value.
func FromPlaintext(codecCode uint64, plaintext []byte, opts ...Option) (CID, error) {
	o := resolveOptions(opts)
	hashCode, err := multihashCodeFor(o.Hash)
	if err != nil {
		return Undef, err
	}

	sum, err := mh.Sum(plaintext, hashCode, defaultDigestLength)
	if err != nil {
		return Undef, cimerrors.Wrap(cimerrors.HashError, "multihash digest failed", err)
	}

	return CID{Cid: ipfscid.NewCidV1(codecCode, sum)}, nil
}

// Verify recomputes the CID of bytes using id's own declared codec_code
// and hash algorithm, and reports whether it bytewise-matches id (spec
// §4.A "Verification").
func Verify(id CID, plaintext []byte) (bool, error) {
	if !id.Defined() {
		return false, cimerrors.New(cimerrors.InvalidCID, "undefined CID")
	}
	decoded, err := mh.Decode(id.Hash())
	if err != nil {
		return false, cimerrors.Wrap(cimerrors.HashError, "decoding stored multihash", err)
	}
	alg, err := algorithmForCode(decoded.Code)
	if err != nil {
		return false, err
	}

	recomputed, err := FromPlaintext(id.Prefix().Codec, plaintext, WithHash(alg))
	if err != nil {
		return false, err
	}
	return recomputed.Equals(id.Cid), nil
}

// Cast reconstructs a CID from its raw binary form (as produced by
// Bytes()), used when decoding an embedded link (e.g. DAG-CBOR tag 42)
// rather than a textual CID.
func Cast(b []byte) (CID, error) {
	decoded, err := ipfscid.Cast(b)
	if err != nil {
		return Undef, cimerrors.Wrap(cimerrors.InvalidCID, "casting raw CID bytes", err)
	}
	return CID{Cid: decoded}, nil
}

// Parse decodes a CID string in any accepted multibase encoding (base32
// multibase lowercase is canonical; base58btc and base64 are accepted on
// input, per spec §6) into its canonical binary form.
func Parse(s string) (CID, error) {
	decoded, err := ipfscid.Decode(s)
	if err != nil {
		return Undef, cimerrors.Wrap(cimerrors.InvalidCID, "decoding CID string", err)
	}
	return CID{Cid: decoded}, nil
}

// String renders the canonical CIDv1 string form: lowercase base32
// multibase.
func (c CID) String() string {
	if !c.Defined() {
		return ""
	}
	return c.Cid.String()
}

// CodecCode returns the CID's declared codec code.
func (c CID) CodecCode() uint64 { return c.Prefix().Codec }
