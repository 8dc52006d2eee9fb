package index

import (
	"github.com/cimcore/cim/cimerrors"
	"github.com/cimcore/cim/objectstore"
)

// Rotate implements key rotation (spec §4.F "Key rotation"): it walks
// the four persisted buckets, decrypts each section with oldAEAD,
// re-encrypts with newAEAD, and stores the result under newKeyIDHash.
// Sections already bearing newKeyIDHash are left untouched, so a
// rotation interrupted mid-way is safe to resume by calling Rotate
// again with the same arguments.
func Rotate(backend objectstore.Backend, oldAEAD, newAEAD *objectstore.AEAD, newKeyIDHash [32]byte) error {
	if oldAEAD == nil || newAEAD == nil {
		return cimerrors.New(cimerrors.KeyRotation, "index: rotation requires both an old and a new AEAD")
	}

	buckets := []string{TextIndexBucket, TagIndexBucket, TypeIndexBucket, MetadataCacheBucket}
	oldP := &Persister{Backend: backend, AEAD: oldAEAD}
	newP := &Persister{Backend: backend, AEAD: newAEAD, KeyIDHash: newKeyIDHash}

	for _, bucket := range buckets {
		raw, err := backend.Get(bucket, snapshotKey)
		if err != nil {
			if cimerrors.HasCode(err, cimerrors.NotFound) {
				continue
			}
			return cimerrors.Wrap(cimerrors.KeyRotation, "index: reading "+bucket, err)
		}

		header, _, err := objectstore.DecodeHeader(raw)
		if err == nil && header.Encrypted && header.KeyIDHash == newKeyIDHash {
			continue // already rotated, resumable
		}

		plaintext, err := oldP.decode(raw)
		if err != nil {
			return cimerrors.Wrap(cimerrors.KeyRotation, "index: decrypting "+bucket, err)
		}
		stored, err := newP.encode(plaintext)
		if err != nil {
			return cimerrors.Wrap(cimerrors.KeyRotation, "index: re-encrypting "+bucket, err)
		}
		if err := backend.Put(bucket, snapshotKey, stored); err != nil {
			return cimerrors.Wrap(cimerrors.KeyRotation, "index: writing rotated "+bucket, err)
		}
	}
	return nil
}
