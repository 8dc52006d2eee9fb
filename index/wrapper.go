package index

import (
	"github.com/cimcore/cim/codec"
	"github.com/cimcore/cim/objectstore"
)

// EncryptedCidWrapper is the record {cid, encrypted_metadata, key_id_hash}
// used when an index entry's metadata must stay confidential while its
// CID remains queryable in plaintext (spec §4.F "Encrypted-CID
// wrapper"). The CID itself is bound into the AEAD associated data, so
// a ciphertext cannot be replayed under a different CID.
//
// The wrapper has no CID of its own: its CID field names the content it
// describes, and the wrapper is keyed by that string when persisted
// rather than by a hash of the wrapper's own bytes. See DESIGN.md for
// the reasoning behind that choice.
type EncryptedCidWrapper struct {
	CID               string   `cbor:"cid"`
	EncryptedMetadata []byte   `cbor:"encrypted_metadata"`
	Nonce             []byte   `cbor:"nonce"`
	KeyIDHash         [32]byte `cbor:"key_id_hash"`
}

// WrapMetadata encrypts meta under aead, binding cid as associated data.
func WrapMetadata(cid string, meta Metadata, aead *objectstore.AEAD, keyIDHash [32]byte) (EncryptedCidWrapper, error) {
	plaintext, err := codec.Marshal(meta)
	if err != nil {
		return EncryptedCidWrapper{}, err
	}
	nonce, ciphertext, err := aead.Seal(plaintext, []byte(cid))
	if err != nil {
		return EncryptedCidWrapper{}, err
	}
	return EncryptedCidWrapper{
		CID:               cid,
		EncryptedMetadata: ciphertext,
		Nonce:             nonce,
		KeyIDHash:         keyIDHash,
	}, nil
}

// Unwrap decrypts the wrapper's metadata, failing with DecryptionError
// if aead's key doesn't match or the wrapper's CID was tampered with.
func (w EncryptedCidWrapper) Unwrap(aead *objectstore.AEAD) (Metadata, error) {
	plaintext, err := aead.Open(w.Nonce, w.EncryptedMetadata, []byte(w.CID))
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	if err := codec.Unmarshal(plaintext, &meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}
