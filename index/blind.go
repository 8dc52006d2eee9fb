package index

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// BlindKeySize is the key length required for keyed BLAKE3 hashing.
const BlindKeySize = 32

// BlindIndexer derives deterministic, keyed tokens for text terms,
// tags, and content types so a confidential index's key space does not
// leak vocabulary to a reader who lacks the blinding key, independent
// of whatever AEAD key protects the persisted metadata values (spec
// §4.F "Encrypted-CID wrapper"). Two indices built from the same
// secret but different context strings produce unrelated token spaces,
// so one secret can safely scope the text, tag, and type indices apart.
//
// go-multihash's registered BLAKE3 code (the hash selectable from
// cid.Of) only runs BLAKE3 unkeyed, so confidential indexing uses
// zeebo/blake3 directly for its keyed mode and DeriveKey.
type BlindIndexer struct {
	key [BlindKeySize]byte
}

// NewBlindIndexer derives a context-scoped key from secret.
func NewBlindIndexer(secret []byte, context string) *BlindIndexer {
	var key [BlindKeySize]byte
	blake3.DeriveKey(context, secret, key[:])
	return &BlindIndexer{key: key}
}

// Blind returns the keyed BLAKE3 MAC of token, hex-encoded so it can
// serve as an ordinary map key.
func (b *BlindIndexer) Blind(token string) string {
	h, err := blake3.NewKeyed(b.key[:])
	if err != nil {
		// NewKeyed only rejects a key of the wrong length, which
		// BlindKeySize rules out by construction.
		panic(err)
	}
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}
