package objectstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/cimcore/cim/cimerrors"
)

// KeyIDHash returns the full 32-byte SHA-256 digest of key to identify it for
// rotation detection (spec §4.E, §4.F "key identifier"), without
// revealing the key itself.
func KeyIDHash(key []byte) [keyIDHashLen]byte {
	return sha256.Sum256(key)
}

// AEAD wraps a configured algorithm and key, producing fresh random
// nonces per seal (spec §4.E step 5, §4.F "At-rest encryption").
type AEAD struct {
	algo EncryptionAlgo
	aead cipher.AEAD
}

// NewAEAD constructs an AEAD cipher for algo using key. AES-256-GCM uses
// crypto/aes + crypto/cipher directly — no third-party classical AEAD
// implementation appears anywhere in the reference corpus, so this is
// the object store's one deliberate standard-library primitive.
// ChaCha20-Poly1305 and XChaCha20-Poly1305 use
// golang.org/x/crypto/chacha20poly1305, already a direct dependency.
func NewAEAD(algo EncryptionAlgo, key []byte) (*AEAD, error) {
	switch algo {
	case EncryptionAES256GCM:
		if len(key) != 32 {
			return nil, cimerrors.New(cimerrors.KeyRotation, "objectstore: AES-256-GCM requires a 32-byte key")
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, cimerrors.Wrap(cimerrors.KeyRotation, "objectstore: constructing AES cipher", err)
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, cimerrors.Wrap(cimerrors.KeyRotation, "objectstore: constructing GCM mode", err)
		}
		return &AEAD{algo: algo, aead: gcm}, nil

	case EncryptionChaCha20Poly1305:
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, cimerrors.Wrap(cimerrors.KeyRotation, "objectstore: constructing ChaCha20-Poly1305", err)
		}
		return &AEAD{algo: algo, aead: aead}, nil

	case EncryptionXChaCha20Poly1305:
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, cimerrors.Wrap(cimerrors.KeyRotation, "objectstore: constructing XChaCha20-Poly1305", err)
		}
		return &AEAD{algo: algo, aead: aead}, nil

	default:
		return nil, cimerrors.New(cimerrors.KeyRotation, "objectstore: unsupported encryption algorithm")
	}
}

// KeySize reports the key length algo's AEAD construction requires,
// for callers deriving a key with DeriveKey before calling NewAEAD.
func KeySize(algo EncryptionAlgo) int {
	switch algo {
	case EncryptionXChaCha20Poly1305:
		return chacha20poly1305.KeySize
	default:
		return 32 // AES-256-GCM and ChaCha20-Poly1305 both use 32-byte keys
	}
}

// DeriveKey stretches a lower-entropy secret (an operator-supplied
// passphrase or master secret, rather than a raw AEAD key) into a
// key of the length algo requires, using HKDF-SHA256 with salt and
// info for domain separation (spec §4.E step 5, §4.F "At-rest
// encryption"). Two calls with the same secret but different info
// produce unrelated keys, so one master secret can safely derive both
// the object store's and the index's encryption keys.
func DeriveKey(secret, salt, info []byte, algo EncryptionAlgo) ([]byte, error) {
	key := make([]byte, KeySize(algo))
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), key); err != nil {
		return nil, cimerrors.Wrap(cimerrors.KeyRotation, "objectstore: deriving key via HKDF", err)
	}
	return key, nil
}

func (a *AEAD) Algo() EncryptionAlgo { return a.algo }

func (a *AEAD) NonceSize() int { return a.aead.NonceSize() }

// Seal encrypts plaintext under a fresh random nonce, returning the
// nonce and ciphertext (with the Poly1305/GCM tag appended) separately
// so the caller can place them in the blob header and payload slots.
func (a *AEAD) Seal(plaintext, aad []byte) (nonce, ciphertext []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, cimerrors.Wrap(cimerrors.StorageError, "objectstore: generating nonce", err)
	}
	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return nonce, ciphertext, nil
}

// Open decrypts ciphertext, failing with DecryptionError on
// authentication failure (spec §4.E step 3).
func (a *AEAD) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, cimerrors.Wrap(cimerrors.DecryptionError, "objectstore: AEAD authentication failed", err)
	}
	return plaintext, nil
}
