package objectstore_test

import (
	"testing"

	"github.com/cimcore/cim/objectstore"
)

func testKey(n int) []byte {
	k := make([]byte, n)
	for i := range k {
		k[i] = byte(i*7 + 1)
	}
	return k
}

func TestAEADRoundTripAllAlgorithms(t *testing.T) {
	cases := []struct {
		name    string
		algo    objectstore.EncryptionAlgo
		keyLen  int
	}{
		{"aes-256-gcm", objectstore.EncryptionAES256GCM, 32},
		{"chacha20poly1305", objectstore.EncryptionChaCha20Poly1305, 32},
		{"xchacha20poly1305", objectstore.EncryptionXChaCha20Poly1305, 32},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			aead, err := objectstore.NewAEAD(c.algo, testKey(c.keyLen))
			if err != nil {
				t.Fatalf("new aead: %v", err)
			}
			plaintext := []byte("top secret message")
			nonce, ciphertext, err := aead.Seal(plaintext, nil)
			if err != nil {
				t.Fatalf("seal: %v", err)
			}
			got, err := aead.Open(nonce, ciphertext, nil)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if string(got) != string(plaintext) {
				t.Fatalf("roundtrip mismatch: got %q want %q", got, plaintext)
			}
		})
	}
}

func TestAEADRejectsTamperedCiphertext(t *testing.T) {
	aead, err := objectstore.NewAEAD(objectstore.EncryptionAES256GCM, testKey(32))
	if err != nil {
		t.Fatalf("new aead: %v", err)
	}
	nonce, ciphertext, err := aead.Seal([]byte("message"), nil)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	ciphertext[0] ^= 0xFF
	if _, err := aead.Open(nonce, ciphertext, nil); err == nil {
		t.Fatalf("expected DecryptionError for tampered ciphertext")
	}
}

func TestDeriveKeyDeterministicAndUsableWithAEAD(t *testing.T) {
	secret := []byte("a long-lived operator passphrase")
	salt := []byte("cim-deployment-1")

	key1, err := objectstore.DeriveKey(secret, salt, []byte("objectstore"), objectstore.EncryptionAES256GCM)
	if err != nil {
		t.Fatalf("derive key: %v", err)
	}
	key2, err := objectstore.DeriveKey(secret, salt, []byte("objectstore"), objectstore.EncryptionAES256GCM)
	if err != nil {
		t.Fatalf("derive key: %v", err)
	}
	if string(key1) != string(key2) {
		t.Fatalf("expected deterministic derivation for the same inputs")
	}

	indexKey, err := objectstore.DeriveKey(secret, salt, []byte("index"), objectstore.EncryptionAES256GCM)
	if err != nil {
		t.Fatalf("derive key: %v", err)
	}
	if string(key1) == string(indexKey) {
		t.Fatalf("expected different info strings to derive unrelated keys")
	}

	if len(key1) != objectstore.KeySize(objectstore.EncryptionAES256GCM) {
		t.Fatalf("expected derived key length to match KeySize")
	}
	if _, err := objectstore.NewAEAD(objectstore.EncryptionAES256GCM, key1); err != nil {
		t.Fatalf("expected derived key to be usable with NewAEAD: %v", err)
	}
}

func TestKeyIDHashIsStableForSameKey(t *testing.T) {
	key := testKey(32)
	a := objectstore.KeyIDHash(key)
	b := objectstore.KeyIDHash(key)
	if a != b {
		t.Fatalf("expected stable key id hash for the same key")
	}
}
