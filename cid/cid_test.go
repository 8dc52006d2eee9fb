package cid_test

import (
	"testing"

	"github.com/cimcore/cim/cid"
)

type fixedValue struct {
	codec uint64
	bytes []byte
}

func (f fixedValue) CodecCode() uint64             { return f.codec }
func (f fixedValue) CanonicalBytes() ([]byte, error) { return f.bytes, nil }

func TestOfDeterministic(t *testing.T) {
	a := fixedValue{codec: 0x55, bytes: []byte("hello")}
	b := fixedValue{codec: 0x55, bytes: []byte("hello")}

	idA, err := cid.Of(a)
	if err != nil {
		t.Fatalf("Of(a): %v", err)
	}
	idB, err := cid.Of(b)
	if err != nil {
		t.Fatalf("Of(b): %v", err)
	}
	if idA.String() != idB.String() {
		t.Fatalf("identical canonical bytes produced different CIDs: %s vs %s", idA, idB)
	}
}

func TestOfSingleByteDifference(t *testing.T) {
	a := fixedValue{codec: 0x55, bytes: []byte("hello")}
	b := fixedValue{codec: 0x55, bytes: []byte("hellp")}

	idA, _ := cid.Of(a)
	idB, _ := cid.Of(b)
	if idA.String() == idB.String() {
		t.Fatalf("single-byte difference produced identical CIDs")
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	plaintext := []byte("verify me")
	id, err := cid.FromPlaintext(0x55, plaintext)
	if err != nil {
		t.Fatalf("FromPlaintext: %v", err)
	}
	ok, err := cid.Verify(id, plaintext)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("Verify returned false for matching plaintext")
	}

	ok, err = cid.Verify(id, []byte("tampered"))
	if err != nil {
		t.Fatalf("Verify(tampered): %v", err)
	}
	if ok {
		t.Fatalf("Verify returned true for tampered plaintext")
	}
}

func TestParseAcceptsAlternateMultibase(t *testing.T) {
	id, err := cid.FromPlaintext(0x55, []byte("multibase"))
	if err != nil {
		t.Fatalf("FromPlaintext: %v", err)
	}

	b32 := id.String()
	reparsed, err := cid.Parse(b32)
	if err != nil {
		t.Fatalf("Parse(base32): %v", err)
	}
	if reparsed.String() != b32 {
		t.Fatalf("round trip mismatch: %s vs %s", reparsed, b32)
	}

	// 'z' is the multibase prefix for base58btc.
	b58, err := id.StringOfBase('z')
	if err != nil {
		t.Fatalf("encode base58btc: %v", err)
	}
	fromB58, err := cid.Parse(b58)
	if err != nil {
		t.Fatalf("Parse(base58btc): %v", err)
	}
	if fromB58.String() != b32 {
		t.Fatalf("base58btc input decoded to a different CID: %s vs %s", fromB58, b32)
	}
}

func TestHashAlgorithmSelection(t *testing.T) {
	plaintext := []byte("algo selection")
	sha, err := cid.FromPlaintext(0x55, plaintext, cid.WithHash(cid.SHA256))
	if err != nil {
		t.Fatalf("sha256: %v", err)
	}
	sha3, err := cid.FromPlaintext(0x55, plaintext, cid.WithHash(cid.SHA3256))
	if err != nil {
		t.Fatalf("sha3-256: %v", err)
	}
	if sha.String() == sha3.String() {
		t.Fatalf("different hash algorithms produced identical CIDs")
	}

	ok, err := cid.Verify(sha3, plaintext)
	if err != nil {
		t.Fatalf("Verify(sha3): %v", err)
	}
	if !ok {
		t.Fatalf("Verify failed to recover the non-default hash algorithm")
	}
}

func TestUndefinedCIDRejected(t *testing.T) {
	if _, err := cid.Verify(cid.Undef, []byte("x")); err == nil {
		t.Fatalf("Verify(Undef) should fail")
	}
}
