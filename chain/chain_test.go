package chain_test

import (
	"testing"

	"github.com/cimcore/cim/chain"
	"github.com/cimcore/cim/envelope"
	"github.com/cimcore/cim/objectstore"
	"github.com/cimcore/cim/objectstore/localfs"
)

func textEnv(t *testing.T, body string) envelope.Envelope {
	t.Helper()
	return envelope.NewText(envelope.Text, body)
}

func TestAppendMonotonicity(t *testing.T) {
	c := chain.New()
	a, err := c.Append(textEnv(t, "alpha"), 0)
	if err != nil {
		t.Fatalf("append a: %v", err)
	}
	b, err := c.Append(textEnv(t, "beta"), 0)
	if err != nil {
		t.Fatalf("append b: %v", err)
	}
	cc, err := c.Append(textEnv(t, "gamma"), 0)
	if err != nil {
		t.Fatalf("append c: %v", err)
	}

	if a.Sequence != 0 || b.Sequence != 1 || cc.Sequence != 2 {
		t.Fatalf("unexpected sequence numbers: %d %d %d", a.Sequence, b.Sequence, cc.Sequence)
	}
	if a.PreviousCID != "" {
		t.Fatalf("first item must have empty previous_cid")
	}
	aID, _ := a.CID()
	bID, _ := b.CID()
	if b.PreviousCID != aID.String() {
		t.Fatalf("b.PreviousCID = %q, want %q", b.PreviousCID, aID.String())
	}
	if cc.PreviousCID != bID.String() {
		t.Fatalf("c.PreviousCID = %q, want %q", cc.PreviousCID, bID.String())
	}

	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestDuplicateAppendDistinctCIDs(t *testing.T) {
	c := chain.New()
	a, err := c.Append(textEnv(t, "same body"), 0)
	if err != nil {
		t.Fatalf("append a: %v", err)
	}
	b, err := c.Append(textEnv(t, "same body"), 0)
	if err != nil {
		t.Fatalf("append b: %v", err)
	}
	aID, _ := a.CID()
	bID, _ := b.CID()
	if aID.String() == bID.String() {
		t.Fatalf("expected distinct CIDs for items at distinct chain positions")
	}
}

func TestEmptyChainValidatesAndHasNoHead(t *testing.T) {
	c := chain.New()
	if err := c.Validate(); err != nil {
		t.Fatalf("empty chain should validate: %v", err)
	}
	if c.Head() != nil {
		t.Fatalf("expected nil head for empty chain")
	}
}

func TestSingleItemChain(t *testing.T) {
	c := chain.New()
	if _, err := c.Append(textEnv(t, "solo"), 0); err != nil {
		t.Fatalf("append: %v", err)
	}
	if c.Tail().PreviousCID != "" {
		t.Fatalf("single item must have empty previous_cid")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestItemsSinceExcludesMatch(t *testing.T) {
	c := chain.New()
	a, _ := c.Append(textEnv(t, "a"), 0)
	_, _ = c.Append(textEnv(t, "b"), 0)
	_, _ = c.Append(textEnv(t, "c"), 0)

	aID, _ := a.CID()
	since, err := c.ItemsSince(aID.String())
	if err != nil {
		t.Fatalf("items since: %v", err)
	}
	if len(since) != 2 {
		t.Fatalf("expected 2 items after a, got %d", len(since))
	}
}

func TestItemsSinceNotFound(t *testing.T) {
	c := chain.New()
	_, _ = c.Append(textEnv(t, "a"), 0)
	if _, err := c.ItemsSince("bafkqaaa-definitely-not-present"); err == nil {
		t.Fatalf("expected NotFound for an absent cid")
	}
}

func newBackend(t *testing.T) *localfs.Backend {
	t.Helper()
	b, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	return b
}

func TestSaveLoadRoundTrip(t *testing.T) {
	backend := newBackend(t)
	c := chain.New()
	for _, body := range []string{"one", "two", "three"} {
		if _, err := c.Append(textEnv(t, body), 0); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	head, err := chain.Save(backend, "cim-chain-test", c)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !head.Defined() {
		t.Fatalf("expected a defined head cid")
	}

	loaded, err := chain.Load(backend, "cim-chain-test", head.String())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Len() != 3 {
		t.Fatalf("loaded chain length = %d, want 3", loaded.Len())
	}
	if err := loaded.Validate(); err != nil {
		t.Fatalf("validate loaded chain: %v", err)
	}
}

func TestLoadHeadFromMarker(t *testing.T) {
	backend := newBackend(t)
	c := chain.New()
	_, _ = c.Append(textEnv(t, "x"), 0)
	_, _ = c.Append(textEnv(t, "y"), 0)
	if _, err := chain.Save(backend, "cim-chain-marker", c); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := chain.LoadHead(backend, "cim-chain-marker")
	if err != nil {
		t.Fatalf("load head: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded chain length = %d, want 2", loaded.Len())
	}
}

func TestLoadHeadEmptyBucket(t *testing.T) {
	backend := newBackend(t)
	if err := backend.CreateBucket("cim-chain-empty", objectstore.BucketOptions{}); err != nil {
		t.Fatalf("create bucket: %v", err)
	}
	loaded, err := chain.LoadHead(backend, "cim-chain-empty")
	if err != nil {
		t.Fatalf("load head on empty bucket: %v", err)
	}
	if loaded.Len() != 0 {
		t.Fatalf("expected empty chain, got length %d", loaded.Len())
	}
}

func TestTamperDetection(t *testing.T) {
	backend := newBackend(t)
	c := chain.New()
	a, _ := c.Append(textEnv(t, "A"), 0)
	b, _ := c.Append(textEnv(t, "B"), 0)
	_, _ = c.Append(textEnv(t, "C"), 0)
	_ = a

	head, err := chain.Save(backend, "cim-chain-tamper", c)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	bID, _ := b.CID()
	raw, err := backend.Get("cim-chain-tamper", bID.String())
	if err != nil {
		t.Fatalf("get b: %v", err)
	}
	tampered := append([]byte(nil), raw...)
	tampered[len(tampered)-1] ^= 0xFF
	if err := backend.Put("cim-chain-tamper", bID.String(), tampered); err != nil {
		t.Fatalf("put tampered: %v", err)
	}

	if _, err := chain.Load(backend, "cim-chain-tamper", head.String()); err == nil {
		t.Fatalf("expected tamper to be detected on load")
	}
}
