package bundle_test

import (
	"bytes"
	"testing"

	"github.com/cimcore/cim/cid"
	"github.com/cimcore/cim/objectstore"
	"github.com/cimcore/cim/objectstore/bundle"
	"github.com/cimcore/cim/objectstore/localfs"
)

func newStore(t *testing.T) *objectstore.Store {
	t.Helper()
	backend, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	store, err := objectstore.New(backend)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newStore(t)
	var ids []cid.CID
	for _, s := range []string{"alpha", "beta", "gamma"} {
		id, err := src.PutRaw([]byte(s))
		if err != nil {
			t.Fatalf("put %s: %v", s, err)
		}
		ids = append(ids, id)
	}

	var buf bytes.Buffer
	if err := bundle.Export(&buf, src, ids, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := newStore(t)
	if err := bundle.Import(&buf, dst); err != nil {
		t.Fatalf("import: %v", err)
	}

	for i, id := range ids {
		got, err := dst.GetRaw(id)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		_ = got
	}
}

func TestExportDeterministic(t *testing.T) {
	src := newStore(t)
	var ids []cid.CID
	for _, s := range []string{"one", "two"} {
		id, err := src.PutRaw([]byte(s))
		if err != nil {
			t.Fatalf("put: %v", err)
		}
		ids = append(ids, id)
	}

	var bufA, bufB bytes.Buffer
	if err := bundle.Export(&bufA, src, ids, bundle.ExportOptions{}); err != nil {
		t.Fatalf("export a: %v", err)
	}
	// Reversed input order must not change output bytes.
	reversed := []cid.CID{ids[1], ids[0]}
	if err := bundle.Export(&bufB, src, reversed, bundle.ExportOptions{}); err != nil {
		t.Fatalf("export b: %v", err)
	}
	if bufA.String() != bufB.String() {
		t.Fatalf("expected deterministic bundle bytes regardless of input order")
	}
}

func TestImportRejectsMismatchedPayload(t *testing.T) {
	src := newStore(t)
	id, err := src.PutRaw([]byte("original"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	var buf bytes.Buffer
	if err := bundle.Export(&buf, src, []cid.CID{id}, bundle.ExportOptions{}); err != nil {
		t.Fatalf("export: %v", err)
	}

	// Corrupt the exported bytes so the block no longer matches its
	// filename CID.
	corrupted := bytes.Replace(buf.Bytes(), []byte("original"), []byte("tampered"), 1)

	dst := newStore(t)
	if err := bundle.Import(bytes.NewReader(corrupted), dst); err == nil {
		t.Fatalf("expected error importing a tampered block")
	}
}
