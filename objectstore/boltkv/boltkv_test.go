package boltkv_test

import (
	"path/filepath"
	"testing"

	"github.com/cimcore/cim/objectstore"
	"github.com/cimcore/cim/objectstore/boltkv"
	"github.com/cimcore/cim/objectstore/storetest"
)

func open(t *testing.T) *boltkv.Backend {
	t.Helper()
	b, err := boltkv.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestConformance(t *testing.T) {
	storetest.RunBackendConformance(t, func(t *testing.T) objectstore.Backend {
		return open(t)
	})
}

func TestPutGetRoundTrip(t *testing.T) {
	b := open(t)
	if err := b.Put("text_index_v1", "snapshot", []byte("hello")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := b.Get("text_index_v1", "snapshot")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want hello", got)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	b := open(t)
	if _, err := b.Get("text_index_v1", "missing"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestListPrefix(t *testing.T) {
	b := open(t)
	for _, k := range []string{"apple1", "apple2", "banana1"} {
		if err := b.Put("tag_index_v1", k, []byte(k)); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	keys, err := b.List("tag_index_v1", "apple")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2: %v", len(keys), keys)
	}
}

func TestDeleteAndExists(t *testing.T) {
	b := open(t)
	if err := b.Put("type_index_v1", "k", []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ok, _ := b.Exists("type_index_v1", "k"); !ok {
		t.Fatalf("expected key to exist")
	}
	if err := b.Delete("type_index_v1", "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := b.Exists("type_index_v1", "k"); ok {
		t.Fatalf("expected key to be gone")
	}
}

func TestInfoReportsSize(t *testing.T) {
	b := open(t)
	if err := b.Put("metadata_cache_v1", "k", []byte("12345")); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, err := b.Info("metadata_cache_v1", "k")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Size != 5 {
		t.Fatalf("size = %d, want 5", info.Size)
	}
	if info.Created.IsZero() || info.Modified.IsZero() {
		t.Fatalf("expected non-zero timestamps")
	}
}
