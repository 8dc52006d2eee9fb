package localfs_test

import (
	"testing"

	"github.com/cimcore/cim/objectstore"
	"github.com/cimcore/cim/objectstore/localfs"
	"github.com/cimcore/cim/objectstore/storetest"
)

func TestConformance(t *testing.T) {
	storetest.RunBackendConformance(t, func(t *testing.T) objectstore.Backend {
		b, err := localfs.New(t.TempDir())
		if err != nil {
			t.Fatalf("localfs.New: %v", err)
		}
		return b
	})
}

func TestShardedKeysSurviveRoundTrip(t *testing.T) {
	b, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	if err := b.CreateBucket("bucket", objectstore.BucketOptions{}); err != nil {
		t.Fatalf("create bucket: %v", err)
	}
	if err := b.Put("bucket", "ab", []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := b.Get("bucket", "ab")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("got %q, want v", got)
	}
}
