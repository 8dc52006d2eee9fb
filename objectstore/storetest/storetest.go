// Package storetest provides a backend-agnostic conformance suite for
// objectstore.Backend implementations, generalizing the teacher's
// storage/testkit CID-keyed suite to the bucket+key contract of spec §6.
package storetest

import (
	"bytes"
	"testing"

	"github.com/cimcore/cim/cimerrors"
	"github.com/cimcore/cim/objectstore"
)

// NewBackend constructs a fresh, empty Backend for a test. The returned
// Backend must be isolated from other tests.
type NewBackend func(t *testing.T) objectstore.Backend

// RunBackendConformance exercises every objectstore.Backend implementation
// against the same behavior, so localfs, grpcstore, and boltkv all carry
// the same guarantees (spec §6 "Object-store backend contract").
func RunBackendConformance(t *testing.T, newBackend NewBackend) {
	t.Helper()

	const bucket = "storetest-bucket"

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		backend := newBackend(t)
		if err := backend.CreateBucket(bucket, objectstore.BucketOptions{}); err != nil {
			t.Fatalf("create bucket: %v", err)
		}
		want := []byte("hello, conformance suite")
		if err := backend.Put(bucket, "key-a", want); err != nil {
			t.Fatalf("put: %v", err)
		}
		got, err := backend.Get(bucket, "key-a")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("get bytes mismatch: got %q want %q", got, want)
		}
	})

	t.Run("PutOverwriteIsVisible", func(t *testing.T) {
		backend := newBackend(t)
		if err := backend.CreateBucket(bucket, objectstore.BucketOptions{}); err != nil {
			t.Fatalf("create bucket: %v", err)
		}
		if err := backend.Put(bucket, "key-a", []byte("v1")); err != nil {
			t.Fatalf("put v1: %v", err)
		}
		if err := backend.Put(bucket, "key-a", []byte("v2")); err != nil {
			t.Fatalf("put v2: %v", err)
		}
		got, err := backend.Get(bucket, "key-a")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if string(got) != "v2" {
			t.Fatalf("expected overwritten value, got %q", got)
		}
	})

	t.Run("GetMissingIsNotFound", func(t *testing.T) {
		backend := newBackend(t)
		if err := backend.CreateBucket(bucket, objectstore.BucketOptions{}); err != nil {
			t.Fatalf("create bucket: %v", err)
		}
		if _, err := backend.Get(bucket, "absent"); !cimerrors.IsNotFound(err) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("ExistsTracksPutAndDelete", func(t *testing.T) {
		backend := newBackend(t)
		if err := backend.CreateBucket(bucket, objectstore.BucketOptions{}); err != nil {
			t.Fatalf("create bucket: %v", err)
		}
		if ok, _ := backend.Exists(bucket, "key-a"); ok {
			t.Fatalf("expected key-a to be absent before Put")
		}
		if err := backend.Put(bucket, "key-a", []byte("v")); err != nil {
			t.Fatalf("put: %v", err)
		}
		if ok, err := backend.Exists(bucket, "key-a"); err != nil || !ok {
			t.Fatalf("expected key-a to exist after Put, ok=%v err=%v", ok, err)
		}
		if err := backend.Delete(bucket, "key-a"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if ok, _ := backend.Exists(bucket, "key-a"); ok {
			t.Fatalf("expected key-a to be absent after Delete")
		}
	})

	t.Run("DeleteMissingIsNotAnError", func(t *testing.T) {
		backend := newBackend(t)
		if err := backend.CreateBucket(bucket, objectstore.BucketOptions{}); err != nil {
			t.Fatalf("create bucket: %v", err)
		}
		if err := backend.Delete(bucket, "never-existed"); err != nil {
			t.Fatalf("delete of absent key should be a no-op, got %v", err)
		}
	})

	t.Run("InfoReportsSize", func(t *testing.T) {
		backend := newBackend(t)
		if err := backend.CreateBucket(bucket, objectstore.BucketOptions{}); err != nil {
			t.Fatalf("create bucket: %v", err)
		}
		if err := backend.Put(bucket, "key-a", []byte("12345")); err != nil {
			t.Fatalf("put: %v", err)
		}
		info, err := backend.Info(bucket, "key-a")
		if err != nil {
			t.Fatalf("info: %v", err)
		}
		if info.Size != 5 {
			t.Fatalf("size = %d, want 5", info.Size)
		}
	})

	t.Run("ListReturnsMatchingPrefix", func(t *testing.T) {
		backend := newBackend(t)
		if err := backend.CreateBucket(bucket, objectstore.BucketOptions{}); err != nil {
			t.Fatalf("create bucket: %v", err)
		}
		for _, k := range []string{"apple1", "apple2", "banana1"} {
			if err := backend.Put(bucket, k, []byte(k)); err != nil {
				t.Fatalf("put %s: %v", k, err)
			}
		}
		keys, err := backend.List(bucket, "apple")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(keys) != 2 {
			t.Fatalf("expected 2 keys with prefix apple, got %d: %v", len(keys), keys)
		}
	})
}
