package objectstore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cimcore/cim/cimerrors"
)

// NamedBackend associates a Backend with a stable name for replication
// reporting, mirroring the teacher's storage.NamedCAS.
type NamedBackend struct {
	Name    string
	Backend Backend
}

// Replicating writes to every configured backend and requires every
// write to agree (verified by content digest, since the bucket+key
// contract carries no implicit CID), generalizing the teacher's
// storage.ReplicatingCAS.
type Replicating struct {
	Backends []NamedBackend
}

var _ Backend = Replicating{}

func digestOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// PutAll writes data to every backend and reports a per-backend error
// map; nil means success. Unlike Put it never collapses a per-backend
// failure into a single error, so callers can inspect which replicas
// lagged.
func (r Replicating) PutAll(bucket, key string, data []byte) map[string]error {
	out := make(map[string]error, len(r.Backends))
	for _, b := range r.Backends {
		out[b.Name] = b.Backend.Put(bucket, key, data)
	}
	return out
}

func (r Replicating) Put(bucket, key string, data []byte) error {
	if len(r.Backends) == 0 {
		return cimerrors.New(cimerrors.StorageError, "objectstore: Replicating has no backends")
	}
	want := digestOf(data)
	for _, b := range r.Backends {
		if err := b.Backend.Put(bucket, key, data); err != nil {
			return cimerrors.Wrap(cimerrors.StorageError, fmt.Sprintf("objectstore: replica %q write failed", b.Name), err)
		}
		got, err := b.Backend.Get(bucket, key)
		if err != nil {
			return cimerrors.Wrap(cimerrors.StorageError, fmt.Sprintf("objectstore: replica %q readback failed", b.Name), err)
		}
		if digestOf(got) != want {
			return cimerrors.NewCidMismatch(want, digestOf(got))
		}
	}
	return nil
}

func (r Replicating) Get(bucket, key string) ([]byte, error) {
	var sawNotFound bool
	for _, b := range r.Backends {
		data, err := b.Backend.Get(bucket, key)
		if err == nil {
			return data, nil
		}
		if cimerrors.IsNotFound(err) {
			sawNotFound = true
			continue
		}
		return nil, err
	}
	if sawNotFound {
		return nil, cimerrors.New(cimerrors.NotFound, "objectstore: object not found in any replica")
	}
	return nil, cimerrors.New(cimerrors.NotFound, "objectstore: object not found in any replica")
}

func (r Replicating) Delete(bucket, key string) error {
	var firstErr error
	for _, b := range r.Backends {
		if err := b.Backend.Delete(bucket, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r Replicating) Exists(bucket, key string) (bool, error) {
	for _, b := range r.Backends {
		if ok, err := b.Backend.Exists(bucket, key); err == nil && ok {
			return true, nil
		}
	}
	return false, nil
}

func (r Replicating) List(bucket, prefix string) ([]string, error) {
	if len(r.Backends) == 0 {
		return nil, cimerrors.New(cimerrors.StorageError, "objectstore: Replicating has no backends")
	}
	return r.Backends[0].Backend.List(bucket, prefix)
}

func (r Replicating) Info(bucket, key string) (BlobInfo, error) {
	for _, b := range r.Backends {
		if info, err := b.Backend.Info(bucket, key); err == nil {
			return info, nil
		}
	}
	return BlobInfo{}, cimerrors.New(cimerrors.NotFound, "objectstore: object not found in any replica")
}

func (r Replicating) CreateBucket(name string, opts BucketOptions) error {
	for _, b := range r.Backends {
		if err := b.Backend.CreateBucket(name, opts); err != nil {
			return err
		}
	}
	return nil
}
