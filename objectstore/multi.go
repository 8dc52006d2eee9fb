package objectstore

import "github.com/cimcore/cim/cimerrors"

// Multi provides deterministic, ordered fallback across multiple
// backends, generalized from the teacher's storage.MultiCAS to the
// bucket+key contract. Writes go only to the first backend; reads fall
// back through the slice in order.
type Multi struct {
	Backends []Backend
}

var _ Backend = Multi{}

func (m Multi) Put(bucket, key string, data []byte) error {
	if len(m.Backends) == 0 {
		return cimerrors.New(cimerrors.StorageError, "objectstore: Multi has no backends")
	}
	return m.Backends[0].Put(bucket, key, data)
}

func (m Multi) Get(bucket, key string) ([]byte, error) {
	var sawNotFound bool
	for _, b := range m.Backends {
		data, err := b.Get(bucket, key)
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
		return nil, cimerrors.New(cimerrors.NotFound, "objectstore: object not found in any backend")
	}
	return nil, cimerrors.New(cimerrors.NotFound, "objectstore: object not found in any backend")
}

func (m Multi) Delete(bucket, key string) error {
	var firstErr error
	for _, b := range m.Backends {
		if err := b.Delete(bucket, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) Exists(bucket, key string) (bool, error) {
	for _, b := range m.Backends {
		ok, err := b.Exists(bucket, key)
		if err == nil && ok {
			return true, nil
		}
	}
	return false, nil
}

func (m Multi) List(bucket, prefix string) ([]string, error) {
	if len(m.Backends) == 0 {
		return nil, cimerrors.New(cimerrors.StorageError, "objectstore: Multi has no backends")
	}
	return m.Backends[0].List(bucket, prefix)
}

func (m Multi) Info(bucket, key string) (BlobInfo, error) {
	for _, b := range m.Backends {
		info, err := b.Info(bucket, key)
		if err == nil {
			return info, nil
		}
	}
	return BlobInfo{}, cimerrors.New(cimerrors.NotFound, "objectstore: object not found in any backend")
}

func (m Multi) CreateBucket(name string, opts BucketOptions) error {
	for _, b := range m.Backends {
		if err := b.CreateBucket(name, opts); err != nil {
			return err
		}
	}
	return nil
}
