// Package localfs implements objectstore.Backend over the local
// filesystem, generalizing the teacher's CID-keyed localfs.CAS to the
// bucket+key contract of spec §6.
package localfs

import (
	"os"
	"path/filepath"

	"github.com/cimcore/cim/cimerrors"
	"github.com/cimcore/cim/objectstore"
)

// Backend stores each bucket as a subdirectory of root and each key as a
// file within it, sharded by the key's first two characters the way the
// teacher's localfs.CAS shards by CID prefix.
type Backend struct {
	root string
}

// New constructs a filesystem-backed Backend rooted at root, creating it
// if necessary.
func New(root string) (*Backend, error) {
	if root == "" {
		return nil, cimerrors.New(cimerrors.StorageError, "localfs: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, cimerrors.NewStorageError(cimerrors.Fatal, "localfs: creating root directory", err)
	}
	return &Backend{root: root}, nil
}

func (b *Backend) bucketDir(bucket string) string {
	return filepath.Join(b.root, bucket)
}

func (b *Backend) pathFor(bucket, key string) string {
	dir := b.bucketDir(bucket)
	if len(key) < 2 {
		return filepath.Join(dir, key)
	}
	return filepath.Join(dir, key[:2], key)
}

func (b *Backend) CreateBucket(name string, _ objectstore.BucketOptions) error {
	if err := os.MkdirAll(b.bucketDir(name), 0o755); err != nil {
		return cimerrors.NewStorageError(cimerrors.Fatal, "localfs: creating bucket", err)
	}
	return nil
}

func (b *Backend) Put(bucket, key string, data []byte) error {
	path := b.pathFor(bucket, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cimerrors.NewStorageError(cimerrors.Fatal, "localfs: creating key directory", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return cimerrors.NewStorageError(cimerrors.Fatal, "localfs: writing object", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return cimerrors.NewStorageError(cimerrors.Fatal, "localfs: finalizing object", err)
	}
	return nil
}

func (b *Backend) Get(bucket, key string) ([]byte, error) {
	data, err := os.ReadFile(b.pathFor(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cimerrors.New(cimerrors.NotFound, "localfs: object not found")
		}
		return nil, cimerrors.NewStorageError(cimerrors.Transient, "localfs: reading object", err)
	}
	return data, nil
}

func (b *Backend) Delete(bucket, key string) error {
	if err := os.Remove(b.pathFor(bucket, key)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return cimerrors.NewStorageError(cimerrors.Fatal, "localfs: deleting object", err)
	}
	return nil
}

func (b *Backend) Exists(bucket, key string) (bool, error) {
	_, err := os.Stat(b.pathFor(bucket, key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, cimerrors.NewStorageError(cimerrors.Transient, "localfs: stat object", err)
}

func (b *Backend) List(bucket, prefix string) ([]string, error) {
	var out []string
	root := b.bucketDir(bucket)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".tmp" {
			return nil
		}
		key := d.Name()
		if prefix == "" || len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, key)
		}
		return nil
	})
	if err != nil {
		return nil, cimerrors.NewStorageError(cimerrors.Transient, "localfs: listing bucket", err)
	}
	return out, nil
}

func (b *Backend) Info(bucket, key string) (objectstore.BlobInfo, error) {
	info, err := os.Stat(b.pathFor(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return objectstore.BlobInfo{}, cimerrors.New(cimerrors.NotFound, "localfs: object not found")
		}
		return objectstore.BlobInfo{}, cimerrors.NewStorageError(cimerrors.Transient, "localfs: stat object", err)
	}
	return objectstore.BlobInfo{
		Size:     info.Size(),
		Created:  info.ModTime(),
		Modified: info.ModTime(),
	}, nil
}
