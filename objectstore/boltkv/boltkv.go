// Package boltkv implements objectstore.Backend over a single BoltDB
// file, the durable key-value tier the index package persists to (spec
// §1, §4.F). Buckets map to top-level bbolt buckets; keys map to bbolt
// keys within them. Grounded on the corpus's wolfeidau content-cache
// BoltDB wrapper: functional options, bucket-per-concern layout, and
// db.View/db.Update transactions.
package boltkv

import (
	"bytes"
	"encoding/binary"
	"time"

	"go.etcd.io/bbolt"

	"github.com/cimcore/cim/cimerrors"
	"github.com/cimcore/cim/objectstore"
)

// Backend is a bbolt-backed objectstore.Backend.
type Backend struct {
	db  *bbolt.DB
	now func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithNow overrides the clock used to stamp Created/Modified, for
// deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// Open opens (creating if absent) a BoltDB file at path.
func Open(path string, opts ...Option) (*Backend, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, cimerrors.NewStorageError(cimerrors.Fatal, "boltkv: opening database", err)
	}
	b := &Backend{db: db, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Close releases the underlying database file.
func (b *Backend) Close() error {
	if err := b.db.Close(); err != nil {
		return cimerrors.NewStorageError(cimerrors.Fatal, "boltkv: closing database", err)
	}
	return nil
}

func (b *Backend) CreateBucket(name string, _ objectstore.BucketOptions) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return cimerrors.NewStorageError(cimerrors.Fatal, "boltkv: creating bucket", err)
	}
	return nil
}

// record is the envelope stored under each key, tracking the creation
// and modification timestamps BlobInfo reports (bbolt itself carries
// no such metadata).
type record struct {
	created  int64
	modified int64
	payload  []byte
}

func encodeRecord(r record) []byte {
	buf := make([]byte, 16+len(r.payload))
	binary.BigEndian.PutUint64(buf[0:8], uint64(r.created))
	binary.BigEndian.PutUint64(buf[8:16], uint64(r.modified))
	copy(buf[16:], r.payload)
	return buf
}

func decodeRecord(data []byte) (record, error) {
	if len(data) < 16 {
		return record{}, cimerrors.New(cimerrors.InvalidContent, "boltkv: truncated record")
	}
	return record{
		created:  int64(binary.BigEndian.Uint64(data[0:8])),
		modified: int64(binary.BigEndian.Uint64(data[8:16])),
		payload:  append([]byte(nil), data[16:]...),
	}, nil
}

func (b *Backend) Put(bucket, key string, data []byte) error {
	now := b.now().UnixNano()
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		created := now
		if existing := bkt.Get([]byte(key)); existing != nil {
			if prior, err := decodeRecord(existing); err == nil {
				created = prior.created
			}
		}
		return bkt.Put([]byte(key), encodeRecord(record{created: created, modified: now, payload: data}))
	})
	if err != nil {
		return cimerrors.NewStorageError(cimerrors.Fatal, "boltkv: writing key", err)
	}
	return nil
}

func (b *Backend) Get(bucket, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return cimerrors.New(cimerrors.NotFound, "boltkv: bucket not found")
		}
		raw := bkt.Get([]byte(key))
		if raw == nil {
			return cimerrors.New(cimerrors.NotFound, "boltkv: key not found")
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			return err
		}
		out = rec.payload
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Backend) Delete(bucket, key string) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return nil
		}
		return bkt.Delete([]byte(key))
	})
	if err != nil {
		return cimerrors.NewStorageError(cimerrors.Fatal, "boltkv: deleting key", err)
	}
	return nil
}

func (b *Backend) Exists(bucket, key string) (bool, error) {
	var exists bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return nil
		}
		exists = bkt.Get([]byte(key)) != nil
		return nil
	})
	if err != nil {
		return false, cimerrors.NewStorageError(cimerrors.Transient, "boltkv: checking key", err)
	}
	return exists, nil
}

func (b *Backend) List(bucket, prefix string) ([]string, error) {
	var out []string
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return nil
		}
		c := bkt.Cursor()
		prefixBytes := []byte(prefix)
		for k, _ := c.Seek(prefixBytes); k != nil && bytes.HasPrefix(k, prefixBytes); k, _ = c.Next() {
			out = append(out, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, cimerrors.NewStorageError(cimerrors.Transient, "boltkv: listing bucket", err)
	}
	return out, nil
}

func (b *Backend) Info(bucket, key string) (objectstore.BlobInfo, error) {
	var info objectstore.BlobInfo
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(bucket))
		if bkt == nil {
			return cimerrors.New(cimerrors.NotFound, "boltkv: bucket not found")
		}
		raw := bkt.Get([]byte(key))
		if raw == nil {
			return cimerrors.New(cimerrors.NotFound, "boltkv: key not found")
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			return err
		}
		info = objectstore.BlobInfo{
			Size:     int64(len(rec.payload)),
			Created:  time.Unix(0, rec.created).UTC(),
			Modified: time.Unix(0, rec.modified).UTC(),
		}
		return nil
	})
	if err != nil {
		return objectstore.BlobInfo{}, err
	}
	return info, nil
}

var _ objectstore.Backend = (*Backend)(nil)
