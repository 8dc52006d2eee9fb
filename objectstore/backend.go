// Package objectstore implements the object store layer (spec §4.E): a
// content-addressed put/get surface over pluggable bucket+key backends,
// with an LRU cache, zstd compression, AEAD encryption, dedup, and a
// domain partitioner that routes content to named buckets.
package objectstore

import "time"

// BlobInfo describes a stored blob's bucket-level attributes, as
// reported by a Backend's Info method (spec §6 "Object-store backend
// contract").
type BlobInfo struct {
	Size     int64
	Created  time.Time
	Modified time.Time
}

// BucketOptions configures bucket creation (spec §6: "create_bucket(name,
// {replicas, ttl?})").
type BucketOptions struct {
	Replicas int
	TTL      time.Duration // zero means no expiry
}

// Backend is the minimal contract the object store requires from its
// persistence layer (spec §6). Implementations: objectstore/localfs,
// objectstore/grpcstore, and the composing objectstore.Multi /
// objectstore.Replicating wrappers.
type Backend interface {
	Put(bucket, key string, data []byte) error
	Get(bucket, key string) ([]byte, error)
	Delete(bucket, key string) error
	Exists(bucket, key string) (bool, error)
	List(bucket, prefix string) ([]string, error)
	Info(bucket, key string) (BlobInfo, error)
	CreateBucket(name string, opts BucketOptions) error
}
