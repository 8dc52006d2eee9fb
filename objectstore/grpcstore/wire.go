// Package grpcstore implements a gRPC objectstore.Backend, adapted from
// the teacher's storage/grpccas. Like the teacher, it avoids a protoc
// code-generation step by carrying every RPC payload inside
// google.golang.org/protobuf's well-known wrapper types
// (wrapperspb.BytesValue etc.); since the backend contract here has more
// than one scalar per call, multi-field requests are length-prefix
// framed into a single []byte before being wrapped.
package grpcstore

import (
	"encoding/binary"

	"github.com/cimcore/cim/cimerrors"
)

func putString(buf []byte, s string) []byte {
	var lenbuf [4]byte
	binary.BigEndian.PutUint32(lenbuf[:], uint32(len(s)))
	buf = append(buf, lenbuf[:]...)
	return append(buf, s...)
}

func putBytes(buf []byte, b []byte) []byte {
	var lenbuf [4]byte
	binary.BigEndian.PutUint32(lenbuf[:], uint32(len(b)))
	buf = append(buf, lenbuf[:]...)
	return append(buf, b...)
}

func getString(buf []byte) (string, []byte, error) {
	if len(buf) < 4 {
		return "", nil, cimerrors.New(cimerrors.InvalidContent, "grpcstore: truncated string frame")
	}
	n := binary.BigEndian.Uint32(buf)
	buf = buf[4:]
	if uint64(n) > uint64(len(buf)) {
		return "", nil, cimerrors.New(cimerrors.InvalidContent, "grpcstore: string frame length overruns buffer")
	}
	return string(buf[:n]), buf[n:], nil
}

func getBytes(buf []byte) ([]byte, []byte, error) {
	s, rest, err := getString(buf)
	return []byte(s), rest, err
}

// packKV frames (bucket, key) for Get/Delete/Exists/Info requests.
func packKV(bucket, key string) []byte {
	buf := putString(nil, bucket)
	return putString(buf, key)
}

func unpackKV(data []byte) (bucket, key string, err error) {
	bucket, rest, err := getString(data)
	if err != nil {
		return "", "", err
	}
	key, _, err = getString(rest)
	return bucket, key, err
}

// packPut frames (bucket, key, data) for Put requests.
func packPut(bucket, key string, data []byte) []byte {
	buf := putString(nil, bucket)
	buf = putString(buf, key)
	return putBytes(buf, data)
}

func unpackPut(frame []byte) (bucket, key string, data []byte, err error) {
	bucket, rest, err := getString(frame)
	if err != nil {
		return "", "", nil, err
	}
	key, rest, err = getString(rest)
	if err != nil {
		return "", "", nil, err
	}
	data, _, err = getBytes(rest)
	return bucket, key, data, err
}

// packListRequest frames (bucket, prefix).
func packListRequest(bucket, prefix string) []byte {
	buf := putString(nil, bucket)
	return putString(buf, prefix)
}

func unpackListRequest(frame []byte) (bucket, prefix string, err error) {
	return unpackKV(frame)
}

// packListResponse frames a []string as length-prefixed entries.
func packListResponse(keys []string) []byte {
	var buf []byte
	var countbuf [4]byte
	binary.BigEndian.PutUint32(countbuf[:], uint32(len(keys)))
	buf = append(buf, countbuf[:]...)
	for _, k := range keys {
		buf = putString(buf, k)
	}
	return buf
}

func unpackListResponse(frame []byte) ([]string, error) {
	if len(frame) < 4 {
		return nil, cimerrors.New(cimerrors.InvalidContent, "grpcstore: truncated list response")
	}
	count := binary.BigEndian.Uint32(frame)
	rest := frame[4:]
	out := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		var s string
		var err error
		s, rest, err = getString(rest)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// packInfoResponse frames (size, created_unix_nano, modified_unix_nano).
func packInfoResponse(size int64, createdUnixNano, modifiedUnixNano int64) []byte {
	buf := make([]byte, 24)
	binary.BigEndian.PutUint64(buf[0:8], uint64(size))
	binary.BigEndian.PutUint64(buf[8:16], uint64(createdUnixNano))
	binary.BigEndian.PutUint64(buf[16:24], uint64(modifiedUnixNano))
	return buf
}

func unpackInfoResponse(frame []byte) (size, createdUnixNano, modifiedUnixNano int64, err error) {
	if len(frame) < 24 {
		return 0, 0, 0, cimerrors.New(cimerrors.InvalidContent, "grpcstore: truncated info response")
	}
	size = int64(binary.BigEndian.Uint64(frame[0:8]))
	createdUnixNano = int64(binary.BigEndian.Uint64(frame[8:16]))
	modifiedUnixNano = int64(binary.BigEndian.Uint64(frame[16:24]))
	return size, createdUnixNano, modifiedUnixNano, nil
}

// packCreateBucket frames (name, replicas, ttl_seconds).
func packCreateBucket(name string, replicas int32, ttlSeconds int64) []byte {
	buf := putString(nil, name)
	var rbuf [4]byte
	binary.BigEndian.PutUint32(rbuf[:], uint32(replicas))
	buf = append(buf, rbuf[:]...)
	var tbuf [8]byte
	binary.BigEndian.PutUint64(tbuf[:], uint64(ttlSeconds))
	return append(buf, tbuf[:]...)
}

func unpackCreateBucket(frame []byte) (name string, replicas int32, ttlSeconds int64, err error) {
	name, rest, err := getString(frame)
	if err != nil {
		return "", 0, 0, err
	}
	if len(rest) < 12 {
		return "", 0, 0, cimerrors.New(cimerrors.InvalidContent, "grpcstore: truncated create-bucket frame")
	}
	replicas = int32(binary.BigEndian.Uint32(rest[0:4]))
	ttlSeconds = int64(binary.BigEndian.Uint64(rest[4:12]))
	return name, replicas, ttlSeconds, nil
}
