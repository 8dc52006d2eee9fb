package objectstore

import (
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/cimcore/cim/cimerrors"
)

// DefaultCompressionThreshold is the minimum plaintext length, in bytes,
// before a write is zstd-compressed (spec §4.E step 4).
const DefaultCompressionThreshold = 1024

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder

	decoderOnce sync.Once
	decoder     *zstd.Decoder
)

// zstd encoders/decoders are safe for concurrent use once constructed, so
// the object store shares a single pair across all writes and reads
// (mirrors bureau-foundation-bureau's lib/artifactstore/compress.go,
// which keeps one package-level encoder for the same reason).
func getEncoder() (*zstd.Encoder, error) {
	var err error
	encoderOnce.Do(func() {
		encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	if err != nil {
		return nil, err
	}
	return encoder, nil
}

func getDecoder() (*zstd.Decoder, error) {
	var err error
	decoderOnce.Do(func() {
		decoder, err = zstd.NewReader(nil)
	})
	if err != nil {
		return nil, err
	}
	return decoder, nil
}

// compress zstd-compresses data. The operation is deterministic for a
// fixed encoder configuration and lossless by construction.
func compress(data []byte) ([]byte, error) {
	enc, err := getEncoder()
	if err != nil {
		return nil, cimerrors.Wrap(cimerrors.StorageError, "objectstore: zstd encoder init failed", err)
	}
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

// decompress reverses compress.
func decompress(data []byte, expectedSize uint64) ([]byte, error) {
	dec, err := getDecoder()
	if err != nil {
		return nil, cimerrors.Wrap(cimerrors.StorageError, "objectstore: zstd decoder init failed", err)
	}
	out, err := dec.DecodeAll(data, make([]byte, 0, expectedSize))
	if err != nil {
		return nil, cimerrors.Wrap(cimerrors.InvalidContent, "objectstore: zstd decompression failed", err)
	}
	return out, nil
}
