package objectstore

import (
	"encoding/binary"

	"github.com/cimcore/cim/cimerrors"
)

// CompressionAlgo identifies the compression applied to a stored blob.
type CompressionAlgo byte

const (
	CompressionNone CompressionAlgo = 0
	CompressionZstd CompressionAlgo = 1
)

// EncryptionAlgo identifies the AEAD applied to a stored blob.
type EncryptionAlgo byte

const (
	EncryptionNone                 EncryptionAlgo = 0
	EncryptionAES256GCM            EncryptionAlgo = 1
	EncryptionChaCha20Poly1305     EncryptionAlgo = 2
	EncryptionXChaCha20Poly1305    EncryptionAlgo = 3
)

const (
	formatVersion1 byte = 1

	flagCompressed byte = 1 << 0
	flagEncrypted  byte = 1 << 1
	flagHasAAD     byte = 1 << 2

	keyIDHashLen = 32
)

// Header is the persisted blob header (spec §6 "Persisted blob header"),
// stored big-endian and byte-exact ahead of the payload so a reader can
// reverse compression and encryption without out-of-band bookkeeping.
type Header struct {
	Compressed      bool
	Encrypted       bool
	HasAAD          bool
	PlaintextSize   uint64
	CompressionAlgo CompressionAlgo
	CompressedSize  uint32
	EncryptionAlgo  EncryptionAlgo
	Nonce           []byte
	KeyIDHash       [keyIDHashLen]byte
	ContentTypeTag  uint16
}

// Encode writes the header followed by payload into a single buffer.
func (h Header) Encode(payload []byte) []byte {
	var flags byte
	if h.Compressed {
		flags |= flagCompressed
	}
	if h.Encrypted {
		flags |= flagEncrypted
	}
	if h.HasAAD {
		flags |= flagHasAAD
	}

	size := 1 + 1 + 8 + 1 + 4 + 1 + 1 + len(h.Nonce) + keyIDHashLen + 2 + len(payload)
	buf := make([]byte, size)
	off := 0

	buf[off] = formatVersion1
	off++
	buf[off] = flags
	off++
	binary.BigEndian.PutUint64(buf[off:], h.PlaintextSize)
	off += 8
	buf[off] = byte(h.CompressionAlgo)
	off++
	binary.BigEndian.PutUint32(buf[off:], h.CompressedSize)
	off += 4
	buf[off] = byte(h.EncryptionAlgo)
	off++
	buf[off] = byte(len(h.Nonce))
	off++
	copy(buf[off:], h.Nonce)
	off += len(h.Nonce)
	copy(buf[off:], h.KeyIDHash[:])
	off += keyIDHashLen
	binary.BigEndian.PutUint16(buf[off:], h.ContentTypeTag)
	off += 2
	copy(buf[off:], payload)

	return buf
}

// DecodeHeader parses a header off the front of data, returning the
// header and the remaining payload bytes.
func DecodeHeader(data []byte) (Header, []byte, error) {
	if len(data) < 2 {
		return Header{}, nil, cimerrors.New(cimerrors.InvalidContent, "objectstore: blob too short for header")
	}
	version := data[0]
	if version != formatVersion1 {
		return Header{}, nil, cimerrors.New(cimerrors.InvalidContent, "objectstore: unknown blob format_version")
	}
	flags := data[1]
	off := 2

	need := func(n int) error {
		if off+n > len(data) {
			return cimerrors.New(cimerrors.InvalidContent, "objectstore: truncated blob header")
		}
		return nil
	}

	if err := need(8); err != nil {
		return Header{}, nil, err
	}
	plaintextSize := binary.BigEndian.Uint64(data[off:])
	off += 8

	if err := need(1); err != nil {
		return Header{}, nil, err
	}
	compressionAlgo := CompressionAlgo(data[off])
	off++

	if err := need(4); err != nil {
		return Header{}, nil, err
	}
	compressedSize := binary.BigEndian.Uint32(data[off:])
	off += 4

	if err := need(2); err != nil {
		return Header{}, nil, err
	}
	encryptionAlgo := EncryptionAlgo(data[off])
	off++
	nonceLen := int(data[off])
	off++

	if err := need(nonceLen); err != nil {
		return Header{}, nil, err
	}
	nonce := append([]byte(nil), data[off:off+nonceLen]...)
	off += nonceLen

	if err := need(keyIDHashLen); err != nil {
		return Header{}, nil, err
	}
	var keyIDHash [keyIDHashLen]byte
	copy(keyIDHash[:], data[off:off+keyIDHashLen])
	off += keyIDHashLen

	if err := need(2); err != nil {
		return Header{}, nil, err
	}
	contentTypeTag := binary.BigEndian.Uint16(data[off:])
	off += 2

	header := Header{
		Compressed:      flags&flagCompressed != 0,
		Encrypted:       flags&flagEncrypted != 0,
		HasAAD:          flags&flagHasAAD != 0,
		PlaintextSize:   plaintextSize,
		CompressionAlgo: compressionAlgo,
		CompressedSize:  compressedSize,
		EncryptionAlgo:  encryptionAlgo,
		Nonce:           nonce,
		KeyIDHash:       keyIDHash,
		ContentTypeTag:  contentTypeTag,
	}
	return header, data[off:], nil
}
