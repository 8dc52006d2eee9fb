package envelope

import (
	"github.com/cimcore/cim/codec"
)

// BinaryHeader is the structural metadata wrapped around a binary
// payload for storage (spec §4.B). It never participates in CID
// computation.
type BinaryHeader struct {
	ContentType ContentType
	Metadata    map[string]string
}

// BinaryEnvelope wraps an image, audio, video, or PDF payload. Its
// canonical bytes are the raw payload alone: "metadata is excluded so
// identical files produce identical CIDs regardless of tagging" (spec
// §4.C).
type BinaryEnvelope struct {
	ContentType ContentType
	Payload     []byte
	Metadata    map[string]string
}

// NewBinary constructs a BinaryEnvelope after verifying payload's magic
// bytes match ct. Metadata may be nil; callers typically populate it via
// ExtractMetadata.
func NewBinary(ct ContentType, payload []byte, metadata map[string]string) (*BinaryEnvelope, error) {
	if err := VerifyMagic(ct, payload); err != nil {
		return nil, err
	}
	return &BinaryEnvelope{ContentType: ct, Payload: payload, Metadata: metadata}, nil
}

func (e *BinaryEnvelope) Type() ContentType { return e.ContentType }

func (e *BinaryEnvelope) CodecCode() uint64 {
	if code, ok := codecCodeFor[e.ContentType]; ok {
		return code
	}
	return codec.CustomRangeStart
}

func (e *BinaryEnvelope) CanonicalBytes() ([]byte, error) {
	return e.Payload, nil
}

// Marshal produces the storage encoding: header-length-prefixed
// BinaryHeader followed by the raw payload.
func (e *BinaryEnvelope) Marshal() ([]byte, error) {
	header, err := codec.Marshal(BinaryHeader{ContentType: e.ContentType, Metadata: e.Metadata})
	if err != nil {
		return nil, err
	}
	return encodeHeaderedPayload(header, e.Payload), nil
}

// UnmarshalBinary reverses Marshal, re-verifying the payload's magic
// bytes against the header's declared content type.
func UnmarshalBinary(data []byte) (*BinaryEnvelope, error) {
	headerBytes, payload, err := decodeHeaderedPayload(data)
	if err != nil {
		return nil, err
	}
	var header BinaryHeader
	if err := codec.Unmarshal(headerBytes, &header); err != nil {
		return nil, err
	}
	if err := VerifyMagic(header.ContentType, payload); err != nil {
		return nil, err
	}
	return &BinaryEnvelope{ContentType: header.ContentType, Payload: payload, Metadata: header.Metadata}, nil
}
