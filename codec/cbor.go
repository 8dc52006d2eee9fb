package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/cimcore/cim/cid"
	"github.com/cimcore/cim/cimerrors"
)

// cborLinkTag is the CBOR tag number IPLD reserves for content
// identifiers embedded in DAG-CBOR (the "CID-as-link" convention).
const cborLinkTag = 42

// encMode is configured for RFC 8949 §4.2 Core Deterministic Encoding:
// map keys sorted by encoded-byte length then lexicographic order,
// integers in shortest form, no indefinite-length items. This mirrors
// bureau-foundation/bureau's lib/codec package, the pack's only example
// of a deterministic CBOR configuration.
var encMode cbor.EncMode

// decMode accepts standard CBOR produced by encMode (and by other
// conforming encoders); unknown fields are ignored for forward
// compatibility, matching the same pack example.
var decMode cbor.DecMode

func init() {
	encOptions := cbor.CoreDetEncOptions()
	var err error
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Link is the DAG-CBOR encoding of a CID-as-link: tag 42 wrapping the
// CID's binary form prefixed by the multibase identity byte 0x00, per
// the IPLD link convention. Envelope and chain types that need to
// embed a CID reference inside CBOR-encoded content use this type
// instead of a bare string, so the reference survives as a structural
// link rather than opaque text.
type Link struct {
	Target string // CID string form
}

func (l Link) MarshalCBOR() ([]byte, error) {
	target, err := cid.Parse(l.Target)
	if err != nil {
		return nil, err
	}
	// Tag 42 wraps a byte string whose first byte is the multibase
	// identity prefix (0x00), per the DAG-CBOR link convention.
	wrapped := append([]byte{0x00}, target.Bytes()...)
	return cbor.Marshal(cbor.Tag{Number: cborLinkTag, Content: wrapped})
}

func (l *Link) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return err
	}
	if tag.Number != cborLinkTag {
		return cimerrors.New(cimerrors.InvalidContent, "not a DAG-CBOR link tag")
	}
	raw, ok := tag.Content.([]byte)
	if !ok || len(raw) == 0 || raw[0] != 0x00 {
		return cimerrors.New(cimerrors.InvalidContent, "malformed DAG-CBOR link content")
	}
	target, err := cid.Cast(raw[1:])
	if err != nil {
		return err
	}
	l.Target = target.String()
	return nil
}

// DagCBORHandler implements the 0x71 DAG-CBOR codec: deterministic CBOR
// with IPLD link tags (spec §4.B).
type DagCBORHandler struct{}

func (DagCBORHandler) Encode(v any) ([]byte, error) {
	if err := rejectSpecialFloats(v); err != nil {
		return nil, err
	}
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, cimerrors.Wrap(cimerrors.InvalidContent, "DAG-CBOR encode failed", err)
	}
	return b, nil
}

func (DagCBORHandler) Decode(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return cimerrors.Wrap(cimerrors.InvalidContent, "DAG-CBOR decode failed", err)
	}
	return nil
}

// CBORHandler implements the 0x51 plain-CBOR codec: standard
// (non-IPLD) deterministic CBOR, used by callers that want CBOR's
// compactness without link semantics.
type CBORHandler struct{}

func (CBORHandler) Encode(v any) ([]byte, error) {
	if err := rejectSpecialFloats(v); err != nil {
		return nil, err
	}
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, cimerrors.Wrap(cimerrors.InvalidContent, "CBOR encode failed", err)
	}
	return b, nil
}

func (CBORHandler) Decode(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return cimerrors.Wrap(cimerrors.InvalidContent, "CBOR decode failed", err)
	}
	return nil
}

// Marshal encodes v using the package's deterministic CBOR mode. Chain
// and index persistence call this directly rather than going through
// the registry when they know their codec at compile time.
func Marshal(v any) ([]byte, error) { return DagCBORHandler{}.Encode(v) }

// Unmarshal decodes CBOR data produced by Marshal.
func Unmarshal(data []byte, v any) error { return DagCBORHandler{}.Decode(data, v) }
