package codec

import (
	"bytes"
	"encoding/json"

	"github.com/cimcore/cim/cimerrors"
)

// linkKey is the DAG-JSON object key used to encode a CID-as-link,
// per spec §4.B: `{"/": "<cid>"}`.
const linkKey = "/"

// JSONLink marshals to/from the DAG-JSON link convention. Unlike
// codec.Link (DAG-CBOR tag 42) this is plain JSON, so the CID is stored
// as its base32 multibase string rather than raw bytes.
type JSONLink struct {
	Target string
}

func (l JSONLink) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{linkKey: l.Target})
}

func (l *JSONLink) UnmarshalJSON(data []byte) error {
	var wrapper map[string]string
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	target, ok := wrapper[linkKey]
	if !ok {
		return cimerrors.New(cimerrors.InvalidContent, "not a DAG-JSON link object")
	}
	l.Target = target
	return nil
}

// DagJSONHandler implements the 0x0129 DAG-JSON codec: canonical JSON
// with IPLD link encoding (spec §4.B). encoding/json already sorts
// map[string]T keys lexicographically when marshaling, which satisfies
// "object keys sorted lexicographically" for maps (struct fields keep
// their declaration order). No whitespace stripping is needed: Marshal,
// unlike MarshalIndent, emits no insignificant whitespace.
type DagJSONHandler struct{}

func (DagJSONHandler) Encode(v any) ([]byte, error) {
	if err := rejectSpecialFloats(v); err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, cimerrors.Wrap(cimerrors.InvalidContent, "DAG-JSON encode failed", err)
	}
	return b, nil
}

func (DagJSONHandler) Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return cimerrors.Wrap(cimerrors.InvalidContent, "DAG-JSON decode failed", err)
	}
	return nil
}

// Pretty renders v as indented JSON for human output only — per spec
// §4.B, pretty-printed form is never hashed.
func Pretty(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// JSONHandler implements the 0x0200 plain JSON codec: ordinary JSON
// without link semantics.
type JSONHandler struct{}

func (JSONHandler) Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, cimerrors.Wrap(cimerrors.InvalidContent, "JSON encode failed", err)
	}
	return b, nil
}

func (JSONHandler) Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return cimerrors.Wrap(cimerrors.InvalidContent, "JSON decode failed", err)
	}
	return nil
}

// MarshalDagJSON encodes v using the DAG-JSON handler directly.
func MarshalDagJSON(v any) ([]byte, error) { return DagJSONHandler{}.Encode(v) }

// UnmarshalDagJSON decodes DAG-JSON data directly.
func UnmarshalDagJSON(data []byte, v any) error { return DagJSONHandler{}.Decode(data, v) }
