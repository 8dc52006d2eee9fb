package codec

import "github.com/cimcore/cim/cimerrors"

// RawHandler implements the 0x55 "raw" codec: identity on bytes, used
// for opaque binary payloads (media, documents) per spec §4.B.
type RawHandler struct{}

func (RawHandler) Encode(v any) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, cimerrors.New(cimerrors.InvalidContent, "raw codec requires []byte")
	}
	return b, nil
}

func (RawHandler) Decode(data []byte, v any) error {
	out, ok := v.(*[]byte)
	if !ok {
		return cimerrors.New(cimerrors.InvalidContent, "raw codec requires *[]byte destination")
	}
	*out = data
	return nil
}
