package envelope

import (
	"encoding/binary"

	"github.com/cimcore/cim/cimerrors"
)

// headeredPayload packs a small structural header plus the associated
// payload into a single buffer: a 4-byte big-endian header length
// followed by the header bytes then the payload (spec §4.B: "canonical
// form is the raw payload prefixed by a small structural header for
// metadata"). This framing is used by Marshal/Unmarshal for storage —
// it is distinct from CanonicalBytes, which excludes the header
// entirely so hashing only ever sees the payload-derived canonical form.
func encodeHeaderedPayload(header, payload []byte) []byte {
	buf := make([]byte, 4+len(header)+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(header)))
	copy(buf[4:], header)
	copy(buf[4+len(header):], payload)
	return buf
}

func decodeHeaderedPayload(data []byte) (header, payload []byte, err error) {
	if len(data) < 4 {
		return nil, nil, cimerrors.New(cimerrors.InvalidContent, "envelope buffer too short for header length")
	}
	hlen := binary.BigEndian.Uint32(data[:4])
	if uint64(4)+uint64(hlen) > uint64(len(data)) {
		return nil, nil, cimerrors.New(cimerrors.InvalidContent, "envelope header length exceeds buffer")
	}
	return data[4 : 4+hlen], data[4+hlen:], nil
}
