package envelope

import "github.com/cimcore/cim/cid"

// Envelope is implemented by every built-in content variant. It
// satisfies cid.Canonicalizable so any envelope can be passed directly
// to cid.Of, and adds Type for dispatch and Marshal for the storage
// encoding used by the object store's typed put/get operations.
type Envelope interface {
	cid.Canonicalizable
	Type() ContentType
	Marshal() ([]byte, error)
}

var (
	_ Envelope = (*BinaryEnvelope)(nil)
	_ Envelope = (*TextEnvelope)(nil)
	_ Envelope = (*EventEnvelope)(nil)
	_ Envelope = (*CustomEnvelope)(nil)
)
