// Package codec implements the process-wide codec registry (spec §4.B):
// a map from numeric codec code to encode/decode behavior, hosting
// DAG-CBOR, DAG-JSON, Raw, and domain codecs. Determinism follows the
// teacher's and pack's idiom of configuring a library once (here
// github.com/fxamacker/cbor/v2 in Core Deterministic Encoding mode, the
// same approach bureau-foundation/bureau's lib/codec package uses) rather
// than hand-rolling a canonical encoder.
package codec

import (
	"sync"

	"github.com/cimcore/cim/cimerrors"
)

// Handler encodes and decodes the codec's declared type shape. For
// opaque codecs (raw, media) Encode/Decode are identity on bytes.
type Handler interface {
	// Encode produces the byte form for v.
	Encode(v any) ([]byte, error)
	// Decode populates v (a pointer) from data.
	Decode(data []byte, v any) error
}

// Registry is a process-wide map of codec code to Handler. It is mutable
// until Freeze is called, after which Register fails; this matches spec
// §4.B "The registry is immutable after freeze; pre-freeze registrations
// are serialized by the owner."
type Registry struct {
	mu       sync.RWMutex
	handlers map[uint64]Handler
	frozen   bool
}

// NewRegistry constructs an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[uint64]Handler)}
}

// Register adds handler under code. Fails with CodecConflict if code is
// already registered with a different handler instance, or if the
// registry is frozen.
func (r *Registry) Register(code uint64, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return cimerrors.New(cimerrors.CodecConflict, "registry is frozen")
	}
	if existing, ok := r.handlers[code]; ok && existing != handler {
		return cimerrors.New(cimerrors.CodecConflict, "codec code already registered with a different handler")
	}
	r.handlers[code] = handler
	return nil
}

// Lookup returns the handler registered for code. Fails with
// CodecUnknown if no handler is registered.
func (r *Registry) Lookup(code uint64) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[code]
	if !ok {
		return nil, cimerrors.New(cimerrors.CodecUnknown, "no handler registered for codec code")
	}
	return handler, nil
}

// Freeze prevents further registration. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether the registry has been frozen.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Default is the process-wide registry populated at init with the
// built-in codecs from spec §4.B. Callers that need isolation (tests,
// multiple independent engines in one process) should use NewRegistry
// and NewDefaultRegistry instead of the shared Default.
var Default = NewDefaultRegistry()

// NewDefaultRegistry constructs a registry pre-populated with the
// built-in codecs (Raw, DAG-CBOR, DAG-JSON, plain JSON, plain CBOR), left
// unfrozen so callers may add domain/media codecs before freezing.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	must := func(code uint64, h Handler) {
		if err := r.Register(code, h); err != nil {
			panic("codec: built-in registration failed: " + err.Error())
		}
	}
	must(Raw, RawHandler{})
	must(DagCBOR, DagCBORHandler{})
	must(DagJSON, DagJSONHandler{})
	must(PlainJSON, JSONHandler{})
	must(PlainCBOR, CBORHandler{})
	return r
}
