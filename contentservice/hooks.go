package contentservice

import (
	"sync"

	"github.com/cimcore/cim/cid"
	"github.com/cimcore/cim/envelope"
)

// PreStoreHook runs before content is written; returning an error
// aborts the store.
type PreStoreHook func(data []byte, ct envelope.ContentType) error

// PostStoreHook runs after a successful store.
type PostStoreHook func(id cid.CID, ct envelope.ContentType)

// PreRetrieveHook runs before a retrieval is attempted.
type PreRetrieveHook func(id cid.CID)

// PostRetrieveHook runs after a successful retrieval.
type PostRetrieveHook func(id cid.CID, data []byte)

// hooks collects the lifecycle callbacks a Service invokes around
// store and retrieve operations (spec §4.E is silent on hooks; this
// mirrors the original content service's LifecycleHooks).
type hooks struct {
	mu sync.RWMutex

	preStore     []PreStoreHook
	postStore    []PostStoreHook
	preRetrieve  []PreRetrieveHook
	postRetrieve []PostRetrieveHook
}

func (h *hooks) addPreStore(fn PreStoreHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.preStore = append(h.preStore, fn)
}

func (h *hooks) addPostStore(fn PostStoreHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.postStore = append(h.postStore, fn)
}

func (h *hooks) addPreRetrieve(fn PreRetrieveHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.preRetrieve = append(h.preRetrieve, fn)
}

func (h *hooks) addPostRetrieve(fn PostRetrieveHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.postRetrieve = append(h.postRetrieve, fn)
}

func (h *hooks) runPreStore(data []byte, ct envelope.ContentType) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.preStore {
		if err := fn(data, ct); err != nil {
			return err
		}
	}
	return nil
}

func (h *hooks) runPostStore(id cid.CID, ct envelope.ContentType) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.postStore {
		fn(id, ct)
	}
}

func (h *hooks) runPreRetrieve(id cid.CID) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.preRetrieve {
		fn(id)
	}
}

func (h *hooks) runPostRetrieve(id cid.CID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.postRetrieve {
		fn(id, data)
	}
}
