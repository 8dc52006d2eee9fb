package chain

import (
	"strconv"
	"sync"
	"time"

	"github.com/cimcore/cim/cid"
	"github.com/cimcore/cim/cimerrors"
	"github.com/cimcore/cim/envelope"
)

// Chain is an append-only, writer-serialized sequence of Items (spec
// §4.D). Append takes its own lock so concurrent callers on a single
// instance are safe, but the intended usage is one owner appending;
// parallel appenders must be routed through that owner. Multiple
// independent Chain instances may append concurrently without
// interfering with each other.
type Chain struct {
	mu    sync.Mutex
	items []*Item
}

// New constructs an empty chain.
func New() *Chain { return &Chain{} }

// Append implements append(content) -> item (spec §4.D). The item's
// sequence is len(chain), timestamp is now, and previous_cid links to
// the current head (empty for the first item).
func (c *Chain) Append(content envelope.Envelope, contentCodecCode uint64) (*Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var previous string
	if n := len(c.items); n > 0 {
		id, err := c.items[n-1].CID()
		if err != nil {
			return nil, err
		}
		previous = id.String()
	}

	it := &Item{
		Sequence:         uint64(len(c.items)),
		Timestamp:        time.Now().UTC(),
		PreviousCID:      previous,
		Content:          content,
		ContentCodecCode: contentCodecCode,
	}
	if _, err := it.CID(); err != nil {
		return nil, err
	}
	c.items = append(c.items, it)
	return it, nil
}

// Len returns the number of items currently appended.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Head returns the most recently appended item, or nil for an empty
// chain.
func (c *Chain) Head() *Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return nil
	}
	return c.items[len(c.items)-1]
}

// Tail returns the first appended item, or nil for an empty chain.
func (c *Chain) Tail() *Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return nil
	}
	return c.items[0]
}

// FindByCID returns the item whose CID string matches id, or nil if
// absent.
func (c *Chain) FindByCID(id string) *Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if got, err := it.CID(); err == nil && got.String() == id {
			return it
		}
	}
	return nil
}

// ItemsSince returns the suffix of items strictly after the one whose
// CID matches id (exclusive). Fails with NotFound if id is absent from
// the chain.
func (c *Chain) ItemsSince(id string) ([]*Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		got, err := it.CID()
		if err != nil {
			return nil, err
		}
		if got.String() == id {
			out := make([]*Item, len(c.items)-i-1)
			copy(out, c.items[i+1:])
			return out, nil
		}
	}
	return nil, cimerrors.New(cimerrors.NotFound, "chain: cid not found in chain")
}

// Validate walks the chain sequence 0..len, checking that each item's
// previous_cid matches the prior item's cid (empty at 0), each item's
// sequence equals its index, and each item's recomputed CID equals its
// stored CID. Fails with ChainValidation at the first violation (spec
// §4.D, §8 property 8).
func (c *Chain) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return validateLocked(c.items)
}

func validateLocked(items []*Item) error {
	var previous string
	for i, it := range items {
		if it.Sequence != uint64(i) {
			return cimerrors.NewChainValidation(i, strconv.Itoa(i), strconv.FormatUint(it.Sequence, 10))
		}
		if it.PreviousCID != previous {
			return cimerrors.NewChainValidation(i, previous, it.PreviousCID)
		}

		stored := it.cid
		recomputed, err := cid.Of(it)
		if err != nil {
			return err
		}
		if stored.Defined() && stored.String() != recomputed.String() {
			return cimerrors.NewChainValidation(i, stored.String(), recomputed.String())
		}
		it.cid = recomputed
		previous = recomputed.String()
	}
	return nil
}
