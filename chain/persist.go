package chain

import (
	"github.com/cimcore/cim/cid"
	"github.com/cimcore/cim/cimerrors"
	"github.com/cimcore/cim/codec"
	"github.com/cimcore/cim/objectstore"
)

// headKey is the dedicated chain-metadata key a chain's head marker is
// stored under within its bucket (spec §6 "Chain head marker").
const headKey = "__head"

// headMarker is the persisted record naming the chain's current head and
// length (spec §6).
type headMarker struct {
	HeadCID string `cbor:"head_cid"`
	Length  uint64 `cbor:"length"`
	Schema  uint32 `cbor:"schema"`
}

const headMarkerSchema uint32 = 1

// Save implements save(store) -> head_cid (spec §4.D): encodes each item
// via DAG-CBOR, stores blobs in insertion order keyed by their own CID
// string, then writes the head marker. Returns the zero CID for an empty
// chain (no marker is written).
func Save(backend objectstore.Backend, bucket string, c *Chain) (cid.CID, error) {
	c.mu.Lock()
	items := make([]*Item, len(c.items))
	copy(items, c.items)
	c.mu.Unlock()

	if len(items) == 0 {
		return cid.Undef, nil
	}

	if err := backend.CreateBucket(bucket, objectstore.BucketOptions{}); err != nil {
		return cid.Undef, err
	}

	for _, it := range items {
		id, err := it.CID()
		if err != nil {
			return cid.Undef, err
		}
		encoded, err := encodeItem(it)
		if err != nil {
			return cid.Undef, err
		}
		if err := backend.Put(bucket, id.String(), encoded); err != nil {
			return cid.Undef, err
		}
	}

	head, err := items[len(items)-1].CID()
	if err != nil {
		return cid.Undef, err
	}
	marker, err := codec.Marshal(headMarker{
		HeadCID: head.String(),
		Length:  uint64(len(items)),
		Schema:  headMarkerSchema,
	})
	if err != nil {
		return cid.Undef, err
	}
	if err := backend.Put(bucket, headKey, marker); err != nil {
		return cid.Undef, err
	}
	return head, nil
}

// LoadHead reads the bucket's head marker and loads the full chain it
// names.
func LoadHead(backend objectstore.Backend, bucket string) (*Chain, error) {
	raw, err := backend.Get(bucket, headKey)
	if err != nil {
		if cimerrors.HasCode(err, cimerrors.NotFound) {
			return New(), nil
		}
		return nil, cimerrors.Wrap(cimerrors.ChainLoad, "reading chain head marker", err)
	}
	var marker headMarker
	if err := codec.Unmarshal(raw, &marker); err != nil {
		return nil, cimerrors.Wrap(cimerrors.ChainLoad, "decoding chain head marker", err)
	}
	if marker.HeadCID == "" {
		return New(), nil
	}
	return Load(backend, bucket, marker.HeadCID)
}

// Load implements load(store, head_cid) -> chain (spec §4.D): walks
// backwards from head_cid following previous_cid until empty, reverses,
// then validates. Fails with ChainLoad on any missing blob or validation
// failure.
func Load(backend objectstore.Backend, bucket string, headCID string) (*Chain, error) {
	var reversed []*Item
	cursor := headCID
	for cursor != "" {
		raw, err := backend.Get(bucket, cursor)
		if err != nil {
			return nil, cimerrors.Wrap(cimerrors.ChainLoad, "fetching chain item", err)
		}
		it, err := decodeItem(raw)
		if err != nil {
			return nil, err
		}
		reversed = append(reversed, it)
		cursor = it.PreviousCID
	}

	items := make([]*Item, len(reversed))
	for i, it := range reversed {
		items[len(reversed)-1-i] = it
	}

	if err := validateLocked(items); err != nil {
		return nil, cimerrors.Wrap(cimerrors.ChainLoad, "validating loaded chain", err)
	}

	return &Chain{items: items}, nil
}
