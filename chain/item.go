// Package chain implements the append-only content chain (spec §4.D):
// a cryptographically linked sequence of envelopes, where each item's
// CID binds its sequence number, timestamp, and link to the previous
// item alongside the wrapped content's own canonical bytes.
package chain

import (
	"time"

	"github.com/cimcore/cim/cid"
	"github.com/cimcore/cim/cimerrors"
	"github.com/cimcore/cim/codec"
	"github.com/cimcore/cim/envelope"
)

// Item is one link in a chain. Its CID is computed over (previous_cid,
// sequence, timestamp, canonical_bytes(content)), not over content
// alone, so chain position is part of its identity.
type Item struct {
	Sequence    uint64
	Timestamp   time.Time
	PreviousCID string // empty for sequence 0
	Content     envelope.Envelope

	// ContentCodecCode disambiguates decoding Event/Custom content on
	// load, mirroring Store.GetTyped's codecCode parameter.
	ContentCodecCode uint64

	cid cid.CID // cached once computed by CID/Validate
}

type itemCanonical struct {
	Sequence    uint64 `cbor:"sequence"`
	Timestamp   int64  `cbor:"timestamp"`
	PreviousCID string `cbor:"previous_cid"`
	Content     []byte `cbor:"content"`
}

// CodecCode implements cid.Canonicalizable.
func (Item) CodecCode() uint64 { return codec.DagCBOR }

// CanonicalBytes implements cid.Canonicalizable.
func (it *Item) CanonicalBytes() ([]byte, error) {
	contentBytes, err := it.Content.CanonicalBytes()
	if err != nil {
		return nil, err
	}
	return codec.Marshal(itemCanonical{
		Sequence:    it.Sequence,
		Timestamp:   it.Timestamp.UnixNano(),
		PreviousCID: it.PreviousCID,
		Content:     contentBytes,
	})
}

// CID returns the item's content address, computing it if necessary.
func (it *Item) CID() (cid.CID, error) {
	if it.cid.Defined() {
		return it.cid, nil
	}
	id, err := cid.Of(it)
	if err != nil {
		return cid.Undef, err
	}
	it.cid = id
	return id, nil
}

// wireItem is the persisted shape of an Item: the envelope is stored
// pre-marshaled via Marshal (not CanonicalBytes) so it carries its own
// metadata/transient fields on round trip, while the CID above remains
// computed only from canonical bytes.
type wireItem struct {
	Sequence         uint64 `cbor:"sequence"`
	Timestamp        int64  `cbor:"timestamp"`
	PreviousCID      string `cbor:"previous_cid"`
	ContentType      string `cbor:"content_type"`
	ContentCodecCode uint64 `cbor:"content_codec_code"`
	ContentPayload   []byte `cbor:"content_payload"`
	CID              string `cbor:"cid"`
}

func encodeItem(it *Item) ([]byte, error) {
	id, err := it.CID()
	if err != nil {
		return nil, err
	}
	payload, err := it.Content.Marshal()
	if err != nil {
		return nil, err
	}
	return codec.Marshal(wireItem{
		Sequence:         it.Sequence,
		Timestamp:        it.Timestamp.UnixNano(),
		PreviousCID:      it.PreviousCID,
		ContentType:      string(it.Content.Type()),
		ContentCodecCode: it.ContentCodecCode,
		ContentPayload:   payload,
		CID:              id.String(),
	})
}

func decodeItem(data []byte) (*Item, error) {
	var w wireItem
	if err := codec.Unmarshal(data, &w); err != nil {
		return nil, cimerrors.Wrap(cimerrors.ChainLoad, "decoding chain item", err)
	}
	env, err := decodeContentEnvelope(envelope.ContentType(w.ContentType), w.ContentCodecCode, w.ContentPayload)
	if err != nil {
		return nil, cimerrors.Wrap(cimerrors.ChainLoad, "decoding chain item content", err)
	}
	id, err := cid.Parse(w.CID)
	if err != nil {
		return nil, cimerrors.Wrap(cimerrors.ChainLoad, "parsing chain item cid", err)
	}
	return &Item{
		Sequence:         w.Sequence,
		Timestamp:        time.Unix(0, w.Timestamp).UTC(),
		PreviousCID:      w.PreviousCID,
		Content:          env,
		ContentCodecCode: w.ContentCodecCode,
		cid:              id,
	}, nil
}

func decodeContentEnvelope(ct envelope.ContentType, codecCode uint64, payload []byte) (envelope.Envelope, error) {
	switch {
	case envelope.IsBinary(ct):
		return envelope.UnmarshalBinary(payload)
	case envelope.IsText(ct):
		return envelope.UnmarshalText(payload)
	case ct == envelope.Event:
		return envelope.UnmarshalEvent(payload, codecCode)
	case ct == envelope.Custom:
		return envelope.UnmarshalCustom(codecCode, payload), nil
	default:
		return nil, cimerrors.New(cimerrors.InvalidContent, "chain: unrecognized content type for decode")
	}
}
