package index

import (
	"log/slog"

	"github.com/cimcore/cim/cimerrors"
	"github.com/cimcore/cim/codec"
	"github.com/cimcore/cim/objectstore"
)

// Bucket names the four dedicated KV buckets persisted indices live in
// (spec §4.F "Persistence").
const (
	TextIndexBucket     = "text_index_v1"
	TagIndexBucket      = "tag_index_v1"
	TypeIndexBucket     = "type_index_v1"
	MetadataCacheBucket = "metadata_cache_v1"

	snapshotKey = "snapshot"
)

// Persister saves and loads an Index against a KV backend (spec §6
// "Key-value backend contract"), optionally wrapping each bucket's
// payload in AEAD encryption (spec §4.F "At-rest encryption").
// objectstore.Backend's bucket+key shape already matches that contract,
// so any Backend — boltkv, localfs, grpcstore — works here unchanged.
type Persister struct {
	Backend   objectstore.Backend
	AEAD      *objectstore.AEAD // nil disables encryption
	KeyIDHash [32]byte
}

type textIndexSnapshot struct {
	Inverted    map[string][]string `cbor:"inverted"`
	TokensByCID map[string][]string `cbor:"tokens_by_cid"`
}

type tagIndexSnapshot struct {
	Tags map[string][]string `cbor:"tags"`
}

type typeIndexSnapshot struct {
	Types map[string][]string `cbor:"types"`
}

type metadataCacheSnapshot struct {
	Meta map[string]Metadata `cbor:"meta"`
}

func setsToLists(m map[string]map[string]struct{}) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, set := range m {
		list := make([]string, 0, len(set))
		for v := range set {
			list = append(list, v)
		}
		out[k] = list
	}
	return out
}

func listsToSets(m map[string][]string) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(m))
	for k, list := range m {
		set := make(map[string]struct{}, len(list))
		for _, v := range list {
			set[v] = struct{}{}
		}
		out[k] = set
	}
	return out
}

// Save implements persist(index) (spec §4.F "Persistence"): serializes
// each of the four sections to DAG-CBOR and writes it to its dedicated
// bucket under a fixed key.
func (p *Persister) Save(idx *Index) error {
	idx.mu.RLock()
	text := textIndexSnapshot{
		Inverted:    setsToLists(idx.inverted),
		TokensByCID: cloneStringLists(idx.tokensByCID),
	}
	tags := tagIndexSnapshot{Tags: setsToLists(idx.tags)}
	types := typeIndexSnapshot{Types: setsToLists(idx.types)}
	meta := metadataCacheSnapshot{Meta: cloneMeta(idx.meta)}
	idx.mu.RUnlock()

	sections := []struct {
		bucket string
		value  any
	}{
		{TextIndexBucket, text},
		{TagIndexBucket, tags},
		{TypeIndexBucket, types},
		{MetadataCacheBucket, meta},
	}

	for _, s := range sections {
		payload, err := codec.Marshal(s.value)
		if err != nil {
			return cimerrors.Wrap(cimerrors.CanonicalizationError, "index: encoding "+s.bucket, err)
		}
		stored, err := p.encode(payload)
		if err != nil {
			return err
		}
		if err := p.Backend.CreateBucket(s.bucket, objectstore.BucketOptions{}); err != nil {
			return err
		}
		if err := p.Backend.Put(s.bucket, snapshotKey, stored); err != nil {
			return err
		}
	}
	return nil
}

// Load implements the startup rebuild side of persistence (spec §4.F
// "Load on startup rebuilds the in-memory indices; failures degrade to
// an empty index with a log record, never to corrupted state"). Load
// itself returns the error rather than logging, leaving the
// degrade-on-failure policy to the caller (see LoadOrEmpty).
func (p *Persister) Load() (*Index, error) {
	idx := New()

	textRaw, err := p.getSection(TextIndexBucket)
	if err != nil {
		return nil, err
	}
	if textRaw != nil {
		var text textIndexSnapshot
		if err := codec.Unmarshal(textRaw, &text); err != nil {
			return nil, cimerrors.Wrap(cimerrors.CanonicalizationError, "index: decoding text index", err)
		}
		idx.inverted = listsToSets(text.Inverted)
		idx.tokensByCID = cloneStringLists(text.TokensByCID)
	}

	tagRaw, err := p.getSection(TagIndexBucket)
	if err != nil {
		return nil, err
	}
	if tagRaw != nil {
		var tags tagIndexSnapshot
		if err := codec.Unmarshal(tagRaw, &tags); err != nil {
			return nil, cimerrors.Wrap(cimerrors.CanonicalizationError, "index: decoding tag index", err)
		}
		idx.tags = listsToSets(tags.Tags)
	}

	typeRaw, err := p.getSection(TypeIndexBucket)
	if err != nil {
		return nil, err
	}
	if typeRaw != nil {
		var types typeIndexSnapshot
		if err := codec.Unmarshal(typeRaw, &types); err != nil {
			return nil, cimerrors.Wrap(cimerrors.CanonicalizationError, "index: decoding type index", err)
		}
		idx.types = listsToSets(types.Types)
	}

	metaRaw, err := p.getSection(MetadataCacheBucket)
	if err != nil {
		return nil, err
	}
	if metaRaw != nil {
		var meta metadataCacheSnapshot
		if err := codec.Unmarshal(metaRaw, &meta); err != nil {
			return nil, cimerrors.Wrap(cimerrors.CanonicalizationError, "index: decoding metadata cache", err)
		}
		idx.meta = cloneMeta(meta.Meta)
	}

	return idx, nil
}

// LoadConfidential behaves like Load but rebuilds into a confidential
// Index keyed by secret, so callers of NewConfidential can resume
// across restarts using the same blinding context names.
func (p *Persister) LoadConfidential(secret []byte) (*Index, error) {
	idx, err := p.Load()
	if err != nil {
		return nil, err
	}
	confidential := NewConfidential(secret)
	confidential.inverted = idx.inverted
	confidential.tokensByCID = idx.tokensByCID
	confidential.tags = idx.tags
	confidential.types = idx.types
	confidential.meta = idx.meta
	return confidential, nil
}

// LoadOrEmpty calls Load and, on any failure, writes a Warn record to
// slog.Default() and returns a fresh empty Index alongside the error,
// never surfacing a partially-corrupted index (spec §4.F "never to
// corrupted state").
func (p *Persister) LoadOrEmpty() (*Index, error) {
	idx, err := p.Load()
	if err != nil {
		slog.Default().Warn("index: load failed, starting from an empty index", "error", err)
		return New(), err
	}
	return idx, nil
}

func (p *Persister) getSection(bucket string) ([]byte, error) {
	raw, err := p.Backend.Get(bucket, snapshotKey)
	if err != nil {
		if cimerrors.HasCode(err, cimerrors.NotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p.decode(raw)
}

func (p *Persister) encode(plaintext []byte) ([]byte, error) {
	if p.AEAD == nil {
		return plaintext, nil
	}
	nonce, ciphertext, err := p.AEAD.Seal(plaintext, nil)
	if err != nil {
		return nil, err
	}
	h := objectstore.Header{
		Encrypted:      true,
		EncryptionAlgo: p.AEAD.Algo(),
		Nonce:          nonce,
		KeyIDHash:      p.KeyIDHash,
		PlaintextSize:  uint64(len(plaintext)),
	}
	return h.Encode(ciphertext), nil
}

func (p *Persister) decode(data []byte) ([]byte, error) {
	if p.AEAD == nil {
		return data, nil
	}
	h, ciphertext, err := objectstore.DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	if !h.Encrypted {
		return ciphertext, nil
	}
	return p.AEAD.Open(h.Nonce, ciphertext, nil)
}

func cloneStringLists(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func cloneMeta(m map[string]Metadata) map[string]Metadata {
	out := make(map[string]Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
