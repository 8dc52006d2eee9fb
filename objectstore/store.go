package objectstore

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cimcore/cim/cid"
	"github.com/cimcore/cim/cimerrors"
	"github.com/cimcore/cim/codec"
	"github.com/cimcore/cim/envelope"
	"github.com/cimcore/cim/objectstore/cache"
)

const (
	rawBucket          = "cim-raw-objects"
	defaultParallelism = 10
)

func typeBucket(ct envelope.ContentType) string {
	return "cim-type-" + string(ct)
}

// ObjectInfo describes a stored object for listing operations (spec
// §4.E "list_by_content_type", "list_domain").
type ObjectInfo struct {
	CID         string
	Size        int64
	Created     time.Time
	ContentType envelope.ContentType
	Domain      Domain
}

// ObjectMeta is the result of Info (spec §4.E "info(cid, type)").
type ObjectMeta struct {
	Size       int64
	Created    time.Time
	Compressed bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithCompressionThreshold overrides DefaultCompressionThreshold.
func WithCompressionThreshold(n int) Option {
	return func(s *Store) { s.compressionThreshold = n }
}

// WithCacheCapacity overrides cache.DefaultCapacity.
func WithCacheCapacity(capacity int) Option {
	return func(s *Store) {
		c, err := cache.New(capacity)
		if err == nil {
			s.cache = c
		}
	}
}

// WithEncryption configures the default AEAD cipher applied to every
// write (spec §4.E step 5). Without this option, writes are stored
// unencrypted.
func WithEncryption(algo EncryptionAlgo, key []byte) Option {
	return func(s *Store) {
		aead, err := NewAEAD(algo, key)
		if err != nil {
			s.initErr = err
			return
		}
		s.aead = aead
		s.keyIDHash = KeyIDHash(key)
	}
}

// WithBatchParallelism overrides the default bounded parallelism used by
// PutBatch/GetBatch.
func WithBatchParallelism(n int) Option {
	return func(s *Store) { s.batchParallelism = n }
}

// WithPartitioner overrides the default domain partitioner.
func WithPartitioner(p *Partitioner) Option {
	return func(s *Store) { s.partitioner = p }
}

// WithRegistry overrides the default codec registry.
func WithRegistry(r *codec.Registry) Option {
	return func(s *Store) { s.registry = r }
}

// Store implements the object store layer (spec §4.E) over a pluggable
// Backend.
type Store struct {
	backend               Backend
	cache                 *cache.Cache
	partitioner           *Partitioner
	registry              *codec.Registry
	logger                *slog.Logger
	compressionThreshold  int
	batchParallelism      int
	aead                  *AEAD
	keyIDHash             [keyIDHashLen]byte
	initErr               error

	mu sync.Mutex // serializes bucket creation
	createdBuckets map[string]struct{}
}

// New constructs a Store over backend.
func New(backend Backend, opts ...Option) (*Store, error) {
	c, err := cache.New(cache.DefaultCapacity)
	if err != nil {
		return nil, err
	}
	s := &Store{
		backend:              backend,
		cache:                c,
		partitioner:          NewPartitioner(),
		registry:             codec.NewDefaultRegistry(),
		logger:               slog.Default(),
		compressionThreshold: DefaultCompressionThreshold,
		batchParallelism:     defaultParallelism,
		createdBuckets:       make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.initErr != nil {
		return nil, s.initErr
	}
	return s, nil
}

func (s *Store) ensureBucket(bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.createdBuckets[bucket]; ok {
		return nil
	}
	if err := s.backend.CreateBucket(bucket, BucketOptions{}); err != nil {
		return err
	}
	s.createdBuckets[bucket] = struct{}{}
	return nil
}

// seal applies compression then encryption to plaintext, returning the
// bytes to write alongside the header describing them (spec §4.E steps
// 4-5).
func (s *Store) seal(plaintext []byte, contentTypeTag uint16) ([]byte, error) {
	h := Header{PlaintextSize: uint64(len(plaintext)), ContentTypeTag: contentTypeTag}
	body := plaintext

	if len(plaintext) >= s.compressionThreshold {
		compressed, err := compress(plaintext)
		if err != nil {
			return nil, err
		}
		h.Compressed = true
		h.CompressionAlgo = CompressionZstd
		h.CompressedSize = uint32(len(compressed))
		body = compressed
	}

	if s.aead != nil {
		nonce, ciphertext, err := s.aead.Seal(body, nil)
		if err != nil {
			return nil, err
		}
		h.Encrypted = true
		h.EncryptionAlgo = s.aead.Algo()
		h.Nonce = nonce
		h.KeyIDHash = s.keyIDHash
		body = ciphertext
	}

	return h.Encode(body), nil
}

// unseal reverses seal, returning the original plaintext.
func (s *Store) unseal(stored []byte) ([]byte, error) {
	h, body, err := DecodeHeader(stored)
	if err != nil {
		return nil, err
	}

	if h.Encrypted {
		if s.aead == nil || s.aead.Algo() != h.EncryptionAlgo {
			return nil, cimerrors.New(cimerrors.DecryptionError, "objectstore: no matching AEAD key configured for stored algorithm")
		}
		body, err = s.aead.Open(h.Nonce, body, nil)
		if err != nil {
			return nil, err
		}
	}

	if h.Compressed {
		body, err = decompress(body, h.PlaintextSize)
		if err != nil {
			return nil, err
		}
	}

	return body, nil
}

// PutRaw implements spec §4.E's put_raw(bytes) -> cid.
func (s *Store) PutRaw(data []byte) (cid.CID, error) {
	return s.putInBucket(rawBucket, codec.Raw, data)
}

// GetRaw implements get_raw(cid) -> bytes.
func (s *Store) GetRaw(id cid.CID) ([]byte, error) {
	return s.getFromBucket(rawBucket, id, codec.Raw)
}

func (s *Store) putInBucket(bucket string, codecCode uint64, plaintext []byte) (cid.CID, error) {
	id, err := cid.FromPlaintext(codecCode, plaintext)
	if err != nil {
		return cid.Undef, err
	}

	if _, ok := s.cache.Get(id.String()); ok {
		return id, nil
	}
	if err := s.ensureBucket(bucket); err != nil {
		return cid.Undef, err
	}
	exists, err := s.backend.Exists(bucket, id.String())
	if err != nil {
		return cid.Undef, err
	}
	if exists {
		s.cache.Put(id.String(), plaintext)
		return id, nil // deduplicated
	}

	sealed, err := s.seal(plaintext, uint16(codecCode))
	if err != nil {
		return cid.Undef, err
	}
	if err := s.backend.Put(bucket, id.String(), sealed); err != nil {
		return cid.Undef, err
	}
	s.cache.Put(id.String(), plaintext)
	return id, nil
}

func (s *Store) getFromBucket(bucket string, id cid.CID, codecCode uint64) ([]byte, error) {
	if payload, ok := s.cache.Get(id.String()); ok {
		return payload, nil
	}

	stored, err := s.backend.Get(bucket, id.String())
	if err != nil {
		return nil, err
	}
	plaintext, err := s.unseal(stored)
	if err != nil {
		return nil, err
	}

	recomputed, err := cid.FromPlaintext(codecCode, plaintext)
	if err != nil {
		return nil, err
	}
	if recomputed.String() != id.String() {
		return nil, cimerrors.NewCidMismatch(id.String(), recomputed.String())
	}

	s.cache.Put(id.String(), plaintext)
	return plaintext, nil
}

// PutTyped implements put_typed(envelope) -> cid.
func (s *Store) PutTyped(env envelope.Envelope) (cid.CID, error) {
	id, err := cid.Of(env)
	if err != nil {
		return cid.Undef, err
	}

	if _, ok := s.cache.Get(id.String()); ok {
		return id, nil
	}

	bucket := typeBucket(env.Type())
	if err := s.ensureBucket(bucket); err != nil {
		return cid.Undef, err
	}
	exists, err := s.backend.Exists(bucket, id.String())
	if err != nil {
		return cid.Undef, err
	}

	payload, err := env.Marshal()
	if err != nil {
		return cid.Undef, err
	}
	if exists {
		s.cache.Put(id.String(), payload)
		return id, nil
	}

	sealed, err := s.seal(payload, uint16(env.CodecCode()))
	if err != nil {
		return cid.Undef, err
	}
	if err := s.backend.Put(bucket, id.String(), sealed); err != nil {
		return cid.Undef, err
	}
	s.cache.Put(id.String(), payload)
	return id, nil
}

// ExistsTyped reports whether an object previously stored via PutTyped
// is already present, so a caller can report deduplication without
// paying for a redundant write.
func (s *Store) ExistsTyped(id cid.CID, ct envelope.ContentType) (bool, error) {
	if _, ok := s.cache.Get(id.String()); ok {
		return true, nil
	}
	bucket := typeBucket(ct)
	if err := s.ensureBucket(bucket); err != nil {
		return false, err
	}
	return s.backend.Exists(bucket, id.String())
}

// decodeEnvelope dispatches to the right Unmarshal* for ct. codecCode is
// only consulted for Event and Custom, whose wire shape doesn't encode
// enough to recover it on its own.
func decodeEnvelope(ct envelope.ContentType, codecCode uint64, payload []byte) (envelope.Envelope, error) {
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
		return nil, cimerrors.New(cimerrors.InvalidContent, "objectstore: unrecognized content type for decode")
	}
}

// GetTyped implements get_typed(cid, expected_type) -> envelope.
// codecCode is required to disambiguate Event/Custom payloads; pass 0
// for built-in binary/text types.
func (s *Store) GetTyped(id cid.CID, expectedType envelope.ContentType, codecCode uint64) (envelope.Envelope, error) {
	var payload []byte
	if cached, ok := s.cache.Get(id.String()); ok {
		payload = cached
	} else {
		bucket := typeBucket(expectedType)
		stored, err := s.backend.Get(bucket, id.String())
		if err != nil {
			return nil, err
		}
		payload, err = s.unseal(stored)
		if err != nil {
			return nil, err
		}
	}

	env, err := decodeEnvelope(expectedType, codecCode, payload)
	if err != nil {
		return nil, err
	}

	recomputed, err := cid.Of(env)
	if err != nil {
		return nil, err
	}
	if recomputed.String() != id.String() {
		return nil, cimerrors.NewCidMismatch(id.String(), recomputed.String())
	}

	s.cache.Put(id.String(), payload)
	return env, nil
}

// PutWithDomain implements put_with_domain(bytes, name_hint, mime_hint,
// preview_hint, metadata_hints) -> (cid, domain).
func (s *Store) PutWithDomain(data []byte, nameHint, mimeHint, previewHint string, metadataHints map[string]string) (cid.CID, Domain, error) {
	domain := s.partitioner.Assign(Hints{Name: nameHint, MIME: mimeHint, Preview: previewHint, Metadata: metadataHints})
	bucket := BucketFor(domain)
	id, err := s.putInBucket(bucket, codec.Raw, data)
	if err != nil {
		return cid.Undef, "", err
	}
	return id, domain, nil
}

// GetFromDomain implements get_from_domain(cid, domain) -> bytes.
func (s *Store) GetFromDomain(id cid.CID, domain Domain) ([]byte, error) {
	return s.getFromBucket(BucketFor(domain), id, codec.Raw)
}

// Info implements info(cid, type) -> {size, created, compressed?}.
func (s *Store) Info(id cid.CID, ct envelope.ContentType) (ObjectMeta, error) {
	bucket := typeBucket(ct)
	stored, err := s.backend.Get(bucket, id.String())
	if err != nil {
		return ObjectMeta{}, err
	}
	h, _, err := DecodeHeader(stored)
	if err != nil {
		return ObjectMeta{}, err
	}
	backendInfo, err := s.backend.Info(bucket, id.String())
	if err != nil {
		return ObjectMeta{}, err
	}
	return ObjectMeta{
		Size:       int64(h.PlaintextSize),
		Created:    backendInfo.Created,
		Compressed: h.Compressed,
	}, nil
}

// Delete implements delete(cid) (spec §4.E: "optional; best-effort
// across replicas").
func (s *Store) Delete(bucket string, id cid.CID) error {
	s.cache.Remove(id.String())
	return s.backend.Delete(bucket, id.String())
}

// DeleteRaw deletes an object previously stored via PutRaw.
func (s *Store) DeleteRaw(id cid.CID) error {
	return s.Delete(rawBucket, id)
}

// DeleteTyped deletes an object previously stored via PutTyped under ct.
func (s *Store) DeleteTyped(id cid.CID, ct envelope.ContentType) error {
	return s.Delete(typeBucket(ct), id)
}

// DeleteFromDomain deletes an object previously stored via
// PutWithDomain under domain.
func (s *Store) DeleteFromDomain(id cid.CID, domain Domain) error {
	return s.Delete(BucketFor(domain), id)
}

// ListByContentType implements list_by_content_type(type,
// optional_prefix) -> [object_info].
func (s *Store) ListByContentType(ct envelope.ContentType, prefix string) ([]ObjectInfo, error) {
	bucket := typeBucket(ct)
	keys, err := s.backend.List(bucket, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]ObjectInfo, 0, len(keys))
	for _, key := range keys {
		info, err := s.backend.Info(bucket, key)
		if err != nil {
			continue
		}
		out = append(out, ObjectInfo{CID: key, Size: info.Size, Created: info.Created, ContentType: ct})
	}
	return out, nil
}

// ListDomain implements list_domain(domain) -> [object_info].
func (s *Store) ListDomain(domain Domain) ([]ObjectInfo, error) {
	bucket := BucketFor(domain)
	keys, err := s.backend.List(bucket, "")
	if err != nil {
		return nil, err
	}
	out := make([]ObjectInfo, 0, len(keys))
	for _, key := range keys {
		info, err := s.backend.Info(bucket, key)
		if err != nil {
			continue
		}
		out = append(out, ObjectInfo{CID: key, Size: info.Size, Created: info.Created, Domain: domain})
	}
	return out, nil
}

// PutBatch implements put_batch(items) -> [cid] with bounded parallelism
// and partial success: the result vector preserves input order, and a
// failed item yields a zero CID at its index alongside a non-nil error
// in the parallel errs vector.
func (s *Store) PutBatch(items [][]byte) ([]cid.CID, []error) {
	n := len(items)
	results := make([]cid.CID, n)
	errs := make([]error, n)

	sem := make(chan struct{}, s.batchParallelism)
	var wg sync.WaitGroup
	wg.Add(n)
	for i, item := range items {
		sem <- struct{}{}
		go func(i int, item []byte) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = s.PutRaw(item)
		}(i, item)
	}
	wg.Wait()
	return results, errs
}

// GetBatch implements get_batch(cids) -> [bytes?].
func (s *Store) GetBatch(ids []cid.CID) ([][]byte, []error) {
	n := len(ids)
	results := make([][]byte, n)
	errs := make([]error, n)

	sem := make(chan struct{}, s.batchParallelism)
	var wg sync.WaitGroup
	wg.Add(n)
	for i, id := range ids {
		sem <- struct{}{}
		go func(i int, id cid.CID) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = s.GetRaw(id)
		}(i, id)
	}
	wg.Wait()
	return results, errs
}
