package contentservice

import (
	"log/slog"
	"time"

	"github.com/cimcore/cim/cid"
	"github.com/cimcore/cim/cimerrors"
	"github.com/cimcore/cim/envelope"
	"github.com/cimcore/cim/index"
	"github.com/cimcore/cim/objectstore"
	"github.com/cimcore/cim/transform"
)

// DocumentMetadata carries the fields a document store call may set;
// Tags additionally drives indexing when AutoIndex is enabled.
type DocumentMetadata struct {
	Title    string
	Author   string
	Language string
	Tags     []string
}

// ImageMetadata carries the fields an image store call may set.
type ImageMetadata struct {
	Tags  []string
	Extra map[string]string
}

// StoreResult reports the outcome of a store operation, including
// whether the content already existed (spec §4.E dedup semantics,
// surfaced the way the original content service's StoreResult does).
type StoreResult struct {
	CID          cid.CID
	ContentType  envelope.ContentType
	Size         int64
	Deduplicated bool
	StoredAt     time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service is a high-level façade unifying object storage, the search
// index, and format transformation (grounded in the original content
// service, which composed a NATS-backed object store with a
// ContentIndex and the transformers module behind one API).
type Service struct {
	store  *objectstore.Store
	index  *index.Index
	config Config
	hooks  *hooks
	logger *slog.Logger
}

// New constructs a Service over store and idx.
func New(store *objectstore.Store, idx *index.Index, config Config, opts ...Option) *Service {
	s := &Service{
		store:  store,
		index:  idx,
		config: config,
		hooks:  &hooks{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddPreStoreHook registers fn to run before every store call.
func (s *Service) AddPreStoreHook(fn PreStoreHook) { s.hooks.addPreStore(fn) }

// AddPostStoreHook registers fn to run after every successful store.
func (s *Service) AddPostStoreHook(fn PostStoreHook) { s.hooks.addPostStore(fn) }

// AddPreRetrieveHook registers fn to run before every retrieve call.
func (s *Service) AddPreRetrieveHook(fn PreRetrieveHook) { s.hooks.addPreRetrieve(fn) }

// AddPostRetrieveHook registers fn to run after every successful retrieve.
func (s *Service) AddPostRetrieveHook(fn PostRetrieveHook) { s.hooks.addPostRetrieve(fn) }

// StoreDocument stores a text-family document (markdown, plain text, or
// DOCX as an opaque binary), indexing it automatically when
// Config.AutoIndex is set.
func (s *Service) StoreDocument(data []byte, meta DocumentMetadata, ct envelope.ContentType) (StoreResult, error) {
	if int64(len(data)) > s.config.MaxContentSize {
		return StoreResult{}, cimerrors.New(cimerrors.InvalidContent, "contentservice: document exceeds configured maximum size")
	}
	if err := s.hooks.runPreStore(data, ct); err != nil {
		return StoreResult{}, err
	}

	var env envelope.Envelope
	var searchText string
	switch ct {
	case envelope.Markdown, envelope.Text:
		text := envelope.NewText(ct, string(data))
		text.Title = meta.Title
		text.Author = meta.Author
		text.Language = meta.Language
		env = text
		searchText = text.Content
	case envelope.PDF, envelope.DOCX:
		binEnv, err := envelope.NewBinary(ct, data, map[string]string{"title": meta.Title, "author": meta.Author})
		if err != nil {
			return StoreResult{}, err
		}
		env = binEnv
	default:
		return StoreResult{}, cimerrors.New(cimerrors.FormatMismatch, "contentservice: unsupported document format "+string(ct))
	}

	return s.storeTyped(env, searchText, meta.Tags)
}

// StoreImage stores an image (PNG, JPEG, GIF, or WebP), indexing it
// automatically when Config.AutoIndex is set.
func (s *Service) StoreImage(data []byte, meta ImageMetadata, ct envelope.ContentType) (StoreResult, error) {
	if int64(len(data)) > s.config.MaxContentSize {
		return StoreResult{}, cimerrors.New(cimerrors.InvalidContent, "contentservice: image exceeds configured maximum size")
	}
	if err := s.hooks.runPreStore(data, ct); err != nil {
		return StoreResult{}, err
	}

	switch ct {
	case envelope.PNG, envelope.JPEG, envelope.GIF, envelope.WebP:
	default:
		return StoreResult{}, cimerrors.New(cimerrors.FormatMismatch, "contentservice: unsupported image format "+string(ct))
	}

	env, err := envelope.NewBinary(ct, data, meta.Extra)
	if err != nil {
		return StoreResult{}, err
	}
	return s.storeTyped(env, "", meta.Tags)
}

func (s *Service) storeTyped(env envelope.Envelope, searchText string, tags []string) (StoreResult, error) {
	ct := env.Type()
	if !s.config.typeAllowed(ct) {
		return StoreResult{}, cimerrors.New(cimerrors.InvalidContent, "contentservice: content type "+string(ct)+" not allowed")
	}

	id, err := cid.Of(env)
	if err != nil {
		return StoreResult{}, err
	}

	deduplicated := false
	if s.config.EnableDeduplication {
		exists, err := s.store.ExistsTyped(id, ct)
		if err == nil {
			deduplicated = exists
		}
	}

	if _, err := s.store.PutTyped(env); err != nil {
		return StoreResult{}, err
	}

	size := int64(0)
	if info, err := s.store.Info(id, ct); err == nil {
		size = info.Size
	}

	if s.config.AutoIndex {
		meta := index.Metadata{
			ContentType: string(ct),
			Tags:        tags,
			Size:        size,
			Created:     time.Now(),
		}
		s.index.Update(id.String(), searchText, tags, string(ct), meta)
	}

	s.hooks.runPostStore(id, ct)
	s.logger.Debug("content stored", "cid", id.String(), "content_type", ct, "deduplicated", deduplicated)

	return StoreResult{
		CID:          id,
		ContentType:  ct,
		Size:         size,
		Deduplicated: deduplicated,
		StoredAt:     time.Now(),
	}, nil
}

// Retrieve fetches an envelope by CID, running retrieve hooks around
// the call.
func (s *Service) Retrieve(id cid.CID, ct envelope.ContentType, codecCode uint64) (envelope.Envelope, error) {
	s.hooks.runPreRetrieve(id)

	env, err := s.store.GetTyped(id, ct, codecCode)
	if err != nil {
		return nil, err
	}

	if payload, err := env.Marshal(); err == nil {
		s.hooks.runPostRetrieve(id, payload)
	}
	return env, nil
}

// Search delegates to the underlying index (spec §4.F "Query").
func (s *Service) Search(q index.Query) []index.Result {
	return s.index.Search(q)
}

// Stats reports index-wide content statistics.
func (s *Service) Stats() index.Stats {
	return s.index.Stats()
}

// ListByType delegates to the object store's listing (spec §4.E
// "list_by_content_type").
func (s *Service) ListByType(ct envelope.ContentType, prefix string) ([]objectstore.ObjectInfo, error) {
	return s.store.ListByContentType(ct, prefix)
}

// Transform converts a stored envelope's payload to target, dispatching
// on the envelope's own content type the way transform's functions
// expect.
func (s *Service) Transform(id cid.CID, ct envelope.ContentType, codecCode uint64, target transform.Target, opts transform.Options) (transform.Result, error) {
	env, err := s.Retrieve(id, ct, codecCode)
	if err != nil {
		return transform.Result{}, err
	}

	switch e := env.(type) {
	case *envelope.TextEnvelope:
		switch target {
		case transform.TargetHTML:
			return transform.MarkdownToHTML([]byte(e.Content), e.Title)
		case transform.TargetText:
			return transform.ToPlainText(e.Content)
		default:
			return transform.Result{}, cimerrors.New(cimerrors.FormatMismatch, "contentservice: unsupported text transformation target")
		}
	case *envelope.BinaryEnvelope:
		switch target {
		case transform.TargetJPEG, transform.TargetPNG, transform.TargetWebP:
			return transform.ConvertImage(e.Payload, e.ContentType, target, opts)
		default:
			return transform.Result{}, cimerrors.New(cimerrors.FormatMismatch, "contentservice: unsupported binary transformation target")
		}
	default:
		return transform.Result{}, cimerrors.New(cimerrors.FormatMismatch, "contentservice: content type does not support transformation")
	}
}

// BatchStoreDocuments stores multiple documents of the same content
// type, attempting every item and reporting each item's error (or nil)
// at its index in the returned slice (spec §4.E PutBatch's
// partial-failure shape, extended to the document path).
func (s *Service) BatchStoreDocuments(items [][]byte, meta []DocumentMetadata, ct envelope.ContentType) ([]StoreResult, []error) {
	results := make([]StoreResult, len(items))
	errs := make([]error, len(items))
	for i, data := range items {
		m := DocumentMetadata{}
		if i < len(meta) {
			m = meta[i]
		}
		results[i], errs[i] = s.StoreDocument(data, m, ct)
	}
	return results, errs
}
