package index

import (
	"math"
	"sort"
	"sync"
)

// Index holds the in-memory inverted/tag/type indices and metadata
// cache (spec §4.F "Indices"). Updates are synchronous and idempotent:
// calling Update twice for the same CID with the same content leaves
// the index in the same state it would reach from one call.
type Index struct {
	mu sync.RWMutex

	inverted map[string]map[string]struct{} // token -> set of CIDs
	tags     map[string]map[string]struct{} // tag -> set of CIDs
	types    map[string]map[string]struct{} // content_type -> set of CIDs
	meta     map[string]Metadata            // CID -> metadata

	// tokensByCID lets Update/Remove retract a CID's prior postings
	// before reinserting, which is what makes Update idempotent. It
	// stores tokens pre-blinding; Remove recomputes the blinded keys
	// with the Index's textBlind.
	tokensByCID map[string][]string

	// textBlind, tagBlind, and typeBlind key the inverted, tag, and
	// type maps respectively. They default to identity; NewConfidential
	// replaces them with BlindIndexer.Blind under distinct contexts.
	textBlind func(string) string
	tagBlind  func(string) string
	typeBlind func(string) string
}

func identity(s string) string { return s }

// New constructs an empty Index whose map keys are plaintext tokens,
// tags, and content types.
func New() *Index {
	return &Index{
		inverted:    make(map[string]map[string]struct{}),
		tags:        make(map[string]map[string]struct{}),
		types:       make(map[string]map[string]struct{}),
		meta:        make(map[string]Metadata),
		tokensByCID: make(map[string][]string),
		textBlind:   identity,
		tagBlind:    identity,
		typeBlind:   identity,
	}
}

// NewConfidential constructs an Index whose inverted, tag, and type
// index keys are BLAKE3 MACs derived from secret rather than plaintext,
// so a reader who obtains the index's key space (e.g. a persisted
// snapshot before encryption, or a debugger) cannot recover the
// underlying vocabulary, tag set, or content type set. Metadata values
// are unaffected; pair this with WrapMetadata for confidentiality of
// the metadata cache too.
func NewConfidential(secret []byte) *Index {
	idx := New()
	idx.textBlind = NewBlindIndexer(secret, "cim-index-text-v1").Blind
	idx.tagBlind = NewBlindIndexer(secret, "cim-index-tag-v1").Blind
	idx.typeBlind = NewBlindIndexer(secret, "cim-index-type-v1").Blind
	return idx
}

// Update indexes (or re-indexes) a CID's searchable text, tags, content
// type, and metadata. Synchronous and idempotent (spec §4.F "Index
// updates").
func (idx *Index) Update(cid string, text string, tags []string, contentType string, meta Metadata) {
	tokens := tokenize(text)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeLocked(cid)

	for _, tok := range tokens {
		key := idx.textBlind(tok)
		set := idx.inverted[key]
		if set == nil {
			set = make(map[string]struct{})
			idx.inverted[key] = set
		}
		set[cid] = struct{}{}
	}
	for _, tag := range tags {
		key := idx.tagBlind(tag)
		set := idx.tags[key]
		if set == nil {
			set = make(map[string]struct{})
			idx.tags[key] = set
		}
		set[cid] = struct{}{}
	}
	if contentType != "" {
		key := idx.typeBlind(contentType)
		set := idx.types[key]
		if set == nil {
			set = make(map[string]struct{})
			idx.types[key] = set
		}
		set[cid] = struct{}{}
	}

	idx.tokensByCID[cid] = tokens
	meta.ContentType = contentType
	meta.Tags = tags
	idx.meta[cid] = meta
}

// Remove retracts every posting for cid from all three indices and the
// metadata cache.
func (idx *Index) Remove(cid string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(cid)
}

// removeLocked must be called with idx.mu held.
func (idx *Index) removeLocked(cid string) {
	for _, tok := range idx.tokensByCID[cid] {
		key := idx.textBlind(tok)
		if set, ok := idx.inverted[key]; ok {
			delete(set, cid)
			if len(set) == 0 {
				delete(idx.inverted, key)
			}
		}
	}
	delete(idx.tokensByCID, cid)

	if prior, ok := idx.meta[cid]; ok {
		for _, tag := range prior.Tags {
			key := idx.tagBlind(tag)
			if set, ok := idx.tags[key]; ok {
				delete(set, cid)
				if len(set) == 0 {
					delete(idx.tags, key)
				}
			}
		}
		key := idx.typeBlind(prior.ContentType)
		if set, ok := idx.types[key]; ok {
			delete(set, cid)
			if len(set) == 0 {
				delete(idx.types, key)
			}
		}
	}
	delete(idx.meta, cid)
}

var (
	documentTypes = map[string]struct{}{"pdf": {}, "docx": {}, "markdown": {}, "text": {}}
	imageTypes    = map[string]struct{}{"png": {}, "jpeg": {}, "gif": {}, "webp": {}}
	audioTypes    = map[string]struct{}{"mp3": {}, "wav": {}, "flac": {}, "aac": {}, "ogg": {}}
	videoTypes    = map[string]struct{}{"mp4": {}, "mov": {}, "mkv": {}, "avi": {}}
)

// Stats summarizes the index's current contents (spec §4.F is silent
// on reporting; this mirrors the original indexing module's stats()).
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var s Stats
	for _, meta := range idx.meta {
		switch {
		case isInFamily(meta.ContentType, documentTypes):
			s.TotalDocuments++
		case isInFamily(meta.ContentType, imageTypes):
			s.TotalImages++
		case isInFamily(meta.ContentType, audioTypes):
			s.TotalAudio++
		case isInFamily(meta.ContentType, videoTypes):
			s.TotalVideo++
		}
	}
	s.UniqueWords = len(idx.inverted)
	s.UniqueTags = len(idx.tags)
	s.ContentTypes = len(idx.types)
	return s
}

func isInFamily(ct string, family map[string]struct{}) bool {
	_, ok := family[ct]
	return ok
}

// Search implements search(query) (spec §4.F "Query"): intersects
// text_terms across matching CIDs, intersects tags, restricts by
// content type, scores by matched-term count times a per-term
// idf-like weight log(N/(1+df)), breaks ties by most recent created,
// and slices the sorted result by offset/limit.
func (idx *Index) Search(q Query) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := float64(len(idx.meta))

	candidates, scores := idx.matchTextTerms(q.TextTerms, n)
	candidates = idx.intersectTags(candidates, q.Tags, len(q.TextTerms) > 0)
	candidates = idx.restrictContentTypes(candidates, q.ContentTypes, len(q.TextTerms) > 0 || len(q.Tags) > 0)

	results := make([]Result, 0, len(candidates))
	for cid := range candidates {
		meta := idx.meta[cid]
		results = append(results, Result{CID: cid, Score: scores[cid], Metadata: meta})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Metadata.Created.After(results[j].Metadata.Created)
	})

	return paginate(results, q.Offset, q.Limit)
}

func (idx *Index) matchTextTerms(terms []string, n float64) (map[string]struct{}, map[string]float64) {
	scores := make(map[string]float64)
	if len(terms) == 0 {
		all := make(map[string]struct{}, len(idx.meta))
		for cid := range idx.meta {
			all[cid] = struct{}{}
		}
		return all, scores
	}

	var candidates map[string]struct{}
	for _, term := range terms {
		tok := tokenize(term)
		if len(tok) == 0 {
			return map[string]struct{}{}, scores
		}
		matched := idx.inverted[idx.textBlind(tok[0])]
		df := float64(len(matched))
		idf := math.Log(n / (1 + df))

		next := make(map[string]struct{})
		for cid := range matched {
			if candidates != nil {
				if _, ok := candidates[cid]; !ok {
					continue
				}
			}
			next[cid] = struct{}{}
			scores[cid] += idf
		}
		candidates = next
		if len(candidates) == 0 {
			break
		}
	}
	if candidates == nil {
		candidates = make(map[string]struct{})
	}
	return candidates, scores
}

func (idx *Index) intersectTags(candidates map[string]struct{}, tags []string, restrict bool) map[string]struct{} {
	if len(tags) == 0 {
		return candidates
	}
	var tagSet map[string]struct{}
	for i, tag := range tags {
		matched := idx.tags[idx.tagBlind(tag)]
		if i == 0 {
			tagSet = make(map[string]struct{}, len(matched))
			for cid := range matched {
				tagSet[cid] = struct{}{}
			}
			continue
		}
		for cid := range tagSet {
			if _, ok := matched[cid]; !ok {
				delete(tagSet, cid)
			}
		}
	}
	if !restrict {
		return tagSet
	}
	out := make(map[string]struct{})
	for cid := range candidates {
		if _, ok := tagSet[cid]; ok {
			out[cid] = struct{}{}
		}
	}
	return out
}

func (idx *Index) restrictContentTypes(candidates map[string]struct{}, types []string, restrict bool) map[string]struct{} {
	if len(types) == 0 {
		return candidates
	}
	typeSet := make(map[string]struct{})
	for _, ct := range types {
		for cid := range idx.types[idx.typeBlind(ct)] {
			typeSet[cid] = struct{}{}
		}
	}
	if !restrict {
		return typeSet
	}
	out := make(map[string]struct{})
	for cid := range candidates {
		if _, ok := typeSet[cid]; ok {
			out[cid] = struct{}{}
		}
	}
	return out
}

func paginate(results []Result, offset, limit int) []Result {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return []Result{}
	}
	results = results[offset:]
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results
}
