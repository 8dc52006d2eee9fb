// Package index implements the inverted/tag/type search index, its
// metadata cache, and at-rest persistence and encryption (spec §4.F).
package index

import "time"

// Metadata is the cached summary the index keeps per CID, enough to
// render a search result without touching object storage.
type Metadata struct {
	Title       string    `cbor:"title"`
	Author      string    `cbor:"author"`
	Tags        []string  `cbor:"tags"`
	ContentType string    `cbor:"content_type"`
	Size        int64     `cbor:"size"`
	Created     time.Time `cbor:"created"`
}

// Query carries the optional filters accepted by Search (spec §4.F
// "Query").
type Query struct {
	TextTerms    []string
	Tags         []string
	ContentTypes []string
	Limit        int
	Offset       int
}

// Result is one scored hit from Search.
type Result struct {
	CID      string
	Score    float64
	Metadata Metadata
}

// Stats summarizes the index's current contents, broken down by the
// coarse content families a content service reports on.
type Stats struct {
	TotalDocuments int
	TotalImages    int
	TotalAudio     int
	TotalVideo     int
	UniqueWords    int
	UniqueTags     int
	ContentTypes   int
}
