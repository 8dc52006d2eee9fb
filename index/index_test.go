package index_test

import (
	"testing"
	"time"

	"github.com/cimcore/cim/index"
)

func TestSearchMatchesTextTermsAndScoresByIDF(t *testing.T) {
	idx := index.New()
	now := time.Now().UTC()

	idx.Update("cid-a", "the quick brown fox", nil, "text/plain", index.Metadata{Title: "a", Created: now})
	idx.Update("cid-b", "the quick brown dog", nil, "text/plain", index.Metadata{Title: "b", Created: now.Add(time.Second)})
	idx.Update("cid-c", "something entirely different", nil, "text/plain", index.Metadata{Title: "c", Created: now.Add(2 * time.Second)})

	results := idx.Search(index.Query{TextTerms: []string{"fox"}})
	if len(results) != 1 || results[0].CID != "cid-a" {
		t.Fatalf("expected only cid-a to match 'fox', got %+v", results)
	}

	results = idx.Search(index.Query{TextTerms: []string{"quick"}})
	if len(results) != 2 {
		t.Fatalf("expected 2 matches for 'quick', got %d", len(results))
	}
	// More recently created should win a score tie (both match one common term).
	if results[0].CID != "cid-b" {
		t.Fatalf("expected cid-b first on tie-break by recency, got %s", results[0].CID)
	}
}

func TestSearchIntersectsMultipleTerms(t *testing.T) {
	idx := index.New()
	idx.Update("cid-a", "alpha beta gamma", nil, "", index.Metadata{})
	idx.Update("cid-b", "alpha beta", nil, "", index.Metadata{})
	idx.Update("cid-c", "alpha only", nil, "", index.Metadata{})

	results := idx.Search(index.Query{TextTerms: []string{"alpha", "beta"}})
	if len(results) != 2 {
		t.Fatalf("expected 2 matches for 'alpha beta', got %d: %+v", len(results), results)
	}
	// cid-a matches both text terms AND appears in a smaller df set (gamma makes
	// no difference here) - just assert the unmatched document is excluded.
	for _, r := range results {
		if r.CID == "cid-c" {
			t.Fatalf("cid-c should not match the 'beta' term")
		}
	}
}

func TestSearchTagsAreIntersectedAnd(t *testing.T) {
	idx := index.New()
	idx.Update("cid-a", "doc", []string{"red", "round"}, "", index.Metadata{})
	idx.Update("cid-b", "doc", []string{"red"}, "", index.Metadata{})

	results := idx.Search(index.Query{Tags: []string{"red", "round"}})
	if len(results) != 1 || results[0].CID != "cid-a" {
		t.Fatalf("expected only cid-a to satisfy both tags, got %+v", results)
	}
}

func TestSearchContentTypeFilters(t *testing.T) {
	idx := index.New()
	idx.Update("cid-a", "doc", nil, "application/pdf", index.Metadata{})
	idx.Update("cid-b", "doc", nil, "image/png", index.Metadata{})

	results := idx.Search(index.Query{ContentTypes: []string{"image/png"}})
	if len(results) != 1 || results[0].CID != "cid-b" {
		t.Fatalf("expected only cid-b, got %+v", results)
	}
}

func TestSearchPagination(t *testing.T) {
	idx := index.New()
	for _, cid := range []string{"a", "b", "c", "d"} {
		idx.Update(cid, "shared term", nil, "", index.Metadata{})
	}
	results := idx.Search(index.Query{TextTerms: []string{"shared"}, Limit: 2, Offset: 1})
	if len(results) != 2 {
		t.Fatalf("expected 2 results with limit=2, got %d", len(results))
	}
}

func TestUpdateIsIdempotentAndRetractsPriorPostings(t *testing.T) {
	idx := index.New()
	idx.Update("cid-a", "first version", []string{"draft"}, "text/plain", index.Metadata{})
	idx.Update("cid-a", "second version", []string{"final"}, "text/plain", index.Metadata{})

	if results := idx.Search(index.Query{TextTerms: []string{"first"}}); len(results) != 0 {
		t.Fatalf("expected the old tokens to be retracted, got %+v", results)
	}
	if results := idx.Search(index.Query{Tags: []string{"draft"}}); len(results) != 0 {
		t.Fatalf("expected the old tag to be retracted, got %+v", results)
	}
	if results := idx.Search(index.Query{TextTerms: []string{"second"}}); len(results) != 1 {
		t.Fatalf("expected the new tokens to be present, got %+v", results)
	}
}

func TestRemoveClearsAllIndices(t *testing.T) {
	idx := index.New()
	idx.Update("cid-a", "searchable text", []string{"tag1"}, "text/plain", index.Metadata{})
	idx.Remove("cid-a")

	if results := idx.Search(index.Query{TextTerms: []string{"searchable"}}); len(results) != 0 {
		t.Fatalf("expected no matches after remove, got %+v", results)
	}
	if results := idx.Search(index.Query{}); len(results) != 0 {
		t.Fatalf("expected an empty index after removing its only entry, got %+v", results)
	}
}
