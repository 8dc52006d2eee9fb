package index

import "testing"

func TestBlindIndexerDeterministicAndKeyed(t *testing.T) {
	b1 := NewBlindIndexer([]byte("secret-a"), "ctx")
	b2 := NewBlindIndexer([]byte("secret-a"), "ctx")
	if b1.Blind("hello") != b2.Blind("hello") {
		t.Fatalf("same secret and context should produce the same token")
	}

	b3 := NewBlindIndexer([]byte("secret-b"), "ctx")
	if b1.Blind("hello") == b3.Blind("hello") {
		t.Fatalf("different secrets should produce different tokens")
	}

	b4 := NewBlindIndexer([]byte("secret-a"), "other-ctx")
	if b1.Blind("hello") == b4.Blind("hello") {
		t.Fatalf("different contexts should produce unrelated token spaces")
	}
}

func TestConfidentialIndexMatchesPlaintextBehavior(t *testing.T) {
	idx := NewConfidential([]byte("top-secret"))
	idx.Update("cid-1", "the quick brown fox", []string{"animal"}, "text/plain", Metadata{Title: "Fox"})
	idx.Update("cid-2", "a lazy dog sleeps", []string{"animal"}, "text/plain", Metadata{Title: "Dog"})

	results := idx.Search(Query{TextTerms: []string{"fox"}})
	if len(results) != 1 || results[0].CID != "cid-1" {
		t.Fatalf("expected cid-1 for text search, got %+v", results)
	}

	results = idx.Search(Query{Tags: []string{"animal"}})
	if len(results) != 2 {
		t.Fatalf("expected both entries for tag search, got %+v", results)
	}

	results = idx.Search(Query{ContentTypes: []string{"text/plain"}})
	if len(results) != 2 {
		t.Fatalf("expected both entries for content type search, got %+v", results)
	}

	idx.Remove("cid-1")
	if len(idx.inverted) != 0 {
		t.Fatalf("expected blinded inverted postings for cid-1 to be fully retracted")
	}
	results = idx.Search(Query{Tags: []string{"animal"}})
	if len(results) != 1 || results[0].CID != "cid-2" {
		t.Fatalf("expected only cid-2 to remain, got %+v", results)
	}
}

func TestConfidentialIndexKeysAreNotPlaintext(t *testing.T) {
	idx := NewConfidential([]byte("top-secret"))
	idx.Update("cid-1", "unmistakable", []string{"tagword"}, "custom/type", Metadata{})

	for tok := range idx.inverted {
		if tok == "unmistakable" {
			t.Fatalf("inverted index key leaked plaintext token")
		}
	}
	for tag := range idx.tags {
		if tag == "tagword" {
			t.Fatalf("tag index key leaked plaintext tag")
		}
	}
	for ct := range idx.types {
		if ct == "custom/type" {
			t.Fatalf("type index key leaked plaintext content type")
		}
	}
}
