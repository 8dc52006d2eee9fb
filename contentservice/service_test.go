package contentservice_test

import (
	"strings"
	"testing"

	"github.com/cimcore/cim/contentservice"
	"github.com/cimcore/cim/envelope"
	"github.com/cimcore/cim/index"
	"github.com/cimcore/cim/objectstore"
	"github.com/cimcore/cim/objectstore/localfs"
	"github.com/cimcore/cim/transform"
)

func newTestService(t *testing.T, config contentservice.Config) *contentservice.Service {
	t.Helper()
	backend, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	store, err := objectstore.New(backend)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return contentservice.New(store, index.New(), config)
}

func TestStoreDocumentAndRetrieve(t *testing.T) {
	svc := newTestService(t, contentservice.DefaultConfig())

	result, err := svc.StoreDocument([]byte("# Title\n\nSome body text."),
		contentservice.DocumentMetadata{Title: "Test Doc", Tags: []string{"notes"}},
		envelope.Markdown)
	if err != nil {
		t.Fatalf("store document: %v", err)
	}
	if result.Deduplicated {
		t.Fatalf("expected first store to not be deduplicated")
	}

	env, err := svc.Retrieve(result.CID, envelope.Markdown, 0)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	text, ok := env.(*envelope.TextEnvelope)
	if !ok {
		t.Fatalf("expected TextEnvelope, got %T", env)
	}
	if text.Title != "Test Doc" {
		t.Fatalf("expected title to round-trip, got %q", text.Title)
	}
}

func TestStoreDocumentDeduplicates(t *testing.T) {
	svc := newTestService(t, contentservice.DefaultConfig())
	data := []byte("identical content")

	first, err := svc.StoreDocument(data, contentservice.DocumentMetadata{}, envelope.Text)
	if err != nil {
		t.Fatalf("store 1: %v", err)
	}
	second, err := svc.StoreDocument(data, contentservice.DocumentMetadata{}, envelope.Text)
	if err != nil {
		t.Fatalf("store 2: %v", err)
	}
	if first.CID.String() != second.CID.String() {
		t.Fatalf("expected identical CIDs for identical content")
	}
	if !second.Deduplicated {
		t.Fatalf("expected second store to report deduplication")
	}
}

func TestStoreDocumentRejectsDisallowedType(t *testing.T) {
	config := contentservice.DefaultConfig()
	config.AllowedTypes = []envelope.ContentType{envelope.Markdown}
	svc := newTestService(t, config)

	if _, err := svc.StoreDocument([]byte("plain text"), contentservice.DocumentMetadata{}, envelope.Text); err == nil {
		t.Fatalf("expected error for disallowed content type")
	}
}

func TestStoreDocumentEnforcesMaxSize(t *testing.T) {
	config := contentservice.DefaultConfig()
	config.MaxContentSize = 4
	svc := newTestService(t, config)

	if _, err := svc.StoreDocument([]byte("too long"), contentservice.DocumentMetadata{}, envelope.Text); err == nil {
		t.Fatalf("expected error for oversized document")
	}
}

func TestStoreDocumentAutoIndexesAndSearches(t *testing.T) {
	svc := newTestService(t, contentservice.DefaultConfig())

	result, err := svc.StoreDocument([]byte("the quick brown fox"),
		contentservice.DocumentMetadata{Tags: []string{"animal"}}, envelope.Text)
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	results := svc.Search(index.Query{TextTerms: []string{"quick"}})
	if len(results) != 1 || results[0].CID != result.CID.String() {
		t.Fatalf("expected indexed document to be searchable, got %+v", results)
	}

	stats := svc.Stats()
	if stats.TotalDocuments != 1 {
		t.Fatalf("expected 1 document in stats, got %d", stats.TotalDocuments)
	}
}

func TestTransformMarkdownDocumentToHTML(t *testing.T) {
	svc := newTestService(t, contentservice.DefaultConfig())

	result, err := svc.StoreDocument([]byte("# Heading"),
		contentservice.DocumentMetadata{Title: "Doc"}, envelope.Markdown)
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	out, err := svc.Transform(result.CID, envelope.Markdown, 0, transform.TargetHTML, transform.Options{})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if !strings.Contains(string(out.Data), "<h1>Heading</h1>") {
		t.Fatalf("expected rendered heading in transformed output, got: %s", out.Data)
	}
	if !strings.Contains(string(out.Data), "<title>Doc</title>") {
		t.Fatalf("expected title in transformed output, got: %s", out.Data)
	}
}
