package codec_test

import (
	"testing"

	"github.com/cimcore/cim/codec"
)

func TestDagJSONKeyOrdering(t *testing.T) {
	a := map[string]int{"zebra": 1, "apple": 2}
	b := map[string]int{"apple": 2, "zebra": 1}

	encodedA, err := codec.DagJSONHandler{}.Encode(a)
	if err != nil {
		t.Fatalf("encode a: %v", err)
	}
	encodedB, err := codec.DagJSONHandler{}.Encode(b)
	if err != nil {
		t.Fatalf("encode b: %v", err)
	}
	if string(encodedA) != string(encodedB) {
		t.Fatalf("expected identical bytes regardless of map construction order")
	}
}

func TestPrettyNeverAffectsHandlerOutput(t *testing.T) {
	v := map[string]int{"a": 1}
	compact, err := codec.DagJSONHandler{}.Encode(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	pretty, err := codec.Pretty(v)
	if err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if string(compact) == string(pretty) {
		t.Fatalf("expected Pretty output to differ from the compact hashed form")
	}
}

func TestPlainJSONRoundTrip(t *testing.T) {
	type doc struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}
	want := doc{Name: "sample", N: 42}
	encoded, err := codec.JSONHandler{}.Encode(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var got doc
	if err := (codec.JSONHandler{}).Decode(encoded, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("roundtrip mismatch: got %+v want %+v", got, want)
	}
}

func TestDagJSONLinkRoundTripViaHandler(t *testing.T) {
	type wrapper struct {
		Link codec.JSONLink `json:"link"`
	}
	want := wrapper{Link: codec.JSONLink{Target: "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"}}

	encoded, err := codec.MarshalDagJSON(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got wrapper
	if err := codec.UnmarshalDagJSON(encoded, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Link.Target != want.Link.Target {
		t.Fatalf("link mismatch: got %q want %q", got.Link.Target, want.Link.Target)
	}
}
