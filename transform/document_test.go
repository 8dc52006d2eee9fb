package transform_test

import (
	"strings"
	"testing"

	"github.com/cimcore/cim/transform"
)

func TestMarkdownToHTMLWrapsDocument(t *testing.T) {
	result, err := transform.MarkdownToHTML([]byte("# Hello\n\nThis is **bold**."), "Test Doc")
	if err != nil {
		t.Fatalf("markdown to html: %v", err)
	}
	out := string(result.Data)

	if !strings.Contains(out, "<title>Test Doc</title>") {
		t.Fatalf("expected escaped title in output, got: %s", out)
	}
	if !strings.Contains(out, "<h1>Hello</h1>") {
		t.Fatalf("expected rendered heading, got: %s", out)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("expected rendered bold, got: %s", out)
	}
	if result.ToFormat != transform.TargetHTML {
		t.Fatalf("expected TargetHTML, got %s", result.ToFormat)
	}
}

func TestMarkdownToHTMLEscapesTitle(t *testing.T) {
	result, err := transform.MarkdownToHTML([]byte("body"), `<script>alert(1)</script>`)
	if err != nil {
		t.Fatalf("markdown to html: %v", err)
	}
	if strings.Contains(string(result.Data), "<script>alert") {
		t.Fatalf("expected title to be HTML-escaped, got: %s", result.Data)
	}
}

func TestToPlainTextStripsFormatting(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"html tags", "<p>Hello <b>World</b></p>", "Hello World"},
		{"bold", "This is **bold** text", "This is bold text"},
		{"italic", "This is *italic* text", "This is italic text"},
		{"link", "See [docs](https://example.com) here", "See docs here"},
		{"header", "# Heading\nBody", "Heading Body"},
		{"inline code", "Use `fmt.Println` here", "Use fmt.Println here"},
		{"code block", "before\n```\ncode\n```\nafter", "before after"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			result, err := transform.ToPlainText(c.input)
			if err != nil {
				t.Fatalf("to plain text: %v", err)
			}
			if string(result.Data) != c.want {
				t.Fatalf("got %q want %q", result.Data, c.want)
			}
		})
	}
}

func TestMatchPlainTextModes(t *testing.T) {
	text := "The Quick Brown Fox"

	ok, err := transform.MatchPlainText(text, "quick", transform.TextSearchOptions{})
	if err != nil || !ok {
		t.Fatalf("expected case-insensitive substring match, got ok=%v err=%v", ok, err)
	}

	ok, err = transform.MatchPlainText(text, "quick", transform.TextSearchOptions{CaseSensitive: true})
	if err != nil || ok {
		t.Fatalf("expected case-sensitive match to fail, got ok=%v err=%v", ok, err)
	}

	ok, err = transform.MatchPlainText(text, "Quick", transform.TextSearchOptions{WholeWords: true})
	if err != nil || !ok {
		t.Fatalf("expected whole-word match, got ok=%v err=%v", ok, err)
	}

	ok, err = transform.MatchPlainText(text, "Qu.ck", transform.TextSearchOptions{Regex: true})
	if err != nil || !ok {
		t.Fatalf("expected regex match, got ok=%v err=%v", ok, err)
	}
}
