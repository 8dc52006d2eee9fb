package transform

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/cimcore/cim/cimerrors"
)

// markdownParser is configured once and reused; goldmark's Markdown
// value is safe for concurrent use once constructed (lib/ticketui's
// markdownParserInstance follows the same pattern).
var markdownParser = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
)

// MarkdownToHTML renders markdown into a complete HTML document, with
// title drawn from the caller-supplied document title (spec §4.C
// "Markdown" envelope metadata) rather than parsed out of the body.
func MarkdownToHTML(markdown []byte, title string) (Result, error) {
	var body bytes.Buffer
	if err := markdownParser.Convert(markdown, &body); err != nil {
		return Result{}, cimerrors.Wrap(cimerrors.InvalidContent, "transform: rendering markdown", err)
	}

	var out strings.Builder
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	out.WriteString("<meta charset=\"UTF-8\">\n")
	if title != "" {
		out.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	}
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("\n</body>\n</html>")

	return Result{
		Data:     []byte(out.String()),
		ToFormat: TargetHTML,
		Notes:    []string{"converted using goldmark"},
	}, nil
}

// Plain-text stripping patterns, applied in this order. Mirrors the
// original markdown-to-text regex pipeline: tags first, then markdown
// inline formatting, then whitespace collapsing.
var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	mdBoldPattern     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	mdItalicPattern   = regexp.MustCompile(`\*([^*]+)\*`)
	mdBoldAltPattern  = regexp.MustCompile(`__([^_]+)__`)
	mdItalicAlt       = regexp.MustCompile(`_([^_]+)_`)
	mdLinkPattern     = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdHeaderPattern   = regexp.MustCompile(`(?m)^#+\s+`)
	mdCodeBlock       = regexp.MustCompile("(?s)```[^`]*```")
	mdInlineCode      = regexp.MustCompile("`([^`]+)`")
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// ToPlainText strips HTML tags and markdown formatting from content,
// leaving a whitespace-collapsed plain-text rendering suitable for
// search indexing or display.
func ToPlainText(content string) (Result, error) {
	text := htmlTagPattern.ReplaceAllString(content, "")
	text = mdBoldPattern.ReplaceAllString(text, "$1")
	text = mdItalicPattern.ReplaceAllString(text, "$1")
	text = mdBoldAltPattern.ReplaceAllString(text, "$1")
	text = mdItalicAlt.ReplaceAllString(text, "$1")
	text = mdLinkPattern.ReplaceAllString(text, "$1")
	text = mdHeaderPattern.ReplaceAllString(text, "")
	text = mdCodeBlock.ReplaceAllString(text, "")
	text = mdInlineCode.ReplaceAllString(text, "$1")
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))

	return Result{
		Data:     []byte(text),
		ToFormat: TargetText,
		Notes:    []string{"stripped html and markdown formatting"},
	}, nil
}

// MatchPlainText reports whether text contains term under the given
// search options, for ad hoc matching against ToPlainText output
// outside of the index package's own tokenized query path.
func MatchPlainText(text, term string, opts TextSearchOptions) (bool, error) {
	if opts.Regex {
		flags := ""
		if !opts.CaseSensitive {
			flags = "(?i)"
		}
		re, err := regexp.Compile(flags + term)
		if err != nil {
			return false, cimerrors.Wrap(cimerrors.InvalidContent, "transform: compiling search regex", err)
		}
		return re.MatchString(text), nil
	}

	haystack, needle := text, term
	if !opts.CaseSensitive {
		haystack = strings.ToLower(haystack)
		needle = strings.ToLower(needle)
	}
	if opts.WholeWords {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(needle) + `\b`)
		return re.MatchString(haystack), nil
	}
	return strings.Contains(haystack, needle), nil
}
