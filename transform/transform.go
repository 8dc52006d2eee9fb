// Package transform converts stored content between formats: Markdown
// to HTML and to plain text, and image formats into one another. It
// mirrors spec §4.C's content-type families without adding new
// envelope variants — a transformation consumes one envelope's payload
// and produces plain bytes in a different format, leaving storage and
// CID assignment of the result to the caller.
package transform

import "github.com/cimcore/cim/envelope"

// Target names a transformation's destination format.
type Target string

const (
	TargetText     Target = "text"
	TargetHTML     Target = "html"
	TargetMarkdown Target = "markdown"

	TargetJPEG Target = "jpeg"
	TargetPNG  Target = "png"
	TargetWebP Target = "webp"
)

// Options carries the knobs a transformation may consult. Not every
// field applies to every target: Quality only matters for JPEG output,
// MaxSize is advisory and left to callers to enforce on the result.
type Options struct {
	PreserveMetadata bool
	Quality          int // 0 means "use the format's default"
	MaxSize          int // 0 means unbounded
}

// Result carries a transformation's output alongside enough metadata
// to record provenance.
type Result struct {
	Data         []byte
	FromFormat   envelope.ContentType
	ToFormat     Target
	Notes        []string
}

// TextSearchOptions configures how ToPlainText's output should later be
// matched during a text search, independent of the index package's own
// tokenization (spec §4.F "Query"): a caller doing an ad hoc substring
// search over freshly transformed text, rather than through the index,
// uses this directly.
type TextSearchOptions struct {
	CaseSensitive bool
	WholeWords    bool
	Regex         bool
}
