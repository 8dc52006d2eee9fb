package envelope

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/cimcore/cim/cimerrors"
)

// magicMatcher tests whether a byte prefix identifies a content type.
// ftyp-style formats (MP4/MOV) need an offset match rather than a plain
// prefix, hence the function form rather than a bare []byte table.
type magicMatcher func(b []byte) bool

func prefixMatcher(prefixes ...[]byte) magicMatcher {
	return func(b []byte) bool {
		for _, p := range prefixes {
			if bytes.HasPrefix(b, p) {
				return true
			}
		}
		return false
	}
}

// riffMatcher checks a RIFF container for the given four-character form
// tag at bytes 8-11, with the 4-byte chunk size at bytes 4-7 left
// unconstrained. WebP, WAV, and AVI are all RIFF forms distinguished
// only by this tag.
func riffMatcher(formType string) magicMatcher {
	tag := []byte(formType)
	return func(b []byte) bool {
		return len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], tag)
	}
}

// aacMatcher checks for an ADTS sync word (12 set high bits) at the
// start of the stream, the form a raw (container-less) AAC stream takes
// (spec §4.C). AAC carried inside an MP4/M4A container is detected as
// MP4 instead; this matcher only covers bare ADTS streams.
func aacMatcher(b []byte) bool {
	return len(b) >= 2 && b[0] == 0xFF && b[1]&0xF0 == 0xF0
}

// ftypMatcher checks for an "ftyp" atom at offset 4, the MP4/MOV box
// signature (spec §4.C).
func ftypMatcher(b []byte) bool {
	return len(b) >= 8 && bytes.Equal(b[4:8], []byte("ftyp"))
}

// magicTable enumerates the binary formats verified by magic-byte prefix
// (spec §4.C). DOCX, Markdown, and Text are deliberately absent: they are
// text documents, not magic-verified binary formats.
var magicTable = []struct {
	ct      ContentType
	matches magicMatcher
}{
	{PDF, prefixMatcher([]byte("%PDF"))},
	{PNG, prefixMatcher([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})},
	{JPEG, prefixMatcher([]byte{0xFF, 0xD8, 0xFF})},
	{GIF, prefixMatcher([]byte("GIF8"))},
	{WebP, riffMatcher("WEBP")},
	{MP3, prefixMatcher([]byte{0xFF, 0xFB}, []byte("ID3"))},
	{OGG, prefixMatcher([]byte("OggS"))},
	{FLAC, prefixMatcher([]byte("fLaC"))},
	{WAV, riffMatcher("WAVE")},
	{AAC, aacMatcher},
	{MP4, ftypMatcher},
	{MOV, ftypMatcher},
	{MKV, prefixMatcher([]byte{0x1A, 0x45, 0xDF, 0xA3})},
	{AVI, riffMatcher("AVI ")},
}

// extensionTable maps lowercase filename extensions to content types,
// used by Detect as a fallback. The object store's domain partitioner
// keeps its own extension-to-domain table and does not read this one.
var extensionTable = map[string]ContentType{
	".pdf":  PDF,
	".docx": DOCX,
	".md":   Markdown,
	".markdown": Markdown,
	".txt":  Text,
	".png":  PNG,
	".jpg":  JPEG,
	".jpeg": JPEG,
	".gif":  GIF,
	".webp": WebP,
	".mp3":  MP3,
	".ogg":  OGG,
	".flac": FLAC,
	".wav":  WAV,
	".aac":  AAC,
	".mp4":  MP4,
	".mov":  MOV,
	".mkv":  MKV,
	".webm": MKV,
	".avi":  AVI,
}

// Detect identifies a content type from magic bytes, preferring them
// over the filename hint; falls back to the hint's extension, then
// Unknown (spec §4.C "Detection").
func Detect(data []byte, nameHint string) ContentType {
	for _, m := range magicTable {
		if m.matches(data) {
			// ftypMatcher alone can't disambiguate MP4 from MOV; let the
			// extension hint break the tie when both would otherwise match.
			if m.ct == MP4 || m.ct == MOV {
				if ext, ok := extensionTable[strings.ToLower(filepath.Ext(nameHint))]; ok && (ext == MP4 || ext == MOV) {
					return ext
				}
			}
			return m.ct
		}
	}
	if ct, ok := extensionTable[strings.ToLower(filepath.Ext(nameHint))]; ok {
		return ct
	}
	return Unknown
}

// VerifyMagic confirms that data's magic bytes match the declared
// content type ct, per the table in spec §4.C. Text document types
// (DOCX, Markdown, Text) and Unknown/Event/Custom have no magic-byte
// contract and always pass.
func VerifyMagic(ct ContentType, data []byte) error {
	for _, m := range magicTable {
		if m.ct != ct {
			continue
		}
		if !m.matches(data) {
			return cimerrors.New(cimerrors.FormatMismatch, "content does not match declared format "+string(ct))
		}
		return nil
	}
	return nil
}
