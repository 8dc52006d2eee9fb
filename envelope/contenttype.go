// Package envelope implements typed content envelopes (spec §4.C): tagged
// variants carrying payload plus metadata, each declaring a codec_code and
// content_type, with magic-byte format verification and a canonical-bytes
// hook that excludes transient metadata from the hashed form.
package envelope

import "github.com/cimcore/cim/codec"

// ContentType names the recognized envelope variants.
type ContentType string

const (
	Unknown ContentType = "unknown"

	PDF      ContentType = "pdf"
	DOCX     ContentType = "docx"
	Markdown ContentType = "markdown"
	Text     ContentType = "text"

	PNG  ContentType = "png"
	JPEG ContentType = "jpeg"
	GIF  ContentType = "gif"
	WebP ContentType = "webp"

	MP3  ContentType = "mp3"
	WAV  ContentType = "wav"
	FLAC ContentType = "flac"
	AAC  ContentType = "aac"
	OGG  ContentType = "ogg"

	MP4 ContentType = "mp4"
	MOV ContentType = "mov"
	MKV ContentType = "mkv"
	AVI ContentType = "avi"

	Event  ContentType = "event"
	Custom ContentType = "custom"
)

// codecCodeFor maps a content type to its reserved codec code (spec §3).
// Event and Custom are handled by their respective envelope constructors
// since they carry a caller-supplied sub-code.
var codecCodeFor = map[ContentType]uint64{
	PDF:      codec.DocumentRangeStart + codec.DocumentOffsetPDF,
	DOCX:     codec.DocumentRangeStart + codec.DocumentOffsetDOCX,
	Markdown: codec.DocumentRangeStart + codec.DocumentOffsetMarkdown,
	Text:     codec.DocumentRangeStart + codec.DocumentOffsetText,

	PNG:  codec.ImageRangeStart + codec.ImageOffsetPNG,
	JPEG: codec.ImageRangeStart + codec.ImageOffsetJPEG,
	GIF:  codec.ImageRangeStart + codec.ImageOffsetGIF,
	WebP: codec.ImageRangeStart + codec.ImageOffsetWebP,

	MP3:  codec.AudioRangeStart + codec.AudioOffsetMP3,
	OGG:  codec.AudioRangeStart + codec.AudioOffsetOGG,
	FLAC: codec.AudioRangeStart + codec.AudioOffsetFLAC,
	WAV:  codec.AudioRangeStart + codec.AudioOffsetWAV,
	AAC:  codec.AudioRangeStart + codec.AudioOffsetAAC,

	MP4: codec.VideoRangeStart + codec.VideoOffsetMP4,
	MOV: codec.VideoRangeStart + codec.VideoOffsetMOV,
	MKV: codec.VideoRangeStart + codec.VideoOffsetMKV,
	AVI: codec.VideoRangeStart + codec.VideoOffsetAVI,
}

// IsBinary reports whether content type ct is one of the raw-payload
// binary families (image, audio, video, or PDF) rather than a text
// document, event, or custom type.
func IsBinary(ct ContentType) bool {
	switch ct {
	case PDF, PNG, JPEG, GIF, WebP, MP3, OGG, FLAC, WAV, AAC, MP4, MOV, MKV, AVI:
		return true
	default:
		return false
	}
}

// IsText reports whether ct is a textual document family.
func IsText(ct ContentType) bool {
	switch ct {
	case DOCX, Markdown, Text:
		return true
	default:
		return false
	}
}
