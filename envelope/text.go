package envelope

import (
	"time"

	"github.com/cimcore/cim/codec"
)

// textCanonical is the stable subset of a text document's fields that
// participate in CID computation (spec §4.C): content plus title,
// author, and language. CreatedAt, ModifiedAt, and UpdatedBy are
// transient and excluded.
type textCanonical struct {
	Content  string
	Title    string
	Author   string
	Language string
}

// TextHeader carries every field of a TextEnvelope, transient fields
// included, for storage.
type TextHeader struct {
	ContentType ContentType
	Title       string
	Author      string
	Language    string
	CreatedAt   time.Time
	ModifiedAt  time.Time
	UpdatedBy   string
}

// TextEnvelope wraps a text document (DOCX, Markdown, or plain Text).
type TextEnvelope struct {
	ContentType ContentType
	Content     string
	Title       string
	Author      string
	Language    string
	CreatedAt   time.Time
	ModifiedAt  time.Time
	UpdatedBy   string
}

// NewText constructs a TextEnvelope. There is no magic-byte contract for
// text formats; ct must be one of DOCX, Markdown, or Text.
func NewText(ct ContentType, content string) *TextEnvelope {
	return &TextEnvelope{ContentType: ct, Content: content}
}

func (e *TextEnvelope) Type() ContentType { return e.ContentType }

func (e *TextEnvelope) CodecCode() uint64 {
	if code, ok := codecCodeFor[e.ContentType]; ok {
		return code
	}
	return codec.CustomRangeStart
}

func (e *TextEnvelope) CanonicalBytes() ([]byte, error) {
	return codec.Marshal(textCanonical{
		Content:  e.Content,
		Title:    e.Title,
		Author:   e.Author,
		Language: e.Language,
	})
}

func (e *TextEnvelope) Marshal() ([]byte, error) {
	header, err := codec.Marshal(TextHeader{
		ContentType: e.ContentType,
		Title:       e.Title,
		Author:      e.Author,
		Language:    e.Language,
		CreatedAt:   e.CreatedAt,
		ModifiedAt:  e.ModifiedAt,
		UpdatedBy:   e.UpdatedBy,
	})
	if err != nil {
		return nil, err
	}
	return encodeHeaderedPayload(header, []byte(e.Content)), nil
}

func UnmarshalText(data []byte) (*TextEnvelope, error) {
	headerBytes, payload, err := decodeHeaderedPayload(data)
	if err != nil {
		return nil, err
	}
	var header TextHeader
	if err := codec.Unmarshal(headerBytes, &header); err != nil {
		return nil, err
	}
	return &TextEnvelope{
		ContentType: header.ContentType,
		Content:     string(payload),
		Title:       header.Title,
		Author:      header.Author,
		Language:    header.Language,
		CreatedAt:   header.CreatedAt,
		ModifiedAt:  header.ModifiedAt,
		UpdatedBy:   header.UpdatedBy,
	}, nil
}
