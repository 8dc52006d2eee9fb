package envelope_test

import (
	"testing"

	"github.com/cimcore/cim/envelope"
)

func TestDetectByMagicBytes(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want envelope.ContentType
	}{
		{"pdf", []byte("%PDF-1.4 rest of file"), envelope.PDF},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0}, envelope.PNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0}, envelope.JPEG},
		{"gif", []byte("GIF89a...."), envelope.GIF},
		{"ogg", []byte("OggS...."), envelope.OGG},
		{"flac", []byte("fLaC...."), envelope.FLAC},
		{"mkv", []byte{0x1A, 0x45, 0xDF, 0xA3, 0, 0}, envelope.MKV},
		{"aac", []byte{0xFF, 0xF1, 0, 0}, envelope.AAC},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := envelope.Detect(c.data, ""); got != c.want {
				t.Fatalf("Detect(%s) = %v, want %v", c.name, got, c.want)
			}
		})
	}
}

func TestDetectWebP(t *testing.T) {
	data := append([]byte("RIFF"), []byte{0, 0, 0, 0}...)
	data = append(data, []byte("WEBP")...)
	if got := envelope.Detect(data, ""); got != envelope.WebP {
		t.Fatalf("Detect(webp) = %v, want WebP", got)
	}
}

func TestDetectWAV(t *testing.T) {
	data := append([]byte("RIFF"), []byte{0, 0, 0, 0}...)
	data = append(data, []byte("WAVE")...)
	if got := envelope.Detect(data, ""); got != envelope.WAV {
		t.Fatalf("Detect(wav) = %v, want WAV", got)
	}
}

func TestDetectAVI(t *testing.T) {
	data := append([]byte("RIFF"), []byte{0, 0, 0, 0}...)
	data = append(data, []byte("AVI ")...)
	if got := envelope.Detect(data, ""); got != envelope.AVI {
		t.Fatalf("Detect(avi) = %v, want AVI", got)
	}
}

func TestDetectMP4VsMOVUsesExtensionHint(t *testing.T) {
	data := make([]byte, 12)
	copy(data[4:8], "ftyp")

	if got := envelope.Detect(data, "clip.mov"); got != envelope.MOV {
		t.Fatalf("Detect(ftyp, clip.mov) = %v, want MOV", got)
	}
	if got := envelope.Detect(data, "clip.mp4"); got != envelope.MP4 {
		t.Fatalf("Detect(ftyp, clip.mp4) = %v, want MP4", got)
	}
}

func TestDetectFallsBackToExtension(t *testing.T) {
	if got := envelope.Detect([]byte("no magic here"), "notes.md"); got != envelope.Markdown {
		t.Fatalf("Detect(no magic, notes.md) = %v, want Markdown", got)
	}
}

func TestDetectUnknown(t *testing.T) {
	if got := envelope.Detect([]byte("nothing recognizable"), "file.bin"); got != envelope.Unknown {
		t.Fatalf("Detect(unrecognized) = %v, want Unknown", got)
	}
}

func TestVerifyMagicMismatch(t *testing.T) {
	if err := envelope.VerifyMagic(envelope.PNG, []byte("not a png")); err == nil {
		t.Fatalf("expected FormatMismatch for data that isn't a PNG")
	}
}

func TestVerifyMagicTextTypesAlwaysPass(t *testing.T) {
	if err := envelope.VerifyMagic(envelope.Markdown, []byte("# anything")); err != nil {
		t.Fatalf("text types have no magic-byte contract, got %v", err)
	}
}
