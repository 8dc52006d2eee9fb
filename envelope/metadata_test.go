package envelope_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/cimcore/cim/envelope"
)

func TestExtractImageMetadataPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	meta := envelope.ExtractMetadata(envelope.PNG, buf.Bytes())
	if meta["width"] != "16" || meta["height"] != "9" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestExtractMetadataUnsupportedIsNonFatal(t *testing.T) {
	meta := envelope.ExtractMetadata(envelope.Markdown, []byte("# hi"))
	if meta == nil || len(meta) != 0 {
		t.Fatalf("expected empty, non-nil metadata map for unsupported type, got %+v", meta)
	}
}

func TestExtractAudioMetadataWAV(t *testing.T) {
	data := make([]byte, 36)
	copy(data[0:4], "RIFF")
	copy(data[8:12], "WAVE")
	copy(data[12:16], "fmt ")
	// audio format (PCM=1) at 20:22, channels at 22:24, sample rate at 24:28, bits per sample at 34:36
	data[20], data[21] = 1, 0
	data[22], data[23] = 2, 0
	data[24], data[25], data[26], data[27] = 0x44, 0xAC, 0, 0 // 44100 little-endian
	data[34], data[35] = 16, 0

	meta := envelope.ExtractMetadata(envelope.WAV, data)
	if meta["sample_rate"] != "44100" || meta["channels"] != "2" || meta["bits_per_sample"] != "16" {
		t.Fatalf("unexpected wav metadata: %+v", meta)
	}
}

func TestExtractVideoMetadataAVI(t *testing.T) {
	meta := envelope.ExtractMetadata(envelope.AVI, []byte("RIFF\x00\x00\x00\x00AVI LIST"))
	if meta["container"] != string(envelope.AVI) {
		t.Fatalf("unexpected avi metadata: %+v", meta)
	}
}

func TestExtractMetadataCorruptImageIsNonFatal(t *testing.T) {
	meta := envelope.ExtractMetadata(envelope.PNG, []byte("not actually a png"))
	if len(meta) != 0 {
		t.Fatalf("expected empty metadata on decode failure, got %+v", meta)
	}
}
