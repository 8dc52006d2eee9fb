package transform_test

import (
	"testing"

	"github.com/cimcore/cim/envelope"
	"github.com/cimcore/cim/transform"
)

func TestConvertAudioSameFormatPassesThrough(t *testing.T) {
	data := []byte("fake mp3 bytes")
	result, err := transform.ConvertAudio(data, envelope.MP3, envelope.MP3)
	if err != nil {
		t.Fatalf("convert audio: %v", err)
	}
	if string(result.Data) != string(data) {
		t.Fatalf("expected passthrough data")
	}
}

func TestConvertAudioCrossFormatRequiresExternalEncoder(t *testing.T) {
	_, err := transform.ConvertAudio([]byte("x"), envelope.WAV, envelope.MP3)
	if err == nil {
		t.Fatalf("expected error for cross-format audio conversion")
	}
}

func TestConvertVideoCrossFormatRequiresExternalEncoder(t *testing.T) {
	_, err := transform.ConvertVideo([]byte("x"), envelope.MOV, envelope.MP4)
	if err == nil {
		t.Fatalf("expected error for cross-format video conversion")
	}
}
