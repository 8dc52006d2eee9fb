package codec

// Reserved codec code ranges (spec §3 "Codec code ranges"). Values
// outside the named constants are still valid codec codes — they only
// need a registered Handler — but these are the standard ones every
// process-wide registry carries at initialization (spec §4.B).
const (
	Raw       uint64 = 0x55
	DagCBOR   uint64 = 0x71
	DagJSON   uint64 = 0x0129
	DagPB     uint64 = 0x70
	PlainJSON uint64 = 0x0200
	PlainCBOR uint64 = 0x51

	CoreEventRangeStart uint64 = 0x300000
	CoreEventRangeEnd   uint64 = 0x30FFFF

	DocumentLegacyRangeStart uint64 = 0x310000
	DocumentLegacyRangeEnd   uint64 = 0x31FFFF

	MediaLegacyRangeStart uint64 = 0x320000
	MediaLegacyRangeEnd   uint64 = 0x32FFFF

	CustomRangeStart uint64 = 0x330000
	CustomRangeEnd   uint64 = 0x3FFFFF

	DomainJSONRangeStart uint64 = 0x340000
	DomainJSONRangeEnd   uint64 = 0x34FFFF

	DocumentRangeStart uint64 = 0x600000
	DocumentRangeEnd   uint64 = 0x60FFFF

	ImageRangeStart uint64 = 0x610000
	ImageRangeEnd   uint64 = 0x61FFFF

	AudioRangeStart uint64 = 0x620000
	AudioRangeEnd   uint64 = 0x62FFFF

	VideoRangeStart uint64 = 0x630000
	VideoRangeEnd   uint64 = 0x63FFFF
)

// Document format offsets within DocumentRangeStart (spec §3).
const (
	DocumentOffsetPDF      uint64 = 0x1
	DocumentOffsetDOCX     uint64 = 0x2
	DocumentOffsetMarkdown uint64 = 0x3
	DocumentOffsetText     uint64 = 0x4
)

// Image format offsets within ImageRangeStart.
const (
	ImageOffsetPNG  uint64 = 0x1
	ImageOffsetJPEG uint64 = 0x2
	ImageOffsetGIF  uint64 = 0x3
	ImageOffsetWebP uint64 = 0x4
)

// Audio format offsets within AudioRangeStart.
const (
	AudioOffsetMP3  uint64 = 0x1
	AudioOffsetOGG  uint64 = 0x2
	AudioOffsetFLAC uint64 = 0x3
	AudioOffsetWAV  uint64 = 0x4
	AudioOffsetAAC  uint64 = 0x5
)

// Video format offsets within VideoRangeStart.
const (
	VideoOffsetMP4 uint64 = 0x1
	VideoOffsetMOV uint64 = 0x2
	VideoOffsetMKV uint64 = 0x3
	VideoOffsetAVI uint64 = 0x4
)

// CoreEventOffsetDefault is the codec code offset used by events that
// don't register a dedicated custom projection type.
const CoreEventOffsetDefault uint64 = 0x1

// InRange reports whether code falls within [start, end] inclusive.
func InRange(code, start, end uint64) bool {
	return code >= start && code <= end
}
