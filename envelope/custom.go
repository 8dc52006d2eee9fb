package envelope

// CustomEnvelope wraps an opaque payload under a caller-assigned codec
// code in the custom range (spec §3: 0x330000-0x3FFFFF). Used for
// content types this package has no built-in variant for; callers
// register a codec.RawHandler at the chosen code via
// codec.RegisterOpaque before storing.
type CustomEnvelope struct {
	Payload   []byte
	codecCode uint64
}

// NewCustom constructs a CustomEnvelope under codecCode, which must fall
// within [codec.CustomRangeStart, codec.CustomRangeEnd].
func NewCustom(codecCode uint64, payload []byte) *CustomEnvelope {
	return &CustomEnvelope{Payload: payload, codecCode: codecCode}
}

func (e *CustomEnvelope) Type() ContentType { return Custom }

func (e *CustomEnvelope) CodecCode() uint64 { return e.codecCode }

func (e *CustomEnvelope) CanonicalBytes() ([]byte, error) { return e.Payload, nil }

func (e *CustomEnvelope) Marshal() ([]byte, error) { return e.Payload, nil }

func UnmarshalCustom(codecCode uint64, data []byte) *CustomEnvelope {
	return &CustomEnvelope{Payload: data, codecCode: codecCode}
}
