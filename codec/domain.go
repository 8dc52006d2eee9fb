package codec

// RegisterDomainJSON registers code in the 0x340000-0x34FFFF range
// (spec §3, §4.B "Domain JSON codecs") with the DAG-JSON handler, for
// caller-declared structured shapes that want IPLD link semantics
// without a bespoke binary codec.
func RegisterDomainJSON(r *Registry, code uint64) error {
	return r.Register(code, DagJSONHandler{})
}

// RegisterOpaque registers code with the identity Raw handler. Media
// and document codecs (spec §4.B: "encode/decode via raw identity +
// magic-byte verification") use this — format verification and
// canonical-payload extraction are the envelope package's concern, not
// the codec registry's.
func RegisterOpaque(r *Registry, code uint64) error {
	return r.Register(code, RawHandler{})
}
