package objectstore

import "sync/atomic"

// atomicMatchers holds a []PatternMatcher behind an atomic.Value so
// UpdatePartitionStrategy can swap the whole slice without a mutex held
// during Assign's read path (spec §4.E: "updates are atomic from the
// reader's perspective").
type atomicMatchers struct {
	v atomic.Value
}

func (a *atomicMatchers) store(m []PatternMatcher) {
	a.v.Store(m)
}

func (a *atomicMatchers) load() []PatternMatcher {
	v := a.v.Load()
	if v == nil {
		return nil
	}
	return v.([]PatternMatcher)
}
