// Package contentservice provides a high-level façade over objectstore
// and index: storing documents and images with automatic indexing,
// looking them back up, searching, and transforming between formats,
// with lifecycle hooks observing each operation.
package contentservice

import "github.com/cimcore/cim/envelope"

// Config mirrors the original content service's configuration knobs:
// automatic indexing on store, size limits, an allow-list of content
// types, and deduplication.
type Config struct {
	AutoIndex bool
	// ValidateOnStore mirrors the original's same-named flag, which it
	// declares and defaults but never actually consults in its store
	// path either — envelope construction already validates magic
	// bytes unconditionally (envelope.NewBinary), so this is carried
	// for config-shape compatibility rather than gating behavior.
	ValidateOnStore     bool
	MaxContentSize      int64
	AllowedTypes        []envelope.ContentType
	EnableDeduplication bool
}

// DefaultConfig matches the original's defaults: indexing and
// deduplication on, a 100MB size cap, and every content type allowed.
func DefaultConfig() Config {
	return Config{
		AutoIndex:           true,
		ValidateOnStore:     true,
		MaxContentSize:      100 * 1024 * 1024,
		AllowedTypes:        nil,
		EnableDeduplication: true,
	}
}

func (c Config) typeAllowed(ct envelope.ContentType) bool {
	if len(c.AllowedTypes) == 0 {
		return true
	}
	for _, allowed := range c.AllowedTypes {
		if allowed == ct {
			return true
		}
	}
	return false
}
