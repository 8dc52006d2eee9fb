// Package backendregistry is a build-time plugin registry for
// objectstore.Backend implementations, adapted from the teacher's
// storage/casregistry to the bucket+key contract.
package backendregistry

import (
	"flag"
	"fmt"
	"sort"
	"sync"

	"github.com/cimcore/cim/objectstore"
)

// Usage restricts which programs should accept a given backend. In Go,
// "plugins" are linked at build time: a backend registers itself via
// init(), and is enabled in a binary by importing the backend package.
type Usage uint8

const (
	UsageCLI Usage = 1 << iota
	UsageDaemon
)

func (u Usage) allows(want Usage) bool { return u&want != 0 }

// PluginBackend is a build-time plugin that can open an
// objectstore.Backend implementation.
type PluginBackend struct {
	Name        string
	Description string
	Usage       Usage

	// RegisterFlags adds backend-specific flags to fs. Must be safe to
	// call exactly once per process.
	RegisterFlags func(fs *flag.FlagSet)

	// Open constructs the backend using values parsed into flags
	// registered by RegisterFlags. Returns an optional close function.
	Open func() (objectstore.Backend, func() error, error)

	// OpenWithConfig constructs the backend directly from a string map,
	// bypassing flags, for config-file-driven wiring (casconfig.Config).
	OpenWithConfig func(cfg map[string]string) (objectstore.Backend, func() error, error)
}

var (
	mu       sync.RWMutex
	backends = map[string]PluginBackend{}
)

func Register(b PluginBackend) error {
	if b.Name == "" {
		return fmt.Errorf("backendregistry: backend name is required")
	}
	if b.Open == nil && b.OpenWithConfig == nil {
		return fmt.Errorf("backendregistry: backend %q missing Open/OpenWithConfig", b.Name)
	}
	if b.Usage == 0 {
		return fmt.Errorf("backendregistry: backend %q missing Usage", b.Name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := backends[b.Name]; exists {
		return fmt.Errorf("backendregistry: backend %q already registered", b.Name)
	}
	backends[b.Name] = b
	return nil
}

func MustRegister(b PluginBackend) {
	if err := Register(b); err != nil {
		panic(err)
	}
}

func List(usage Usage) []PluginBackend {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]PluginBackend, 0, len(backends))
	for _, b := range backends {
		if b.Usage.allows(usage) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func Names(usage Usage) []string {
	bs := List(usage)
	n := make([]string, 0, len(bs))
	for _, b := range bs {
		n = append(n, b.Name)
	}
	return n
}

func RegisterFlags(fs *flag.FlagSet, usage Usage) {
	for _, b := range List(usage) {
		if b.RegisterFlags != nil {
			b.RegisterFlags(fs)
		}
	}
}

func Open(name string, usage Usage) (objectstore.Backend, func() error, error) {
	mu.RLock()
	b, ok := backends[name]
	mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("backendregistry: unknown backend %q", name)
	}
	if !b.Usage.allows(usage) {
		return nil, nil, fmt.Errorf("backendregistry: backend %q not supported in this binary", name)
	}
	if b.Open == nil {
		return nil, nil, fmt.Errorf("backendregistry: backend %q has no flag-based Open", name)
	}
	return b.Open()
}

func OpenWithConfig(name string, usage Usage, cfg map[string]string) (objectstore.Backend, func() error, error) {
	mu.RLock()
	b, ok := backends[name]
	mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("backendregistry: unknown backend %q", name)
	}
	if !b.Usage.allows(usage) {
		return nil, nil, fmt.Errorf("backendregistry: backend %q not supported in this binary", name)
	}
	if b.OpenWithConfig == nil {
		return nil, nil, fmt.Errorf("backendregistry: backend %q has no config-based Open", name)
	}
	return b.OpenWithConfig(cfg)
}
