// Package casconfig describes how to open one or more objectstore
// backends via backendregistry, config-file driven the way the
// teacher's storage/casconfig is.
package casconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cimcore/cim/objectstore"
	"github.com/cimcore/cim/objectstore/backendregistry"
)

// Config describes how to open one or more object store backends.
//
// WritePolicy values:
//   - "first" (default): write only to the first backend; reads fall
//     back in order (objectstore.Multi).
//   - "all": write to all backends and require digest equality
//     (objectstore.Replicating).
type Config struct {
	WritePolicy           string           `json:"write_policy,omitempty"`
	Backends              []BackendConfig  `json:"backends"`
	CompressionThreshold  int              `json:"compression_threshold,omitempty"`
	CacheCapacity         int              `json:"cache_capacity,omitempty"`
	BatchParallelism      int              `json:"batch_parallelism,omitempty"`
}

type BackendConfig struct {
	Name   string            `json:"name"`
	ID     string            `json:"id,omitempty"`
	Config map[string]string `json:"config,omitempty"`
}

func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("casconfig: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("casconfig: at least one backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if b.Name == "" {
			return errors.New("casconfig: backend name is required")
		}
		id := b.Name
		if b.ID != "" {
			id = b.ID
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("casconfig: duplicate backend id %q", id)
		}
		seen[id] = struct{}{}
	}
	switch c.WritePolicy {
	case "", "first", "all":
	default:
		return fmt.Errorf("casconfig: invalid write_policy %q", c.WritePolicy)
	}
	return nil
}

// Open opens an objectstore.Backend per config. If preferredBackend is
// non-empty, backends are reordered so preferredBackend is first.
func (c Config) Open(usage backendregistry.Usage, preferredBackend string) (objectstore.Backend, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	ordered := append([]BackendConfig(nil), c.Backends...)
	if preferredBackend != "" {
		idx := -1
		for i := range ordered {
			if ordered[i].Name == preferredBackend || ordered[i].ID == preferredBackend {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil, fmt.Errorf("casconfig: preferred backend %q not found in config", preferredBackend)
		}
		if idx != 0 {
			b := ordered[idx]
			copy(ordered[1:idx+1], ordered[0:idx])
			ordered[0] = b
		}
	}

	named := make([]objectstore.NamedBackend, 0, len(ordered))
	closers := make([]func() error, 0, len(ordered))
	for _, b := range ordered {
		backend, closeFn, err := backendregistry.OpenWithConfig(b.Name, usage, b.Config)
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
			return nil, nil, err
		}
		name := b.Name
		if b.ID != "" {
			name = b.ID
		}
		named = append(named, objectstore.NamedBackend{Name: name, Backend: backend})
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
	}

	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	if len(named) == 1 {
		return named[0].Backend, closeAll, nil
	}

	switch c.WritePolicy {
	case "", "first":
		adapters := make([]objectstore.Backend, 0, len(named))
		for _, n := range named {
			adapters = append(adapters, n.Backend)
		}
		return objectstore.Multi{Backends: adapters}, closeAll, nil
	case "all":
		return objectstore.Replicating{Backends: named}, closeAll, nil
	default:
		return nil, nil, fmt.Errorf("casconfig: invalid write_policy %q", c.WritePolicy)
	}
}
