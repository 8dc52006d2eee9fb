package boltkv

import (
	"flag"
	"fmt"

	"github.com/cimcore/cim/objectstore"
	"github.com/cimcore/cim/objectstore/backendregistry"
)

var flagBoltPath string

func init() {
	backendregistry.MustRegister(backendregistry.PluginBackend{
		Name:        "boltkv",
		Description: "BoltDB-backed object store / index KV backend (file)",
		Usage:       backendregistry.UsageCLI | backendregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagBoltPath, "boltkv-path", "", "BoltDB file path (for --backend=boltkv)")
		},
		Open: func() (objectstore.Backend, func() error, error) {
			if flagBoltPath == "" {
				return nil, nil, fmt.Errorf("missing --boltkv-path")
			}
			b, err := Open(flagBoltPath)
			if err != nil {
				return nil, nil, err
			}
			return b, b.Close, nil
		},
		OpenWithConfig: func(cfg map[string]string) (objectstore.Backend, func() error, error) {
			path := cfg["boltkv-path"]
			if path == "" {
				return nil, nil, fmt.Errorf("missing boltkv-path config key")
			}
			b, err := Open(path)
			if err != nil {
				return nil, nil, err
			}
			return b, b.Close, nil
		},
	})
}
