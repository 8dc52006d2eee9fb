package localfs

import (
	"flag"
	"fmt"

	"github.com/cimcore/cim/objectstore"
	"github.com/cimcore/cim/objectstore/backendregistry"
)

var flagLocalDir string

func init() {
	backendregistry.MustRegister(backendregistry.PluginBackend{
		Name:        "localfs",
		Description: "Local filesystem object store backend (directory)",
		Usage:       backendregistry.UsageCLI | backendregistry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagLocalDir, "localfs-dir", "", "local filesystem backend directory (for --backend=localfs)")
		},
		Open: func() (objectstore.Backend, func() error, error) {
			if flagLocalDir == "" {
				return nil, nil, fmt.Errorf("missing --localfs-dir")
			}
			b, err := New(flagLocalDir)
			return b, nil, err
		},
		OpenWithConfig: func(cfg map[string]string) (objectstore.Backend, func() error, error) {
			dir := cfg["localfs-dir"]
			if dir == "" {
				return nil, nil, fmt.Errorf("missing localfs-dir config key")
			}
			b, err := New(dir)
			return b, nil, err
		},
	})
}
