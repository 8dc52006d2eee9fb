package grpcstore

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/cimcore/cim/objectstore"
	"github.com/cimcore/cim/objectstore/backendregistry"
)

var (
	flagTarget      string
	flagDialTimeout time.Duration
	flagTimeout     time.Duration
	flagMaxMsgBytes int
)

func init() {
	backendregistry.MustRegister(backendregistry.PluginBackend{
		Name:        "grpc",
		Description: "gRPC object store client (talks to an objectstore gRPC daemon)",
		Usage:       backendregistry.UsageCLI,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagTarget, "grpc-target", "", "gRPC target host:port (for --backend=grpc)")
			fs.DurationVar(&flagDialTimeout, "grpc-dial-timeout", 5*time.Second, "Dial timeout (for --backend=grpc)")
			fs.DurationVar(&flagTimeout, "grpc-timeout", 0, "Per-RPC timeout (for --backend=grpc)")
			fs.IntVar(&flagMaxMsgBytes, "grpc-max-msg-bytes", 0, "Max gRPC message size in bytes (send+recv); 0 uses grpc defaults")
		},
		Open: func() (objectstore.Backend, func() error, error) {
			target := strings.TrimSpace(flagTarget)
			if target == "" {
				return nil, nil, fmt.Errorf("missing --grpc-target")
			}
			client, err := Dial(target, DialOptions{Timeout: flagDialTimeout, MaxMsgBytes: flagMaxMsgBytes})
			if err != nil {
				return nil, nil, err
			}
			client.Timeout = flagTimeout
			return client, client.Close, nil
		},
		OpenWithConfig: func(cfg map[string]string) (objectstore.Backend, func() error, error) {
			target := strings.TrimSpace(cfg["grpc-target"])
			if target == "" {
				return nil, nil, fmt.Errorf("missing grpc-target config key")
			}
			client, err := Dial(target, DialOptions{Timeout: 5 * time.Second})
			if err != nil {
				return nil, nil, err
			}
			return client, client.Close, nil
		},
	})
}
