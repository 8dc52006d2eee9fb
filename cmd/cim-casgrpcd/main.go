// Command cim-casgrpcd exposes an objectstore.Backend over gRPC (spec §4.E,
// §6 "Object-store backend contract"). The concrete backend is selected by
// build-time plugin registration, the way the teacher's casregistry
// resolves --backend by name: import a backend package for its init()
// side effect to make it available here.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"github.com/cimcore/cim/objectstore/backendregistry"
	"github.com/cimcore/cim/objectstore/grpcstore"

	_ "github.com/cimcore/cim/objectstore/boltkv"
	_ "github.com/cimcore/cim/objectstore/localfs"
)

const (
	exitUsage              = 2
	exitBackendUnavailable = 5
)

func main() {
	fs := flag.NewFlagSet("cim-casgrpcd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7777", "listen address")
	backend := fs.String("backend", "localfs", "object store backend name")
	listBackends := fs.Bool("list-backends", false, "list supported backends and exit")

	backendregistry.RegisterFlags(fs, backendregistry.UsageDaemon)

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(exitUsage)
	}
	if *listBackends {
		for _, b := range backendregistry.List(backendregistry.UsageDaemon) {
			if b.Description == "" {
				fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	store, closeFn, err := backendregistry.Open(*backend, backendregistry.UsageDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitBackendUnavailable)
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitBackendUnavailable)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcstore.RegisterBackendServer(s, &grpcstore.Server{Backend: store})

	fmt.Fprintf(os.Stderr, "cim-casgrpcd listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitBackendUnavailable)
	}
}
