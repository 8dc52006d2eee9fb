package grpcstore

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/cimcore/cim/objectstore"
	"github.com/cimcore/cim/objectstore/localfs"
	"github.com/cimcore/cim/objectstore/storetest"
)

func dialBufconn(t *testing.T, backend objectstore.Backend) *Client {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterBackendServer(srv, &Server{Backend: backend})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })

	return &Client{cc: cc, client: NewBackendClient(cc), Timeout: 2 * time.Second}
}

func TestGRPCStorePutGetRoundTrip(t *testing.T) {
	backend, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	client := dialBufconn(t, backend)

	payload := []byte("hello grpcstore")
	if err := client.Put("bucket-a", "key-a", payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ok, err := client.Exists("bucket-a", "key-a")
	if err != nil || !ok {
		t.Fatalf("Exists: ok=%v err=%v", ok, err)
	}

	got, err := client.Get("bucket-a", "key-a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch: got %q want %q", got, payload)
	}

	info, err := client.Info("bucket-a", "key-a")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Size != int64(len(payload)) {
		t.Fatalf("Info.Size = %d, want %d", info.Size, len(payload))
	}
}

func TestGRPCStoreListAndDelete(t *testing.T) {
	backend, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	client := dialBufconn(t, backend)

	for _, k := range []string{"apple1", "apple2", "banana1"} {
		if err := client.Put("bucket-b", k, []byte(k)); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}

	keys, err := client.List("bucket-b", "apple")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("List returned %d keys, want 2: %v", len(keys), keys)
	}

	if err := client.Delete("bucket-b", "apple1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ok, err := client.Exists("bucket-b", "apple1")
	if err != nil {
		t.Fatalf("Exists after delete: %v", err)
	}
	if ok {
		t.Fatalf("expected key to be gone after Delete")
	}
}

func TestGRPCStoreGetMissingMapsNotFound(t *testing.T) {
	backend, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	client := dialBufconn(t, backend)

	if _, err := client.Get("bucket-c", "missing"); err == nil {
		t.Fatalf("expected error getting a missing key")
	}
}

func TestGRPCStoreCreateBucket(t *testing.T) {
	backend, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	client := dialBufconn(t, backend)

	if err := client.CreateBucket("fresh-bucket", objectstore.BucketOptions{Replicas: 1}); err != nil {
		t.Fatalf("CreateBucket: %v", err)
	}
	if err := client.Put("fresh-bucket", "k", []byte("v")); err != nil {
		t.Fatalf("Put into created bucket: %v", err)
	}
}

func TestGRPCStoreConformance(t *testing.T) {
	storetest.RunBackendConformance(t, func(t *testing.T) objectstore.Backend {
		backend, err := localfs.New(t.TempDir())
		if err != nil {
			t.Fatalf("localfs.New: %v", err)
		}
		return dialBufconn(t, backend)
	})
}
