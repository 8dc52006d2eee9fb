package casconfig_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cimcore/cim/objectstore"
	"github.com/cimcore/cim/objectstore/backendregistry"
	"github.com/cimcore/cim/objectstore/casconfig"

	_ "github.com/cimcore/cim/objectstore/localfs"
)

func writeConfig(t *testing.T, cfg casconfig.Config) string {
	t.Helper()
	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), "cas.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestValidateRejectsEmptyBackends(t *testing.T) {
	var cfg casconfig.Config
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for a config with no backends")
	}
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	cfg := casconfig.Config{Backends: []casconfig.BackendConfig{
		{Name: "localfs", ID: "a"},
		{Name: "localfs", ID: "a"},
	}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for duplicate backend ids")
	}
}

func TestValidateRejectsUnknownWritePolicy(t *testing.T) {
	cfg := casconfig.Config{
		Backends:    []casconfig.BackendConfig{{Name: "localfs"}},
		WritePolicy: "bogus",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown write_policy")
	}
}

func TestLoadFileAndOpenSingleBackend(t *testing.T) {
	dir := t.TempDir()
	cfg := casconfig.Config{
		Backends: []casconfig.BackendConfig{
			{Name: "localfs", Config: map[string]string{"localfs-dir": dir}},
		},
	}
	path := writeConfig(t, cfg)

	loaded, err := casconfig.LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}

	backend, closeFn, err := loaded.Open(backendregistry.UsageCLI, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if closeFn != nil {
		defer closeFn()
	}
	if err := backend.CreateBucket("b", objectstore.BucketOptions{}); err != nil {
		t.Fatalf("create bucket: %v", err)
	}
	if err := backend.Put("b", "k", []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
}

func TestOpenMultiBackendWritePolicyAll(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	cfg := casconfig.Config{
		WritePolicy: "all",
		Backends: []casconfig.BackendConfig{
			{Name: "localfs", ID: "a", Config: map[string]string{"localfs-dir": dirA}},
			{Name: "localfs", ID: "b", Config: map[string]string{"localfs-dir": dirB}},
		},
	}

	backend, closeFn, err := cfg.Open(backendregistry.UsageCLI, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if closeFn != nil {
		defer closeFn()
	}
	if err := backend.CreateBucket("b", objectstore.BucketOptions{}); err != nil {
		t.Fatalf("create bucket: %v", err)
	}
	if err := backend.Put("b", "k", []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
}
