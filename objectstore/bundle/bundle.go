// Package bundle implements deterministic TAR export/import of a CID
// set (spec §3 SUPPLEMENTED FEATURES), adapted from the teacher's
// storage/bundle to operate over a raw-object Store instead of a
// CID-keyed CAS.
package bundle

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/cimcore/cim/cid"
	"github.com/cimcore/cim/cimerrors"
)

// FormatVersion is the current bundle index schema version.
const FormatVersion = 1

// RawStore is the subset of objectstore.Store used by Export/Import,
// narrowed so bundle doesn't need the whole object store surface (and
// so chain snapshots or index backups can target any raw put/get
// implementation, not only objectstore.Store).
type RawStore interface {
	PutRaw(data []byte) (cid.CID, error)
	GetRaw(id cid.CID) ([]byte, error)
}

var epoch0 = time.Unix(0, 0)

// ExportOptions controls bundle export behavior.
type ExportOptions struct {
	Labels       map[string]cid.CID
	IncludeIndex bool
}

// Export writes a deterministic TAR bundle containing the blocks for
// ids, reading them from store and validating each against its own CID
// before writing.
func Export(w io.Writer, store RawStore, ids []cid.CID, opts ExportOptions) error {
	uniq := make(map[string]cid.CID, len(ids))
	for _, id := range ids {
		if !id.Defined() {
			return cimerrors.New(cimerrors.InvalidCID, "bundle: undefined CID in export set")
		}
		uniq[id.String()] = id
	}

	cidStrings := make([]string, 0, len(uniq))
	for s := range uniq {
		cidStrings = append(cidStrings, s)
	}
	sort.Strings(cidStrings)

	tw := tar.NewWriter(w)

	blocks := make([]indexBlock, 0, len(cidStrings))
	for _, s := range cidStrings {
		id := uniq[s]
		b, err := store.GetRaw(id)
		if err != nil {
			_ = tw.Close()
			return err
		}

		entryPath := "blocks/" + id.String()
		if err := writeFile(tw, entryPath, b); err != nil {
			_ = tw.Close()
			return err
		}
		blocks = append(blocks, indexBlock{CID: id.String(), Size: len(b)})
	}

	if opts.IncludeIndex {
		idx := indexJSON{Version: FormatVersion, CIDCodec: "raw", Multihash: "sha2-256", Blocks: blocks}

		if len(opts.Labels) > 0 {
			keys := make([]string, 0, len(opts.Labels))
			for k := range opts.Labels {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			labels := make([]indexLabel, 0, len(keys))
			for _, k := range keys {
				v := opts.Labels[k]
				if !v.Defined() {
					_ = tw.Close()
					return cimerrors.New(cimerrors.InvalidCID, "bundle: undefined CID in label "+k)
				}
				labels = append(labels, indexLabel{Name: k, CID: v.String()})
			}
			idx.Labels = labels
		}

		b, err := marshalCanonicalIndexJSON(idx)
		if err != nil {
			_ = tw.Close()
			return err
		}
		if err := writeFile(tw, "index.json", b); err != nil {
			_ = tw.Close()
			return err
		}
	}

	return tw.Close()
}

// ImportOptions controls bundle import behavior.
type ImportOptions struct {
	IgnoreUnknown bool
}

// Import reads a bundle from r and imports all blocks into store,
// fail-closed by default.
func Import(r io.Reader, store RawStore) error {
	return ImportWithOptions(r, store, ImportOptions{})
}

// ImportWithOptions reads a bundle from r, validating each block against
// both its filename CID and the CID the store computes on re-insertion.
func ImportWithOptions(r io.Reader, store RawStore, opts ImportOptions) error {
	tr := tar.NewReader(r)
	seen := map[string]struct{}{}

	for {
		h, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		name := cleanTarPath(h.Name)
		if name == "" {
			return cimerrors.New(cimerrors.InvalidContent, "bundle: invalid entry path: "+h.Name)
		}

		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return cimerrors.New(cimerrors.InvalidContent, "bundle: unexpected tar entry type")
		}

		if name == "index.json" || strings.HasPrefix(name, "manifests/") {
			_, _ = io.Copy(io.Discard, tr)
			continue
		}

		if !strings.HasPrefix(name, "blocks/") {
			if opts.IgnoreUnknown {
				_, _ = io.Copy(io.Discard, tr)
				continue
			}
			return cimerrors.New(cimerrors.InvalidContent, "bundle: unknown entry: "+name)
		}

		cidStr := strings.TrimPrefix(name, "blocks/")
		id, err := cid.Parse(cidStr)
		if err != nil {
			return err
		}

		payload, err := io.ReadAll(tr)
		if err != nil {
			return err
		}

		key := id.String()
		if _, ok := seen[key]; ok {
			return cimerrors.New(cimerrors.InvalidContent, "bundle: duplicate block entry: "+key)
		}
		seen[key] = struct{}{}

		putID, err := store.PutRaw(payload)
		if err != nil {
			return err
		}
		if putID.String() != id.String() {
			return cimerrors.NewCidMismatch(id.String(), putID.String())
		}
	}
}

type indexJSON struct {
	Version   int          `json:"version"`
	CIDCodec  string       `json:"cidCodec"`
	Multihash string       `json:"multihash"`
	Blocks    []indexBlock `json:"blocks"`
	Labels    []indexLabel `json:"labels,omitempty"`
}

type indexBlock struct {
	CID  string `json:"cid"`
	Size int    `json:"size"`
}

type indexLabel struct {
	Name string `json:"name"`
	CID  string `json:"cid"`
}

func marshalCanonicalIndexJSON(idx indexJSON) ([]byte, error) {
	b, err := json.Marshal(idx)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func writeFile(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

func cleanTarPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}

	parts := strings.Split(name, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return ""
		}
		out = append(out, part)
	}
	return strings.Join(out, "/")
}
