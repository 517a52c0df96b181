package zarr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
)

// CompressorConfig is the Zarr v2 compressor descriptor embedded in
// ".zarray". Only the codecs this engine can decode (zstd, blosc,
// zlib/gzip) are exercised; anything else fails at read time.
type CompressorConfig struct {
	ID      string `json:"id"`
	Cname   string `json:"cname,omitempty"`
	Clevel  int    `json:"clevel,omitempty"`
	Shuffle int    `json:"shuffle,omitempty"`
}

// Metadata mirrors a Zarr v2 ".zarray" file.
type Metadata struct {
	ZarrFormat        int               `json:"zarr_format"`
	Shape             []int             `json:"shape"`
	Chunks            []int             `json:"chunks"`
	DType             string            `json:"dtype"`
	Compressor        *CompressorConfig `json:"compressor"`
	FillValue         any               `json:"fill_value"`
	Order             string            `json:"order"`
	DimensionSeparator string           `json:"dimension_separator,omitempty"`
}

// separator returns the chunk-key dimension separator, defaulting to ".".
func (m *Metadata) separator() string {
	if m.DimensionSeparator == "/" {
		return "/"
	}
	return "."
}

// loadMetadata reads and parses a ".zarray" document.
func loadMetadata(r io.Reader) (*Metadata, error) {
	var meta Metadata
	if err := json.NewDecoder(r).Decode(&meta); err != nil {
		return nil, pberrors.Wrap(pberrors.StoreError, err, "decode .zarray")
	}
	if meta.ZarrFormat != 2 {
		return nil, pberrors.New(pberrors.StoreError, "unsupported zarr_format %d, expected 2", meta.ZarrFormat)
	}
	if len(meta.Shape) != len(meta.Chunks) {
		return nil, pberrors.New(pberrors.StoreError, "shape rank %d does not match chunk rank %d", len(meta.Shape), len(meta.Chunks))
	}
	if meta.Order != "" && meta.Order != "C" && meta.Order != "F" {
		return nil, pberrors.New(pberrors.StoreError, "unsupported chunk order %q, expected \"C\" or \"F\"", meta.Order)
	}
	return &meta, nil
}

// readZAttrs reads and parses a ".zattrs" document into a free-form
// attribute map, unwrapping a top-level "ome" key if present (the
// challenge-format nested attribute layout).
func readZAttrs(ctx context.Context, b Backend, key string) (map[string]any, error) {
	raw, err := b.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return map[string]any{}, nil
		}
		return nil, pberrors.Wrap(pberrors.StoreError, err, "read %s", key)
	}
	var attrs map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &attrs); err != nil {
			return nil, pberrors.Wrap(pberrors.StoreError, err, "decode %s", key)
		}
	}
	if attrs == nil {
		attrs = map[string]any{}
	}
	if ome, ok := attrs["ome"]; ok {
		if nested, ok := ome.(map[string]any); ok {
			return nested, nil
		}
		return nil, fmt.Errorf("top-level %q key in %s is not an object", "ome", key)
	}
	return attrs, nil
}
