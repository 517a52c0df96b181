package pixelbuffer

import (
	"context"
	"strings"

	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
	"github.com/TuSKan/ngff-pixelbuffer/store"
	"github.com/TuSKan/ngff-pixelbuffer/tilecache"
	"github.com/TuSKan/ngff-pixelbuffer/zarr"
)

// MetadataCache caches a multiscale root's parsed ".zattrs" by root URI.
// It is meant to be constructed once per process and shared across every
// PixelBuffer opened against any root.
type MetadataCache = tilecache.Loader[string, map[string]any]

// ArrayCache caches an open *zarr.Array keyed by rootURI+datasetPath.
// Like MetadataCache, one instance is shared process-wide.
type ArrayCache = tilecache.Loader[string, *zarr.Array]

// NewMetadataCache builds a MetadataCache bounded to size roots.
func NewMetadataCache(size int, opts ...tilecache.Option) (*MetadataCache, error) {
	return tilecache.NewLoader(size, func(ctx context.Context, rootURI string) (map[string]any, error) {
		s, err := store.Open(ctx, rootURI)
		if err != nil {
			return nil, err
		}
		return zarr.OpenGroup(s).Attributes(ctx)
	}, opts...)
}

// NewArrayCache builds an ArrayCache bounded to size open arrays.
func NewArrayCache(size int, opts ...tilecache.Option) (*ArrayCache, error) {
	return tilecache.NewLoader(size, func(ctx context.Context, key string) (*zarr.Array, error) {
		rootURI, relPath, ok := splitArrayCacheKey(key)
		if !ok {
			return nil, pberrors.New(pberrors.StoreError, "malformed array cache key %q", key)
		}
		s, err := store.Open(ctx, rootURI)
		if err != nil {
			return nil, err
		}
		return zarr.OpenGroup(s).OpenArray(ctx, relPath)
	}, opts...)
}

// arrayCacheKeySep separates rootURI from the dataset relative path in an
// ArrayCache key. NUL cannot appear in a URI, so it is an unambiguous
// separator without needing to escape either half.
const arrayCacheKeySep = "\x00"

func arrayCacheKey(rootURI, relPath string) string {
	return rootURI + arrayCacheKeySep + relPath
}

func splitArrayCacheKey(key string) (rootURI, relPath string, ok bool) {
	i := strings.IndexByte(key, 0)
	if i < 0 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}
