package store

import (
	"context"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
	"github.com/TuSKan/ngff-pixelbuffer/zarr"
)

// blobStore adapts a gocloud.dev/blob.Bucket into the Store interface.
// Both the filesystem and S3 variants are a *blob.Bucket plus a key
// prefix; only how the bucket is opened differs, so that construction
// lives in fsstore.go/s3store.go while Get/Resolve live here once.
type blobStore struct {
	bucket *blob.Bucket
	prefix string // joined with "/"; "" means bucket root
	logger logr.Logger
}

func (s *blobStore) fullKey(key string) string {
	if s.prefix == "" {
		return key
	}
	if key == "" {
		return s.prefix
	}
	return s.prefix + "/" + key
}

func (s *blobStore) Get(ctx context.Context, key string) ([]byte, error) {
	full := s.fullKey(key)
	r, err := s.bucket.NewReader(ctx, full, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			s.logger.V(1).Info("key not found, treating as fill value", "key", full)
			return nil, ErrNotFound
		}
		return nil, pberrors.Wrap(pberrors.StoreError, err, "read %s", full)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.StoreError, err, "read body of %s", full)
	}
	return data, nil
}

func (s *blobStore) Resolve(subpath string) zarr.Backend {
	return &blobStore{bucket: s.bucket, prefix: joinKey(s.prefix, subpath), logger: s.logger}
}

func joinKey(prefix, subpath string) string {
	subpath = strings.Trim(subpath, "/")
	if prefix == "" {
		return subpath
	}
	if subpath == "" {
		return prefix
	}
	return prefix + "/" + subpath
}
