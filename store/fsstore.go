package store

import (
	"gocloud.dev/blob/fileblob"

	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
)

// openFilesystem opens a Store rooted at the local directory dir
// (native OS path). Reads of missing files return ErrNotFound rather
// than an error, satisfying the "missing chunk is the fill value"
// contract uniformly with the S3 and HTTP variants.
func openFilesystem(dir string, o options) (Store, error) {
	bucket, err := fileblob.OpenBucket(dir, nil)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.StoreError, err, "open filesystem store at %s", dir)
	}
	return &blobStore{bucket: bucket, logger: o.logger}, nil
}
