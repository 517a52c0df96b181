// Package store implements an abstract byte-addressable backend and a
// URI→Store dispatcher: local filesystem, HTTP, and S3 variants behind
// one capability interface, with S3 anonymous/static/profile credential
// selection and a hard rejection of ambient AWS_* environment
// credentials.
package store

import (
	"github.com/go-logr/logr"

	"github.com/TuSKan/ngff-pixelbuffer/zarr"
)

// Store is the capability this package's three backends (filesystem,
// HTTP, S3) all implement. It is exactly package zarr's Backend
// interface: zarr.Array/zarr.Group are driven through it without zarr
// importing this package, keeping the dependency one-directional.
type Store = zarr.Backend

// ErrNotFound is returned by Store.Get when the key has no blob — for
// Zarr chunk files this is the array's fill value, not a failure.
var ErrNotFound = zarr.ErrNotFound

// Option configures a Store built by Open.
type Option func(*options)

type options struct {
	logger logr.Logger
}

// WithLogger attaches a structured logger used for diagnostics: S3
// client construction (bucket, region, credential mode — never secrets),
// and not-found-as-fill-value chunk reads.
func WithLogger(l logr.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{logger: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
