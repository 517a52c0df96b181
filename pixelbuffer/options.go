package pixelbuffer

import "github.com/go-logr/logr"

// Option configures a PixelBuffer built by New.
type Option func(*options)

type options struct {
	logger logr.Logger
}

// WithLogger attaches a structured logger for resolution-level changes,
// RGB-coalescing cache invalidation, and tile cache hit/miss diagnostics.
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
