package zarr

import "context"

// memBackend is an in-memory Backend fake used by this package's tests:
// a flat map keyed by the full resolved path, joined with "/".
type memBackend struct {
	root  string
	blobs map[string][]byte
}

func newMemBackend(blobs map[string][]byte) *memBackend {
	return &memBackend{blobs: blobs}
}

func (m *memBackend) Get(_ context.Context, key string) ([]byte, error) {
	full := key
	if m.root != "" {
		full = m.root + "/" + key
	}
	b, ok := m.blobs[full]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (m *memBackend) Resolve(subpath string) Backend {
	root := subpath
	if m.root != "" {
		root = m.root + "/" + subpath
	}
	return &memBackend{root: root, blobs: m.blobs}
}
