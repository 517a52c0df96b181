package zarr

import (
	"context"
)

// Group is a Zarr group node: a ".zattrs"/".zgroup" location that can
// hold child arrays and nested groups. PixelBuffer uses it to read NGFF
// multiscale root attributes and to open the resolution-level array
// named in each dataset's "path".
type Group struct {
	backend Backend
}

// OpenGroup returns the Group rooted at backend. It performs no I/O;
// attributes are read lazily, and are expected to be cached by callers.
func OpenGroup(backend Backend) *Group {
	return &Group{backend: backend}
}

// Attributes reads this group's ".zattrs", unwrapping a top-level "ome"
// key if present.
func (g *Group) Attributes(ctx context.Context) (map[string]any, error) {
	return readZAttrs(ctx, g.backend, ".zattrs")
}

// OpenArray opens the array at relPath beneath this group.
func (g *Group) OpenArray(ctx context.Context, relPath string) (*Array, error) {
	return OpenArray(ctx, g.backend.Resolve(relPath))
}

// OpenGroup opens the subgroup at relPath beneath this group.
func (g *Group) OpenGroup(relPath string) *Group {
	return OpenGroup(g.backend.Resolve(relPath))
}
