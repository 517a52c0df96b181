package pixelbuffer

import (
	"context"

	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
)

// This engine is read-only: writing, truncating, content hashing, and
// any read shape outside tile/row/col/plane/stack/timepoint all fail
// with Unsupported.

// WriteTile would write a tile; unsupported.
func (p *PixelBuffer) WriteTile(ctx context.Context, data []byte, z, c, t, x, y, w, h int) error {
	return pberrors.New(pberrors.Unsupported, "write is not supported")
}

// Truncate would resize the underlying array; unsupported.
func (p *PixelBuffer) Truncate(ctx context.Context, sizeX, sizeY, sizeZ, sizeC, sizeT int) error {
	return pberrors.New(pberrors.Unsupported, "truncate is not supported")
}

// Digest would compute a content hash over the pixel data; unsupported.
func (p *PixelBuffer) Digest(ctx context.Context) ([]byte, error) {
	return nil, pberrors.New(pberrors.Unsupported, "digest is not supported")
}

// ReadHypercube would read an arbitrary N-D sub-region beyond the
// canonical 5-D tile/plane/stack/timepoint shapes; unsupported.
func (p *PixelBuffer) ReadHypercube(ctx context.Context, shape, offset []int) ([]byte, error) {
	return nil, pberrors.New(pberrors.Unsupported, "hypercube reads are not supported")
}

// ReadPlaneStrided would read a plane with a non-unit stride; unsupported.
func (p *PixelBuffer) ReadPlaneStrided(ctx context.Context, z, c, t, strideX, strideY int) ([]byte, error) {
	return nil, pberrors.New(pberrors.Unsupported, "strided plane reads are not supported")
}

// ReadRegionByteOffset would read length bytes starting at an arbitrary
// byte offset into the backing array, bypassing the canonical coordinate
// system entirely; unsupported.
func (p *PixelBuffer) ReadRegionByteOffset(ctx context.Context, offset, length int64) ([]byte, error) {
	return nil, pberrors.New(pberrors.Unsupported, "byte-offset region reads are not supported")
}
