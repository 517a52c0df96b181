// Package pixelbuffer implements the canonical (X,Y,Z,C,T) region-read API
// over an OME-NGFF Zarr multiscale pyramid: bounds checking, resolution
// level selection, Z-downsample remapping, big-endian output, and RGB
// prefetch coalescing.
package pixelbuffer

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/TuSKan/ngff-pixelbuffer/multiscale"
	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
	"github.com/TuSKan/ngff-pixelbuffer/pixeltype"
	"github.com/TuSKan/ngff-pixelbuffer/tilecache"
	"github.com/TuSKan/ngff-pixelbuffer/zarr"
)

// Pixels carries the canonical dimensions the enclosing image-server
// declares for this image — the Image/Pixels entity model lives outside
// this engine's scope and is borrowed here only for sizing. Only
// SizeX/SizeY feed ResolutionDescriptions' synthetic pyramid; Z/C/T are
// informational — PixelBuffer's own Size* accessors always derive from
// the Zarr array, never from these.
type Pixels struct {
	SizeX, SizeY, SizeZ, SizeC, SizeT int
}

// Dimensions is a (width, height) pair, used by ResolutionDescriptions.
type Dimensions struct {
	Width, Height int
}

// tileKey identifies one cached tile read. level is the internal
// resolution index so tiles from different pyramid levels never collide
// in the same cache.
type tileKey struct {
	level, z, c, t, x, y, w, h int
}

// PixelBuffer holds one open multiscale root and the currently-selected
// resolution level, and exposes the canonical region-read API. A
// PixelBuffer is owned by a single caller: SetResolutionLevel and the
// region reads are not safe to call concurrently on the same instance.
type PixelBuffer struct {
	rootURI    string
	metaCache  *MetadataCache
	arrayCache *ArrayCache

	descriptor multiscale.Descriptor
	axes       multiscale.AxisMap

	pixels                       Pixels
	maxPlaneWidth, maxPlaneHeight int

	r     int // internal resolution index, 0 = smallest
	array *zarr.Array
	zmap  []int // full-resolution z -> current level's array z
	fullZ int   // level-0 (largest) array's Z extent; 0 until resolved

	tileCache *tilecache.Loader[tileKey, []byte]
	logger    logr.Logger
}

// New opens a PixelBuffer rooted at rootURI, reading and caching its
// multiscale attributes via metaCache and its per-level arrays via
// arrayCache (both meant to be process-shared). It starts at the
// smallest public resolution level, matching the legacy convention.
func New(ctx context.Context, pixels Pixels, rootURI string, maxPlaneWidth, maxPlaneHeight int, metaCache *MetadataCache, arrayCache *ArrayCache, opts ...Option) (*PixelBuffer, error) {
	o := newOptions(opts)

	attrs, err := metaCache.Get(ctx, rootURI)
	if err != nil {
		return nil, err
	}
	descriptor, err := multiscale.Resolve(attrs)
	if err != nil {
		return nil, err
	}
	if len(descriptor.Datasets) == 0 {
		return nil, pberrors.New(pberrors.InvalidMultiscales, "multiscale pyramid at %s has no datasets", rootURI)
	}

	p := &PixelBuffer{
		rootURI:        rootURI,
		metaCache:      metaCache,
		arrayCache:     arrayCache,
		descriptor:     descriptor,
		axes:           descriptor.Axes,
		pixels:         pixels,
		maxPlaneWidth:  maxPlaneWidth,
		maxPlaneHeight: maxPlaneHeight,
		logger:         o.logger,
	}

	if err := p.SetResolutionLevel(ctx, len(descriptor.Datasets)-1); err != nil {
		return nil, err
	}

	cacheSize := p.SizeC()
	if cacheSize < 1 {
		cacheSize = 1
	}
	tc, err := tilecache.NewLoader(cacheSize, p.loadTile, tilecache.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	p.tileCache = tc

	return p, nil
}

// ResolutionLevels returns L, the number of pyramid levels.
func (p *PixelBuffer) ResolutionLevels() int { return len(p.descriptor.Datasets) }

// SetResolutionLevel selects the active resolution level in public
// numbering (0 = largest, i.e. datasets[0]; L-1 = smallest). It reopens
// the underlying array via the array cache and rebuilds the Z-remap table.
func (p *PixelBuffer) SetResolutionLevel(ctx context.Context, publicLevel int) error {
	L := len(p.descriptor.Datasets)
	if publicLevel < 0 || publicLevel >= L {
		return pberrors.New(pberrors.OutOfRange, "resolution level %d outside [0,%d]", publicLevel, L-1)
	}
	r := (L - 1) - publicLevel

	arr, err := p.loadArray(ctx, p.descriptor.Datasets[publicLevel].Path)
	if err != nil {
		return err
	}
	p.r = r
	p.array = arr

	if err := p.rebuildZMap(ctx); err != nil {
		return err
	}
	p.logger.V(0).Info("resolution level set", "public", publicLevel, "internal", r)
	return nil
}

func (p *PixelBuffer) loadArray(ctx context.Context, relPath string) (*zarr.Array, error) {
	return p.arrayCache.Get(ctx, arrayCacheKey(p.rootURI, relPath))
}

// rebuildZMap recomputes the full-resolution-Z -> current-level-Z table,
// rounding z*arrayZ/fullZ to the nearest integer rather than flooring it.
func (p *PixelBuffer) rebuildZMap(ctx context.Context) error {
	if !p.axes.Has(multiscale.AxisZ) {
		p.zmap = nil
		return nil
	}

	if p.fullZ == 0 {
		level0, err := p.loadArray(ctx, p.descriptor.Datasets[0].Path)
		if err != nil {
			return err
		}
		p.fullZ = level0.Shape()[p.axes[multiscale.AxisZ]]
	}

	arrayZ := p.array.Shape()[p.axes[multiscale.AxisZ]]
	zmap := make([]int, p.fullZ)
	for z := 0; z < p.fullZ; z++ {
		v := (z*arrayZ + p.fullZ/2) / p.fullZ
		if v >= arrayZ {
			v = arrayZ - 1
		}
		zmap[z] = v
	}
	p.zmap = zmap
	return nil
}

// SizeX returns the current level's X extent.
func (p *PixelBuffer) SizeX() int { return p.array.Shape()[p.axes[multiscale.AxisX]] }

// SizeY returns the current level's Y extent.
func (p *PixelBuffer) SizeY() int { return p.array.Shape()[p.axes[multiscale.AxisY]] }

// SizeC returns the current level's C extent, or 1 if the array has no C
// axis.
func (p *PixelBuffer) SizeC() int {
	if !p.axes.Has(multiscale.AxisC) {
		return 1
	}
	return p.array.Shape()[p.axes[multiscale.AxisC]]
}

// SizeT returns the current level's T extent, or 1 if the array has no T
// axis.
func (p *PixelBuffer) SizeT() int {
	if !p.axes.Has(multiscale.AxisT) {
		return 1
	}
	return p.array.Shape()[p.axes[multiscale.AxisT]]
}

// SizeZ returns the full-resolution Z extent, or 1 if the array has no Z
// axis.
func (p *PixelBuffer) SizeZ() int {
	if !p.axes.Has(multiscale.AxisZ) {
		return 1
	}
	return len(p.zmap)
}

// TileSize returns the chunk shape's (X,Y) components at the current
// internal level.
func (p *PixelBuffer) TileSize() (width, height int) {
	chunks := p.array.Chunks()
	return chunks[p.axes[multiscale.AxisX]], chunks[p.axes[multiscale.AxisY]]
}

// ResolutionDescriptions returns the synthetic power-of-two pyramid
// derived from the declared full-resolution Pixels, not from the actual
// on-disk array shapes — a deliberate legacy contract.
func (p *PixelBuffer) ResolutionDescriptions() []Dimensions {
	L := len(p.descriptor.Datasets)
	out := make([]Dimensions, L)
	for i := 0; i < L; i++ {
		out[i] = Dimensions{Width: p.pixels.SizeX >> uint(i), Height: p.pixels.SizeY >> uint(i)}
	}
	return out
}

// GetPixelsType returns the array's pixel element type.
func (p *PixelBuffer) GetPixelsType() pixeltype.Type { return p.array.DataType() }

// ByteWidth returns the byte width of one pixel element.
func (p *PixelBuffer) ByteWidth() int { return p.array.DataType().ByteWidth() }

// IsSigned reports whether the pixel element type is signed.
func (p *PixelBuffer) IsSigned() bool { return p.array.DataType().IsSigned() }

// IsFloat reports whether the pixel element type is floating-point.
func (p *PixelBuffer) IsFloat() bool { return p.array.DataType().IsFloat() }

// Close releases this buffer's per-instance tile cache. The storage
// client behind the root Store may outlive it.
func (p *PixelBuffer) Close() error {
	p.tileCache.Purge()
	return nil
}

func (p *PixelBuffer) checkBounds(z, c, t int) error {
	if z < 0 || z >= p.SizeZ() {
		return pberrors.New(pberrors.DimensionsOutOfBounds, "z=%d out of bounds [0,%d)", z, p.SizeZ())
	}
	if c < 0 || c >= p.SizeC() {
		return pberrors.New(pberrors.DimensionsOutOfBounds, "c=%d out of bounds [0,%d)", c, p.SizeC())
	}
	if t < 0 || t >= p.SizeT() {
		return pberrors.New(pberrors.DimensionsOutOfBounds, "t=%d out of bounds [0,%d)", t, p.SizeT())
	}
	return nil
}

func (p *PixelBuffer) checkTileCorner(x, y, w, h int) error {
	if w <= 0 || h <= 0 {
		return pberrors.New(pberrors.DimensionsOutOfBounds, "tile shape %dx%d is not positive", w, h)
	}
	if x < 0 || y < 0 {
		return pberrors.New(pberrors.DimensionsOutOfBounds, "tile origin (%d,%d) is negative", x, y)
	}
	if x+w-1 >= p.SizeX() || y+h-1 >= p.SizeY() {
		return pberrors.New(pberrors.DimensionsOutOfBounds, "tile (%d,%d)+(%d,%d) exceeds (%d,%d)", x, y, w, h, p.SizeX(), p.SizeY())
	}
	return nil
}

// checkReadSize rejects oversize requests before any buffer allocation
// proportional to the requested size.
func (p *PixelBuffer) checkReadSize(w, h int) error {
	if w*h > p.maxPlaneWidth*p.maxPlaneHeight {
		return pberrors.New(pberrors.RequestTooLarge, "tile %dx%d exceeds max plane %dx%d", w, h, p.maxPlaneWidth, p.maxPlaneHeight)
	}
	return nil
}
