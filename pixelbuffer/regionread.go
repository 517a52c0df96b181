package pixelbuffer

import (
	"context"

	"github.com/TuSKan/ngff-pixelbuffer/multiscale"
)

// GetTile returns the w*h*byteWidth byte tile at (x,y) for the given
// (z,c,t), in big-endian byte order. This is the one true read primitive
// every other region accessor decomposes into.
//
// RGB prefetch: when the current level has exactly 3 channels, a cold
// miss (the requested channel is not already cached) triggers a batched
// fetch of all three channels rather than relying on LRU eviction to
// roll a previous triplet off — fixed policy, not configurable.
func (p *PixelBuffer) GetTile(ctx context.Context, z, c, t, x, y, w, h int) ([]byte, error) {
	if err := p.checkBounds(z, c, t); err != nil {
		return nil, err
	}
	if err := p.checkTileCorner(x, y, w, h); err != nil {
		return nil, err
	}
	if err := p.checkReadSize(w, h); err != nil {
		return nil, err
	}

	key := tileKey{level: p.r, z: z, c: c, t: t, x: x, y: y, w: w, h: h}
	if p.SizeC() == 3 {
		return p.getTileRGBCoalesced(ctx, key)
	}
	return p.tileCache.Get(ctx, key)
}

func (p *PixelBuffer) getTileRGBCoalesced(ctx context.Context, key tileKey) ([]byte, error) {
	if cached, ok := p.tileCache.Peek(key); ok {
		return cached, nil
	}

	p.logger.V(1).Info("RGB tile cache cold miss, invalidating", "z", key.z, "t", key.t, "x", key.x, "y", key.y, "w", key.w, "h", key.h)
	p.tileCache.Purge()

	var result []byte
	for channel := 0; channel < 3; channel++ {
		channelKey := key
		channelKey.c = channel
		bytes, err := p.tileCache.Get(ctx, channelKey)
		if err != nil {
			return nil, err
		}
		if channel == key.c {
			result = bytes
		}
	}
	return result, nil
}

// GetRow returns one row of the plane at (z,c,t): getTile(z,c,t,0,y,sizeX,1).
func (p *PixelBuffer) GetRow(ctx context.Context, y, z, c, t int) ([]byte, error) {
	return p.GetTile(ctx, z, c, t, 0, y, p.SizeX(), 1)
}

// GetCol returns one column of the plane at (z,c,t): getTile(z,c,t,x,0,1,sizeY).
func (p *PixelBuffer) GetCol(ctx context.Context, x, z, c, t int) ([]byte, error) {
	return p.GetTile(ctx, z, c, t, x, 0, 1, p.SizeY())
}

// GetPlane returns the full (Y,X) plane at (z,c,t): getTile(z,c,t,0,0,sizeX,sizeY).
func (p *PixelBuffer) GetPlane(ctx context.Context, z, c, t int) ([]byte, error) {
	return p.GetTile(ctx, z, c, t, 0, 0, p.SizeX(), p.SizeY())
}

// GetStack returns every Z-plane at (c,t), concatenated in Z order.
// Implemented as repeated GetPlane calls rather than one bulk
// multi-dimensional read: the array's native axis permutation need not
// nest Z,Y,X in canonical order, and per-plane concatenation guarantees
// the canonical ordering by construction instead of requiring a
// post-read transpose.
func (p *PixelBuffer) GetStack(ctx context.Context, c, t int) ([]byte, error) {
	sizeZ := p.SizeZ()
	planes := make([][]byte, sizeZ)
	planeLen := 0
	for z := 0; z < sizeZ; z++ {
		plane, err := p.GetPlane(ctx, z, c, t)
		if err != nil {
			return nil, err
		}
		planes[z] = plane
		planeLen = len(plane)
	}
	out := make([]byte, 0, planeLen*sizeZ)
	for _, plane := range planes {
		out = append(out, plane...)
	}
	return out, nil
}

// GetTimepoint returns every (C,Z)-plane at t, concatenated C-major then
// Z-minor: concat over c of GetStack(c,t).
func (p *PixelBuffer) GetTimepoint(ctx context.Context, t int) ([]byte, error) {
	sizeC := p.SizeC()
	stacks := make([][]byte, sizeC)
	stackLen := 0
	for c := 0; c < sizeC; c++ {
		stack, err := p.GetStack(ctx, c, t)
		if err != nil {
			return nil, err
		}
		stacks[c] = stack
		stackLen = len(stack)
	}
	out := make([]byte, 0, stackLen*sizeC)
	for _, stack := range stacks {
		out = append(out, stack...)
	}
	return out, nil
}

// loadTile is the tile cache's load function: the actual Zarr-backed
// read for one (z,c,t,x,y,w,h) tile at the current resolution level.
// Every non-X/Y axis in the request has extent 1, so the array's
// native-order output already coincides with the caller's canonical
// (Y,X) tile layout — no transpose is needed.
func (p *PixelBuffer) loadTile(ctx context.Context, key tileKey) ([]byte, error) {
	rank := len(p.array.Shape())
	nativeShape := make([]int, rank)
	nativeOffset := make([]int, rank)

	for axis, idx := range p.axes {
		switch axis {
		case multiscale.AxisX:
			nativeShape[idx], nativeOffset[idx] = key.w, key.x
		case multiscale.AxisY:
			nativeShape[idx], nativeOffset[idx] = key.h, key.y
		case multiscale.AxisZ:
			nativeShape[idx], nativeOffset[idx] = 1, p.zmap[key.z]
		case multiscale.AxisC:
			nativeShape[idx], nativeOffset[idx] = 1, key.c
		case multiscale.AxisT:
			nativeShape[idx], nativeOffset[idx] = 1, key.t
		}
	}

	buf := make([]byte, key.w*key.h*p.array.DataType().ByteWidth())
	if err := p.array.ReadInto(ctx, buf, nativeShape, nativeOffset); err != nil {
		return nil, err
	}
	return buf, nil
}
