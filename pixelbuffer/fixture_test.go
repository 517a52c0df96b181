package pixelbuffer

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// axisSize looks up the extent of axisName within a shape vector ordered
// per axesOrder (a permutation of {"t","c","z","y","x"}).
func axisSize(shape []int, axesOrder []string, axisName string) int {
	for i, name := range axesOrder {
		if name == axisName {
			return shape[i]
		}
	}
	return 1
}

// buildTCZYXData fills a native-order uint16 byte buffer (little-endian)
// for an array whose dimensions are axesOrder-permuted, with
// value(t,c,z,y,x) = t*360 + c*120 + z*30 + y*6 + x.
func buildTCZYXData(shape []int, axesOrder []string) []byte {
	sizeT := axisSize(shape, axesOrder, "t")
	sizeC := axisSize(shape, axesOrder, "c")
	sizeZ := axisSize(shape, axesOrder, "z")
	sizeY := axisSize(shape, axesOrder, "y")
	sizeX := axisSize(shape, axesOrder, "x")

	idx := func(name string) int {
		for i, n := range axesOrder {
			if n == name {
				return i
			}
		}
		return -1
	}
	tIdx, cIdx, zIdx, yIdx, xIdx := idx("t"), idx("c"), idx("z"), idx("y"), idx("x")

	strides := make([]int, len(shape))
	strides[len(shape)-1] = 1
	for i := len(shape) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * shape[i+1]
	}

	total := 1
	for _, n := range shape {
		total *= n
	}
	buf := make([]byte, total*2)

	coords := make([]int, len(shape))
	for t := 0; t < sizeT; t++ {
		if tIdx >= 0 {
			coords[tIdx] = t
		}
		for c := 0; c < sizeC; c++ {
			if cIdx >= 0 {
				coords[cIdx] = c
			}
			for z := 0; z < sizeZ; z++ {
				if zIdx >= 0 {
					coords[zIdx] = z
				}
				for y := 0; y < sizeY; y++ {
					if yIdx >= 0 {
						coords[yIdx] = y
					}
					for x := 0; x < sizeX; x++ {
						if xIdx >= 0 {
							coords[xIdx] = x
						}
						offset := 0
						for i, co := range coords {
							offset += co * strides[i]
						}
						v := uint16(t*360 + c*120 + z*30 + y*6 + x)
						binary.LittleEndian.PutUint16(buf[offset*2:], v)
					}
				}
			}
		}
	}
	return buf
}

// writeZarray writes a ".zarray" descriptor at dir.
func writeZarray(t *testing.T, dir string, shape, chunks []int, dtype string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	meta := map[string]any{
		"zarr_format": 2,
		"shape":       shape,
		"chunks":      chunks,
		"dtype":       dtype,
		"compressor":  nil,
		"fill_value":  0,
		"order":       "C",
	}
	b, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".zarray"), b, 0o644))
}

// writeSingleChunkArray writes an array whose chunk grid is exactly one
// chunk (chunks == shape), depositing data verbatim as "0.0.0.0.0".
func writeSingleChunkArray(t *testing.T, dir string, shape []int, dtype string, data []byte) {
	t.Helper()
	writeZarray(t, dir, shape, shape, dtype)
	key := make([]byte, 0, 2*len(shape))
	for i := range shape {
		if i > 0 {
			key = append(key, '.')
		}
		key = append(key, '0')
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, string(key)), data, 0o644))
}

// writeChunkedAlongAxis writes an array chunked into n equal pieces along
// axis dim (all other axes single-chunked), skipping the chunk index in
// skip (nil to skip none). shape[dim] must be evenly divisible by n.
func writeChunkedAlongAxis(t *testing.T, dir string, shape []int, dtype string, data []byte, dim, n int, skip map[int]bool) {
	t.Helper()
	rank := len(shape)
	chunks := append([]int(nil), shape...)
	chunks[dim] = shape[dim] / n
	writeZarray(t, dir, shape, chunks, dtype)

	strides := make([]int, rank)
	strides[rank-1] = 1
	for i := rank - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * shape[i+1]
	}

	for chunkIdx := 0; chunkIdx < n; chunkIdx++ {
		if skip[chunkIdx] {
			continue
		}
		coords := make([]int, rank)
		coords[dim] = chunkIdx
		key := chunkKeyDots(coords)

		chunkShape := append([]int(nil), chunks...)
		offset := make([]int, rank)
		offset[dim] = chunkIdx * chunks[dim]

		buf := make([]byte, productInts(chunkShape)*2)
		copySubarray(buf, data, strides, offset, chunkShape, 2)
		require.NoError(t, os.WriteFile(filepath.Join(dir, key), buf, 0o644))
	}
}

func chunkKeyDots(coords []int) string {
	out := make([]byte, 0, 2*len(coords))
	for i, c := range coords {
		if i > 0 {
			out = append(out, '.')
		}
		out = append(out, byte('0'+c))
	}
	return string(out)
}

func productInts(v []int) int {
	p := 1
	for _, n := range v {
		p *= n
	}
	return p
}

// copySubarray copies the sub-block [offset, offset+blockShape) of src
// (whose full extents match fullStrides) into dst, contiguous row-major.
func copySubarray(dst, src []byte, fullStrides, offset, blockShape []int, itemSize int) {
	rank := len(blockShape)
	dstStrides := make([]int, rank)
	dstStrides[rank-1] = 1
	for i := rank - 2; i >= 0; i-- {
		dstStrides[i] = dstStrides[i+1] * blockShape[i+1]
	}

	coords := make([]int, rank)
	var iterate func(dim int)
	iterate = func(dim int) {
		if dim == rank {
			srcOff, dstOff := 0, 0
			for i, c := range coords {
				srcOff += (offset[i] + c) * fullStrides[i]
				dstOff += c * dstStrides[i]
			}
			copy(dst[dstOff*itemSize:dstOff*itemSize+itemSize], src[srcOff*itemSize:srcOff*itemSize+itemSize])
			return
		}
		for coords[dim] = 0; coords[dim] < blockShape[dim]; coords[dim]++ {
			iterate(dim + 1)
		}
	}
	iterate(0)
}

// writeMultiscaleAttrs writes ".zattrs"/".zgroup" for a multiscale root
// with the given dataset paths (in order) and, if axesNames is non-nil,
// an explicit "axes" list.
func writeMultiscaleAttrs(t *testing.T, rootDir string, datasetPaths []string, axesNames []string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(rootDir, 0o755))

	datasets := make([]map[string]any, len(datasetPaths))
	for i, p := range datasetPaths {
		datasets[i] = map[string]any{"path": p}
	}
	multiscale := map[string]any{"datasets": datasets}
	if axesNames != nil {
		axes := make([]map[string]any, len(axesNames))
		for i, name := range axesNames {
			axes[i] = map[string]any{"name": name}
		}
		multiscale["axes"] = axes
	}
	attrs := map[string]any{"multiscales": []any{multiscale}}
	b, err := json.Marshal(attrs)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(rootDir, ".zattrs"), b, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(rootDir, ".zgroup"), []byte(`{"zarr_format":2}`), 0o644))
}
