package zarr

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"encoding/binary"
	"errors"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/mrjoshuak/go-blosc"

	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
	"github.com/TuSKan/ngff-pixelbuffer/pixeltype"
)

// Array reads axis-aligned hyperslabs out of a single chunked Zarr v2
// array. It has no notion of multiscale grouping or canonical axis order
// — that is package multiscale's and pixelbuffer's job; Array only knows
// how to turn (offset, shape) into bytes for its own native axis order.
type Array struct {
	backend Backend
	meta    *Metadata
	dtype   pixeltype.Type
	endian  pixeltype.Endian
}

// OpenArray reads ".zarray" from backend and returns the Array it
// describes.
func OpenArray(ctx context.Context, backend Backend) (*Array, error) {
	raw, err := backend.Get(ctx, ".zarray")
	if err != nil {
		return nil, pberrors.Wrap(pberrors.StoreError, err, "read .zarray")
	}
	meta, err := loadMetadata(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	dtype, endian, err := pixeltype.ParseDType(meta.DType)
	if err != nil {
		return nil, err
	}
	return &Array{backend: backend, meta: meta, dtype: dtype, endian: endian}, nil
}

// Shape returns the array's shape vector, in its own native axis order.
func (a *Array) Shape() []int { return append([]int(nil), a.meta.Shape...) }

// Chunks returns the array's chunk-shape vector.
func (a *Array) Chunks() []int { return append([]int(nil), a.meta.Chunks...) }

// DataType returns the array's pixel element type.
func (a *Array) DataType() pixeltype.Type { return a.dtype }

// ReadInto reads the hyperslab [offset, offset+shape) and deposits it,
// row-major over the array's native axis order, into dst in big-endian
// byte order regardless of the on-disk endianness. dst must be exactly
// len(shape)-product * dtype.ByteWidth() bytes.
//
// Bounds/rank mismatches surface as DimensionsOutOfBounds: by the time a
// request reaches an Array, pixelbuffer.PixelBuffer has already validated
// it against the canonical view, so a mismatch here means the caller's
// axis projection was wrong, not that the caller asked for something
// out-of-range in the ordinary sense. DimensionsOutOfBounds is still the
// closest error kind for it.
func (a *Array) ReadInto(ctx context.Context, dst []byte, shape, offset []int) error {
	rank := len(a.meta.Shape)
	if len(shape) != rank || len(offset) != rank {
		return pberrors.New(pberrors.DimensionsOutOfBounds, "shape/offset rank %d/%d does not match array rank %d", len(shape), len(offset), rank)
	}
	for i := 0; i < rank; i++ {
		if offset[i] < 0 || shape[i] <= 0 || offset[i]+shape[i] > a.meta.Shape[i] {
			return pberrors.New(pberrors.DimensionsOutOfBounds, "axis %d: offset %d + shape %d exceeds array shape %d", i, offset[i], shape[i], a.meta.Shape[i])
		}
	}

	itemSize := a.dtype.ByteWidth()
	wantBytes := itemSize
	for _, n := range shape {
		wantBytes *= n
	}
	if len(dst) != wantBytes {
		return pberrors.New(pberrors.DimensionsOutOfBounds, "destination buffer is %d bytes, want %d", len(dst), wantBytes)
	}

	if rank == 0 {
		chunkData, err := a.readChunk(ctx, nil)
		if err != nil {
			return err
		}
		copy(dst, chunkData)
		a.swapToBigEndian(dst)
		return nil
	}

	minChunk := make([]int, rank)
	maxChunk := make([]int, rank)
	for i := 0; i < rank; i++ {
		minChunk[i] = offset[i] / a.meta.Chunks[i]
		maxChunk[i] = (offset[i] + shape[i] - 1) / a.meta.Chunks[i]
	}

	dstStrides := strides(shape)
	srcStrides := chunkStrides(a.meta.Chunks, a.meta.Order)

	// Walk every chunk in [minChunk,maxChunk] (inclusive per axis) with a
	// flat mixed-radix counter rather than one recursive call per axis.
	coords := append([]int(nil), minChunk...)
	for {
		if err := a.copyChunkIntersection(ctx, coords, dst, dstStrides, srcStrides, offset, shape, itemSize); err != nil {
			return err
		}
		if !advanceCounter(coords, minChunk, maxChunk) {
			break
		}
	}
	a.swapToBigEndian(dst)
	return nil
}

// advanceCounter increments coords to the next combination within
// [lo,hi] inclusive per axis, fastest-varying axis last, and reports
// whether a next combination exists.
func advanceCounter(coords, lo, hi []int) bool {
	for i := len(coords) - 1; i >= 0; i-- {
		coords[i]++
		if coords[i] <= hi[i] {
			return true
		}
		coords[i] = lo[i]
	}
	return false
}

func (a *Array) copyChunkIntersection(ctx context.Context, chunkCoords []int, dst []byte, dstStrides, srcStrides []int, reqOffset, reqShape []int, itemSize int) error {
	chunkData, err := a.readChunk(ctx, chunkCoords)
	if err != nil {
		return err
	}

	rank := len(a.meta.Shape)
	blockShape := make([]int, rank)
	srcOffset := make([]int, rank)
	dstOffset := make([]int, rank)

	for i := 0; i < rank; i++ {
		chunkLo := chunkCoords[i] * a.meta.Chunks[i]
		chunkHi := minInt(chunkLo+a.meta.Chunks[i], a.meta.Shape[i])

		reqLo := reqOffset[i]
		reqHi := reqOffset[i] + reqShape[i]

		lo := maxInt(chunkLo, reqLo)
		hi := minInt(chunkHi, reqHi)
		if lo >= hi {
			return nil
		}

		blockShape[i] = hi - lo
		srcOffset[i] = lo - chunkLo
		dstOffset[i] = lo - reqLo
	}

	copyIntersection(dst, dstStrides, dstOffset, chunkData, srcStrides, srcOffset, blockShape, itemSize)
	return nil
}

// readChunk fetches and decodes one chunk's raw bytes, native axis order,
// native endianness. A missing chunk file is the fill value: an
// all-zero buffer of the full chunk volume (edge chunks included, since
// Zarr v2 stores every chunk at the full chunk shape).
func (a *Array) readChunk(ctx context.Context, chunkCoords []int) ([]byte, error) {
	key := chunkKey(chunkCoords, a.meta.separator())
	raw, err := a.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			n := 1
			for _, c := range a.meta.Chunks {
				n *= c
			}
			if len(a.meta.Chunks) == 0 {
				n = 1
			}
			return make([]byte, n*a.dtype.ByteWidth()), nil
		}
		return nil, pberrors.Wrap(pberrors.StoreError, err, "read chunk %s", key)
	}
	return decodeChunk(raw, a.meta.Compressor)
}

// decodeChunk decompresses a raw chunk blob per its declared compressor.
// A nil Compressor means the chunk is stored uncompressed.
func decodeChunk(raw []byte, c *CompressorConfig) ([]byte, error) {
	if c == nil {
		return raw, nil
	}
	switch c.ID {
	case "zstd":
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, pberrors.Wrap(pberrors.StoreError, err, "init zstd decoder")
		}
		defer dec.Close()
		out, err := dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, pberrors.Wrap(pberrors.StoreError, err, "zstd decompress chunk")
		}
		return out, nil
	case "blosc":
		out, err := blosc.Decompress(raw)
		if err != nil {
			return nil, pberrors.Wrap(pberrors.StoreError, err, "blosc decompress chunk")
		}
		return out, nil
	case "gzip":
		gr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, pberrors.Wrap(pberrors.StoreError, err, "init gzip reader")
		}
		defer gr.Close()
		out, err := io.ReadAll(gr)
		if err != nil {
			return nil, pberrors.Wrap(pberrors.StoreError, err, "gzip decompress chunk")
		}
		return out, nil
	case "zlib":
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, pberrors.Wrap(pberrors.StoreError, err, "init zlib reader")
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, pberrors.Wrap(pberrors.StoreError, err, "zlib decompress chunk")
		}
		return out, nil
	default:
		return nil, pberrors.New(pberrors.StoreError, "unsupported compressor %q", c.ID)
	}
}

// copyIntersection copies an n-dimensional block from src to dst given
// per-axis element strides, offsets and a shared copyShape.
//
// Rather than recursing one stack frame per axis, it first finds the
// longest trailing run of axes that is simultaneously contiguous in
// both src and dst (stride equal to the running product of the axes
// already folded in) and collapses that whole run into a single
// element count, copied with one copy() per remaining outer
// combination. Axes outside that run are then walked with a flat
// counter rather than a recursive closure. A chunk stored "F"-order
// and a row-major destination only ever collapse their shared
// innermost axis (or none), while two row-major buffers collapse
// every trailing axis into one bulk copy.
func copyIntersection(dst []byte, dstStrides, dstOffset []int, src []byte, srcStrides, srcOffset []int, copyShape []int, itemSize int) {
	rank := len(copyShape)
	if rank == 0 {
		copy(dst[:itemSize], src[:itemSize])
		return
	}

	run := 1
	split := rank
	for split > 0 {
		d := split - 1
		if srcStrides[d] != run || dstStrides[d] != run {
			break
		}
		run *= copyShape[d]
		split = d
	}
	runBytes := run * itemSize

	// baseSrc/baseDst hold the fixed contribution of the collapsed
	// trailing axes [split,rank); the outer axes [0,split) are added
	// per-iteration below as (offset+counter)*stride.
	baseSrc, baseDst := 0, 0
	for i := split; i < rank; i++ {
		baseSrc += srcOffset[i] * srcStrides[i]
		baseDst += dstOffset[i] * dstStrides[i]
	}

	if split == 0 {
		s := baseSrc * itemSize
		d := baseDst * itemSize
		copy(dst[d:d+runBytes], src[s:s+runBytes])
		return
	}

	outerShape := copyShape[:split]
	counter := make([]int, split)
	for {
		srcIdx, dstIdx := baseSrc, baseDst
		for i := 0; i < split; i++ {
			srcIdx += (srcOffset[i] + counter[i]) * srcStrides[i]
			dstIdx += (dstOffset[i] + counter[i]) * dstStrides[i]
		}
		s := srcIdx * itemSize
		d := dstIdx * itemSize
		copy(dst[d:d+runBytes], src[s:s+runBytes])

		i := split - 1
		for i >= 0 {
			counter[i]++
			if counter[i] < outerShape[i] {
				break
			}
			counter[i] = 0
			i--
		}
		if i < 0 {
			break
		}
	}
}

// swapToBigEndian byte-swaps every element of buf in place when the
// array's declared on-disk endianness is little; "|" (single-byte) and
// ">" (already big) dtypes are left untouched.
func (a *Array) swapToBigEndian(buf []byte) {
	if a.endian != pixeltype.LittleEndian {
		return
	}
	switch a.dtype.ByteWidth() {
	case 1:
		return
	case 2:
		for i := 0; i+2 <= len(buf); i += 2 {
			v := binary.LittleEndian.Uint16(buf[i:])
			binary.BigEndian.PutUint16(buf[i:], v)
		}
	case 4:
		for i := 0; i+4 <= len(buf); i += 4 {
			v := binary.LittleEndian.Uint32(buf[i:])
			binary.BigEndian.PutUint32(buf[i:], v)
		}
	case 8:
		for i := 0; i+8 <= len(buf); i += 8 {
			v := binary.LittleEndian.Uint64(buf[i:])
			binary.BigEndian.PutUint64(buf[i:], v)
		}
	}
}
