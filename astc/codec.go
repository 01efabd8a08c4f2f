package astc

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Images with fewer blocks than this are processed on the calling goroutine.
const parallelBlockThreshold = 32

// blockScratch is per-worker state reused across blocks.
type blockScratch struct {
	blk   imageBlock
	rgba8 [blockMaxTexels * 4]byte
	f16   [blockMaxTexels * 4]uint16
}

// forEachBlock calls fn for every block index in 0..total-1 on up to
// GOMAXPROCS goroutines. The first error, or ctx's cancellation, stops the
// remaining work and is returned.
func forEachBlock(ctx context.Context, total int, fn func(idx int, s *blockScratch) error) error {
	procs := min(max(runtime.GOMAXPROCS(0), 1), total)
	if procs <= 1 || total < parallelBlockThreshold {
		s := new(blockScratch)
		for idx := 0; idx < total; idx++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(idx, s); err != nil {
				return err
			}
		}
		return nil
	}

	var next atomic.Int64
	var stop atomic.Bool
	var firstErr error
	var errOnce sync.Once
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			stop.Store(true)
		})
	}

	var wg sync.WaitGroup
	wg.Add(procs)
	for w := 0; w < procs; w++ {
		go func() {
			defer wg.Done()
			s := new(blockScratch)
			for !stop.Load() {
				idx := int(next.Add(1) - 1)
				if idx >= total {
					return
				}
				if err := ctx.Err(); err != nil {
					fail(err)
					return
				}
				if err := fn(idx, s); err != nil {
					fail(err)
					return
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// blockOrigin returns the texel origin of block idx.
func blockOrigin(h Header, blocksX, blocksY, idx int) (x, y, z int) {
	bx := idx % blocksX
	by := idx / blocksX % blocksY
	bz := idx / (blocksX * blocksY)
	return bx * int(h.BlockX), by * int(h.BlockY), bz * int(h.BlockZ)
}

func newImageFile(params *CompressionParams, width, height, depth int) (*CompressionParams, Header, []byte, error) {
	if params == nil {
		return nil, Header{}, nil, newError(ErrBadParam, "astc: nil compression params")
	}
	p := *params
	if err := p.Validate(); err != nil {
		return nil, Header{}, nil, err
	}
	if !p.Block.Is3D() && depth != 1 {
		return nil, Header{}, nil, newError(ErrBadParam, fmt.Sprintf("astc: %d slices need a 3D block footprint", depth))
	}
	h, err := NewHeader(p.Block, width, height, depth)
	if err != nil {
		return nil, Header{}, nil, err
	}
	hdr, err := MarshalHeader(h)
	if err != nil {
		return nil, Header{}, nil, err
	}
	_, _, _, total, err := h.BlockCount()
	if err != nil {
		return nil, Header{}, nil, err
	}
	out := make([]byte, HeaderSize+total*BlockBytes)
	copy(out, hdr[:])
	return &p, h, out, nil
}

// EncodeImage compresses an RGBA8 image into a complete .astc file.
func EncodeImage(ctx context.Context, img TexelView8, params *CompressionParams) ([]byte, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	p, h, out, err := newImageFile(params, img.Width, img.Height, img.depth())
	if err != nil {
		return nil, err
	}
	d := getBlockSizeDescriptor(p.Block)
	blocksX, blocksY, _, total, _ := h.BlockCount()
	blocks := out[HeaderSize:]

	err = forEachBlock(ctx, total, func(idx int, s *blockScratch) error {
		x, y, z := blockOrigin(h, blocksX, blocksY, idx)
		s.blk.loadRGBA8(p.Profile, p.Block, img, x, y, z)
		b := encodeImageBlock(p, d, &s.blk)
		copy(blocks[idx*BlockBytes:], b[:])
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "astc: encode")
	}
	return out, nil
}

// EncodeImageF16 compresses an RGBA FP16 image into a complete .astc file.
func EncodeImageF16(ctx context.Context, img TexelViewF16, params *CompressionParams) ([]byte, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	p, h, out, err := newImageFile(params, img.Width, img.Height, img.depth())
	if err != nil {
		return nil, err
	}
	d := getBlockSizeDescriptor(p.Block)
	blocksX, blocksY, _, total, _ := h.BlockCount()
	blocks := out[HeaderSize:]

	err = forEachBlock(ctx, total, func(idx int, s *blockScratch) error {
		x, y, z := blockOrigin(h, blocksX, blocksY, idx)
		s.blk.loadF16(p.Profile, p.Block, img, x, y, z)
		b := encodeImageBlock(p, d, &s.blk)
		copy(blocks[idx*BlockBytes:], b[:])
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "astc: encode")
	}
	return out, nil
}

// EncodeRGBA8 compresses a tightly packed 2D RGBA8 image with the LDR
// profile at medium quality.
func EncodeRGBA8(pix []byte, width, height int, fp Footprint) ([]byte, error) {
	params, err := DefaultCompressionParams(ProfileLDR, EncodeMedium.Value(), fp)
	if err != nil {
		return nil, err
	}
	return EncodeImage(context.Background(), NewTexelView8(pix, width, height, 1), &params)
}

// DecodeRGBA8 decodes a 2D .astc file with the LDR profile.
func DecodeRGBA8(data []byte) (pix []byte, width, height int, err error) {
	return DecodeRGBA8WithProfile(data, ProfileLDR)
}

// DecodeRGBA8WithProfile decodes a 2D .astc file into tightly packed RGBA8.
// Only the LDR profiles decode to 8 bits; use DecodeF16WithProfile for HDR.
func DecodeRGBA8WithProfile(data []byte, profile Profile) (pix []byte, width, height int, err error) {
	pix, width, height, depth, err := DecodeRGBA8VolumeWithProfile(data, profile)
	if err != nil {
		return nil, 0, 0, err
	}
	if depth != 1 {
		return nil, 0, 0, newError(ErrBadParam, "astc: image has more than one slice; use DecodeRGBA8VolumeWithProfile")
	}
	return pix, width, height, nil
}

// DecodeRGBA8VolumeWithProfile decodes a 2D or 3D .astc file into tightly
// packed RGBA8 slices.
func DecodeRGBA8VolumeWithProfile(data []byte, profile Profile) (pix []byte, width, height, depth int, err error) {
	if profile.IsHDR() || !profile.valid() {
		return nil, 0, 0, 0, newError(ErrBadProfile, fmt.Sprintf("astc: profile %v cannot decode to RGBA8", profile))
	}
	h, blocks, err := ParseFile(data)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	width, height, depth = int(h.SizeX), int(h.SizeY), int(h.SizeZ)
	pix = make([]byte, width*height*depth*4)
	d := getBlockSizeDescriptor(h.Footprint())

	blocksX, blocksY, _, total, _ := h.BlockCount()
	err = forEachBlock(context.Background(), total, func(idx int, s *blockScratch) error {
		decodeBlockRGBA8(profile, d, blocks[idx*BlockBytes:(idx+1)*BlockBytes], s.rgba8[:])
		x0, y0, z0 := blockOrigin(h, blocksX, blocksY, idx)
		storeBlock(d.Footprint, width, height, depth, x0, y0, z0, func(t, off int) {
			copy(pix[off*4:off*4+4], s.rgba8[t*4:t*4+4])
		})
		return nil
	})
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return pix, width, height, depth, nil
}

// DecodeF16WithProfile decodes a 2D or 3D .astc file into tightly packed
// RGBA FP16 slices.
func DecodeF16WithProfile(data []byte, profile Profile) (pix []uint16, width, height, depth int, err error) {
	if !profile.valid() {
		return nil, 0, 0, 0, newError(ErrBadProfile, fmt.Sprintf("astc: invalid profile %v", profile))
	}
	h, blocks, err := ParseFile(data)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	width, height, depth = int(h.SizeX), int(h.SizeY), int(h.SizeZ)
	pix = make([]uint16, width*height*depth*4)
	d := getBlockSizeDescriptor(h.Footprint())

	blocksX, blocksY, _, total, _ := h.BlockCount()
	err = forEachBlock(context.Background(), total, func(idx int, s *blockScratch) error {
		decodeBlockF16(profile, d, blocks[idx*BlockBytes:(idx+1)*BlockBytes], s.f16[:])
		x0, y0, z0 := blockOrigin(h, blocksX, blocksY, idx)
		storeBlock(d.Footprint, width, height, depth, x0, y0, z0, func(t, off int) {
			copy(pix[off*4:off*4+4], s.f16[t*4:t*4+4])
		})
		return nil
	})
	if err != nil {
		return nil, 0, 0, 0, err
	}
	return pix, width, height, depth, nil
}

// storeBlock calls put(t, off) for every texel t of the block at (x0, y0,
// z0) that lies inside the image, with off the texel's index in the image.
func storeBlock(fp Footprint, width, height, depth, x0, y0, z0 int, put func(t, off int)) {
	t := 0
	for z := 0; z < fp.Z; z++ {
		for y := 0; y < fp.Y; y++ {
			for x := 0; x < fp.X; x++ {
				ix, iy, iz := x0+x, y0+y, z0+z
				if ix < width && iy < height && iz < depth {
					put(t, (iz*height+iy)*width+ix)
				}
				t++
			}
		}
	}
}
