package astc

import (
	"context"
	"fmt"
)

// EncodeRGBAF32 compresses a tightly packed RGBA float32 image (x fastest,
// then y, then z) into a .astc file. Values are linear; HDR profiles accept
// values outside 0..1. The texels are rounded to FP16 before compression.
func EncodeRGBAF32(ctx context.Context, pix []float32, width, height, depth int, params *CompressionParams) ([]byte, error) {
	depth = max(depth, 1)
	if n := width * height * depth * 4; width <= 0 || height <= 0 || len(pix) != n {
		return nil, newError(ErrBadParam, fmt.Sprintf("astc: RGBAF32 buffer holds %d values for a %dx%dx%d image", len(pix), width, height, depth))
	}
	half := make([]uint16, len(pix))
	for i, v := range pix {
		half[i] = float32ToHalf(v)
	}
	return EncodeImageF16(ctx, NewTexelViewF16(half, width, height, depth), params)
}

// DecodeRGBAF32WithProfile decodes a 2D or 3D .astc file into tightly packed
// RGBA float32 slices.
func DecodeRGBAF32WithProfile(data []byte, profile Profile) (pix []float32, width, height, depth int, err error) {
	half, width, height, depth, err := DecodeF16WithProfile(data, profile)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	pix = make([]float32, len(half))
	for i, h := range half {
		pix[i] = halfToFloat32Table[h]
	}
	return pix, width, height, depth, nil
}
