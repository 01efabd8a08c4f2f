package astc

import "fmt"

// TexelView8 is a non-owning view of RGBA8 texels. Strides are in bytes; zero
// strides mean tightly packed rows and slices.
type TexelView8 struct {
	Pix                    []byte
	Width, Height, Depth   int
	RowStride, SliceStride int
}

// NewTexelView8 wraps a tightly packed RGBA8 image.
func NewTexelView8(pix []byte, width, height, depth int) TexelView8 {
	return TexelView8{Pix: pix, Width: width, Height: height, Depth: depth}
}

func (v TexelView8) strides() (row, slice int) {
	row, slice = v.RowStride, v.SliceStride
	if row == 0 {
		row = v.Width * 4
	}
	if slice == 0 {
		slice = row * v.Height
	}
	return row, slice
}

func (v TexelView8) depth() int { return max(v.Depth, 1) }

func (v TexelView8) validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return newError(ErrBadParam, fmt.Sprintf("astc: invalid image size %dx%dx%d", v.Width, v.Height, v.Depth))
	}
	row, slice := v.strides()
	need := (v.depth()-1)*slice + (v.Height-1)*row + v.Width*4
	if row < v.Width*4 || slice < row*v.Height || len(v.Pix) < need {
		return newError(ErrBadParam, fmt.Sprintf("astc: RGBA8 buffer too small: want %d bytes, got %d", need, len(v.Pix)))
	}
	return nil
}

// At returns the texel at (x, y, z). Coordinates outside the image clamp to
// the nearest edge texel.
func (v TexelView8) At(x, y, z int) [4]uint8 {
	x = clampInt(x, 0, v.Width-1)
	y = clampInt(y, 0, v.Height-1)
	z = clampInt(z, 0, v.depth()-1)
	row, slice := v.strides()
	off := z*slice + y*row + x*4
	return [4]uint8(v.Pix[off : off+4])
}

// TexelViewF16 is a non-owning view of RGBA FP16 texels. Strides are in
// uint16 elements; zero strides mean tightly packed rows and slices.
type TexelViewF16 struct {
	Pix                    []uint16
	Width, Height, Depth   int
	RowStride, SliceStride int
}

// NewTexelViewF16 wraps a tightly packed RGBA FP16 image.
func NewTexelViewF16(pix []uint16, width, height, depth int) TexelViewF16 {
	return TexelViewF16{Pix: pix, Width: width, Height: height, Depth: depth}
}

func (v TexelViewF16) strides() (row, slice int) {
	row, slice = v.RowStride, v.SliceStride
	if row == 0 {
		row = v.Width * 4
	}
	if slice == 0 {
		slice = row * v.Height
	}
	return row, slice
}

func (v TexelViewF16) depth() int { return max(v.Depth, 1) }

func (v TexelViewF16) validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return newError(ErrBadParam, fmt.Sprintf("astc: invalid image size %dx%dx%d", v.Width, v.Height, v.Depth))
	}
	row, slice := v.strides()
	need := (v.depth()-1)*slice + (v.Height-1)*row + v.Width*4
	if row < v.Width*4 || slice < row*v.Height || len(v.Pix) < need {
		return newError(ErrBadParam, fmt.Sprintf("astc: F16 buffer too small: want %d values, got %d", need, len(v.Pix)))
	}
	return nil
}

// At returns the texel at (x, y, z) with edge clamping.
func (v TexelViewF16) At(x, y, z int) [4]uint16 {
	x = clampInt(x, 0, v.Width-1)
	y = clampInt(y, 0, v.Height-1)
	z = clampInt(z, 0, v.depth()-1)
	row, slice := v.strides()
	off := z*slice + y*row + x*4
	return [4]uint16(v.Pix[off : off+4])
}
