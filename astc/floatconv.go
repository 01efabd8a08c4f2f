package astc

import (
	"math"
	"math/bits"
)

// roundToInt adds one half and truncates; negative values round toward zero.
func roundToInt(v float32) int { return int(v + 0.5) }

func clampF32(v, lo, hi float32) float32 { return min(max(v, lo), hi) }

func absF32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

const (
	halfOne       = 0x3C00
	halfMaxFinite = 0x7BFF
	halfInf       = 0x7C00
	halfQuietNaN  = 0x7E00
)

// unorm16ToSF16 converts p/65535 to FP16 bits by keeping the ten bits below
// the leading one. 65535 maps to exactly 1.0.
func unorm16ToSF16(p uint16) uint16 {
	if p == 0xFFFF {
		return halfOne
	}
	n := bits.Len16(p)
	if n < 3 {
		return p << 8
	}
	frac := uint16(uint32(p)<<(16-n)) &^ 0x8000
	return uint16(n-2)<<10 | frac>>5
}

// LNS mantissas are stored in three linear segments so that the spacing of
// representable values follows the curve of the FP16 mantissa. lnsMantissa
// maps an 11-bit LNS mantissa to a 13-bit FP16 mantissa; lnsFromMantissa is
// its inverse.
func lnsMantissa(m int) int {
	switch {
	case m < 512:
		return 3 * m
	case m < 1536:
		return 4*m - 512
	}
	return 5*m - 2048
}

func lnsFromMantissa(mt float32) float32 {
	switch {
	case mt < 1536:
		return mt / 3
	case mt <= 5632:
		return (mt + 512) / 4
	}
	return (mt + 2048) / 5
}

// lnsToSF16 converts an ASTC LNS value to FP16 bits, saturating below
// infinity.
func lnsToSF16(p uint16) uint16 {
	h := int(p>>11)<<10 | lnsMantissa(int(p&0x7FF))>>3
	return uint16(min(h, halfMaxFinite))
}

// hdrTexelToLNS converts a linear HDR value to the 16-bit LNS encoding used
// by the encoder. Values below 2^-26, negatives and NaN map to 0; values of
// 65536 and above saturate.
func hdrTexelToLNS(v float32) uint16 {
	if !(v > 0x1p-26) {
		return 0
	}
	if v >= 65536 {
		return 0xFFFF
	}

	// Exponent field and 13-bit mantissa of the FP16 value; values below
	// 2^-14 are FP16 subnormals with a zero exponent field.
	var e int
	var mt float32
	if v < 0x1p-14 {
		mt = v * 0x1p27
	} else {
		frac, exp := math.Frexp(float64(v))
		e = exp + 14
		mt = float32(frac*2-1) * 8192
	}

	lns := lnsFromMantissa(mt) + float32(e)*2048 + 1
	return uint16(roundToInt(clampF32(lns, 0, 65535)))
}

// unorm16ToUnorm8 rounds to the nearest of 256 levels; v*257 maps back to v.
func unorm16ToUnorm8(v uint16) uint8 { return uint8((uint32(v) + 128) / 257) }

func float01ToUnorm8(v float32) uint8 {
	switch {
	case !(v > 0): // NaN too
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// halfToFloat32 converts binary16 bits to float32. Every FP16 value is exact
// in float32.
func halfToFloat32(h uint16) float32 {
	sign := float32(1)
	if h&0x8000 != 0 {
		sign = -1
	}
	e := int(h >> 10 & 0x1F)
	m := float64(h & 0x3FF)
	switch e {
	case 0x1F:
		if m != 0 {
			return float32(math.NaN())
		}
		return sign * float32(math.Inf(1))
	case 0:
		return sign * float32(math.Ldexp(m, -24))
	}
	return sign * float32(math.Ldexp(m+1024, e-25))
}

// float32ToHalf converts f to binary16 bits, rounding to nearest even.
// Overflow gives infinity and NaN gives a quiet NaN.
func float32ToHalf(f float32) uint16 {
	var sign uint16
	if math.Signbit(float64(f)) {
		sign = 0x8000
	}
	v := math.Abs(float64(f))
	switch {
	case math.IsNaN(v):
		return sign | halfQuietNaN
	case math.IsInf(v, 0):
		return sign | halfInf
	case v < 0x1p-14:
		// Subnormal; rounding up to 1024 carries into the smallest normal.
		return sign | uint16(math.RoundToEven(v*0x1p24))
	}

	_, exp := math.Frexp(v)
	e := exp - 1
	// m is in 1024..2048; 2048 carries into the exponent.
	m := int(math.RoundToEven(math.Ldexp(v, 10-e)))
	h := (e+15)<<10 + m - 1024
	if h >= halfInf {
		return sign | halfInf
	}
	return sign | uint16(h)
}
