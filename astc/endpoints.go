package astc

// Endpoint unpacking. Inputs are unquantized color values (0..255) in storage
// order; outputs follow the endpointCodec conventions.

func haddRGB(v int4) int { return v[0] + v[1] + v[2] }

// blueContract undoes the blue-contraction of the delta and plain RGB(A)
// formats: red and green are averaged toward blue.
func blueContract(v int4) int4 {
	v[0] = (v[0] + v[2]) >> 1
	v[1] = (v[1] + v[2]) >> 1
	return v
}

// bitTransferSigned moves the top bit of a into b and sign-extends the
// remaining 6 bits of a.
func bitTransferSigned(a, b int) (int, int) {
	b = b>>1 | a&0x80
	a = (a >> 1) & 0x3F
	if a&0x20 != 0 {
		a -= 0x40
	}
	return a, b
}

func interleaved(v []uint8, channels int) (e0, e1 int4) {
	for i := 0; i < channels; i++ {
		e0[i] = int(v[2*i])
		e1[i] = int(v[2*i+1])
	}
	return e0, e1
}

func luminanceUnpack(v []uint8) (e0, e1 int4) {
	l0, l1 := int(v[0]), int(v[1])
	return int4{l0, l0, l0, 255}, int4{l1, l1, l1, 255}
}

func luminanceDeltaUnpack(v []uint8) (e0, e1 int4) {
	l0 := int(v[0])>>2 | int(v[1])&0xC0
	l1 := min(l0+int(v[1])&0x3F, 255)
	return int4{l0, l0, l0, 255}, int4{l1, l1, l1, 255}
}

func luminanceAlphaUnpack(v []uint8) (e0, e1 int4) {
	l0, l1, a0, a1 := int(v[0]), int(v[1]), int(v[2]), int(v[3])
	return int4{l0, l0, l0, a0}, int4{l1, l1, l1, a1}
}

func luminanceAlphaDeltaUnpack(v []uint8) (e0, e1 int4) {
	dl, l := bitTransferSigned(int(v[1]), int(v[0]))
	da, a := bitTransferSigned(int(v[3]), int(v[2]))
	l1 := clampInt(l+dl, 0, 255)
	a1 := clampInt(a+da, 0, 255)
	return int4{l, l, l, a}, int4{l1, l1, l1, a1}
}

func rgbScaleUnpack(v []uint8) (e0, e1 int4) {
	s := int(v[3])
	e1 = int4{int(v[0]), int(v[1]), int(v[2]), 255}
	e0 = int4{e1[0] * s >> 8, e1[1] * s >> 8, e1[2] * s >> 8, 255}
	return e0, e1
}

func rgbScaleAlphaUnpack(v []uint8) (e0, e1 int4) {
	e0, e1 = rgbScaleUnpack(v[:4])
	e0[3], e1[3] = int(v[4]), int(v[5])
	return e0, e1
}

func rgbaUnpack(v []uint8) (e0, e1 int4) {
	e0, e1 = interleaved(v, 4)
	if haddRGB(e0) > haddRGB(e1) {
		return blueContract(e1), blueContract(e0)
	}
	return e0, e1
}

func rgbUnpack(v []uint8) (e0, e1 int4) {
	e0, e1 = interleaved(v, 3)
	if haddRGB(e0) > haddRGB(e1) {
		e0, e1 = blueContract(e1), blueContract(e0)
	}
	e0[3], e1[3] = 255, 255
	return e0, e1
}

func rgbaDeltaUnpack(v []uint8) (e0, e1 int4) {
	base, delta := interleaved(v, 4)
	for i := 0; i < 4; i++ {
		delta[i], base[i] = bitTransferSigned(delta[i], base[i])
	}
	sum := haddRGB(delta)
	for i := 0; i < 4; i++ {
		delta[i] += base[i]
	}
	e0, e1 = base, delta
	if sum < 0 {
		e0, e1 = blueContract(delta), blueContract(base)
	}
	for i := 0; i < 4; i++ {
		e0[i] = clampInt(e0[i], 0, 255)
		e1[i] = clampInt(e1[i], 0, 255)
	}
	return e0, e1
}

func rgbDeltaUnpack(v []uint8) (e0, e1 int4) {
	var buf [8]uint8
	copy(buf[:6], v[:6])
	e0, e1 = rgbaDeltaUnpack(buf[:])
	e0[3], e1[3] = 255, 255
	return e0, e1
}

// hdrBitRoute copies bit src of the spare-bit word into field dst at shift
// when the submode is in the modes mask.
type hdrBitRoute struct {
	modes uint8
	dst   int
	src   uint
	shift uint
}

const (
	rgboRed = iota
	rgboGreen
	rgboBlue
	rgboScale
)

var hdrRGBORoutes = []hdrBitRoute{
	{0x30, rgboGreen, 0, 6},
	{0x3A, rgboGreen, 1, 5},
	{0x30, rgboBlue, 2, 6},
	{0x3A, rgboBlue, 3, 5},
	{0x3D, rgboScale, 6, 5},
	{0x2D, rgboScale, 5, 6},
	{0x04, rgboScale, 4, 7},
	{0x3B, rgboRed, 4, 6},
	{0x04, rgboRed, 3, 6},
	{0x10, rgboRed, 5, 7},
	{0x0F, rgboRed, 2, 7},
	{0x05, rgboRed, 1, 8},
	{0x0A, rgboRed, 0, 8},
	{0x05, rgboRed, 0, 9},
	{0x02, rgboRed, 6, 9},
	{0x01, rgboRed, 3, 10},
	{0x02, rgboRed, 5, 10},
}

var hdrRGBOShifts = [6]uint{1, 1, 2, 3, 4, 5}

// routedWidths widens the base field widths by every bit the submode routes
// into a field.
func routedWidths(routes []hdrBitRoute, mode int, base []uint) []uint {
	w := append([]uint(nil), base...)
	for _, r := range routes {
		if r.modes&(1<<uint(mode)) != 0 {
			w[r.dst] = max(w[r.dst], r.shift+1)
		}
	}
	return w
}

// hdrRGBOFields splits the four values of FormatHDRRGBScale into the
// submode, the major component and the unshifted red, green, blue and scale
// fields.
func hdrRGBOFields(v []uint8) (mode, majcomp int, f [4]int) {
	v0, v1, v2, v3 := int(v[0]), int(v[1]), int(v[2]), int(v[3])

	modeval := (v0&0xC0)>>6 | (v1&0x80)>>7<<2 | (v2&0x80)>>7<<3
	switch {
	case modeval&0xC != 0xC:
		majcomp, mode = modeval>>2, modeval&3
	case modeval != 0xF:
		majcomp, mode = modeval&3, 4
	default:
		majcomp, mode = 0, 5
	}

	f = [4]int{v0 & 0x3F, v1 & 0x1F, v2 & 0x1F, v3 & 0x1F}
	spare := v1>>6&1 | v1>>5&1<<1 | v2>>6&1<<2 | v2>>5&1<<3 |
		v3>>7&1<<4 | v3>>6&1<<5 | v3>>5&1<<6
	for _, r := range hdrRGBORoutes {
		if r.modes&(1<<uint(mode)) != 0 {
			f[r.dst] |= (spare >> r.src & 1) << r.shift
		}
	}
	return mode, majcomp, f
}

func hdrRGBOUnpack(v []uint8) (e0, e1 int4) {
	mode, majcomp, f := hdrRGBOFields(v)

	sh := hdrRGBOShifts[mode]
	red, green, blue, scale := f[0]<<sh, f[1]<<sh, f[2]<<sh, f[3]<<sh
	if mode != 5 {
		green = red - green
		blue = red - blue
	}
	switch majcomp {
	case 1:
		red, green = green, red
	case 2:
		red, blue = blue, red
	}

	e1 = int4{max(red, 0) << 4, max(green, 0) << 4, max(blue, 0) << 4, 0x7800}
	e0 = int4{max(red-scale, 0) << 4, max(green-scale, 0) << 4, max(blue-scale, 0) << 4, 0x7800}
	return e0, e1
}

const (
	rgbA = iota
	rgbC
	rgbB0
	rgbB1
	rgbD0
	rgbD1
)

var hdrRGBRoutes = []hdrBitRoute{
	{0xA4, rgbA, 0, 9},
	{0x08, rgbA, 2, 9},
	{0x50, rgbA, 4, 9},
	{0x50, rgbA, 5, 10},
	{0xA0, rgbA, 1, 10},
	{0xC0, rgbA, 2, 11},
	{0x04, rgbC, 1, 6},
	{0xE8, rgbC, 3, 6},
	{0x20, rgbC, 2, 7},
	{0x5B, rgbB0, 0, 6},
	{0x5B, rgbB1, 1, 6},
	{0x12, rgbB0, 2, 7},
	{0x12, rgbB1, 3, 7},
	{0xAF, rgbD0, 4, 5},
	{0xAF, rgbD1, 5, 5},
	{0x05, rgbD0, 2, 6},
	{0x05, rgbD1, 3, 6},
}

var hdrRGBDBits = [8]uint{7, 6, 7, 6, 5, 6, 5, 6}

func signExtend(v int, bits uint) int {
	return int(int32(uint32(v)<<(32-bits)) >> (32 - bits))
}

// hdrRGBDirect is the major-component value that stores both endpoints
// directly instead of as A, B, C and D fields.
const hdrRGBDirect = 3

// hdrRGBFields splits the six values of FormatHDRRGB into the submode, the
// major component and the unshifted fields, D0 and D1 sign-extended.
func hdrRGBFields(v []uint8) (mode, majcomp int, f [6]int) {
	var x [6]int
	for i := range x {
		x[i] = int(v[i])
	}

	mode = x[1]>>7&1 | x[2]>>7&1<<1 | x[3]>>7&1<<2
	majcomp = x[4]>>7&1 | x[5]>>7&1<<1
	f = [6]int{
		rgbA:  x[0] | (x[1]&0x40)<<2,
		rgbC:  x[1] & 0x3F,
		rgbB0: x[2] & 0x3F,
		rgbB1: x[3] & 0x3F,
		rgbD0: x[4] & 0x7F,
		rgbD1: x[5] & 0x7F,
	}
	spare := x[2]>>6&1 | x[3]>>6&1<<1 | x[4]>>6&1<<2 | x[5]>>6&1<<3 | x[4]>>5&1<<4 | x[5]>>5&1<<5
	for _, r := range hdrRGBRoutes {
		if r.modes&(1<<uint(mode)) != 0 {
			f[r.dst] |= (spare >> r.src & 1) << r.shift
		}
	}

	dbits := hdrRGBDBits[mode]
	f[rgbD0] = signExtend(f[rgbD0], dbits)
	f[rgbD1] = signExtend(f[rgbD1], dbits)
	return mode, majcomp, f
}

// hdrRGBShift is the left shift from field units to 12-bit values.
func hdrRGBShift(mode int) uint { return uint((mode >> 1) ^ 3) }

func hdrRGBUnpack(v []uint8) (e0, e1 int4) {
	mode, majcomp, f := hdrRGBFields(v)

	if majcomp == hdrRGBDirect {
		e0 = int4{int(v[0]) << 8, int(v[2]) << 8, int(v[4]&0x7F) << 9, 0x7800}
		e1 = int4{int(v[1]) << 8, int(v[3]) << 8, int(v[5]&0x7F) << 9, 0x7800}
		return e0, e1
	}

	sh := hdrRGBShift(mode)
	for i := range f {
		f[i] = int(int32(uint32(int32(f[i])) << sh))
	}

	a, c, b0, b1, d0, d1 := f[rgbA], f[rgbC], f[rgbB0], f[rgbB1], f[rgbD0], f[rgbD1]
	hi := [3]int{a, a - b0, a - b1}
	lo := [3]int{a - c, a - b0 - c - d0, a - b1 - c - d1}
	for i := 0; i < 3; i++ {
		hi[i] = clampInt(hi[i], 0, 0xFFF)
		lo[i] = clampInt(lo[i], 0, 0xFFF)
	}
	switch majcomp {
	case 1:
		hi[0], hi[1] = hi[1], hi[0]
		lo[0], lo[1] = lo[1], lo[0]
	case 2:
		hi[0], hi[2] = hi[2], hi[0]
		lo[0], lo[2] = lo[2], lo[0]
	}

	e0 = int4{lo[0] << 4, lo[1] << 4, lo[2] << 4, 0x7800}
	e1 = int4{hi[0] << 4, hi[1] << 4, hi[2] << 4, 0x7800}
	return e0, e1
}

func hdrRGBLDRAlphaUnpack(v []uint8) (e0, e1 int4) {
	e0, e1 = hdrRGBUnpack(v[:6])
	e0[3], e1[3] = int(v[6]), int(v[7])
	return e0, e1
}

func hdrAlphaUnpack(v6, v7 int) (a0, a1 int) {
	selector := v6>>7&1 | v7>>6&2
	v6 &= 0x7F
	v7 &= 0x7F
	if selector == 3 {
		return v6 << 9, v7 << 9
	}
	sel := uint(selector)
	v6 |= (v7 << (sel + 1)) & 0x780
	v7 &= 0x3F >> sel
	v7 ^= 32 >> sel
	v7 -= 32 >> sel
	v6 <<= 4 - sel
	v7 <<= 4 - sel
	v7 = clampInt(v7+v6, 0, 0xFFF)
	return v6 << 4, v7 << 4
}

func hdrRGBAUnpack(v []uint8) (e0, e1 int4) {
	e0, e1 = hdrRGBUnpack(v[:6])
	e0[3], e1[3] = hdrAlphaUnpack(int(v[6]), int(v[7]))
	return e0, e1
}

func hdrLuminanceLargeRangeUnpack(v []uint8) (e0, e1 int4) {
	v0, v1 := int(v[0]), int(v[1])
	var y0, y1 int
	if v1 >= v0 {
		y0, y1 = v0<<4, v1<<4
	} else {
		y0, y1 = v1<<4+8, v0<<4-8
	}
	y0 <<= 4
	y1 <<= 4
	return int4{y0, y0, y0, 0x7800}, int4{y1, y1, y1, 0x7800}
}

func hdrLuminanceSmallRangeUnpack(v []uint8) (e0, e1 int4) {
	v0, v1 := int(v[0]), int(v[1])
	var y0, y1 int
	if v0&0x80 != 0 {
		y0 = (v1&0xE0)<<4 | (v0&0x7F)<<2
		y1 = (v1 & 0x1F) << 2
	} else {
		y0 = (v1&0xF0)<<4 | (v0&0x7F)<<1
		y1 = (v1 & 0xF) << 1
	}
	y1 = min(y1+y0, 0xFFF)
	y0 <<= 4
	y1 <<= 4
	return int4{y0, y0, y0, 0x7800}, int4{y1, y1, y1, 0x7800}
}
