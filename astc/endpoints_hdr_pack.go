package astc

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// HDR endpoint packing. Every HDR format stores fixed-point fields whose bits
// are spread over the color values by the same route tables the unpackers
// gather them with. Packing scatters the fields, snaps each value to the
// lattice of the quantization level while keeping its mode and spare bits,
// and reads the fields back so that later fields absorb the rounding of
// earlier ones. Candidate submodes are compared by decoding them.

var (
	// A, C, B0, B1, D0, D1 widths per submode; D is signed.
	hdrRGBWidths [8][6]uint
	// Red, green, blue and scale widths per submode.
	hdrRGBOWidths [6][4]uint
)

func init() {
	for m := range hdrRGBWidths {
		w := routedWidths(hdrRGBRoutes, m, []uint{9, 6, 6, 6, 0, 0})
		w[rgbD0], w[rgbD1] = hdrRGBDBits[m], hdrRGBDBits[m]
		copy(hdrRGBWidths[m][:], w)
	}
	for m := range hdrRGBOWidths {
		copy(hdrRGBOWidths[m][:], routedWidths(hdrRGBORoutes, m, []uint{6, 5, 5, 5}))
	}
}

// scatterRoutes builds the spare-bit word that the unpackers route into the
// fields of a submode.
func scatterRoutes(routes []hdrBitRoute, mode int, f []int) int {
	spare := 0
	for _, r := range routes {
		if r.modes&(1<<uint(mode)) != 0 {
			spare |= (f[r.dst] >> r.shift & 1) << r.src
		}
	}
	return spare
}

// fieldOf rounds x to the nearest multiple of unit.
func fieldOf(x, unit float32) int { return int(math.Round(float64(x / unit))) }

func fitsUnsigned(v int, bits uint) bool { return v >= 0 && v < 1<<bits }

func fitsSigned(v int, bits uint) bool {
	lim := 1 << (bits - 1)
	return v >= -lim && v < lim
}

// commitValues snaps y[from:to] to the lattice under masks into x and copies
// the provisional values after them.
func commitValues(q QuantMethod, x, y, masks []int, from, to int) bool {
	for i := from; i < len(x); i++ {
		x[i] = y[i]
		if i >= to {
			continue
		}
		var ok bool
		if x[i], ok = snapColorMasked(q, y[i], masks[i]); !ok {
			return false
		}
	}
	return true
}

func asValues(x []int, out []uint8) []uint8 {
	for i, v := range x {
		out[i] = uint8(v)
	}
	return out
}

// pairError is the squared distance of a decoded pair to the intended one over
// the first channels.
func pairError(e0, e1 int4, c0, c1 mgl32.Vec4, channels int) float32 {
	var err float32
	for i := 0; i < channels; i++ {
		d0 := float32(e0[i]) - c0[i]
		d1 := float32(e1[i]) - c1[i]
		err += d0*d0 + d1*d1
	}
	return err
}

func clampLNS(c mgl32.Vec4) mgl32.Vec4 {
	for i := range c {
		c[i] = clampF32(c[i], 0, 65535)
	}
	return c
}

// majorComponent is the channel of the high endpoint the RGB submodes store
// at full precision.
func majorComponent(c mgl32.Vec4) int {
	m := 0
	if c[1] > c[m] {
		m = 1
	}
	if c[2] > c[m] {
		m = 2
	}
	return m
}

func swapMajor(c mgl32.Vec4, major int) mgl32.Vec4 {
	c[0], c[major] = c[major], c[0]
	return c
}

// RGB

// Mode and spare bits per value: the major component and submode in bit 7,
// routed bits in 6 and 5.
var (
	hdrRGBStrictMasks  = []int{0, 0xC0, 0xC0, 0xC0, 0xE0, 0xE0}
	hdrRGBRelaxedMasks = []int{0, 0x80, 0x80, 0x80, 0x80, 0x80}
)

func hdrRGBValues(mode, major int, f *[6]int) []int {
	spare := scatterRoutes(hdrRGBRoutes, mode, f[:])
	bit := func(i uint) int { return spare >> i & 1 }
	return []int{
		f[rgbA] & 0xFF,
		mode&1<<7 | f[rgbA]>>8&1<<6 | f[rgbC]&0x3F,
		mode>>1&1<<7 | bit(0)<<6 | f[rgbB0]&0x3F,
		mode>>2&1<<7 | bit(1)<<6 | f[rgbB1]&0x3F,
		major&1<<7 | bit(2)<<6 | bit(4)<<5 | f[rgbD0]&0x1F,
		major>>1&1<<7 | bit(3)<<6 | bit(5)<<5 | f[rgbD1]&0x1F,
	}
}

// packHDRRGBMode packs swizzled endpoints lo, hi with one submode. The high
// major channel is A; B and C are the distances of the other high channels and
// the low major channel from it, and D corrects the low minor channels.
func packHDRRGBMode(mode, major int, lo, hi mgl32.Vec4, q QuantMethod, masks []int) (v [6]uint8, ok bool) {
	w := &hdrRGBWidths[mode]
	unit := float32(int(16) << hdrRGBShift(mode))

	var f [6]int
	f[rgbA] = fieldOf(hi[0], unit)
	if !fitsUnsigned(f[rgbA], w[rgbA]) {
		return v, false
	}
	x := make([]int, 6)
	if !commitValues(q, x, hdrRGBValues(mode, major, &f), masks, 0, 1) {
		return v, false
	}
	_, _, f = hdrRGBFields(asValues(x, v[:]))

	a := float32(f[rgbA]) * unit
	f[rgbC] = max(fieldOf(a-lo[0], unit), 0)
	f[rgbB0] = max(fieldOf(a-hi[1], unit), 0)
	f[rgbB1] = max(fieldOf(a-hi[2], unit), 0)
	for _, i := range []int{rgbC, rgbB0, rgbB1} {
		if !fitsUnsigned(f[i], w[i]) {
			return v, false
		}
	}
	if !commitValues(q, x, hdrRGBValues(mode, major, &f), masks, 1, 4) {
		return v, false
	}
	_, _, f = hdrRGBFields(asValues(x, v[:]))

	a = float32(f[rgbA]) * unit
	c := float32(f[rgbC]) * unit
	f[rgbD0] = fieldOf(a-float32(f[rgbB0])*unit-c-lo[1], unit)
	f[rgbD1] = fieldOf(a-float32(f[rgbB1])*unit-c-lo[2], unit)
	if !fitsSigned(f[rgbD0], w[rgbD0]) || !fitsSigned(f[rgbD1], w[rgbD1]) {
		return v, false
	}
	if !commitValues(q, x, hdrRGBValues(mode, major, &f), masks, 4, 6) {
		return v, false
	}
	asValues(x, v[:])
	return v, true
}

// packHDRRGBDirect stores both endpoints as they are: red and green with 8
// bits, blue with 7. It fits any pair.
func packHDRRGBDirect(lo, hi mgl32.Vec4, q QuantMethod) (v [6]uint8) {
	wide := func(x float32) uint8 {
		return uint8(snapColor(q, clampInt(roundToInt(x/256), 0, 255)))
	}
	narrow := func(x float32) uint8 {
		u, _ := snapColorMasked(q, 0x80|clampInt(roundToInt(x/512), 0, 127), 0x80)
		return uint8(u)
	}
	return [6]uint8{wide(lo[0]), wide(hi[0]), wide(lo[1]), wide(hi[1]), narrow(lo[2]), narrow(hi[2])}
}

// encodeHDRRGB returns the unquantized values of FormatHDRRGB for the pair,
// picking whichever submode decodes closest.
func encodeHDRRGB(c0, c1 mgl32.Vec4, q QuantMethod) [6]uint8 {
	c0, c1 = clampLNS(c0), clampLNS(c1)
	rgbError := func(v [6]uint8) float32 {
		e0, e1 := hdrRGBUnpack(v[:])
		return pairError(e0, e1, c0, c1, 3)
	}

	best := packHDRRGBDirect(c0, c1, q)
	bestErr := rgbError(best)
	major := majorComponent(c1)
	lo, hi := swapMajor(c0, major), swapMajor(c1, major)
	for mode := 0; mode < len(hdrRGBWidths); mode++ {
		v, ok := packHDRRGBMode(mode, major, lo, hi, q, hdrRGBStrictMasks)
		if !ok {
			v, ok = packHDRRGBMode(mode, major, lo, hi, q, hdrRGBRelaxedMasks)
		}
		if !ok {
			continue
		}
		if err := rgbError(v); err < bestErr {
			best, bestErr = v, err
		}
	}
	return best
}

// RGB scale

var (
	hdrRGBOStrictMasks  = []int{0xC0, 0xE0, 0xE0, 0xE0}
	hdrRGBORelaxedMasks = []int{0xC0, 0x80, 0x80, 0}
)

// hdrRGBOModeValue is the 4-bit mode field; submode 5 has no major component.
func hdrRGBOModeValue(mode, major int) int {
	switch mode {
	case 4:
		return 0xC | major
	case 5:
		return 0xF
	}
	return major<<2 | mode
}

func hdrRGBOValues(mode, major int, f *[4]int) []int {
	mv := hdrRGBOModeValue(mode, major)
	spare := scatterRoutes(hdrRGBORoutes, mode, f[:])
	bit := func(i uint) int { return spare >> i & 1 }
	return []int{
		mv&3<<6 | f[rgboRed]&0x3F,
		mv>>2&1<<7 | bit(0)<<6 | bit(1)<<5 | f[rgboGreen]&0x1F,
		mv>>3&1<<7 | bit(2)<<6 | bit(3)<<5 | f[rgboBlue]&0x1F,
		bit(4)<<7 | bit(5)<<6 | bit(6)<<5 | f[rgboScale]&0x1F,
	}
}

// packHDRRGBOMode packs a swizzled high endpoint and the offset to the low
// one. Submodes 0 to 4 store green and blue as distances below red; submode 5
// stores all three directly and its fields are clamped rather than rejected.
func packHDRRGBOMode(mode, major int, hi mgl32.Vec4, scale float32, q QuantMethod, masks []int) (v [4]uint8, ok bool) {
	w := &hdrRGBOWidths[mode]
	unit := float32(int(16) << hdrRGBOShifts[mode])
	direct := mode == 5
	fits := func(f *[4]int, i int) bool {
		if direct {
			f[i] = clampInt(f[i], 0, 1<<w[i]-1)
		}
		return fitsUnsigned(f[i], w[i])
	}

	var f [4]int
	f[rgboRed] = fieldOf(hi[0], unit)
	if !fits(&f, rgboRed) {
		return v, false
	}
	x := make([]int, 4)
	if !commitValues(q, x, hdrRGBOValues(mode, major, &f), masks, 0, 1) {
		return v, false
	}
	_, _, f = hdrRGBOFields(asValues(x, v[:]))

	red := float32(f[rgboRed]) * unit
	if direct {
		f[rgboGreen], f[rgboBlue] = fieldOf(hi[1], unit), fieldOf(hi[2], unit)
	} else {
		f[rgboGreen], f[rgboBlue] = max(fieldOf(red-hi[1], unit), 0), max(fieldOf(red-hi[2], unit), 0)
	}
	if !fits(&f, rgboGreen) || !fits(&f, rgboBlue) {
		return v, false
	}
	if !commitValues(q, x, hdrRGBOValues(mode, major, &f), masks, 1, 3) {
		return v, false
	}
	_, _, f = hdrRGBOFields(asValues(x, v[:]))

	// The offset absorbs the mean rounding of the high endpoint.
	dec := mgl32.Vec3{float32(f[rgboRed]), float32(f[rgboGreen]), float32(f[rgboBlue])}.Mul(unit)
	if !direct {
		dec[1], dec[2] = dec[0]-dec[1], dec[0]-dec[2]
	}
	drift := (dec[0] - hi[0] + dec[1] - hi[1] + dec[2] - hi[2]) * (1.0 / 3.0)
	f[rgboScale] = max(fieldOf(scale+drift, unit), 0)
	if !fits(&f, rgboScale) {
		return v, false
	}
	if !commitValues(q, x, hdrRGBOValues(mode, major, &f), masks, 3, 4) {
		return v, false
	}
	asValues(x, v[:])
	return v, true
}

// encodeHDRRGBScale returns the values of FormatHDRRGBScale for a high
// endpoint and a uniform offset down to the low one.
func encodeHDRRGBScale(hi mgl32.Vec4, scale float32, q QuantMethod) [4]uint8 {
	hi = clampLNS(hi)
	scale = clampF32(scale, 0, 65535)
	lo := hi.Sub(mgl32.Vec4{scale, scale, scale, 0})
	rgboError := func(v [4]uint8) float32 {
		e0, e1 := hdrRGBOUnpack(v[:])
		return pairError(e0, e1, lo, hi, 3)
	}

	var best [4]uint8
	var bestErr float32
	found := false
	major := majorComponent(hi)
	for mode := 0; mode < len(hdrRGBOWidths); mode++ {
		m := major
		if mode == 5 {
			m = 0
		}
		swz := swapMajor(hi, m)
		v, ok := packHDRRGBOMode(mode, m, swz, scale, q, hdrRGBOStrictMasks)
		if !ok {
			v, ok = packHDRRGBOMode(mode, m, swz, scale, q, hdrRGBORelaxedMasks)
		}
		if !ok {
			continue
		}
		if err := rgboError(v); !found || err < bestErr {
			best, bestErr, found = v, err, true
		}
	}
	return best
}

// Alpha

// packHDRAlphaDelta stores a0 as a base of 8+sel bits and a1 as a signed
// delta of 6-sel bits, both in units of 256>>sel.
func packHDRAlphaDelta(sel int, a0, a1 float32, q QuantMethod) (v [2]uint8, ok bool) {
	unit := float32(int(256) >> sel)
	dbits := uint(6 - sel)

	base := fieldOf(a0, unit)
	if !fitsUnsigned(base, uint(8+sel)) {
		return v, false
	}
	v6, ok := snapColorMasked(q, sel&1<<7|base&0x7F, 0x80)
	if !ok {
		return v, false
	}
	base = base&^0x7F | v6&0x7F

	d := fieldOf(a1-float32(base)*unit, unit)
	if !fitsSigned(d, dbits) {
		return v, false
	}
	v7, ok := snapColorMasked(q, sel>>1<<7|base>>7<<dbits|d&(1<<dbits-1), 0xFF&^(1<<dbits-1))
	if !ok {
		return v, false
	}
	return [2]uint8{uint8(v6), uint8(v7)}, true
}

// encodeHDRAlpha returns the two alpha values of FormatHDRRGBA.
func encodeHDRAlpha(a0, a1 float32, q QuantMethod) [2]uint8 {
	a0, a1 = clampF32(a0, 0, 65535), clampF32(a1, 0, 65535)
	alphaError := func(v [2]uint8) float32 {
		d0, d1 := hdrAlphaUnpack(int(v[0]), int(v[1]))
		e0, e1 := float32(d0)-a0, float32(d1)-a1
		return e0*e0 + e1*e1
	}

	direct := func(a float32) uint8 {
		u, _ := snapColorMasked(q, 0x80|clampInt(roundToInt(a/512), 0, 127), 0x80)
		return uint8(u)
	}
	best := [2]uint8{direct(a0), direct(a1)}
	bestErr := alphaError(best)
	for sel := 2; sel >= 0; sel-- {
		v, ok := packHDRAlphaDelta(sel, a0, a1, q)
		if !ok {
			continue
		}
		if err := alphaError(v); err < bestErr {
			best, bestErr = v, err
		}
	}
	return best
}

// Luminance

// encodeHDRLuminanceLarge returns the values of
// FormatHDRLuminanceLargeRange. Values in order hold the endpoints in units of
// 256; swapped values hold them offset by half a unit.
func encodeHDRLuminanceLarge(l0, l1 float32, q QuantMethod) [2]uint8 {
	at := func(x float32) uint8 { return uint8(snapColor(q, clampInt(roundToInt(x/256), 0, 255))) }
	c0, c1 := mgl32.Vec4{l0, l0, l0, 0}, mgl32.Vec4{l1, l1, l1, 0}
	lumError := func(v [2]uint8) float32 {
		e0, e1 := hdrLuminanceLargeRangeUnpack(v[:])
		return pairError(e0, e1, c0, c1, 1)
	}

	best := [2]uint8{at(l0), at(l1)}
	if swapped := [2]uint8{at(l1 + 128), at(l0 - 128)}; lumError(swapped) < lumError(best) {
		best = swapped
	}
	return best
}

// hdrLumSmall describes the two precisions of FormatHDRLuminanceSmallRange:
// the flag in bit 7 of the first value and the delta width. The base takes the
// remaining 15-dbits bits.
var hdrLumSmall = []struct {
	flag  int
	dbits uint
}{{0, 4}, {0x80, 5}}

// encodeHDRLuminanceSmall returns the values of
// FormatHDRLuminanceSmallRange, or false when the endpoints are too far apart.
func encodeHDRLuminanceSmall(l0, l1 float32, q QuantMethod) (best [2]uint8, found bool) {
	c0, c1 := mgl32.Vec4{l0, l0, l0, 0}, mgl32.Vec4{l1, l1, l1, 0}
	var bestErr float32
	for _, p := range hdrLumSmall {
		unit := float32(int(16) << (p.dbits - 3))
		base := fieldOf(l0, unit)
		if !fitsUnsigned(base, 15-p.dbits) {
			continue
		}
		v0, ok := snapColorMasked(q, p.flag|base&0x7F, 0x80)
		if !ok {
			continue
		}
		base = base&^0x7F | v0&0x7F
		d := fieldOf(l1, unit) - base
		if !fitsUnsigned(d, p.dbits) {
			continue
		}
		v1, ok := snapColorMasked(q, base>>7<<p.dbits|d, 0xFF&^(1<<p.dbits-1))
		if !ok {
			continue
		}
		v := [2]uint8{uint8(v0), uint8(v1)}
		e0, e1 := hdrLuminanceSmallRangeUnpack(v[:])
		if err := pairError(e0, e1, c0, c1, 1); !found || err < bestErr {
			best, bestErr, found = v, err, true
		}
	}
	return best, found
}
