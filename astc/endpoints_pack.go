package astc

import "github.com/go-gl/mathgl/mgl32"

// Endpoint packing. Pack functions take endpoints in the endpoint domain
// (0..255 for LDR channels, 0..65535 LNS for HDR channels, 0..255 for the LDR
// alpha of FormatHDRRGBLDRAlpha) and write ISE values for level q. A false
// return means the format cannot represent the pair at all.

// nudgeIterations bounds the ordering fix-up of the plain RGB(A) formats.
const nudgeIterations = 64

// latticeValue rounds v into 0..255 and snaps it to the nearest unquantized
// value of level q.
func latticeValue(q QuantMethod, v float32) int {
	return unquantColor(q, closestQuant(q, roundToInt(clampF32(v, 0, 255))))
}

// storeISE converts unquantized lattice values to their ISE values.
func storeISE(q QuantMethod, vals []int, out []uint8) {
	for i, v := range vals {
		out[i] = uint8(closestQuant(q, v))
	}
}

func storeLattice(q QuantMethod, vals []uint8, out []uint8) {
	for i, v := range vals {
		out[i] = colorQuant[q][v]
	}
}

func luminanceOf(c mgl32.Vec4) float32 { return (c[0] + c[1] + c[2]) * (1.0 / 3.0) }

// orderedLuminance returns the luminances of the pair, collapsed to their
// mean when they are out of order.
func orderedLuminance(c0, c1 mgl32.Vec4) (float32, float32) {
	l0, l1 := luminanceOf(c0), luminanceOf(c1)
	if l0 > l1 {
		avg := (l0 + l1) * 0.5
		return avg, avg
	}
	return l0, l1
}

func luminancePack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	l0, l1 := luminanceOf(c0), luminanceOf(c1)
	storeISE(q, []int{latticeValue(q, l0), latticeValue(q, l1)}, out)
	return true
}

func luminanceDeltaPack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	l0f, l1f := orderedLuminance(c0, c1)
	l0 := clampInt(roundToInt(l0f), 0, 255)
	l1 := clampInt(roundToInt(l1f), 0, 255)

	v0 := (l0&0x3F)<<2 | 2
	v0d := snapColor(q, v0)
	l0 = v0d>>2 | l0&0xC0

	delta := l1 - l0
	if delta < 0 || delta > 0x3F {
		return false
	}
	v1 := l0&0xC0 | delta
	v1d := snapColor(q, v1)
	if (v1d^v1)&0xC0 != 0 {
		return false
	}
	storeISE(q, []int{v0d, v1d}, out)
	return true
}

func luminanceAlphaPack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	l0, l1 := luminanceOf(c0), luminanceOf(c1)
	storeISE(q, []int{
		latticeValue(q, l0), latticeValue(q, l1),
		latticeValue(q, c0[3]), latticeValue(q, c1[3]),
	}, out)
	return true
}

// packSignedDelta encodes target relative to base with the bit-transfer
// layout: the base loses its low bit to the delta and borrows its top bit
// from the delta's value. The delta must fit in -32..31 after quantization.
// It returns the unquantized (base, delta) slot values and the decoded pair.
func packSignedDelta(q QuantMethod, base, target int) (vb, vd, decBase, decTarget int, ok bool) {
	base = clampInt(base, 0, 255)
	vb = snapColor(q, (base<<1)&0xFF|1)
	decBase = vb>>1 | base&0x80

	delta := target - decBase
	if delta < -32 || delta > 31 {
		return 0, 0, 0, 0, false
	}
	v := (delta&0x3F)<<1 | base&0x80
	vd = snapColor(q, v)
	if (vd^v)&0xC0 != 0 {
		return 0, 0, 0, 0, false
	}
	d, _ := bitTransferSigned(vd, vb)
	return vb, vd, decBase, decBase + d, true
}

func luminanceAlphaDeltaPack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	l0, l1 := orderedLuminance(c0, c1)
	lb, ld, _, _, ok := packSignedDelta(q, roundToInt(l0), roundToInt(l1))
	if !ok {
		return false
	}
	ab, ad, _, _, ok := packSignedDelta(q, roundToInt(c0[3]), roundToInt(c1[3]))
	if !ok {
		return false
	}
	storeISE(q, []int{lb, ld, ab, ad}, out)
	return true
}

// rgbScaleValues stores the high endpoint and the ratio low/high as a 0..255
// scale factor.
func rgbScaleValues(c0, c1 mgl32.Vec4, q QuantMethod) [4]int {
	hi := c1.Vec3()
	var v [4]int
	for i := 0; i < 3; i++ {
		v[i] = latticeValue(q, hi[i])
	}
	s := safeDiv(c0.Vec3().Dot(hi), hi.Dot(hi), 1)
	v[3] = latticeValue(q, min(clampF32(s, 0, 1)*256, 255))
	return v
}

func rgbScalePack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	v := rgbScaleValues(c0, c1, q)
	storeISE(q, v[:], out)
	return true
}

func rgbScaleAlphaPack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	v := rgbScaleValues(c0, c1, q)
	storeISE(q, []int{v[0], v[1], v[2], v[3], latticeValue(q, c0[3]), latticeValue(q, c1[3])}, out)
	return true
}

// contract applies the inverse of blueContract: red and green move away from
// blue so that the decoder's averaging restores them.
func contract(c mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{2*c[0] - c[2], 2*c[1] - c[2], c[2], c[3]}
}

func inLDRRange(c mgl32.Vec4, channels int) bool {
	for i := 0; i < channels; i++ {
		if c[i] < -0.5 || c[i] > 255.5 {
			return false
		}
	}
	return true
}

func latticeInterleaved(q QuantMethod, e0, e1 mgl32.Vec4, channels int, v []int) (h0, h1 int) {
	for i := 0; i < channels; i++ {
		v[2*i] = latticeValue(q, e0[i])
		v[2*i+1] = latticeValue(q, e1[i])
		if i < 3 {
			h0 += v[2*i]
			h1 += v[2*i+1]
		}
	}
	return h0, h1
}

// packInterleavedPlain stores the endpoints as they are. The decoder keeps
// them in place only while the quantized low endpoint's channel sum does not
// exceed the high endpoint's, so the pair is pushed apart until it holds.
func packInterleavedPlain(c0, c1 mgl32.Vec4, q QuantMethod, channels int, v []int) bool {
	nudge := mgl32.Vec4{0.5, 0.5, 0.5, 0}
	for i := 0; i < nudgeIterations; i++ {
		h0, h1 := latticeInterleaved(q, c0, c1, channels, v)
		if h0 <= h1 {
			return true
		}
		c0 = c0.Sub(nudge)
		c1 = c1.Add(nudge)
	}
	return false
}

// packInterleavedContracted stores the blue-contracted endpoints in swapped
// order, which the decoder signals by a larger first channel sum.
func packInterleavedContracted(c0, c1 mgl32.Vec4, q QuantMethod, channels int, v []int) bool {
	nudge := mgl32.Vec4{0.5, 0.5, 0.5, 0}
	for i := 0; i < nudgeIterations; i++ {
		s0, s1 := contract(c1), contract(c0)
		if !inLDRRange(s0, 3) || !inLDRRange(s1, 3) {
			return false
		}
		h0, h1 := latticeInterleaved(q, s0, s1, channels, v)
		if h0 > h1 {
			return true
		}
		c0 = c0.Sub(nudge)
		c1 = c1.Add(nudge)
	}
	return false
}

// packInterleaved tries the plain and blue-contracted layouts of the RGB and
// RGBA formats and keeps the one that decodes closest to the input. When
// neither ordering can be met both endpoints collapse to their midpoint,
// which every ordering accepts.
func packInterleaved(f EndpointFormat, c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	channels := 3
	if f == FormatRGBA {
		channels = 4
	}
	n := 2 * channels

	var plain, blue [8]int
	best := -1
	var bestErr float32
	var candidate [8]uint8
	consider := func(v []int) {
		storeISE(q, v[:n], candidate[:n])
		e := packedError(f, candidate[:n], q, c0, c1)
		if best < 0 || e < bestErr {
			best, bestErr = 1, e
			copy(out[:n], candidate[:n])
		}
	}
	if packInterleavedPlain(c0, c1, q, channels, plain[:]) {
		consider(plain[:])
	}
	if packInterleavedContracted(c0, c1, q, channels, blue[:]) {
		consider(blue[:])
	}
	if best >= 0 {
		return true
	}

	mid := c0.Add(c1).Mul(0.5)
	lo, hi := mid, mid
	lo[3], hi[3] = c0[3], c1[3]
	latticeInterleaved(q, lo, hi, channels, plain[:])
	storeISE(q, plain[:n], out)
	return true
}

func rgbPack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	return packInterleaved(FormatRGB, c0, c1, q, out)
}

func rgbaPack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	return packInterleaved(FormatRGBA, c0, c1, q, out)
}

// packDelta stores base and target-base per channel. wantNegative selects the
// blue-contracted layout, flagged to the decoder by a negative RGB delta sum.
func packDelta(base, target mgl32.Vec4, q QuantMethod, channels int, wantNegative bool, v []int) bool {
	sum := 0
	for i := 0; i < channels; i++ {
		vb, vd, db, dt, ok := packSignedDelta(q, roundToInt(base[i]), roundToInt(target[i]))
		if !ok || dt < 0 || dt > 255 {
			return false
		}
		v[2*i], v[2*i+1] = vb, vd
		if i < 3 {
			sum += dt - db
		}
	}
	return (sum < 0) == wantNegative
}

func packDeltaFormat(f EndpointFormat, c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	channels := 3
	if f == FormatRGBADelta {
		channels = 4
	}
	n := 2 * channels

	var v [8]int
	var candidate [8]uint8
	best := false
	var bestErr float32
	try := func(base, target mgl32.Vec4, negative bool) {
		if !packDelta(base, target, q, channels, negative, v[:]) {
			return
		}
		storeISE(q, v[:n], candidate[:n])
		if e := packedError(f, candidate[:n], q, c0, c1); !best || e < bestErr {
			best, bestErr = true, e
			copy(out[:n], candidate[:n])
		}
	}
	try(c0, c1, false)
	if s1, s0 := contract(c1), contract(c0); inLDRRange(s1, 3) && inLDRRange(s0, 3) {
		try(s1, s0, true)
	}
	return best
}

func rgbDeltaPack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	return packDeltaFormat(FormatRGBDelta, c0, c1, q, out)
}

func rgbaDeltaPack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	return packDeltaFormat(FormatRGBADelta, c0, c1, q, out)
}

func hdrLuminanceLargeRangePack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	l0, l1 := orderedLuminance(c0, c1)
	v := encodeHDRLuminanceLarge(l0, l1, q)
	storeLattice(q, v[:], out)
	return true
}

func hdrLuminanceSmallRangePack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	l0, l1 := orderedLuminance(c0, c1)
	v, ok := encodeHDRLuminanceSmall(l0, l1, q)
	if !ok {
		return false
	}
	storeLattice(q, v[:], out)
	return true
}

// hdrRGBOPack keeps the high endpoint and spends the scale on the mean
// distance to the low one.
func hdrRGBOPack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	var s float32
	for i := 0; i < 3; i++ {
		s += c1[i] - c0[i]
	}
	v := encodeHDRRGBScale(c1, max(s*(1.0/3.0), 0), q)
	storeLattice(q, v[:], out)
	return true
}

func hdrRGBPack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	v := encodeHDRRGB(c0, c1, q)
	storeLattice(q, v[:], out)
	return true
}

func hdrRGBLDRAlphaPack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	v := encodeHDRRGB(c0, c1, q)
	storeLattice(q, v[:], out[:6])
	storeISE(q, []int{latticeValue(q, c0[3]), latticeValue(q, c1[3])}, out[6:8])
	return true
}

func hdrRGBAPack(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool {
	v := encodeHDRRGB(c0, c1, q)
	a := encodeHDRAlpha(c0[3], c1[3], q)
	storeLattice(q, v[:], out[:6])
	storeLattice(q, a[:], out[6:8])
	return true
}

// packedError decodes ISE values of format f and returns the squared
// distance to the intended endpoints in the endpoint domain. Channels the
// format fills with the HDR default alpha are not compared.
func packedError(f EndpointFormat, ise []uint8, q QuantMethod, c0, c1 mgl32.Vec4) float32 {
	c := &endpointCodecs[f]
	var vals [8]uint8
	for i, v := range ise {
		vals[i] = uint8(unquantColor(q, int(v)))
	}
	e0, e1 := c.unpack(vals[:len(ise)])
	channels := 4
	if c.defaultAlpha && c.hdrRGB {
		channels = 3
	}
	return pairError(e0, e1, c0, c1, channels)
}

// formatCandidates lists, per profile family and class, the formats the
// encoder considers. The first entry of each list always packs.
var (
	ldrFormatCandidates = [4][]EndpointFormat{
		{FormatLuminance, FormatLuminanceDelta},
		{FormatLuminanceAlpha, FormatRGBScale, FormatLuminanceAlphaDelta},
		{FormatRGB, FormatRGBDelta, FormatRGBScaleAlpha},
		{FormatRGBA, FormatRGBADelta},
	}
	hdrFormatCandidates = [4][]EndpointFormat{
		{FormatHDRLuminanceLargeRange, FormatHDRLuminanceSmallRange},
		{FormatHDRRGBScale},
		{FormatHDRRGB},
		{FormatHDRRGBA},
	}
	hdrLDRAlphaFormatCandidates = [4][]EndpointFormat{
		{FormatHDRLuminanceLargeRange, FormatHDRLuminanceSmallRange},
		{FormatHDRRGBScale},
		{FormatHDRRGB},
		{FormatHDRRGBLDRAlpha},
	}
)

func formatCandidates(profile Profile, class int) []EndpointFormat {
	switch profile {
	case ProfileHDR:
		return hdrFormatCandidates[class]
	case ProfileHDRRGBLDRAlpha:
		return hdrLDRAlphaFormatCandidates[class]
	default:
		return ldrFormatCandidates[class]
	}
}

// ldrEndpointValue maps an encoder-space channel (0..65535) to 0..255.
func ldrEndpointValue(profile Profile, v float32) float32 {
	if profile == ProfileLDRSRGB {
		return clampF32((v-128)*(1.0/256.0), 0, 255)
	}
	return clampF32(v*(1.0/257.0), 0, 255)
}

// toEndpointDomain converts an encoder-space color for packing as format f.
func toEndpointDomain(profile Profile, f EndpointFormat, c mgl32.Vec4) mgl32.Vec4 {
	codec := &endpointCodecs[f]
	out := c
	for i := 0; i < 4; i++ {
		hdr := codec.hdrRGB
		if i == 3 {
			hdr = codec.hdrAlpha
		}
		if !hdr {
			out[i] = ldrEndpointValue(profile, c[i])
		}
	}
	return out
}

// packFormat packs an encoder-space endpoint pair as format f.
func packFormat(profile Profile, f EndpointFormat, c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) (float32, bool) {
	e0 := toEndpointDomain(profile, f, c0)
	e1 := toEndpointDomain(profile, f, c1)
	codec := &endpointCodecs[f]
	if !codec.pack(e0, e1, q, out[:codec.valueCount]) {
		return 0, false
	}
	return packedError(f, out[:codec.valueCount], q, e0, e1), true
}

// packColorEndpoints packs an encoder-space endpoint pair with the format of
// the given class that decodes closest to it, writing ISE values to out.
func packColorEndpoints(profile Profile, class int, c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) EndpointFormat {
	var buf [blockMaxColorValues]uint8
	best := EndpointFormat(endpointFormatCount)
	var bestErr float32
	for _, f := range formatCandidates(profile, class) {
		err, ok := packFormat(profile, f, c0, c1, q, buf[:])
		if !ok {
			continue
		}
		if best == endpointFormatCount || err < bestErr {
			best, bestErr = f, err
			copy(out[:f.ValueCount()], buf[:f.ValueCount()])
		}
	}
	return best
}
