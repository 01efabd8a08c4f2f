package astc

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestHDRFieldWidths(t *testing.T) {
	// A, C, B0, B1, D0, D1.
	wantRGB := [8][6]uint{
		{9, 6, 7, 7, 7, 7},
		{9, 6, 8, 8, 6, 6},
		{10, 7, 6, 6, 7, 7},
		{10, 7, 7, 7, 6, 6},
		{11, 6, 8, 8, 5, 5},
		{11, 8, 6, 6, 6, 6},
		{12, 7, 7, 7, 5, 5},
		{12, 7, 6, 6, 6, 6},
	}
	if hdrRGBWidths != wantRGB {
		t.Fatalf("HDR RGB widths: got %v want %v", hdrRGBWidths, wantRGB)
	}
	// Red, green, blue, scale.
	wantRGBO := [6][4]uint{
		{11, 5, 5, 7},
		{11, 6, 6, 5},
		{10, 5, 5, 8},
		{9, 6, 6, 7},
		{8, 7, 7, 6},
		{7, 7, 7, 7},
	}
	if hdrRGBOWidths != wantRGBO {
		t.Fatalf("HDR RGB scale widths: got %v want %v", hdrRGBOWidths, wantRGBO)
	}
}

// Scattering fields and gathering them back must be lossless for every
// submode, or the packers would write bits the unpackers never read.
func TestHDRFieldScatterGather(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var buf [6]uint8
	for mode := 0; mode < 8; mode++ {
		w := hdrRGBWidths[mode]
		for major := 0; major < 3; major++ {
			for n := 0; n < 50; n++ {
				var f [6]int
				for i := range f {
					f[i] = rng.Intn(1 << w[i])
				}
				for _, i := range []int{rgbD0, rgbD1} {
					f[i] -= 1 << (w[i] - 1)
				}
				gm, gmaj, got := hdrRGBFields(asValues(hdrRGBValues(mode, major, &f), buf[:]))
				if gm != mode || gmaj != major || got != f {
					t.Fatalf("RGB mode %d major %d: fields %v came back as mode %d major %d %v", mode, major, f, gm, gmaj, got)
				}
			}
		}
	}

	for mode := 0; mode < 6; mode++ {
		w := hdrRGBOWidths[mode]
		majors := 3
		if mode == 5 {
			majors = 1
		}
		for major := 0; major < majors; major++ {
			for n := 0; n < 50; n++ {
				var f [4]int
				for i := range f {
					f[i] = rng.Intn(1 << w[i])
				}
				gm, gmaj, got := hdrRGBOFields(asValues(hdrRGBOValues(mode, major, &f), buf[:4]))
				if gm != mode || gmaj != major || got != f {
					t.Fatalf("RGBO mode %d major %d: fields %v came back as mode %d major %d %v", mode, major, f, gm, gmaj, got)
				}
			}
		}
	}
}

func TestSnapColorMasked(t *testing.T) {
	// QUANT_6 endpoint values are 0, 51, 102, 153, 204 and 255.
	tests := []struct {
		x, mask int
		want    int
		ok      bool
	}{
		{150, 0x80, 153, true},
		{127, 0x80, 102, true},
		{64, 0xC0, 102, true}, // 51 is nearer but has the wrong prefix
		{190, 0xE0, 0, false},
		{10, 0, 0, true},
	}
	for _, tt := range tests {
		got, ok := snapColorMasked(Quant6, tt.x, tt.mask)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("snapColorMasked(QUANT_6, %d, %#x): got %d, %v want %d, %v", tt.x, tt.mask, got, ok, tt.want, tt.ok)
		}
	}
}

func maxChannelError(e0, e1 int4, c0, c1 mgl32.Vec4, channels int) float32 {
	var m float32
	for i := 0; i < channels; i++ {
		m = max(m, absF32(float32(e0[i])-c0[i]), absF32(float32(e1[i])-c1[i]))
	}
	return m
}

func onLattice(t *testing.T, q QuantMethod, vals []uint8) {
	t.Helper()
	for i, v := range vals {
		if snapColor(q, int(v)) != int(v) {
			t.Fatalf("%v: value %d = %d is not an endpoint value", q, i, v)
		}
	}
}

func TestEncodeHDRRGB(t *testing.T) {
	c0 := mgl32.Vec4{30000, 28000, 26000, 0}
	c1 := mgl32.Vec4{34000, 33000, 31000, 0}

	v := encodeHDRRGB(c0, c1, Quant256)
	e0, e1 := hdrRGBUnpack(v[:])
	if _, major, _ := hdrRGBFields(v[:]); major == hdrRGBDirect {
		t.Fatalf("close endpoints used the direct layout: %v", v)
	}
	if got := maxChannelError(e0, e1, c0, c1, 3); got > 64 {
		t.Fatalf("QUANT_256 error: got %v want <= 64 (decoded %v %v)", got, e0, e1)
	}

	// Coarse levels still give lattice values and never lose to the direct
	// layout.
	for _, q := range []QuantMethod{Quant6, Quant12, Quant40} {
		v := encodeHDRRGB(c0, c1, q)
		onLattice(t, q, v[:])
		e0, e1 := hdrRGBUnpack(v[:])
		d := packHDRRGBDirect(c0, c1, q)
		d0, d1 := hdrRGBUnpack(d[:])
		if got, direct := pairError(e0, e1, c0, c1, 3), pairError(d0, d1, c0, c1, 3); got > direct {
			t.Fatalf("%v: error %v exceeds the direct layout's %v", q, got, direct)
		}
	}
}

func TestEncodeHDRRGBScale(t *testing.T) {
	hi := mgl32.Vec4{40000, 38000, 36000, 0}
	const scale = 2000
	lo := hi.Sub(mgl32.Vec4{scale, scale, scale, 0})

	v := encodeHDRRGBScale(hi, scale, Quant256)
	e0, e1 := hdrRGBOUnpack(v[:])
	if got := maxChannelError(e0, e1, lo, hi, 3); got > 256 {
		t.Fatalf("QUANT_256 error: got %v want <= 256 (decoded %v %v)", got, e0, e1)
	}

	for _, q := range []QuantMethod{Quant6, Quant20} {
		v := encodeHDRRGBScale(hi, scale, q)
		onLattice(t, q, v[:])
	}
}

func TestEncodeHDRAlpha(t *testing.T) {
	const a0, a1 = 30000, 31000
	v := encodeHDRAlpha(a0, a1, Quant256)
	d0, d1 := hdrAlphaUnpack(int(v[0]), int(v[1]))
	if absInt(d0-a0) > 128 || absInt(d1-a1) > 128 {
		t.Fatalf("alpha %d, %d decoded as %d, %d", a0, a1, d0, d1)
	}
	v = encodeHDRAlpha(a0, a1, Quant6)
	onLattice(t, Quant6, v[:])
}

func TestEncodeHDRLuminance(t *testing.T) {
	c0 := mgl32.Vec4{20000, 20000, 20000, 0}
	c1 := mgl32.Vec4{20300, 20300, 20300, 0}
	v, ok := encodeHDRLuminanceSmall(20000, 20300, Quant256)
	if !ok {
		t.Fatalf("small range rejected close luminances")
	}
	e0, e1 := hdrLuminanceSmallRangeUnpack(v[:])
	if got := maxChannelError(e0, e1, c0, c1, 3); got > 32 {
		t.Fatalf("small range error: got %v want <= 32 (decoded %v %v)", got, e0, e1)
	}
	if _, ok := encodeHDRLuminanceSmall(20000, 40000, Quant256); ok {
		t.Fatalf("small range accepted luminances 20000 apart")
	}

	c0 = mgl32.Vec4{1000, 1000, 1000, 0}
	c1 = mgl32.Vec4{60000, 60000, 60000, 0}
	v = encodeHDRLuminanceLarge(1000, 60000, Quant256)
	e0, e1 = hdrLuminanceLargeRangeUnpack(v[:])
	if got := maxChannelError(e0, e1, c0, c1, 3); got > 128 {
		t.Fatalf("large range error: got %v want <= 128 (decoded %v %v)", got, e0, e1)
	}
}
