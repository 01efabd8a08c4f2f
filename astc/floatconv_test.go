package astc

import (
	"math"
	"testing"
)

func TestFloat32ToHalf(t *testing.T) {
	tests := []struct {
		f    float32
		want uint16
	}{
		{0, 0},
		{float32(math.Copysign(0, -1)), 0x8000},
		{1, halfOne},
		{0.5, 0x3800},
		{-2, 0xC000},
		{65504, halfMaxFinite},
		{65520, halfInf}, // tie rounds to the even mantissa, which overflows
		{1e9, halfInf},
		{0x1p-14, 0x0400},
		{0x1p-24, 0x0001},
		{0x1p-26, 0},
		{1 + 0x1p-10, 0x3C01},
		{1 + 0x1p-11, 0x3C00},
		{1 + 3*0x1p-11, 0x3C02},
		{float32(math.Inf(-1)), 0xFC00},
	}
	for _, tt := range tests {
		if got := float32ToHalf(tt.f); got != tt.want {
			t.Fatalf("float32ToHalf(%g): got %#04x want %#04x", tt.f, got, tt.want)
		}
	}
	if got := float32ToHalf(float32(math.NaN())); got&0x7C00 != 0x7C00 || got&0x3FF == 0 {
		t.Fatalf("float32ToHalf(NaN): got %#04x", got)
	}
}

func TestHalfRoundTrip(t *testing.T) {
	for i := 0; i < 1<<16; i++ {
		h := uint16(i)
		if h&0x7C00 == 0x7C00 && h&0x3FF != 0 {
			if f := halfToFloat32(h); !math.IsNaN(float64(f)) {
				t.Fatalf("halfToFloat32(%#04x): got %g want NaN", h, f)
			}
			continue
		}
		if got := float32ToHalf(halfToFloat32(h)); got != h {
			t.Fatalf("round trip of %#04x: got %#04x", h, got)
		}
	}
}

func TestUnorm16Conversions(t *testing.T) {
	for _, tt := range []struct{ p, want uint16 }{
		{0, 0},
		{1, 0x0100},
		{0x8000, 0x3800},
		{0xFFFF, halfOne},
	} {
		if got := unorm16ToSF16(tt.p); got != tt.want {
			t.Fatalf("unorm16ToSF16(%#04x): got %#04x want %#04x", tt.p, got, tt.want)
		}
	}
	for p := 0; p < 0xFFFF; p += 97 {
		want := float64(p) / 65535
		got := float64(halfToFloat32(unorm16ToSF16(uint16(p))))
		if math.Abs(got-want) > want*0x1p-9+0x1p-16 {
			t.Fatalf("unorm16ToSF16(%d): got %g want %g", p, got, want)
		}
	}

	for v := 0; v < 256; v++ {
		if got := unorm16ToUnorm8(uint16(v * 257)); int(got) != v {
			t.Fatalf("unorm16ToUnorm8(%d): got %d want %d", v*257, got, v)
		}
	}
}

func TestLNSConversion(t *testing.T) {
	if got := lnsToSF16(0x7800); got != halfOne {
		t.Fatalf("lnsToSF16(0x7800): got %#04x want %#04x", got, halfOne)
	}
	if got := lnsToSF16(0xFFFF); got != halfMaxFinite {
		t.Fatalf("lnsToSF16(0xFFFF): got %#04x want %#04x", got, halfMaxFinite)
	}
	for _, v := range []float32{0, -1, float32(math.NaN()), 0x1p-27} {
		if got := hdrTexelToLNS(v); got != 0 {
			t.Fatalf("hdrTexelToLNS(%g): got %d want 0", v, got)
		}
	}
	if got := hdrTexelToLNS(70000); got != 0xFFFF {
		t.Fatalf("hdrTexelToLNS(70000): got %#04x want 0xffff", got)
	}
	if got := lnsToSF16(hdrTexelToLNS(1)); got != halfOne {
		t.Fatalf("LNS round trip of 1.0: got %#04x want %#04x", got, halfOne)
	}

	prev := uint16(0)
	for v := float32(0x1p-10); v < 60000; v *= 1.01 {
		lns := hdrTexelToLNS(v)
		if lns < prev {
			t.Fatalf("hdrTexelToLNS(%g) = %d is below the previous %d", v, lns, prev)
		}
		prev = lns
		got := halfToFloat32(lnsToSF16(lns))
		if d := math.Abs(float64(got - v)); d > float64(v)*0x1p-8 {
			t.Fatalf("LNS round trip of %g: got %g", v, got)
		}
	}
}
