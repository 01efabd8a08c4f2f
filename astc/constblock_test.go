package astc_test

import (
	"testing"

	"github.com/arm-software/astc-codec/astc"
)

func TestEncodeDecodeConstBlockRGBA8(t *testing.T) {
	const (
		r = 10
		g = 20
		b = 30
		a = 40
	)

	blk := astc.EncodeConstBlockRGBA8(r, g, b, a)

	gotR, gotG, gotB, gotA, err := astc.DecodeConstBlockRGBA8(blk[:])
	if err != nil {
		t.Fatalf("DecodeConstBlockRGBA8: %v", err)
	}

	if gotR != r || gotG != g || gotB != b || gotA != a {
		t.Fatalf("decoded mismatch: got (%d,%d,%d,%d) want (%d,%d,%d,%d)", gotR, gotG, gotB, gotA, r, g, b, a)
	}
}

func TestConstBlockF16(t *testing.T) {
	// 0.5, 1.0, 2.0, 1.0
	blk := astc.EncodeConstBlockF16(0x3800, 0x3C00, 0x4000, 0x3C00)

	info := astc.DecodeSymbolic(astc.Footprint{X: 4, Y: 4, Z: 1}, blk[:])
	if info.Kind != astc.BlockVoidExtentHDR {
		t.Fatalf("kind: got %v want %v", info.Kind, astc.BlockVoidExtentHDR)
	}

	out := make([]uint16, 16*4)
	if err := astc.DecodeBlockF16(astc.ProfileHDR, astc.Footprint{X: 4, Y: 4, Z: 1}, blk[:], out); err != nil {
		t.Fatalf("DecodeBlockF16: %v", err)
	}
	want := [4]uint16{0x3800, 0x3C00, 0x4000, 0x3C00}
	for i := 0; i < 16; i++ {
		if got := [4]uint16(out[i*4 : i*4+4]); got != want {
			t.Fatalf("texel %d: got %04x want %04x", i, got, want)
		}
	}

	r, g, b, a, err := astc.DecodeConstBlockRGBA8(blk[:])
	if err != nil {
		t.Fatalf("DecodeConstBlockRGBA8: %v", err)
	}
	if r != 128 || g != 255 || b != 255 || a != 255 {
		t.Fatalf("clamped RGBA8: got (%d,%d,%d,%d) want (128,255,255,255)", r, g, b, a)
	}
}

func TestDecodeConstBlockRejectsNormalBlock(t *testing.T) {
	blk := make([]byte, astc.BlockBytes)
	if _, _, _, _, err := astc.DecodeConstBlockRGBA8(blk); astc.ErrorCodeOf(err) != astc.ErrBadData {
		t.Fatalf("DecodeConstBlockRGBA8(zero block): got %v want %v", err, astc.ErrBadData)
	}
}
