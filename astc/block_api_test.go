package astc_test

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/arm-software/astc-codec/astc"
)

func TestDecodeVoidExtentBlock(t *testing.T) {
	fp := astc.Footprint{X: 4, Y: 4, Z: 1}
	block := astc.EncodeConstBlockRGBA8(128, 64, 200, 255)

	out := make([]byte, fp.TexelCount()*4)
	if err := astc.DecodeBlockRGBA8(astc.ProfileLDR, fp, block[:], out); err != nil {
		t.Fatalf("DecodeBlockRGBA8: %v", err)
	}
	for i := 0; i < len(out); i += 4 {
		if !bytes.Equal(out[i:i+4], []byte{128, 64, 200, 255}) {
			t.Fatalf("texel %d: got %v want [128 64 200 255]", i/4, out[i:i+4])
		}
	}

	info := astc.DecodeSymbolic(fp, block[:])
	if info.Kind != astc.BlockVoidExtentLDR {
		t.Fatalf("kind: got %v want %v", info.Kind, astc.BlockVoidExtentLDR)
	}
	if want := [4]uint16{128 * 257, 64 * 257, 200 * 257, 255 * 257}; info.ConstantColor != want {
		t.Fatalf("constant color: got %v want %v", info.ConstantColor, want)
	}
}

func TestSymbolicRoundTrip(t *testing.T) {
	for _, fp := range []astc.Footprint{{X: 4, Y: 4, Z: 1}, {X: 8, Y: 5, Z: 1}, {X: 4, Y: 4, Z: 4}} {
		w, h, d := 2*fp.X, 2*fp.Y, fp.Z
		pix := make([]byte, w*h*d*4)
		rng := rand.New(rand.NewSource(int64(fp.TexelCount())))
		for i := range pix {
			pix[i] = uint8(int(pix[max(i-4, 0)])/2 + rng.Intn(128))
		}

		params, err := astc.DefaultCompressionParams(astc.ProfileLDR, astc.EncodeFast.Value(), fp)
		if err != nil {
			t.Fatalf("DefaultCompressionParams: %v", err)
		}
		data, err := astc.EncodeImage(context.Background(), astc.NewTexelView8(pix, w, h, d), &params)
		if err != nil {
			t.Fatalf("EncodeImage: %v", err)
		}
		_, blocks, err := astc.ParseFile(data)
		if err != nil {
			t.Fatalf("ParseFile: %v", err)
		}

		for off := 0; off < len(blocks); off += astc.BlockBytes {
			raw := blocks[off : off+astc.BlockBytes]
			info := astc.DecodeSymbolic(fp, raw)
			if info.Kind == astc.BlockError {
				t.Fatalf("%v block %d: encoder wrote an error block % x", fp, off/astc.BlockBytes, raw)
			}
			again, err := astc.EncodeSymbolic(fp, &info)
			if err != nil {
				t.Fatalf("%v block %d: EncodeSymbolic: %v\n%s", fp, off/astc.BlockBytes, err, spew.Sdump(info))
			}
			if !bytes.Equal(again[:], raw) {
				t.Fatalf("%v block %d: got % x want % x\n%s", fp, off/astc.BlockBytes, again, raw, spew.Sdump(info))
			}
		}
	}
}

func TestEncodeSymbolicRejectsErrorBlock(t *testing.T) {
	info := astc.BlockInfo{Kind: astc.BlockError, Plane2Component: -1}
	if _, err := astc.EncodeSymbolic(astc.Footprint{X: 4, Y: 4, Z: 1}, &info); astc.ErrorCodeOf(err) != astc.ErrBadData {
		t.Fatalf("EncodeSymbolic(error block): got %v want %v", err, astc.ErrBadData)
	}
}

func TestReservedBlockDecodesBlack(t *testing.T) {
	fp := astc.Footprint{X: 6, Y: 6, Z: 1}
	// Mode bits 0..8 all zero are reserved.
	var block [astc.BlockBytes]byte
	if info := astc.DecodeSymbolic(fp, block[:]); info.Kind != astc.BlockError {
		t.Fatalf("kind: got %v want %v\n%s", info.Kind, astc.BlockError, spew.Sdump(info))
	}

	out := make([]byte, fp.TexelCount()*4)
	if err := astc.DecodeBlockRGBA8(astc.ProfileLDR, fp, block[:], out); err != nil {
		t.Fatalf("DecodeBlockRGBA8: %v", err)
	}
	for i := 0; i < len(out); i += 4 {
		if !bytes.Equal(out[i:i+4], []byte{0, 0, 0, 255}) {
			t.Fatalf("texel %d: got %v want opaque black", i/4, out[i:i+4])
		}
	}
}

func TestDecodeRandomBlocks(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	footprints := []astc.Footprint{{X: 4, Y: 4, Z: 1}, {X: 6, Y: 5, Z: 1}, {X: 12, Y: 12, Z: 1}, {X: 3, Y: 3, Z: 3}, {X: 6, Y: 6, Z: 6}}
	profiles := []astc.Profile{astc.ProfileLDR, astc.ProfileLDRSRGB, astc.ProfileHDRRGBLDRAlpha, astc.ProfileHDR}

	n := 4000
	if testing.Short() {
		n = 500
	}
	var block [astc.BlockBytes]byte
	for i := 0; i < n; i++ {
		rng.Read(block[:])
		fp := footprints[i%len(footprints)]
		profile := profiles[(i/len(footprints))%len(profiles)]

		f16 := make([]uint16, fp.TexelCount()*4)
		if err := astc.DecodeBlockF16(profile, fp, block[:], f16); err != nil {
			t.Fatalf("DecodeBlockF16(% x): %v", block, err)
		}
		if profile.IsHDR() {
			continue
		}
		rgba := make([]byte, fp.TexelCount()*4)
		if err := astc.DecodeBlockRGBA8(profile, fp, block[:], rgba); err != nil {
			t.Fatalf("DecodeBlockRGBA8(% x): %v", block, err)
		}
	}
}

func TestEncodeBlockRGBA8(t *testing.T) {
	fp := astc.Footprint{X: 5, Y: 5, Z: 1}
	params, err := astc.DefaultCompressionParams(astc.ProfileLDR, astc.EncodeThorough.Value(), fp)
	if err != nil {
		t.Fatalf("DefaultCompressionParams: %v", err)
	}

	texels := make([]byte, fp.TexelCount()*4)
	for i := 0; i < fp.TexelCount(); i++ {
		x, y := i%fp.X, i/fp.X
		copy(texels[i*4:], []byte{uint8(50 * x), uint8(50 * y), 90, 255})
	}
	block, err := astc.EncodeBlockRGBA8(&params, texels)
	if err != nil {
		t.Fatalf("EncodeBlockRGBA8: %v", err)
	}
	out := make([]byte, len(texels))
	if err := astc.DecodeBlockRGBA8(astc.ProfileLDR, fp, block[:], out); err != nil {
		t.Fatalf("DecodeBlockRGBA8: %v", err)
	}
	if got := psnr(texels, out); got < 32 {
		t.Fatalf("gradient block PSNR: got %.2f dB want >= 32\n%s", got, spew.Sdump(astc.DecodeSymbolic(fp, block[:])))
	}

	if _, err := astc.EncodeBlockRGBA8(&params, texels[:8]); astc.ErrorCodeOf(err) != astc.ErrBadData {
		t.Fatalf("short texels: got %v want %v", err, astc.ErrBadData)
	}
}
