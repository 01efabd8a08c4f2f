package astc_test

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/arm-software/astc-codec/astc"
)

// testImage returns a smooth RGBA8 image. RGB follow one curved ramp, so
// every block's colors lie close to a line.
func testImage(w, h int) []byte {
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx, fy := float64(x)/float64(w), float64(y)/float64(h)
			t := 0.6*fx + 0.3*fy + 0.1*math.Sin(3*fx+2*fy)
			off := (y*w + x) * 4
			pix[off+0] = uint8(30 + 190*t)
			pix[off+1] = uint8(220 - 170*t)
			pix[off+2] = uint8(60 + 120*t)
			pix[off+3] = uint8(255 - 30*fy)
		}
	}
	return pix
}

func psnr(a, b []byte) float64 {
	if len(a) != len(b) {
		panic("psnr: length mismatch")
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	if sum == 0 {
		return math.Inf(1)
	}
	mse := sum / float64(len(a))
	return 10 * math.Log10(255*255/mse)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	const w, h = 37, 29

	cases := []struct {
		block string
		min   float64
		long  bool
	}{
		{"4x4", 38, false},
		{"5x5", 36, false},
		{"6x6", 34, false},
		{"8x8", 31, true},
		{"10x10", 29, true},
		{"12x12", 27, true},
	}
	src := testImage(w, h)
	for _, c := range cases {
		t.Run(c.block, func(t *testing.T) {
			if c.long && testing.Short() {
				t.Skip("large footprint")
			}
			fp, err := astc.ParseFootprint(c.block)
			if err != nil {
				t.Fatalf("ParseFootprint: %v", err)
			}
			data, err := astc.EncodeRGBA8(src, w, h, fp)
			if err != nil {
				t.Fatalf("EncodeRGBA8: %v", err)
			}

			hdr, blocks, err := astc.ParseFile(data)
			if err != nil {
				t.Fatalf("ParseFile: %v", err)
			}
			_, _, _, total, _ := hdr.BlockCount()
			if len(blocks) != total*astc.BlockBytes {
				t.Fatalf("block payload: got %d bytes want %d", len(blocks), total*astc.BlockBytes)
			}

			dst, w2, h2, err := astc.DecodeRGBA8(data)
			if err != nil {
				t.Fatalf("DecodeRGBA8: %v", err)
			}
			if w2 != w || h2 != h {
				t.Fatalf("dimensions: got %dx%d want %dx%d", w2, h2, w, h)
			}
			if got := psnr(src, dst); got < c.min {
				t.Fatalf("%s PSNR: got %.2f dB want >= %.0f", c.block, got, c.min)
			}
		})
	}
}

func TestEncodeSRGBRoundTrip(t *testing.T) {
	const w, h = 16, 16
	src := testImage(w, h)
	params, err := astc.DefaultCompressionParams(astc.ProfileLDRSRGB, astc.EncodeMedium.Value(), astc.Footprint{X: 4, Y: 4, Z: 1})
	if err != nil {
		t.Fatalf("DefaultCompressionParams: %v", err)
	}
	data, err := astc.EncodeImage(context.Background(), astc.NewTexelView8(src, w, h, 1), &params)
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}
	dst, _, _, err := astc.DecodeRGBA8WithProfile(data, astc.ProfileLDRSRGB)
	if err != nil {
		t.Fatalf("DecodeRGBA8WithProfile: %v", err)
	}
	if got := psnr(src, dst); got < 34 {
		t.Fatalf("sRGB PSNR: got %.2f dB want >= 34", got)
	}
}

func TestEncodeImageRowStride(t *testing.T) {
	const w, h, pad = 12, 10, 7
	tight := testImage(w, h)
	padded := make([]byte, h*(w*4+pad))
	for y := 0; y < h; y++ {
		copy(padded[y*(w*4+pad):], tight[y*w*4:(y+1)*w*4])
	}

	params, err := astc.DefaultCompressionParams(astc.ProfileLDR, astc.EncodeFast.Value(), astc.Footprint{X: 5, Y: 4, Z: 1})
	if err != nil {
		t.Fatalf("DefaultCompressionParams: %v", err)
	}
	a, err := astc.EncodeImage(context.Background(), astc.NewTexelView8(tight, w, h, 1), &params)
	if err != nil {
		t.Fatalf("EncodeImage(tight): %v", err)
	}
	view := astc.TexelView8{Pix: padded, Width: w, Height: h, Depth: 1, RowStride: w*4 + pad}
	b, err := astc.EncodeImage(context.Background(), view, &params)
	if err != nil {
		t.Fatalf("EncodeImage(strided): %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("strided view encodes differently from the packed image")
	}
}

func TestEncodeImageCancelled(t *testing.T) {
	const w, h = 64, 64
	params, err := astc.DefaultCompressionParams(astc.ProfileLDR, astc.EncodeFastest.Value(), astc.Footprint{X: 4, Y: 4, Z: 1})
	if err != nil {
		t.Fatalf("DefaultCompressionParams: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = astc.EncodeImage(ctx, astc.NewTexelView8(testImage(w, h), w, h, 1), &params)
	if errors.Cause(err) != context.Canceled {
		t.Fatalf("EncodeImage(cancelled): got %v want %v", err, context.Canceled)
	}
}

func TestEncodeImageRejects(t *testing.T) {
	params, err := astc.DefaultCompressionParams(astc.ProfileLDR, 50, astc.Footprint{X: 4, Y: 4, Z: 1})
	if err != nil {
		t.Fatalf("DefaultCompressionParams: %v", err)
	}
	ctx := context.Background()

	if _, err := astc.EncodeImage(ctx, astc.NewTexelView8(make([]byte, 10), 4, 4, 1), &params); astc.ErrorCodeOf(err) != astc.ErrBadParam {
		t.Fatalf("short buffer: got %v want %v", err, astc.ErrBadParam)
	}
	if _, err := astc.EncodeImage(ctx, astc.NewTexelView8(nil, 0, 4, 1), &params); astc.ErrorCodeOf(err) != astc.ErrBadParam {
		t.Fatalf("zero width: got %v want %v", err, astc.ErrBadParam)
	}
	if _, err := astc.EncodeImage(ctx, astc.NewTexelView8(make([]byte, 64), 4, 4, 1), nil); astc.ErrorCodeOf(err) != astc.ErrBadParam {
		t.Fatalf("nil params: got %v want %v", err, astc.ErrBadParam)
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	data, err := astc.EncodeRGBA8(testImage(8, 8), 8, 8, astc.Footprint{X: 4, Y: 4, Z: 1})
	if err != nil {
		t.Fatalf("EncodeRGBA8: %v", err)
	}
	if _, _, _, err := astc.DecodeRGBA8(data[:len(data)-1]); astc.ErrorCodeOf(err) != astc.ErrBadData {
		t.Fatalf("truncated: got %v want %v", err, astc.ErrBadData)
	}
	if _, _, _, _, err := astc.DecodeF16WithProfile(data, astc.Profile(7)); astc.ErrorCodeOf(err) != astc.ErrBadProfile {
		t.Fatalf("bad profile: got %v want %v", err, astc.ErrBadProfile)
	}
}

func TestDecodeF16MatchesRGBA8(t *testing.T) {
	const w, h = 9, 7
	data, err := astc.EncodeRGBA8(testImage(w, h), w, h, astc.Footprint{X: 4, Y: 4, Z: 1})
	if err != nil {
		t.Fatalf("EncodeRGBA8: %v", err)
	}
	pix8, _, _, err := astc.DecodeRGBA8(data)
	if err != nil {
		t.Fatalf("DecodeRGBA8: %v", err)
	}
	pix32, _, _, _, err := astc.DecodeRGBAF32WithProfile(data, astc.ProfileLDR)
	if err != nil {
		t.Fatalf("DecodeRGBAF32WithProfile: %v", err)
	}
	for i := range pix8 {
		// The 8-bit path keeps the top byte of the UNORM16 value; FP16 keeps
		// about 11 bits.
		if d := float64(pix32[i])*255 - float64(pix8[i]); d < -1.25 || d > 1.25 {
			t.Fatalf("value %d: f32 %v (x255 = %.3f) vs u8 %d", i, pix32[i], float64(pix32[i])*255, pix8[i])
		}
	}
}
