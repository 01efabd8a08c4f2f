package astc_test

import (
	"context"
	"testing"

	"github.com/arm-software/astc-codec/astc"
)

// planarVolume fills an RGBA8 volume with independent ramps per channel, so
// no block is constant and no block is exactly a line in color space.
func planarVolume(w, h, d int) []byte {
	pix := make([]byte, w*h*d*4)
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				off := ((z*h+y)*w + x) * 4
				pix[off+0] = uint8(x * 10)
				pix[off+1] = uint8(y * 9)
				pix[off+2] = uint8((x + y + z) * 4)
				pix[off+3] = uint8(255 - z*12 - x*2)
			}
		}
	}
	return pix
}

// blockMeanError is the squared error of replacing every block with its
// rounded mean color, which is what a constant-color block would decode to.
func blockMeanError(pix []byte, w, h, d int, fp astc.Footprint) float64 {
	var sse float64
	for z0 := 0; z0 < d; z0 += fp.Z {
		for y0 := 0; y0 < h; y0 += fp.Y {
			for x0 := 0; x0 < w; x0 += fp.X {
				var sum [4]int
				var offs []int
				for z := z0; z < min(z0+fp.Z, d); z++ {
					for y := y0; y < min(y0+fp.Y, h); y++ {
						for x := x0; x < min(x0+fp.X, w); x++ {
							off := ((z*h+y)*w + x) * 4
							offs = append(offs, off)
							for c := range sum {
								sum[c] += int(pix[off+c])
							}
						}
					}
				}
				for _, off := range offs {
					for c := range sum {
						mean := (sum[c] + len(offs)/2) / len(offs)
						e := float64(int(pix[off+c]) - mean)
						sse += e * e
					}
				}
			}
		}
	}
	return sse
}

func squaredError(a, b []byte) float64 {
	var sse float64
	for i := range a {
		e := float64(a[i]) - float64(b[i])
		sse += e * e
	}
	return sse
}

func TestEncodeQualityBeatsConstantBlocks(t *testing.T) {
	cases := []struct {
		fp      astc.Footprint
		w, h, d int
	}{
		{astc.Footprint{X: 4, Y: 4, Z: 1}, 24, 24, 1},
		{astc.Footprint{X: 6, Y: 6, Z: 1}, 24, 24, 1},
		{astc.Footprint{X: 12, Y: 12, Z: 1}, 24, 24, 1},
		{astc.Footprint{X: 4, Y: 4, Z: 4}, 8, 8, 8},
	}
	presets := []astc.EncodeQuality{astc.EncodeFastest, astc.EncodeMedium, astc.EncodeThorough}

	for _, tc := range cases {
		src := planarVolume(tc.w, tc.h, tc.d)
		baseline := blockMeanError(src, tc.w, tc.h, tc.d, tc.fp)

		errs := make(map[astc.EncodeQuality]float64)
		for _, q := range presets {
			params, err := astc.DefaultCompressionParams(astc.ProfileLDR, q.Value(), tc.fp)
			if err != nil {
				t.Fatalf("%v %v: DefaultCompressionParams: %v", tc.fp, q, err)
			}
			data, err := astc.EncodeImage(context.Background(), astc.NewTexelView8(src, tc.w, tc.h, tc.d), &params)
			if err != nil {
				t.Fatalf("%v %v: EncodeImage: %v", tc.fp, q, err)
			}
			got, w, h, d, err := astc.DecodeRGBA8VolumeWithProfile(data, astc.ProfileLDR)
			if err != nil {
				t.Fatalf("%v %v: decode: %v", tc.fp, q, err)
			}
			if w != tc.w || h != tc.h || d != tc.d {
				t.Fatalf("%v %v: size: got %dx%dx%d want %dx%dx%d", tc.fp, q, w, h, d, tc.w, tc.h, tc.d)
			}
			errs[q] = squaredError(src, got)
			if errs[q] >= baseline {
				t.Fatalf("%v %v: error %v is not below the constant-block error %v", tc.fp, q, errs[q], baseline)
			}
		}

		// A slower preset searches a superset of the fast one's candidates;
		// allow a little slack for heuristic cutoffs.
		if fast, slow := errs[astc.EncodeFastest], errs[astc.EncodeThorough]; slow > fast*1.1+float64(tc.w*tc.h*tc.d) {
			t.Fatalf("%v: thorough error %v is well above fastest error %v", tc.fp, slow, fast)
		}
	}
}

// Fewer texels per block means more bits per texel.
func TestEncodeQualityFollowsBitRate(t *testing.T) {
	const w, h = 24, 24
	src := planarVolume(w, h, 1)

	var prev float64
	for i, fp := range []astc.Footprint{{X: 4, Y: 4, Z: 1}, {X: 8, Y: 8, Z: 1}, {X: 12, Y: 12, Z: 1}} {
		params, err := astc.DefaultCompressionParams(astc.ProfileLDR, astc.EncodeThorough.Value(), fp)
		if err != nil {
			t.Fatalf("%v: DefaultCompressionParams: %v", fp, err)
		}
		data, err := astc.EncodeImage(context.Background(), astc.NewTexelView8(src, w, h, 1), &params)
		if err != nil {
			t.Fatalf("%v: EncodeImage: %v", fp, err)
		}
		got, _, _, err := astc.DecodeRGBA8(data)
		if err != nil {
			t.Fatalf("%v: DecodeRGBA8: %v", fp, err)
		}
		sse := squaredError(src, got)
		if i > 0 && sse < prev {
			t.Fatalf("%v: error %v is below the denser footprint's %v", fp, sse, prev)
		}
		prev = sse
	}
}
