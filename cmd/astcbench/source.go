package main

import (
	"context"
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"

	"github.com/pkg/errors"

	"github.com/arm-software/astc-codec/astc"
)

// source is a synthetic image the encode benchmark compresses.
type source interface {
	encode(ctx context.Context, p *astc.CompressionParams) ([]byte, error)
	// psnr decodes data and compares it with the source.
	psnr(data []byte, profile astc.Profile) (float64, error)
}

// ramp mixes smooth gradients with a hashed high-frequency term, so blocks
// range from nearly flat to noisy.
func ramp(x, y, z, c int) float64 {
	smooth := 0.5 + 0.4*math.Sin(float64(x)*0.05+float64(c))*math.Cos(float64(y+z)*0.07)
	h := uint32(x)*73856093 ^ uint32(y)*19349663 ^ uint32(z)*83492791 ^ uint32(c)*2654435761
	h ^= h >> 13
	h *= 0x5BD1E995
	noise := float64(h>>24)/255 - 0.5
	return min(max(smooth+0.08*noise, 0), 1)
}

type sourceU8 struct {
	pix     []byte
	w, h, d int
}

func newSourceU8(w, h, d int) *sourceU8 {
	s := &sourceU8{pix: make([]byte, w*h*d*4), w: w, h: h, d: d}
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				off := ((z*h+y)*w + x) * 4
				for c := 0; c < 4; c++ {
					s.pix[off+c] = uint8(ramp(x, y, z, c)*255 + 0.5)
				}
			}
		}
	}
	return s
}

func (s *sourceU8) encode(ctx context.Context, p *astc.CompressionParams) ([]byte, error) {
	return astc.EncodeImage(ctx, astc.NewTexelView8(s.pix, s.w, s.h, s.d), p)
}

func (s *sourceU8) psnr(data []byte, profile astc.Profile) (float64, error) {
	if profile.IsHDR() {
		pix, _, _, _, err := astc.DecodeRGBAF32WithProfile(data, profile)
		if err != nil {
			return 0, err
		}
		return psnr(len(pix), 1, func(i int) float64 {
			return float64(pix[i]) - float64(s.pix[i])/255
		}), nil
	}
	pix, _, _, _, err := astc.DecodeRGBA8VolumeWithProfile(data, profile)
	if err != nil {
		return 0, err
	}
	return psnr(len(pix), 255, func(i int) float64 {
		return float64(pix[i]) - float64(s.pix[i])
	}), nil
}

type sourceF32 struct {
	pix     []float32
	w, h, d int
	peak    float64
}

// newSourceF32 builds a float image; hdr stretches it over several stops
// above 1.0.
func newSourceF32(w, h, d int, hdr bool) *sourceF32 {
	s := &sourceF32{pix: make([]float32, w*h*d*4), w: w, h: h, d: d, peak: 1}
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				off := ((z*h+y)*w + x) * 4
				for c := 0; c < 4; c++ {
					v := ramp(x, y, z, c)
					if hdr && c < 3 {
						v = math.Exp2(8*v - 2)
					}
					s.pix[off+c] = float32(v)
					s.peak = max(s.peak, v)
				}
			}
		}
	}
	return s
}

func (s *sourceF32) encode(ctx context.Context, p *astc.CompressionParams) ([]byte, error) {
	return astc.EncodeRGBAF32(ctx, s.pix, s.w, s.h, s.d, p)
}

func (s *sourceF32) psnr(data []byte, profile astc.Profile) (float64, error) {
	pix, _, _, _, err := astc.DecodeRGBAF32WithProfile(data, profile)
	if err != nil {
		return 0, err
	}
	return psnr(len(pix), s.peak, func(i int) float64 {
		return float64(pix[i]) - float64(s.pix[i])
	}), nil
}

// psnr returns the peak signal to noise ratio of n differences.
func psnr(n int, peak float64, diff func(i int) float64) float64 {
	var sse float64
	for i := 0; i < n; i++ {
		d := diff(i)
		sse += d * d
	}
	if sse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(peak*peak*float64(n)/sse)
}

// decoderFor returns a decode step that folds its output into a checksum.
func decoderFor(format string, profile astc.Profile) (func(data []byte, sum hash.Hash64) error, error) {
	switch format {
	case "u8":
		return func(data []byte, sum hash.Hash64) error {
			pix, _, _, _, err := astc.DecodeRGBA8VolumeWithProfile(data, profile)
			if err == nil {
				sum.Write(pix)
			}
			return err
		}, nil
	case "f16":
		return func(data []byte, sum hash.Hash64) error {
			pix, _, _, _, err := astc.DecodeF16WithProfile(data, profile)
			if err != nil {
				return err
			}
			return binary.Write(sum, binary.LittleEndian, pix)
		}, nil
	case "f32":
		return func(data []byte, sum hash.Hash64) error {
			pix, _, _, _, err := astc.DecodeRGBAF32WithProfile(data, profile)
			if err != nil {
				return err
			}
			return binary.Write(sum, binary.LittleEndian, pix)
		}, nil
	}
	return nil, errors.Errorf("invalid -format %q (want u8|f16|f32)", format)
}

func newChecksum() hash.Hash64 { return fnv.New64a() }
