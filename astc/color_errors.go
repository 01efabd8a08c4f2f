package astc

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// colorErrors[p][class][q] estimates the error of storing partition p's
// endpoints with a format of the given integer-count class at level q.
type colorErrors [blockMaxPartitions][4][quantLevelCount]float32

// defaultAlphaValue is the encoder-space alpha a format without alpha
// decodes to.
func defaultAlphaValue(profile Profile) float32 {
	switch profile {
	case ProfileHDR:
		return 0x7800
	case ProfileLDRSRGB:
		return 0xFF<<8 | 0x80
	default:
		return 0xFFFF
	}
}

// restrictionErrors returns the error a partition suffers from dropping
// alpha, from forcing gray colors, and from forcing the colors onto a line
// through the origin (LDR) or parallel to the gray axis (HDR).
func restrictionErrors(profile Profile, blk *imageBlock, ew *errorWeightBlock, texels []uint8) (alphaDrop, luminance, scale float32) {
	mean := partitionMean(blk, ew, texels)
	a := defaultAlphaValue(profile)

	dir := mean.Vec3()
	if l := dir.Len(); l > 1e-3 {
		dir = dir.Mul(1 / l)
	} else {
		dir = mgl32.Vec3{0.57735, 0.57735, 0.57735}
	}

	for _, t := range texels {
		v, w := blk.texels[t], ew.weights[t]
		d := v[3] - a
		alphaDrop += w[3] * d * d

		l := (v[0] + v[1] + v[2]) * (1.0 / 3.0)
		for c := 0; c < 3; c++ {
			d := v[c] - l
			luminance += w[c] * d * d
		}

		if profile.IsHDR() {
			// Offset from the mean must be equal in R, G and B.
			dv := v.Sub(mean)
			m := (dv[0] + dv[1] + dv[2]) * (1.0 / 3.0)
			for c := 0; c < 3; c++ {
				d := dv[c] - m
				scale += w[c] * d * d
			}
		} else {
			rgb := v.Vec3()
			proj := dir.Mul(rgb.Dot(dir))
			for c := 0; c < 3; c++ {
				d := rgb[c] - proj[c]
				scale += w[c] * d * d
			}
		}
	}
	return alphaDrop, luminance, scale
}

// computeColorErrors fills ce for every partition of pt: the format
// restriction error of each class plus the noise of quantizing the
// endpoints at each level.
func computeColorErrors(profile Profile, blk *imageBlock, ew *errorWeightBlock, pt *PartitionTable, ce *colorErrors) {
	for p := 0; p < pt.PartitionCount; p++ {
		texels := pt.Texels[p]
		alphaDrop, lum, scale := restrictionErrors(profile, blk, ew, texels)

		var restriction [4]float32
		if profile.IsHDR() {
			restriction = [4]float32{lum + alphaDrop, scale + alphaDrop, alphaDrop, 0}
		} else {
			restriction = [4]float32{
				lum + alphaDrop,
				min(lum, scale+alphaDrop),
				min(alphaDrop, scale),
				0,
			}
		}

		var wsum float32
		for _, t := range texels {
			w := ew.weights[t]
			wsum += w[0] + w[1] + w[2] + w[3]
		}

		for q := QuantMethod(0); q < quantLevelCount; q++ {
			if q < Quant6 {
				for class := 0; class < 4; class++ {
					ce[p][class][q] = float32(math.Inf(1))
				}
				continue
			}
			step := 65535 / float32(q.Levels()-1)
			noise := step * step * (1.0 / 12.0) * (2.0 / 3.0) * wsum
			for class := 0; class < 4; class++ {
				ce[p][class][q] = restriction[class] + noise
			}
		}
	}
}
