package astc

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// errorWeightBlock holds the importance of each texel channel for the error
// metric, plus per texel the mean weight of every channel subset.
type errorWeightBlock struct {
	weights [blockMaxTexels]mgl32.Vec4
	// subsetMean[t][mask] is the mean of weights[t] over the channels set in mask.
	subsetMean [blockMaxTexels][16]float32
	// total sums every channel weight of every texel.
	total float32
}

// channelMask returns the mask with every channel but c set, or all four
// channels for c < 0.
func channelMask(c int) int {
	if c < 0 {
		return 0xF
	}
	return 0xF &^ (1 << c)
}

func (ew *errorWeightBlock) meanTexelWeight(t, mask int) float32 { return ew.subsetMean[t][mask] }

// computeErrorWeights derives the error weights of blk from params.
func computeErrorWeights(params *CompressionParams, fp Footprint, blk *imageBlock, ew *errorWeightBlock) {
	cw := mgl32.Vec4(params.ChannelWeights)

	var local [blockMaxTexels]mgl32.Vec4
	useLocal := params.MeanStdevRadius > 0 && (params.MeanWeights != [4]float32{} || params.StdevWeights != [4]float32{})
	if useLocal {
		localWeights(params, fp, blk, local[:blk.texelCount])
	}

	ew.total = 0
	for t := 0; t < blk.texelCount; t++ {
		w := cw
		if useLocal {
			for c := 0; c < 4; c++ {
				w[c] /= local[t][c]
			}
		}
		if params.AlphaScaledRGB {
			a := max(blk.texels[t][3]*(1.0/65535.0), 1.0/256.0)
			for c := 0; c < 3; c++ {
				w[c] *= a * a
			}
		}
		ew.weights[t] = w
		ew.total += w[0] + w[1] + w[2] + w[3]

		for mask := 1; mask < 16; mask++ {
			var sum float32
			n := 0
			for c := 0; c < 4; c++ {
				if mask&(1<<c) != 0 {
					sum += w[c]
					n++
				}
			}
			ew.subsetMean[t][mask] = sum / float32(n)
		}
	}
}

// localWeights returns, per texel, 1 + MeanWeights*mean + StdevWeights*stdev
// over the texel's neighbourhood inside the block, in 0..1 units.
func localWeights(params *CompressionParams, fp Footprint, blk *imageBlock, out []mgl32.Vec4) {
	r := params.MeanStdevRadius
	rz := r
	if fp.Z == 1 {
		rz = 0
	}
	const scale = 1.0 / 65535.0

	t := 0
	for z := 0; z < fp.Z; z++ {
		for y := 0; y < fp.Y; y++ {
			for x := 0; x < fp.X; x++ {
				var sum, sum2 [4]float64
				n := 0
				for zz := max(z-rz, 0); zz <= min(z+rz, fp.Z-1); zz++ {
					for yy := max(y-r, 0); yy <= min(y+r, fp.Y-1); yy++ {
						for xx := max(x-r, 0); xx <= min(x+r, fp.X-1); xx++ {
							v := blk.texels[(zz*fp.Y+yy)*fp.X+xx]
							for c := 0; c < 4; c++ {
								f := float64(v[c]) * scale
								sum[c] += f
								sum2[c] += f * f
							}
							n++
						}
					}
				}
				for c := 0; c < 4; c++ {
					mean := sum[c] / float64(n)
					variance := math.Max(sum2[c]/float64(n)-mean*mean, 0)
					out[t][c] = float32(1 + float64(params.MeanWeights[c])*mean + float64(params.StdevWeights[c])*math.Sqrt(variance))
					out[t][c] = max(out[t][c], 1e-6)
				}
				t++
			}
		}
	}
}
