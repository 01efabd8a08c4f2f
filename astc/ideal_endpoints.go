package astc

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// endpoints holds the float endpoint pair of every partition in encoder space.
type endpoints struct {
	partitionCount int
	ep0, ep1       [blockMaxPartitions]mgl32.Vec4
}

// endpointsAndWeights is the unquantized fit of one weight plane: endpoints
// plus a 0..1 weight per texel and the error caused by a unit change of that
// weight.
type endpointsAndWeights struct {
	ep       endpoints
	weights  [blockMaxTexels]float32
	errScale [blockMaxTexels]float32
}

// safeDiv returns num/den, or fallback when the quotient is not finite.
func safeDiv(num, den, fallback float32) float32 {
	if den == 0 {
		return fallback
	}
	r := num / den
	if math.IsNaN(float64(r)) || math.IsInf(float64(r), 0) {
		return fallback
	}
	return r
}

func maskedSum(v mgl32.Vec4, mask int) float32 {
	var s float32
	for c := 0; c < 4; c++ {
		if mask&(1<<c) != 0 {
			s += v[c]
		}
	}
	return s
}

// partitionMean returns the error-weighted mean color of texels.
func partitionMean(blk *imageBlock, ew *errorWeightBlock, texels []uint8) mgl32.Vec4 {
	var sum, wsum, plain mgl32.Vec4
	for _, t := range texels {
		v, w := blk.texels[t], ew.weights[t]
		for c := 0; c < 4; c++ {
			sum[c] += v[c] * w[c]
			wsum[c] += w[c]
			plain[c] += v[c]
		}
	}
	var mean mgl32.Vec4
	n := float32(len(texels))
	for c := 0; c < 4; c++ {
		mean[c] = safeDiv(sum[c], wsum[c], safeDiv(plain[c], n, 0))
	}
	return mean
}

// lineDirection picks the fit direction through mean for the channels in
// mask: of the per-axis sums of deviations on the positive side of that
// axis, the longest wins. A block without variation gets the gray diagonal.
func lineDirection(blk *imageBlock, ew *errorWeightBlock, texels []uint8, mean mgl32.Vec4, mask int) mgl32.Vec4 {
	var sums [4]mgl32.Vec4
	for _, t := range texels {
		w := ew.meanTexelWeight(int(t), mask)
		d := blk.texels[t].Sub(mean)
		for c := 0; c < 4; c++ {
			if mask&(1<<c) == 0 {
				d[c] = 0
			}
		}
		for k := 0; k < 4; k++ {
			if d[k] > 0 {
				sums[k] = sums[k].Add(d.Mul(w))
			}
		}
	}

	var best mgl32.Vec4
	var bestLen float32
	for k := 0; k < 4; k++ {
		if l := sums[k].LenSqr(); l > bestLen {
			best, bestLen = sums[k], l
		}
	}
	if bestLen <= 1e-6 {
		for c := 0; c < 4; c++ {
			if mask&(1<<c) != 0 {
				best[c] = 1
			}
		}
		bestLen = best.LenSqr()
	}
	return best.Mul(1 / float32(math.Sqrt(float64(bestLen))))
}

// computeIdealEndpointsAndWeights fits a line per partition through the
// channels in mask. Channels outside mask get both endpoints at the mean.
func computeIdealEndpointsAndWeights(blk *imageBlock, ew *errorWeightBlock, pt *PartitionTable, mask int, out *endpointsAndWeights) {
	out.ep.partitionCount = pt.PartitionCount
	for p := 0; p < pt.PartitionCount; p++ {
		texels := pt.Texels[p]
		mean := partitionMean(blk, ew, texels)
		dir := lineDirection(blk, ew, texels, mean, mask)

		lo, hi := float32(math.MaxFloat32), float32(-math.MaxFloat32)
		for _, t := range texels {
			proj := blk.texels[t].Sub(mean).Dot(dir)
			lo, hi = min(lo, proj), max(hi, proj)
		}

		if !(hi-lo > 1e-2) {
			out.ep.ep0[p], out.ep.ep1[p] = mean, mean
			for _, t := range texels {
				out.weights[t], out.errScale[t] = 0, 0
			}
			continue
		}

		ep0, ep1 := mean, mean
		for c := 0; c < 4; c++ {
			if mask&(1<<c) != 0 {
				ep0[c] = clampF32(mean[c]+dir[c]*lo, 0, 65535)
				ep1[c] = clampF32(mean[c]+dir[c]*hi, 0, 65535)
			}
		}
		span := 1 / (hi - lo)
		swap := maskedSum(ep0, mask) > maskedSum(ep1, mask)
		if swap {
			ep0, ep1 = ep1, ep0
		}
		diff := ep1.Sub(ep0)
		for _, t := range texels {
			w := clampF32((blk.texels[t].Sub(mean).Dot(dir)-lo)*span, 0, 1)
			if swap {
				w = 1 - w
			}
			out.weights[t] = w
			var scale float32
			for c := 0; c < 4; c++ {
				if mask&(1<<c) != 0 {
					scale += ew.weights[t][c] * diff[c] * diff[c]
				}
			}
			out.errScale[t] = scale
		}
		out.ep.ep0[p], out.ep.ep1[p] = ep0, ep1
	}
}

// computeIdealEndpointsAndWeightsDual fits plane 1 to every channel but
// plane2 and plane 2 to plane2 alone. The returned endpoints combine both.
func computeIdealEndpointsAndWeightsDual(blk *imageBlock, ew *errorWeightBlock, pt *PartitionTable, plane2 int, out1, out2 *endpointsAndWeights) endpoints {
	computeIdealEndpointsAndWeights(blk, ew, pt, channelMask(plane2), out1)
	computeIdealEndpointsAndWeights(blk, ew, pt, 1<<plane2, out2)
	ep := out1.ep
	for p := 0; p < ep.partitionCount; p++ {
		ep.ep0[p][plane2] = out2.ep.ep0[p][plane2]
		ep.ep1[p][plane2] = out2.ep.ep1[p][plane2]
	}
	return ep
}
