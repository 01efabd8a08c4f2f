package astc

import "math"

// channelCorrelation returns |corr(c, rest)| over the block, where rest is
// the sum of the other three channels. Channels without variance report 1:
// a single weight plane serves them.
func channelCorrelation(blk *imageBlock, c int) float32 {
	n := blk.texelCount
	if n <= 1 || blk.flat(c) {
		return 1
	}

	var sumX, sumY, sumXX, sumYY, sumXY float64
	for t := 0; t < n; t++ {
		v := blk.texels[t]
		x := float64(v[c])
		y := float64(v[0]+v[1]+v[2]+v[3]) - x
		sumX += x
		sumY += y
		sumXX += x * x
		sumYY += y * y
		sumXY += x * y
	}

	nn := float64(n)
	varX := sumXX*nn - sumX*sumX
	varY := sumYY*nn - sumY*sumY
	if varX <= 1e-6*nn*nn || varY <= 1e-6*nn*nn {
		return 1
	}

	cov := sumXY*nn - sumX*sumY
	corr := math.Abs(cov / math.Sqrt(varX*varY))
	return float32(math.Min(corr, 1))
}
