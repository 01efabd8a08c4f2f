package astc

// computeIdealDecimatedWeights fits the weight grid of dt to the per-texel
// ideal weights of eai. Grids with one weight per texel copy them; others
// start from the error-weighted average of the texels each weight feeds and
// take two refinement passes.
func computeIdealDecimatedWeights(dt *DecimationTable, eai *endpointsAndWeights, out []float32) {
	if dt.identity {
		copy(out[:dt.TexelCount], eai.weights[:dt.TexelCount])
		return
	}

	for i := 0; i < dt.WeightCount; i++ {
		texels, fracs := dt.weightTexels[i], dt.weightFracsF[i]
		var sum, wsum, plain float32
		for j, t := range texels {
			s := fracs[j] * (eai.errScale[t] + 1e-6)
			sum += s * eai.weights[t]
			wsum += s
			plain += eai.weights[t]
		}
		out[i] = safeDiv(sum, wsum, safeDiv(plain, float32(len(texels)), 0))
	}

	var tmp [blockMaxWeights]float32
	refineDecimatedWeightsPass(dt, eai, out, tmp[:], 0.25)
	refineDecimatedWeightsPass(dt, eai, tmp[:], out, 0.125)
}

// refineDecimatedWeightsPass takes one Newton step per grid weight against
// the ideal texel weights, reading cur and writing next. Steps are limited
// to stepLimit and results clamped to 0..1.
func refineDecimatedWeightsPass(dt *DecimationTable, eai *endpointsAndWeights, cur, next []float32, stepLimit float32) {
	var infilled [blockMaxTexels]float32
	for t := 0; t < dt.TexelCount; t++ {
		infilled[t] = dt.infillFloat(cur, t)
	}

	for i := 0; i < dt.WeightCount; i++ {
		texels, fracs := dt.weightTexels[i], dt.weightFracsF[i]
		var grad, hess float32
		for j, t := range texels {
			s := eai.errScale[t] + 1e-6
			grad += s * fracs[j] * (infilled[t] - eai.weights[t])
			hess += s * fracs[j] * fracs[j]
		}
		step := clampF32(-safeDiv(grad, hess, 0), -stepLimit, stepLimit)
		next[i] = clampF32(cur[i]+step, 0, 1)
	}
}

// weightBounds returns the lowest and highest value of a weight grid.
func weightBounds(w []float32) (lo, hi float32) {
	lo, hi = 1, 0
	for _, v := range w {
		lo, hi = min(lo, v), max(hi, v)
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}
