package astc

// Weights within a third of a quantization step of their ideal value are
// left alone by the perturbation passes.
const perturbThreshold = 1.0 / 3.0

// rescaleWeights stretches w to span 0..1 and returns the old bounds. Narrow
// ranges are left as they are.
func rescaleWeights(w []float32) (lo, hi float32) {
	lo, hi = weightBounds(w)
	if hi-lo < 0.5 {
		return 0, 1
	}
	scale := 1 / (hi - lo)
	for i := range w {
		w[i] = clampF32((w[i]-lo)*scale, 0, 1)
	}
	return lo, hi
}

// rescaleEndpoints moves the endpoints of the channels in mask to the points
// the old weights lo and hi pointed at.
func rescaleEndpoints(ep *endpoints, mask int, lo, hi float32) {
	for p := 0; p < ep.partitionCount; p++ {
		e0, e1 := ep.ep0[p], ep.ep1[p]
		for c := 0; c < 4; c++ {
			if mask&(1<<c) == 0 {
				continue
			}
			d := e1[c] - e0[c]
			ep.ep0[p][c] = clampF32(e0[c]+d*lo, 0, 65535)
			ep.ep1[p][c] = clampF32(e0[c]+d*hi, 0, 65535)
		}
	}
}

// quantizedWeightError returns the estimated error of the quantized grid
// weights q against the ideal texel weights, in the scale of errScale.
func quantizedWeightError(dt *DecimationTable, eai *endpointsAndWeights, grid []uint8, q QuantMethod) float32 {
	var uq [blockMaxWeights]uint8
	for i := 0; i < dt.WeightCount; i++ {
		uq[i] = weightUnquant[q][grid[i]]
	}
	var err float32
	for t := 0; t < dt.TexelCount; t++ {
		d := float32(dt.infill(uq[:], t))*(1.0/64.0) - eai.weights[t]
		err += eai.errScale[t] * d * d
	}
	return err
}

// computeQuantizedWeights quantizes the ideal grid weights to level q, then
// runs perturbation passes until one changes nothing or the trial budget of
// four per weight runs out. ideal and the texel weights of eai are in the
// same 0..1 range.
func computeQuantizedWeights(dt *DecimationTable, eai *endpointsAndWeights, ideal []float32, q QuantMethod, out []uint8) {
	for i := 0; i < dt.WeightCount; i++ {
		out[i] = uint8(quantizeWeight(q, ideal[i]))
	}

	budget := 4 * dt.WeightCount
	var next [blockMaxWeights]uint8
	for budget > 0 {
		changed := perturbQuantizedWeightsPass(dt, eai, ideal, q, out, next[:], &budget)
		copy(out[:dt.WeightCount], next[:dt.WeightCount])
		if changed == 0 {
			break
		}
	}
}

// perturbQuantizedWeightsPass tries moving each grid weight of cur one step
// up or down in value order and writes the improved grid to next. It returns
// the number of weights moved.
func perturbQuantizedWeightsPass(dt *DecimationTable, eai *endpointsAndWeights, ideal []float32, q QuantMethod, cur, next []uint8, budget *int) int {
	levels := q.Levels()
	step := 1 / float32(levels-1)

	var uq [blockMaxWeights]float32
	for i := 0; i < dt.WeightCount; i++ {
		uq[i] = float32(weightUnquant[q][cur[i]]) * (1.0 / 64.0)
	}
	copy(next[:dt.WeightCount], cur[:dt.WeightCount])

	changed := 0
	for i := 0; i < dt.WeightCount && *budget > 0; i++ {
		if absF32(uq[i]-ideal[i]) < step*perturbThreshold {
			continue
		}
		texels, fracs := dt.weightTexels[i], dt.weightFracsF[i]
		errorWith := func(v float32) float32 {
			var err float32
			for j, t := range texels {
				d := dt.infillFloat(uq[:], int(t)) + (v-uq[i])*fracs[j] - eai.weights[t]
				err += eai.errScale[t] * d * d
			}
			return err
		}

		rank := int(weightRank[q][cur[i]])
		bestErr := errorWith(uq[i])
		best := -1
		for _, r := range [2]int{rank - 1, rank + 1} {
			if r < 0 || r >= levels {
				continue
			}
			*budget--
			v := weightByRank[q][r]
			if e := errorWith(float32(weightUnquant[q][v]) * (1.0 / 64.0)); e < bestErr {
				bestErr, best = e, int(v)
			}
		}
		if best >= 0 {
			next[i] = uint8(best)
			changed++
		}
	}
	return changed
}

// recomputeIdealEndpoints refits the endpoints of every partition to the
// quantized weights of info by per-channel weighted least squares. A
// dual-plane block fits info.Plane2Component against the second plane.
func recomputeIdealEndpoints(blk *imageBlock, ew *errorWeightBlock, pt *PartitionTable, dt *DecimationTable, info *BlockInfo, ep *endpoints) {
	var grid [2][blockMaxWeights]uint8
	info.unquantizedWeights(0, grid[0][:])
	dual := info.Plane2Component >= 0
	if dual {
		info.unquantizedWeights(1, grid[1][:])
	}

	var tw [2][blockMaxTexels]float32
	for t := 0; t < dt.TexelCount; t++ {
		tw[0][t] = float32(dt.infill(grid[0][:], t)) * (1.0 / 64.0)
		if dual {
			tw[1][t] = float32(dt.infill(grid[1][:], t)) * (1.0 / 64.0)
		}
	}

	for p := 0; p < pt.PartitionCount; p++ {
		for c := 0; c < 4; c++ {
			w := tw[0][:]
			if c == info.Plane2Component {
				w = tw[1][:]
			}
			var s00, s01, s11, r0, r1, wsum, xsum float32
			wlo, whi := float32(1), float32(0)
			for _, t := range pt.Texels[p] {
				om := ew.weights[t][c] + 1e-6
				x := blk.texels[t][c]
				a, b := 1-w[t], w[t]
				s00 += om * a * a
				s01 += om * a * b
				s11 += om * b * b
				r0 += om * a * x
				r1 += om * b * x
				wsum += om
				xsum += om * x
				wlo, whi = min(wlo, w[t]), max(whi, w[t])
			}

			if whi-wlo < 1e-6 {
				m := safeDiv(xsum, wsum, ep.ep0[p][c])
				ep.ep0[p][c], ep.ep1[p][c] = m, m
				continue
			}
			det := s00*s11 - s01*s01
			if absF32(det) <= 1e-6*s00*s11 {
				continue
			}
			e0 := safeDiv(r0*s11-r1*s01, det, ep.ep0[p][c])
			e1 := safeDiv(r1*s00-r0*s01, det, ep.ep1[p][c])
			ep.ep0[p][c] = clampF32(e0, 0, 65535)
			ep.ep1[p][c] = clampF32(e1, 0, 65535)
		}
	}
}

// texelScorer measures the true decode error of a packed candidate.
type texelScorer struct {
	dt          *DecimationTable
	blk         *imageBlock
	ew          *errorWeightBlock
	partitionOf []uint8
	e0, e1      [blockMaxPartitions]int4
	plane2      int
}

// newTexelScorer unpacks the endpoints of info. It fails when the endpoints
// do not decode under profile.
func newTexelScorer(profile Profile, d *BlockSizeDescriptor, blk *imageBlock, ew *errorWeightBlock, info *BlockInfo) (*texelScorer, bool) {
	s := &texelScorer{dt: d.modeDecimation(info.BlockMode), blk: blk, ew: ew, plane2: info.Plane2Component}
	for p := 0; p < info.PartitionCount; p++ {
		var ok bool
		s.e0[p], s.e1[p], _, _, ok = unpackEndpoints(profile, info.Formats[p], info.UnquantizedColors(p))
		if !ok {
			return nil, false
		}
	}
	if info.PartitionCount > 1 {
		s.partitionOf = d.PartitionTable(info.PartitionCount, info.PartitionIndex).PartitionOf
	}
	return s, true
}

// texelError returns the weighted squared error of texel t decoded with
// infilled weights w0 (plane 1) and w1 (plane 2), both 0..64.
func (s *texelScorer) texelError(t, w0, w1 int) float32 {
	p := 0
	if s.partitionOf != nil {
		p = int(s.partitionOf[t])
	}
	var err float32
	for c := 0; c < 4; c++ {
		w := w0
		if c == s.plane2 {
			w = w1
		}
		v := (s.e0[p][c]*(64-w) + s.e1[p][c]*w + 32) >> 6
		d := float32(v) - s.blk.texels[t][c]
		err += s.ew.weights[t][c] * d * d
	}
	return err
}

// blockError returns the total error of the block for unquantized grids.
func (s *texelScorer) blockError(grid *[2][blockMaxWeights]uint8) float32 {
	var err float32
	for t := 0; t < s.dt.TexelCount; t++ {
		w0 := s.dt.infill(grid[0][:], t)
		w1 := w0
		if s.plane2 >= 0 {
			w1 = s.dt.infill(grid[1][:], t)
		}
		err += s.texelError(t, w0, w1)
	}
	return err
}

// realignWeightsPass moves each weight of info one step up or down when that
// lowers the decoded error of the texels it feeds, and returns the number
// of weights moved.
func realignWeightsPass(s *texelScorer, info *BlockInfo) int {
	q := info.Mode.WeightQuant
	levels := q.Levels()
	planes := info.Mode.PlaneCount()

	var grid [2][blockMaxWeights]uint8
	for plane := 0; plane < planes; plane++ {
		info.unquantizedWeights(plane, grid[plane][:])
	}

	adjustments := 0
	for plane := 0; plane < planes; plane++ {
		for i := 0; i < s.dt.WeightCount; i++ {
			texels := s.dt.weightTexels[i]
			errorNow := func() float32 {
				var err float32
				for _, t := range texels {
					w0 := s.dt.infill(grid[0][:], int(t))
					w1 := w0
					if planes == 2 {
						w1 = s.dt.infill(grid[1][:], int(t))
					}
					err += s.texelError(int(t), w0, w1)
				}
				return err
			}

			cur := info.Weights[plane][i]
			rank := int(weightRank[q][cur])
			bestErr := errorNow()
			best := cur
			for _, r := range [2]int{rank - 1, rank + 1} {
				if r < 0 || r >= levels {
					continue
				}
				v := weightByRank[q][r]
				grid[plane][i] = weightUnquant[q][v]
				if e := errorNow(); e < bestErr {
					bestErr, best = e, v
				}
			}
			grid[plane][i] = weightUnquant[q][best]
			if best != cur {
				info.Weights[plane][i] = best
				adjustments++
			}
		}
	}
	return adjustments
}
