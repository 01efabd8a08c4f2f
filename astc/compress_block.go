package astc

import "math"

// Realignment passes per refinement iteration; each accepted move strictly
// lowers the error, the cap only bounds pathological ping-pong on ties.
const maxRealignPasses = 8

// blockCompressor searches the encodings of one block and keeps the best.
type blockCompressor struct {
	profile Profile
	params  *CompressionParams
	d       *BlockSizeDescriptor
	blk     *imageBlock
	ew      errorWeightBlock

	best    BlockInfo
	bestErr float32
	// limit is the block error at which the search stops.
	limit float32
}

// compressBlock returns the symbolic encoding of blk. Constant blocks become
// void extents; others take the best candidate of the search, or a void
// extent of the mean when no candidate is representable.
func compressBlock(params *CompressionParams, d *BlockSizeDescriptor, blk *imageBlock) BlockInfo {
	if blk.constant {
		return BlockInfo{
			Kind:            blk.constKind,
			Plane2Component: -1,
			ConstantColor:   blk.constColor,
			Extent:          noExtent(d.Footprint),
		}
	}

	bc := &blockCompressor{
		profile: params.Profile,
		params:  params,
		d:       d,
		blk:     blk,
		bestErr: float32(math.Inf(1)),
	}
	computeErrorWeights(params, d.Footprint, blk, &bc.ew)
	bc.limit = params.mseLimit() * bc.ew.total
	bc.search()

	if math.IsInf(float64(bc.bestErr), 1) {
		return blk.meanVoidExtent(params.Profile, d.Footprint)
	}
	return bc.best
}

func (bc *blockCompressor) done() bool { return bc.bestErr <= bc.limit }

func (bc *blockCompressor) search() {
	pt1 := bc.d.PartitionTable(1, 0)
	bc.compressFixedPartition(pt1, -1)
	if bc.done() {
		return
	}

	if bc.params.DualPlane {
		for _, c := range bc.plane2Channels() {
			if channelCorrelation(bc.blk, c) > bc.params.DualPlaneCorrelationLimit {
				continue
			}
			bc.compressFixedPartition(pt1, c)
			if bc.done() {
				return
			}
		}
	}

	prevErr := bc.bestErr
	for pc := 2; pc <= bc.params.PartitionCountLimit; pc++ {
		tables := findBestPartitionings(bc.d, bc.blk, &bc.ew, pc,
			bc.params.PartitionIndexLimit[pc-2], bc.params.PartitionCandidateLimit[pc-2])

		countErr := float32(math.Inf(1))
		for _, pt := range tables {
			countErr = min(countErr, bc.compressFixedPartition(pt, -1))
			if bc.done() {
				return
			}
			if pc == 2 && bc.params.DualPlane {
				c, corr := bc.leastCorrelatedChannel()
				if corr <= bc.params.DualPlaneCorrelationLimit {
					countErr = min(countErr, bc.compressFixedPartition(pt, c))
					if bc.done() {
						return
					}
				}
			}
		}

		if i := pc - 2; i < len(bc.params.PartitionEarlyOut) && countErr > prevErr*bc.params.PartitionEarlyOut[i] {
			return
		}
		prevErr = countErr
	}
}

// plane2Channels lists the channels worth a second weight plane. R, G and B
// of a grayscale block share one plane, so only alpha can split off.
func (bc *blockCompressor) plane2Channels() []int {
	if bc.blk.grayscale() {
		return []int{3}
	}
	return []int{0, 1, 2, 3}
}

func (bc *blockCompressor) leastCorrelatedChannel() (int, float32) {
	best, bestCorr := 0, float32(2)
	for _, c := range bc.plane2Channels() {
		if corr := channelCorrelation(bc.blk, c); corr < bestCorr {
			best, bestCorr = c, corr
		}
	}
	return best, bestCorr
}

// compressFixedPartition runs the search for one partitioning and plane-2
// channel (-1 for a single plane) and returns the best error it found.
func (bc *blockCompressor) compressFixedPartition(pt *PartitionTable, plane2 int) float32 {
	dual := plane2 >= 0
	modes := bc.d.searchModes(dual, bc.params.BlockModeLimit)
	if len(modes) == 0 {
		return float32(math.Inf(1))
	}

	var eai [2]endpointsAndWeights
	var ep endpoints
	if dual {
		ep = computeIdealEndpointsAndWeightsDual(bc.blk, &bc.ew, pt, plane2, &eai[0], &eai[1])
	} else {
		computeIdealEndpointsAndWeights(bc.blk, &bc.ew, pt, 0xF, &eai[0])
		ep = eai[0].ep
	}

	ideal := make([]*[2][blockMaxWeights]float32, bc.d.DecimationCount())
	weightErr := make([]float32, len(modes))
	var grid [blockMaxWeights]uint8
	for i, m := range modes {
		entry := bc.d.modes[m]
		dt := bc.d.decimations[entry.decimation].table
		iw := ideal[entry.decimation]
		if iw == nil {
			iw = new([2][blockMaxWeights]float32)
			computeIdealDecimatedWeights(dt, &eai[0], iw[0][:])
			if dual {
				computeIdealDecimatedWeights(dt, &eai[1], iw[1][:])
			}
			ideal[entry.decimation] = iw
		}

		q := entry.mode.WeightQuant
		for plane := 0; plane < entry.mode.PlaneCount(); plane++ {
			for w := 0; w < dt.WeightCount; w++ {
				grid[w] = uint8(quantizeWeight(q, iw[plane][w]))
			}
			weightErr[i] += quantizedWeightError(dt, &eai[plane], grid[:], q)
		}
	}

	var ce colorErrors
	computeColorErrors(bc.profile, bc.blk, &bc.ew, pt, &ce)
	candidates := determineOptimalFormats(bc.d, pt.PartitionCount, &ce, modes, weightErr, bc.params.CandidateLimit)

	bestErr := float32(math.Inf(1))
	for i := range candidates {
		entry := bc.d.modes[candidates[i].mode]
		bestErr = min(bestErr, bc.refineCandidate(pt, plane2, &candidates[i], &ep, &eai, ideal[entry.decimation]))
		if bc.done() {
			break
		}
	}
	return bestErr
}

// rescaledWeights maps the texel weights of eai from lo..hi onto 0..1.
func rescaledWeights(eai *endpointsAndWeights, texelCount int, lo, hi float32) *endpointsAndWeights {
	out := *eai
	if lo == 0 && hi == 1 {
		return &out
	}
	span := hi - lo
	for t := 0; t < texelCount; t++ {
		out.weights[t] = clampF32((eai.weights[t]-lo)/span, 0, 1)
		out.errScale[t] = eai.errScale[t] * span * span
	}
	return &out
}

// refineCandidate quantizes the weights of one shortlisted mode, then
// alternates endpoint refits, color packing and weight realignment. Each
// round is scored by decoding; the loop ends early once realignment finds
// nothing to move.
func (bc *blockCompressor) refineCandidate(pt *PartitionTable, plane2 int, cand *modeCandidate, idealEp *endpoints, eai *[2]endpointsAndWeights, ideal *[2][blockMaxWeights]float32) float32 {
	entry := bc.d.modes[cand.mode]
	dt := bc.d.decimations[entry.decimation].table
	mode := entry.mode

	info := BlockInfo{
		Kind:            BlockNormal,
		BlockMode:       cand.mode,
		Mode:            mode,
		PartitionCount:  pt.PartitionCount,
		PartitionIndex:  pt.Index,
		Plane2Component: plane2,
	}

	ep := *idealEp
	for plane := 0; plane < mode.PlaneCount(); plane++ {
		w := ideal[plane]
		lo, hi := rescaleWeights(w[:dt.WeightCount])
		mask := 0xF
		if plane2 >= 0 {
			mask = channelMask(plane2)
			if plane == 1 {
				mask = 1 << plane2
			}
		}
		rescaleEndpoints(&ep, mask, lo, hi)
		computeQuantizedWeights(dt, rescaledWeights(&eai[plane], dt.TexelCount, lo, hi), w[:], mode.WeightQuant, info.Weights[plane][:])
	}

	bestErr := float32(math.Inf(1))
	for iter := 0; iter < bc.params.RefinementIterations; iter++ {
		recomputeIdealEndpoints(bc.blk, &bc.ew, pt, dt, &info, &ep)
		if !packPartitions(bc.profile, &info, &ep, cand) {
			break
		}
		s, ok := newTexelScorer(bc.profile, bc.d, bc.blk, &bc.ew, &info)
		if !ok {
			break
		}

		adjustments := 0
		for pass := 0; pass < maxRealignPasses; pass++ {
			n := realignWeightsPass(s, &info)
			adjustments += n
			if n == 0 {
				break
			}
		}

		var grid [2][blockMaxWeights]uint8
		for plane := 0; plane < mode.PlaneCount(); plane++ {
			info.unquantizedWeights(plane, grid[plane][:])
		}
		err := s.blockError(&grid)
		bestErr = min(bestErr, err)
		if err < bc.bestErr {
			bc.best, bc.bestErr = info, err
		}
		if adjustments == 0 {
			break
		}
	}
	return bestErr
}

func sameFormats(info *BlockInfo) bool {
	for p := 1; p < info.PartitionCount; p++ {
		if info.Formats[p] != info.Formats[0] {
			return false
		}
	}
	return true
}

// packPartitions packs the endpoints of every partition with the classes of
// cand. The color level must agree with the layout the formats imply: one
// shared format uses the matched level, differing formats the unmatched one.
// When the unmatched level brings the partitions back to a single format,
// that format is stored at the matched level instead.
func packPartitions(profile Profile, info *BlockInfo, ep *endpoints, cand *modeCandidate) bool {
	pc := info.PartitionCount
	packAll := func(q int) bool {
		info.ColorQuant = QuantMethod(q)
		for p := 0; p < pc; p++ {
			info.Formats[p] = packColorEndpoints(profile, cand.classes[p], ep.ep0[p], ep.ep1[p], info.ColorQuant, info.ColorValues[p][:])
		}
		return sameFormats(info)
	}

	if cand.qMatched >= 0 && packAll(cand.qMatched) {
		info.FormatsMatched = true
		return true
	}
	if cand.qUnmatched >= 0 && !packAll(cand.qUnmatched) {
		info.FormatsMatched = false
		return true
	}
	if cand.qMatched < 0 {
		return false
	}

	info.ColorQuant = QuantMethod(cand.qMatched)
	info.FormatsMatched = true
	force := func(f EndpointFormat) bool {
		for p := 0; p < pc; p++ {
			if _, ok := packFormat(profile, f, ep.ep0[p], ep.ep1[p], info.ColorQuant, info.ColorValues[p][:]); !ok {
				return false
			}
			info.Formats[p] = f
		}
		return true
	}
	if force(info.Formats[0]) {
		return true
	}
	return force(formatCandidates(profile, cand.classes[0])[0])
}
