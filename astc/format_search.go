package astc

import "math"

// modeCandidate is one block mode with the endpoint classes chosen for it
// and the color levels its layout yields.
type modeCandidate struct {
	mode    int
	classes [blockMaxPartitions]int
	// qMatched applies when every partition ends up with one format,
	// qUnmatched otherwise. Either is -1 when it leaves too few bits.
	qMatched, qUnmatched int
	err                  float32
}

// determineOptimalFormats picks, for each mode, the class combination with
// the lowest estimated error given its color bit budget, and returns the
// best limit modes. Classes of different partitions differ by at most one.
func determineOptimalFormats(d *BlockSizeDescriptor, partitionCount int, ce *colorErrors, modes []int, weightErr []float32, limit int) []modeCandidate {
	best := make([]modeCandidate, 0, limit)

	var classes [blockMaxPartitions]int
	combos := 1 << (2 * partitionCount)
	for mi, m := range modes {
		mode := d.modes[m].mode
		weightBits := d.modes[m].weightBits
		if mode.DualPlane && partitionCount == blockMaxPartitions {
			continue
		}

		cand := modeCandidate{mode: m, err: float32(math.Inf(1))}
		for combo := 0; combo < combos; combo++ {
			lo, hi, count := 3, 0, 0
			for p := 0; p < partitionCount; p++ {
				classes[p] = combo >> (2 * p) & 3
				lo, hi = min(lo, classes[p]), max(hi, classes[p])
				count += 2 * (classes[p] + 1)
			}
			if hi-lo > 1 || count > blockMaxColorInts {
				continue
			}

			matched := lo == hi
			qm := quantLevelForBits(count, colorBitBudget(partitionCount, weightBits, mode.DualPlane, true))
			qu := -1
			if partitionCount > 1 {
				qu = quantLevelForBits(count, colorBitBudget(partitionCount, weightBits, mode.DualPlane, false))
			}
			q := qm
			if !matched {
				q, qm = qu, -1
			}
			if q < int(Quant6) {
				continue
			}
			if qu < int(Quant6) {
				qu = -1
			}

			err := weightErr[mi]
			for p := 0; p < partitionCount; p++ {
				err += ce[p][classes[p]][q]
			}
			if err < cand.err {
				cand.classes = classes
				cand.qMatched, cand.qUnmatched = qm, qu
				cand.err = err
			}
		}
		if math.IsInf(float64(cand.err), 1) {
			continue
		}

		// Insertion into the sorted shortlist; equal errors keep the
		// earlier mode.
		pos := len(best)
		for pos > 0 && cand.err < best[pos-1].err {
			pos--
		}
		if pos >= limit {
			continue
		}
		if len(best) < limit {
			best = append(best, modeCandidate{})
		}
		copy(best[pos+1:], best[pos:len(best)-1])
		best[pos] = cand
	}
	return best
}
