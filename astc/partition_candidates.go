package astc

import "sort"

// partitionScore is the residual of fitting one line per partition through
// the block's texels: the error left after the ideal endpoint direction.
func partitionScore(blk *imageBlock, ew *errorWeightBlock, pt *PartitionTable) float32 {
	var score float32
	for p := 0; p < pt.PartitionCount; p++ {
		texels := pt.Texels[p]
		mean := partitionMean(blk, ew, texels)
		dir := lineDirection(blk, ew, texels, mean, 0xF)
		for _, t := range texels {
			d := blk.texels[t].Sub(mean)
			w := ew.weights[t]
			var sq float32
			for c := 0; c < 4; c++ {
				sq += w[c] * d[c] * d[c]
			}
			proj := d.Dot(dir)
			score += sq - ew.meanTexelWeight(int(t), 0xF)*proj*proj
		}
	}
	return score
}

// findBestPartitionings ranks the first indexLimit partition indices of
// partitionCount partitions by line fit and returns up to limit tables.
// Degenerate tables and relabelings of an earlier pick are skipped.
func findBestPartitionings(d *BlockSizeDescriptor, blk *imageBlock, ew *errorWeightBlock, partitionCount, indexLimit, limit int) []*PartitionTable {
	type scored struct {
		pt    *PartitionTable
		score float32
	}
	var all []scored
	for i := 0; i < min(indexLimit, partitionIndexCount); i++ {
		pt := d.PartitionTable(partitionCount, i)
		if pt.degenerate(partitionCount) {
			continue
		}
		all = append(all, scored{pt, partitionScore(blk, ew, pt)})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score < all[j].score })

	var out []*PartitionTable
	for _, s := range all {
		if len(out) == limit {
			break
		}
		dup := false
		for _, o := range out {
			if o.samePartitioning(s.pt) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s.pt)
		}
	}
	return out
}
