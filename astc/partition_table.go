package astc

// PartitionTable assigns the texels of a footprint to partitions for one
// (partition count, partition index) pair.
type PartitionTable struct {
	// PartitionCount is the requested count clamped to the first partition
	// that received no texels.
	PartitionCount int
	Index          int

	// PartitionOf maps texel index -> partition.
	PartitionOf []uint8
	// Texels lists the texel indices of each partition in ascending order.
	Texels [blockMaxPartitions][]uint8
	Counts [blockMaxPartitions]int
}

func newPartitionTable(fp Footprint, partitionCount, index int) *PartitionTable {
	texelCount := fp.TexelCount()
	pt := &PartitionTable{
		PartitionCount: partitionCount,
		Index:          index,
		PartitionOf:    make([]uint8, texelCount),
	}

	if partitionCount > 1 {
		smallBlock := texelCount < 32
		i := 0
		for z := 0; z < fp.Z; z++ {
			for y := 0; y < fp.Y; y++ {
				for x := 0; x < fp.X; x++ {
					pt.PartitionOf[i] = selectPartition(index, x, y, z, partitionCount, smallBlock)
					i++
				}
			}
		}
	}

	for t, p := range pt.PartitionOf {
		pt.Counts[p]++
		pt.Texels[p] = append(pt.Texels[p], uint8(t))
	}

	for p := 0; p < partitionCount; p++ {
		if pt.Counts[p] == 0 {
			pt.PartitionCount = p
			break
		}
	}
	return pt
}

// degenerate reports whether the table collapsed below the requested count.
func (pt *PartitionTable) degenerate(requested int) bool {
	return pt.PartitionCount < requested
}

// samePartitioning reports whether two tables group texels identically up to
// a relabeling of the partitions.
func (pt *PartitionTable) samePartitioning(other *PartitionTable) bool {
	if pt.PartitionCount != other.PartitionCount || len(pt.PartitionOf) != len(other.PartitionOf) {
		return false
	}
	var mapping [blockMaxPartitions]int8
	for i := range mapping {
		mapping[i] = -1
	}
	for t, p := range pt.PartitionOf {
		o := int8(other.PartitionOf[t])
		if mapping[p] == -1 {
			mapping[p] = o
		} else if mapping[p] != o {
			return false
		}
	}
	return true
}
