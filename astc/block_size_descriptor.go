package astc

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Footprint is a block's texel dimensions. Z is 1 for 2D blocks.
type Footprint struct {
	X, Y, Z int
}

// TexelCount returns X*Y*Z.
func (fp Footprint) TexelCount() int { return fp.X * fp.Y * fp.Z }

// Is3D reports whether the footprint is a volume block.
func (fp Footprint) Is3D() bool { return fp.Z > 1 }

func (fp Footprint) String() string {
	if fp.Z > 1 {
		return fmt.Sprintf("%dx%dx%d", fp.X, fp.Y, fp.Z)
	}
	return fmt.Sprintf("%dx%d", fp.X, fp.Y)
}

var legalFootprints = []Footprint{
	{4, 4, 1}, {5, 4, 1}, {5, 5, 1}, {6, 5, 1}, {6, 6, 1}, {8, 5, 1}, {8, 6, 1},
	{8, 8, 1}, {10, 5, 1}, {10, 6, 1}, {10, 8, 1}, {10, 10, 1}, {12, 10, 1}, {12, 12, 1},
	{3, 3, 3}, {4, 3, 3}, {4, 4, 3}, {4, 4, 4}, {5, 4, 4}, {5, 5, 4}, {5, 5, 5},
	{6, 5, 5}, {6, 6, 5}, {6, 6, 6},
}

// LegalFootprints returns every block footprint defined by ASTC.
func LegalFootprints() []Footprint {
	return append([]Footprint(nil), legalFootprints...)
}

// Validate returns ErrBadBlockSize unless fp is a legal ASTC footprint.
func (fp Footprint) Validate() error {
	z := fp.Z
	if z == 0 {
		z = 1
	}
	for _, l := range legalFootprints {
		if l.X == fp.X && l.Y == fp.Y && l.Z == z {
			return nil
		}
	}
	return newError(ErrBadBlockSize, fmt.Sprintf("astc: invalid block footprint %s", fp))
}

// ParseFootprint parses "4x4" or "4x4x4".
func ParseFootprint(s string) (Footprint, error) {
	norm := strings.TrimSpace(strings.ToLower(s))
	parts := strings.Split(norm, "x")
	var fp Footprint
	var err error
	switch len(parts) {
	case 2:
		fp.Z = 1
		_, err = fmt.Sscanf(norm, "%dx%d", &fp.X, &fp.Y)
	case 3:
		_, err = fmt.Sscanf(norm, "%dx%dx%d", &fp.X, &fp.Y, &fp.Z)
	default:
		err = fmt.Errorf("want like 4x4 or 4x4x4")
	}
	if err != nil {
		return Footprint{}, newError(ErrBadBlockSize, fmt.Sprintf("astc: invalid block footprint %q: %v", s, err))
	}
	if err := fp.Validate(); err != nil {
		return Footprint{}, err
	}
	return fp, nil
}

type modeEntry struct {
	ok         bool
	mode       BlockMode
	decimation int
	weightBits int
}

type decimationInfo struct {
	table *DecimationTable
	// Highest weight quant with a legal mode, per plane count; -1 when none.
	maxQuant [2]int
}

// BlockSizeDescriptor holds the immutable per-footprint tables: every block
// mode's legality and weight grid, and one decimation table per distinct grid.
type BlockSizeDescriptor struct {
	Footprint  Footprint
	TexelCount int

	modes       [blockModeCount]modeEntry
	decimations []decimationInfo
	// Legal mode numbers in search priority order, and split by plane count.
	searchOrder []int
	planeOrder  [2][]int

	partitionOnce   [blockMaxPartitions + 1]sync.Once
	partitionTables [blockMaxPartitions + 1][]*PartitionTable
}

var blockSizeDescriptors struct {
	mu sync.RWMutex
	m  map[Footprint]*BlockSizeDescriptor
}

// getBlockSizeDescriptor returns the shared descriptor for fp, building it on
// first use. fp must be valid.
func getBlockSizeDescriptor(fp Footprint) *BlockSizeDescriptor {
	blockSizeDescriptors.mu.RLock()
	if d := blockSizeDescriptors.m[fp]; d != nil {
		blockSizeDescriptors.mu.RUnlock()
		return d
	}
	blockSizeDescriptors.mu.RUnlock()

	blockSizeDescriptors.mu.Lock()
	defer blockSizeDescriptors.mu.Unlock()
	if blockSizeDescriptors.m == nil {
		blockSizeDescriptors.m = make(map[Footprint]*BlockSizeDescriptor)
	} else if d := blockSizeDescriptors.m[fp]; d != nil {
		return d
	}
	d := newBlockSizeDescriptor(fp)
	blockSizeDescriptors.m[fp] = d
	return d
}

// PrecomputeBlockSizeDescriptors builds the descriptors of every legal
// footprint up front.
func PrecomputeBlockSizeDescriptors() {
	for _, fp := range legalFootprints {
		getBlockSizeDescriptor(fp)
	}
}

func newBlockSizeDescriptor(fp Footprint) *BlockSizeDescriptor {
	d := &BlockSizeDescriptor{Footprint: fp, TexelCount: fp.TexelCount()}

	type gridKey struct{ x, y, z int }
	grids := make(map[gridKey]int)

	for m := 0; m < blockModeCount; m++ {
		bm, ok := DecodeBlockMode(m, fp.Is3D())
		if !ok || bm.XWeights > fp.X || bm.YWeights > fp.Y || bm.ZWeights > fp.Z {
			continue
		}
		key := gridKey{bm.XWeights, bm.YWeights, bm.ZWeights}
		di, seen := grids[key]
		if !seen {
			di = len(d.decimations)
			grids[key] = di
			d.decimations = append(d.decimations, decimationInfo{
				table:    newDecimationTable(fp, key.x, key.y, key.z),
				maxQuant: [2]int{-1, -1},
			})
		}
		plane := bm.PlaneCount() - 1
		if int(bm.WeightQuant) > d.decimations[di].maxQuant[plane] {
			d.decimations[di].maxQuant[plane] = int(bm.WeightQuant)
		}
		d.modes[m] = modeEntry{ok: true, mode: bm, decimation: di, weightBits: bm.WeightBits()}
		d.searchOrder = append(d.searchOrder, m)
	}

	// Modes that leave a balanced share of the block to weights and colors
	// come first; block mode limits cut from the end of each plane list.
	sort.SliceStable(d.searchOrder, func(i, j int) bool {
		a, b := d.modes[d.searchOrder[i]], d.modes[d.searchOrder[j]]
		if a.mode.DualPlane != b.mode.DualPlane {
			return !a.mode.DualPlane
		}
		da, db := absInt(a.weightBits-balancedWeightBits), absInt(b.weightBits-balancedWeightBits)
		if da != db {
			return da < db
		}
		if a.mode.WeightCount() != b.mode.WeightCount() {
			return a.mode.WeightCount() > b.mode.WeightCount()
		}
		return a.mode.WeightQuant > b.mode.WeightQuant
	})
	for _, m := range d.searchOrder {
		plane := d.modes[m].mode.PlaneCount() - 1
		d.planeOrder[plane] = append(d.planeOrder[plane], m)
	}
	return d
}

const balancedWeightBits = 56

// searchModes returns the leading limitPercent of the legal single- or
// dual-plane modes in search order, at least one when any exist.
func (d *BlockSizeDescriptor) searchModes(dualPlane bool, limitPercent int) []int {
	plane := 0
	if dualPlane {
		plane = 1
	}
	modes := d.planeOrder[plane]
	n := (len(modes)*clampInt(limitPercent, 0, 100) + 99) / 100
	return modes[:min(max(n, 1), len(modes))]
}

// Mode returns the decoded block mode m and whether it is legal for the footprint.
func (d *BlockSizeDescriptor) Mode(m int) (BlockMode, bool) {
	if m < 0 || m >= blockModeCount || !d.modes[m].ok {
		return BlockMode{}, false
	}
	return d.modes[m].mode, true
}

// DecimationCount returns the number of distinct weight grids.
func (d *BlockSizeDescriptor) DecimationCount() int { return len(d.decimations) }

// Decimation returns the i-th weight grid's table.
func (d *BlockSizeDescriptor) Decimation(i int) *DecimationTable { return d.decimations[i].table }

func (d *BlockSizeDescriptor) modeDecimation(m int) *DecimationTable {
	return d.decimations[d.modes[m].decimation].table
}

// PartitionTable returns the table for (count, index). Count 1 ignores index.
func (d *BlockSizeDescriptor) PartitionTable(count, index int) *PartitionTable {
	tables := d.partitionTablesFor(count)
	if count == 1 {
		return tables[0]
	}
	return tables[index&(partitionIndexCount-1)]
}

func (d *BlockSizeDescriptor) partitionTablesFor(count int) []*PartitionTable {
	d.partitionOnce[count].Do(func() {
		if count == 1 {
			d.partitionTables[1] = []*PartitionTable{newPartitionTable(d.Footprint, 1, 0)}
			return
		}
		tables := make([]*PartitionTable, partitionIndexCount)
		for i := range tables {
			tables[i] = newPartitionTable(d.Footprint, count, i)
		}
		d.partitionTables[count] = tables
	})
	return d.partitionTables[count]
}
