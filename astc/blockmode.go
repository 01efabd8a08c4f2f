package astc

import "fmt"

const (
	blockMaxWeights      = 64
	blockMinWeightBits   = 24
	blockMaxWeightBits   = 96
	blockModeCount       = 2048
	partitionIndexBits   = 10
	partitionIndexCount  = 1 << partitionIndexBits
	blockMaxPartitions   = 4
	blockMaxTexels       = 216
	blockMaxColorValues  = 8
	blockMaxColorInts    = 18
	blockMaxColorIntsBuf = 32

	// Weight modes carried from the cheap estimate into full refinement.
	maxWeightModes = 4
)

// BlockMode is the weight grid description held in the 11-bit mode field.
type BlockMode struct {
	XWeights, YWeights, ZWeights int
	DualPlane                    bool
	WeightQuant                  QuantMethod
}

// WeightCount returns the number of weights per plane.
func (m BlockMode) WeightCount() int { return m.XWeights * m.YWeights * m.ZWeights }

// PlaneCount returns 1 or 2.
func (m BlockMode) PlaneCount() int {
	if m.DualPlane {
		return 2
	}
	return 1
}

// WeightBits returns the size of the ISE encoded weights of all planes.
func (m BlockMode) WeightBits() int {
	return iseBitCount(m.WeightQuant, m.WeightCount()*m.PlaneCount())
}

func (m BlockMode) String() string {
	dual := ""
	if m.DualPlane {
		dual = " dual"
	}
	return fmt.Sprintf("%dx%dx%d %v%s", m.XWeights, m.YWeights, m.ZWeights, m.WeightQuant, dual)
}

// blockModeField holds the sub-fields of a mode word.
type blockModeField struct {
	r01  int // mode & 3
	r23  int // bits 2-3
	a    int // bits 5-6
	b    int // bits 7-8
	b910 int // bits 9-10
	bit8 int
}

func splitBlockMode(mode int) blockModeField {
	return blockModeField{
		r01:  mode & 3,
		r23:  (mode >> 2) & 3,
		a:    (mode >> 5) & 3,
		b:    (mode >> 7) & 3,
		b910: (mode >> 9) & 3,
		bit8: (mode >> 8) & 1,
	}
}

// blockModeClass is one row of the ASTC weight grid layout table. Classes with
// lowQuant keep the quant bits R1-R2 in bits 0-1, the others in bits 2-3.
// singlePlane classes reuse bits 9-10, so they never carry H or D.
type blockModeClass struct {
	name        string
	lowQuant    bool
	singlePlane bool
	match       func(f blockModeField) bool
	grid        func(f blockModeField) (x, y, z int)
}

var blockModeClasses2D = []blockModeClass{
	{
		name: "B+4 x A+2", lowQuant: true,
		match: func(f blockModeField) bool { return f.r01 != 0 && f.r23 == 0 },
		grid:  func(f blockModeField) (int, int, int) { return f.b + 4, f.a + 2, 1 },
	},
	{
		name: "B+8 x A+2", lowQuant: true,
		match: func(f blockModeField) bool { return f.r01 != 0 && f.r23 == 1 },
		grid:  func(f blockModeField) (int, int, int) { return f.b + 8, f.a + 2, 1 },
	},
	{
		name: "A+2 x B+8", lowQuant: true,
		match: func(f blockModeField) bool { return f.r01 != 0 && f.r23 == 2 },
		grid:  func(f blockModeField) (int, int, int) { return f.a + 2, f.b + 8, 1 },
	},
	{
		name: "B+2 x A+2", lowQuant: true,
		match: func(f blockModeField) bool { return f.r01 != 0 && f.r23 == 3 && f.bit8 == 1 },
		grid:  func(f blockModeField) (int, int, int) { return f.b&1 + 2, f.a + 2, 1 },
	},
	{
		name: "A+2 x B+6", lowQuant: true,
		match: func(f blockModeField) bool { return f.r01 != 0 && f.r23 == 3 && f.bit8 == 0 },
		grid:  func(f blockModeField) (int, int, int) { return f.a + 2, f.b&1 + 6, 1 },
	},
	{
		name:  "12 x A+2",
		match: func(f blockModeField) bool { return f.r01 == 0 && f.r23 != 0 && f.b == 0 },
		grid:  func(f blockModeField) (int, int, int) { return 12, f.a + 2, 1 },
	},
	{
		name:  "A+2 x 12",
		match: func(f blockModeField) bool { return f.r01 == 0 && f.r23 != 0 && f.b == 1 },
		grid:  func(f blockModeField) (int, int, int) { return f.a + 2, 12, 1 },
	},
	{
		name: "A+6 x B+6", singlePlane: true,
		match: func(f blockModeField) bool { return f.r01 == 0 && f.r23 != 0 && f.b == 2 },
		grid:  func(f blockModeField) (int, int, int) { return f.a + 6, f.b910 + 6, 1 },
	},
	{
		name:  "6 x 10",
		match: func(f blockModeField) bool { return f.r01 == 0 && f.r23 != 0 && f.b == 3 && f.a == 0 },
		grid:  func(f blockModeField) (int, int, int) { return 6, 10, 1 },
	},
	{
		name:  "10 x 6",
		match: func(f blockModeField) bool { return f.r01 == 0 && f.r23 != 0 && f.b == 3 && f.a == 1 },
		grid:  func(f blockModeField) (int, int, int) { return 10, 6, 1 },
	},
}

var blockModeClasses3D = []blockModeClass{
	{
		name: "A+2 x B+2 x C+2", lowQuant: true,
		match: func(f blockModeField) bool { return f.r01 != 0 },
		grid:  func(f blockModeField) (int, int, int) { return f.a + 2, f.b + 2, f.r23 + 2 },
	},
	{
		name: "6 x B+2 x A+2", singlePlane: true,
		match: func(f blockModeField) bool { return f.r01 == 0 && f.r23 != 0 && f.b == 0 },
		grid:  func(f blockModeField) (int, int, int) { return 6, f.b910 + 2, f.a + 2 },
	},
	{
		name: "A+2 x 6 x B+2", singlePlane: true,
		match: func(f blockModeField) bool { return f.r01 == 0 && f.r23 != 0 && f.b == 1 },
		grid:  func(f blockModeField) (int, int, int) { return f.a + 2, 6, f.b910 + 2 },
	},
	{
		name: "A+2 x B+2 x 6", singlePlane: true,
		match: func(f blockModeField) bool { return f.r01 == 0 && f.r23 != 0 && f.b == 2 },
		grid:  func(f blockModeField) (int, int, int) { return f.a + 2, f.b910 + 2, 6 },
	},
	{
		name:  "6 x 2 x 2",
		match: func(f blockModeField) bool { return f.r01 == 0 && f.r23 != 0 && f.b == 3 && f.a == 0 },
		grid:  func(f blockModeField) (int, int, int) { return 6, 2, 2 },
	},
	{
		name:  "2 x 6 x 2",
		match: func(f blockModeField) bool { return f.r01 == 0 && f.r23 != 0 && f.b == 3 && f.a == 1 },
		grid:  func(f blockModeField) (int, int, int) { return 2, 6, 2 },
	},
	{
		name:  "2 x 2 x 6",
		match: func(f blockModeField) bool { return f.r01 == 0 && f.r23 != 0 && f.b == 3 && f.a == 2 },
		grid:  func(f blockModeField) (int, int, int) { return 2, 2, 6 },
	},
}

func findBlockModeClass(mode int, is3D bool) (blockModeClass, blockModeField, bool) {
	classes := blockModeClasses2D
	if is3D {
		classes = blockModeClasses3D
	}
	f := splitBlockMode(mode)
	for _, c := range classes {
		if c.match(f) {
			return c, f, true
		}
	}
	return blockModeClass{}, f, false
}

// DecodeBlockMode decodes an 11-bit block mode. It returns false for reserved
// encodings and for grids that break the weight count or weight bit limits.
func DecodeBlockMode(mode int, is3D bool) (BlockMode, bool) {
	if mode < 0 || mode >= blockModeCount {
		return BlockMode{}, false
	}
	class, f, ok := findBlockModeClass(mode, is3D)
	if !ok {
		return BlockMode{}, false
	}

	r := (mode >> 4) & 1
	if class.lowQuant {
		r |= f.r01 << 1
	} else {
		r |= f.r23 << 1
	}
	h := (mode >> 9) & 1
	d := (mode >> 10) & 1
	if class.singlePlane {
		h, d = 0, 0
	}

	x, y, z := class.grid(f)
	m := BlockMode{
		XWeights:    x,
		YWeights:    y,
		ZWeights:    z,
		DualPlane:   d != 0,
		WeightQuant: QuantMethod(r - 2 + 6*h),
	}
	if !m.valid() {
		return BlockMode{}, false
	}
	return m, true
}

func (m BlockMode) valid() bool {
	if m.WeightQuant > maxWeightQuant {
		return false
	}
	if m.WeightCount()*m.PlaneCount() > blockMaxWeights {
		return false
	}
	bits := m.WeightBits()
	return bits >= blockMinWeightBits && bits <= blockMaxWeightBits
}
