package astc

import "sort"

// unquantRule holds the C constant and the B bit pattern of a trit or quint
// level. Pattern letters name bits of the value's low part ('a' = bit 0),
// most significant first; '0' is a zero bit.
type unquantRule struct {
	c       int
	pattern string
}

var colorUnquantRules = map[QuantMethod]unquantRule{
	Quant6:   {c: 204},
	Quant10:  {c: 113},
	Quant12:  {c: 93, pattern: "b000b0bb0"},
	Quant20:  {c: 54, pattern: "b0000bb00"},
	Quant24:  {c: 44, pattern: "cb000cbcb"},
	Quant40:  {c: 26, pattern: "cb0000cbc"},
	Quant48:  {c: 22, pattern: "dcb000dcb"},
	Quant80:  {c: 13, pattern: "dcb0000dc"},
	Quant96:  {c: 11, pattern: "edcb000ed"},
	Quant160: {c: 6, pattern: "edcb0000e"},
	Quant192: {c: 5, pattern: "fedcb000f"},
}

var weightUnquantRules = map[QuantMethod]unquantRule{
	Quant6:  {c: 50},
	Quant10: {c: 28},
	Quant12: {c: 23, pattern: "b000b0b"},
	Quant20: {c: 13, pattern: "b0000b0"},
	Quant24: {c: 11, pattern: "cb000cb"},
}

const weightQuantSteps = 1024

var (
	// ISE value -> 0..255 endpoint value.
	colorUnquant [quantLevelCount][256]uint8
	// 0..255 -> nearest ISE value.
	colorQuant [quantLevelCount][256]uint8
	// 0..255 -> largest endpoint value <= x and smallest >= x.
	colorFloor [quantLevelCount][256]uint8
	colorCeil  [quantLevelCount][256]uint8

	// ISE value -> 0..64 weight.
	weightUnquant [maxWeightQuant + 1][32]uint8
	// 0..1024 (weight*16) -> nearest ISE value.
	weightQuant [maxWeightQuant + 1][weightQuantSteps + 1]uint8
	// ISE value -> position in ascending value order, and the inverse.
	weightRank   [maxWeightQuant + 1][32]uint8
	weightByRank [maxWeightQuant + 1][32]uint8
)

func init() {
	for q := Quant2; q <= Quant256; q++ {
		levels := q.Levels()
		for v := 0; v < levels; v++ {
			colorUnquant[q][v] = uint8(computeColorUnquant(q, v))
		}
		for x := 0; x < 256; x++ {
			best, bestDist := 0, 1<<30
			for v := 0; v < levels; v++ {
				d := absInt(int(colorUnquant[q][v]) - x)
				if d < bestDist || (d == bestDist && colorUnquant[q][v] < colorUnquant[q][best]) {
					best, bestDist = v, d
				}
			}
			colorQuant[q][x] = uint8(best)
		}
		// 0 and 255 are on every lattice.
		floor := 0
		for x := 0; x < 256; x++ {
			if int(colorUnquant[q][colorQuant[q][x]]) == x {
				floor = x
			}
			colorFloor[q][x] = uint8(floor)
		}
		ceil := 255
		for x := 255; x >= 0; x-- {
			if int(colorUnquant[q][colorQuant[q][x]]) == x {
				ceil = x
			}
			colorCeil[q][x] = uint8(ceil)
		}
	}

	for q := Quant2; q <= maxWeightQuant; q++ {
		levels := q.Levels()
		order := make([]int, levels)
		for v := 0; v < levels; v++ {
			weightUnquant[q][v] = uint8(computeWeightUnquant(q, v))
			order[v] = v
		}
		sort.Slice(order, func(i, j int) bool {
			return weightUnquant[q][order[i]] < weightUnquant[q][order[j]]
		})
		for r, v := range order {
			weightByRank[q][r] = uint8(v)
			weightRank[q][v] = uint8(r)
		}
		for x := 0; x <= weightQuantSteps; x++ {
			best, bestDist := 0, 1<<30
			for _, v := range order {
				d := absInt(int(weightUnquant[q][v])*16 - x)
				if d < bestDist {
					best, bestDist = v, d
				}
			}
			weightQuant[q][x] = uint8(best)
		}
	}
}

func patternValue(pattern string, low int) int {
	b := 0
	for i := 0; i < len(pattern); i++ {
		b <<= 1
		if ch := pattern[i]; ch != '0' {
			b |= (low >> uint(ch-'a')) & 1
		}
	}
	return b
}

// replicateBits repeats the from-bit value v until it fills to bits.
func replicateBits(v, from, to int) int {
	if from <= 0 {
		return 0
	}
	r, n := 0, 0
	for n < to {
		r = r<<uint(from) | v
		n += from
	}
	return r >> uint(n-to)
}

func computeColorUnquant(q QuantMethod, v int) int {
	b := btqCounts[q]
	bits := int(b.bits)
	if !b.trits && !b.quints {
		return replicateBits(v, bits, 8)
	}
	rule, ok := colorUnquantRules[q]
	if !ok {
		// QUANT_3 and QUANT_5 never carry endpoint colors.
		return (v*255 + (b.levels-1)/2) / (b.levels - 1)
	}
	low := v & (1<<uint(bits) - 1)
	d := v >> uint(bits)
	a := 0
	if low&1 != 0 {
		a = 0x1FF
	}
	t := d*rule.c + patternValue(rule.pattern, low)
	t ^= a
	return (a & 0x80) | (t >> 2)
}

func computeWeightUnquant(q QuantMethod, v int) int {
	b := btqCounts[q]
	bits := int(b.bits)
	var t int
	switch {
	case q == Quant3:
		return [3]int{0, 32, 64}[v]
	case q == Quant5:
		return [5]int{0, 16, 32, 48, 64}[v]
	case !b.trits && !b.quints:
		t = replicateBits(v, bits, 6)
	default:
		rule := weightUnquantRules[q]
		low := v & (1<<uint(bits) - 1)
		d := v >> uint(bits)
		a := 0
		if low&1 != 0 {
			a = 0x7F
		}
		t = d*rule.c + patternValue(rule.pattern, low)
		t ^= a
		t = (a & 0x20) | (t >> 2)
	}
	if t > 32 {
		t++
	}
	return t
}

// unquantColor maps an ISE value to its 0..255 endpoint value.
func unquantColor(q QuantMethod, v int) int { return int(colorUnquant[q][v]) }

// closestQuant maps a 0..255 value to the ISE value whose unquantized value is
// nearest. Ties resolve to the smaller unquantized value.
func closestQuant(q QuantMethod, x int) int { return int(colorQuant[q][clampInt(x, 0, 255)]) }

// snapColor returns the endpoint value of level q nearest to x.
func snapColor(q QuantMethod, x int) int { return unquantColor(q, closestQuant(q, x)) }

// snapColorMasked returns the endpoint value of level q nearest to x among
// those that agree with x on the bits of mask, a run of high bits. HDR
// formats keep mode and spare bits there.
func snapColorMasked(q QuantMethod, x, mask int) (int, bool) {
	x = clampInt(x, 0, 255)
	lo, hi := x&mask, x|^mask&0xFF
	u := snapColor(q, x)
	switch {
	case u > hi:
		u = int(colorFloor[q][x])
	case u < lo:
		u = int(colorCeil[q][x])
	}
	return u, u >= lo && u <= hi
}

// unquantWeight maps a weight ISE value to 0..64.
func unquantWeight(q QuantMethod, v int) int { return int(weightUnquant[q][v]) }

// closestQuant1024 maps a weight in 0..1024 fixed point to the nearest ISE value.
func closestQuant1024(q QuantMethod, x int) int {
	return int(weightQuant[q][clampInt(x, 0, weightQuantSteps)])
}

// quantizeWeight maps a 0..1 float weight to the nearest ISE value.
func quantizeWeight(q QuantMethod, w float32) int {
	return closestQuant1024(q, int(w*weightQuantSteps+0.5))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
