package astc

// Packed trit/quint blocks and their digit tuples. The forward tables follow
// the ASTC format's bit-manipulation procedure; the inverse
// tables keep the smallest packed value per tuple so that trailing zero
// digits never need high packed bits.
var (
	tritsOfInteger  [256][5]uint8
	quintsOfInteger [128][3]uint8

	integerOfTrits  [3][3][3][3][3]uint8
	integerOfQuints [5][5][5]uint8
)

func init() {
	for packed := 0; packed < 256; packed++ {
		tritsOfInteger[packed] = unpackTritBlock(packed)
	}
	for packed := 0; packed < 128; packed++ {
		quintsOfInteger[packed] = unpackQuintBlock(packed)
	}
	for packed := 255; packed >= 0; packed-- {
		t := tritsOfInteger[packed]
		integerOfTrits[t[4]][t[3]][t[2]][t[1]][t[0]] = uint8(packed)
	}
	for packed := 127; packed >= 0; packed-- {
		q := quintsOfInteger[packed]
		integerOfQuints[q[2]][q[1]][q[0]] = uint8(packed)
	}
}

func bitAt(v, i int) int { return (v >> uint(i)) & 1 }

func unpackTritBlock(T int) [5]uint8 {
	var c, t0, t1, t2, t3, t4 int
	if (T>>2)&7 == 7 {
		c = (T>>5)&7<<2 | T&3
		t4, t3 = 2, 2
	} else {
		c = T & 0x1F
		if (T>>5)&3 == 3 {
			t4, t3 = 2, bitAt(T, 7)
		} else {
			t4, t3 = bitAt(T, 7), (T>>5)&3
		}
	}

	switch {
	case c&3 == 3:
		t2 = 2
		t1 = bitAt(c, 4)
		t0 = bitAt(c, 3)<<1 | bitAt(c, 2)&^bitAt(c, 3)
	case (c>>2)&3 == 3:
		t2, t1, t0 = 2, 2, c&3
	default:
		t2 = bitAt(c, 4)
		t1 = (c >> 2) & 3
		t0 = bitAt(c, 1)<<1 | bitAt(c, 0)&^bitAt(c, 1)
	}
	return [5]uint8{uint8(t0), uint8(t1), uint8(t2), uint8(t3), uint8(t4)}
}

func unpackQuintBlock(Q int) [3]uint8 {
	var q0, q1, q2 int
	if (Q>>1)&3 == 3 && (Q>>5)&3 == 0 {
		q0bit := bitAt(Q, 0)
		q2 = q0bit<<2 | (bitAt(Q, 4)&^q0bit)<<1 | bitAt(Q, 3)&^q0bit
		q1, q0 = 4, 4
		return [3]uint8{uint8(q0), uint8(q1), uint8(q2)}
	}

	var c int
	if (Q>>1)&3 == 3 {
		q2 = 4
		c = (Q>>3)&3<<3 | (^(Q>>5)&3)<<1 | Q&1
	} else {
		q2 = (Q >> 5) & 3
		c = Q & 0x1F
	}
	if c&7 == 5 {
		q1, q0 = 4, (c>>3)&3
	} else {
		q1, q0 = (c>>3)&3, c&7
	}
	return [3]uint8{uint8(q0), uint8(q1), uint8(q2)}
}
