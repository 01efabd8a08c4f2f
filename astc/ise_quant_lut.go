package astc

// quantizationTable maps (color value count, available bits) to the highest
// quantization level whose ISE encoding fits, or -1 when none does.
// Value counts are even (two per endpoint pair) up to blockMaxColorInts, but
// every count up to blockMaxColorIntsBuf is filled so encoder estimates can
// index it freely.
const quantTableMaxBits = 128

var quantizationTable [blockMaxColorIntsBuf + 1][quantTableMaxBits + 1]int8

func init() {
	for count := range quantizationTable {
		for bits := range quantizationTable[count] {
			best := int8(-1)
			if count > 0 {
				for q := Quant256; ; q-- {
					if iseBitCount(q, count) <= bits {
						best = int8(q)
						break
					}
					if q == Quant2 {
						break
					}
				}
			}
			quantizationTable[count][bits] = best
		}
	}
}

// quantLevelForBits returns the color quantization level for count values in
// bits, or -1 when nothing fits.
func quantLevelForBits(count, bits int) int {
	if count <= 0 || count > blockMaxColorIntsBuf || bits < 0 {
		return -1
	}
	if bits > quantTableMaxBits {
		bits = quantTableMaxBits
	}
	return int(quantizationTable[count][bits])
}
