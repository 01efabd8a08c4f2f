package astc

// encodeISE packs values (each a valid ISE value of level q) starting at
// bitOffset. It is the exact inverse of decodeISE: a trailing partial group
// writes only the bits the decoder reads.
func encodeISE(q QuantMethod, values []uint8, data []byte, bitOffset int) {
	if !q.Valid() {
		return
	}
	b := btqCounts[q]
	bits := int(b.bits)
	mask := uint8(1)<<uint(bits) - 1
	count := len(values)

	digit := func(i int) uint8 {
		if i < count {
			return values[i] >> uint(bits)
		}
		return 0
	}

	var packed uint8
	for i := 0; i < count; i++ {
		writeBits(data, bitOffset, bits, uint32(values[i]&mask))
		bitOffset += bits

		switch {
		case b.trits:
			j := i % 5
			if j == 0 {
				packed = integerOfTrits[digit(i+4)][digit(i+3)][digit(i+2)][digit(i+1)][digit(i)]
			}
			n := int(tritBitsToRead[j])
			writeBits(data, bitOffset, n, uint32(packed>>tritBlockShift[j]))
			bitOffset += n
		case b.quints:
			j := i % 3
			if j == 0 {
				packed = integerOfQuints[digit(i+2)][digit(i+1)][digit(i)]
			}
			n := int(quintBitsToRead[j])
			writeBits(data, bitOffset, n, uint32(packed>>quintBlockShift[j]))
			bitOffset += n
		}
	}
}
