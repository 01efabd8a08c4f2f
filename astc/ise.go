package astc

// Integer sequence encoding (ISE).
//
// A trit level packs 5 values into 5*bits + 8 bits, a quint level packs 3
// values into 3*bits + 7 bits. The packed T/Q bits are interleaved with the
// value bits as the tables below describe.

var tritBitsToRead = [5]uint8{2, 2, 1, 2, 1}
var tritBlockShift = [5]uint8{0, 2, 4, 5, 7}

var quintBitsToRead = [3]uint8{3, 2, 2}
var quintBlockShift = [3]uint8{0, 3, 5}

// iseBitCount returns the exact number of bits used by count values of level q.
func iseBitCount(q QuantMethod, count int) int {
	if !q.Valid() || count < 0 {
		return 1024
	}
	b := btqCounts[q]
	n := count * int(b.bits)
	switch {
	case b.trits:
		n += (8*count + 4) / 5
	case b.quints:
		n += (7*count + 2) / 3
	}
	return n
}

// decodeISE unpacks count values of level q starting at bitOffset into out.
// Sequences longer than blockMaxWeights are malformed and decode as zeros.
func decodeISE(q QuantMethod, count int, data []byte, bitOffset int, out []uint8) {
	if count > blockMaxWeights || !q.Valid() {
		clear(out)
		return
	}
	count = min(count, len(out))

	b := btqCounts[q]
	bits := int(b.bits)
	var packed [blockMaxWeights/3 + 1]uint8

	for i := 0; i < count; i++ {
		out[i] = uint8(readBits(data, bitOffset, bits))
		bitOffset += bits

		switch {
		case b.trits:
			j := i % 5
			n := int(tritBitsToRead[j])
			packed[i/5] |= uint8(readBits(data, bitOffset, n)) << tritBlockShift[j]
			bitOffset += n
		case b.quints:
			j := i % 3
			n := int(quintBitsToRead[j])
			packed[i/3] |= uint8(readBits(data, bitOffset, n)) << quintBlockShift[j]
			bitOffset += n
		}
	}

	switch {
	case b.trits:
		for i := 0; i < count; i++ {
			out[i] |= tritsOfInteger[packed[i/5]][i%5] << bits
		}
	case b.quints:
		for i := 0; i < count; i++ {
			out[i] |= quintsOfInteger[packed[i/3]&0x7F][i%3] << bits
		}
	}
}
