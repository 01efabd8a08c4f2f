package astc

import (
	"encoding/binary"
	"math/bits"
)

// readBits returns bitCount (<= 32) bits starting at bitOffset. Bit 0 is the
// least significant bit of data[0]. Bits past the end of data read as zero.
func readBits(data []byte, bitOffset, bitCount int) uint32 {
	if bitCount <= 0 || bitOffset < 0 {
		return 0
	}
	byteOff := bitOffset >> 3
	var window uint64
	for i := 0; i < 5 && byteOff+i < len(data); i++ {
		window |= uint64(data[byteOff+i]) << (8 * uint(i))
	}
	window >>= uint(bitOffset & 7)
	return uint32(window & (uint64(1)<<uint(bitCount) - 1))
}

// writeBits stores the low bitCount (<= 32) bits of value at bitOffset,
// leaving the surrounding bits untouched. Bits past the end of data are dropped.
func writeBits(data []byte, bitOffset, bitCount int, value uint32) {
	if bitCount <= 0 || bitOffset < 0 {
		return
	}
	mask := uint64(1)<<uint(bitCount) - 1
	shift := uint(bitOffset & 7)
	v := (uint64(value) & mask) << shift
	mask <<= shift
	byteOff := bitOffset >> 3
	for i := 0; i < 5 && byteOff+i < len(data); i++ {
		m := byte(mask >> (8 * uint(i)))
		if m == 0 {
			continue
		}
		data[byteOff+i] = data[byteOff+i]&^m | byte(v>>(8*uint(i)))&m
	}
}

// reverseBlock bit-reverses a whole 128-bit block: bit k of src becomes bit
// 127-k of the result. Weight data is stored this way.
func reverseBlock(src []byte) [BlockBytes]byte {
	lo := binary.LittleEndian.Uint64(src[0:8])
	hi := binary.LittleEndian.Uint64(src[8:16])
	var out [BlockBytes]byte
	binary.LittleEndian.PutUint64(out[0:8], bits.Reverse64(hi))
	binary.LittleEndian.PutUint64(out[8:16], bits.Reverse64(lo))
	return out
}
