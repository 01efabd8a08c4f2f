package astc

import (
	"math/rand"
	"testing"
)

func TestISEBitCount(t *testing.T) {
	cases := []struct {
		q     QuantMethod
		count int
		want  int
	}{
		{Quant2, 10, 10},
		{Quant3, 5, 8},
		{Quant3, 1, 2},
		{Quant5, 3, 7},
		{Quant5, 1, 3},
		{Quant6, 5, 13},
		{Quant10, 4, 14},
		{Quant12, 16, 58},
		{Quant256, 8, 64},
	}
	for _, c := range cases {
		if got := iseBitCount(c.q, c.count); got != c.want {
			t.Fatalf("iseBitCount(%v, %d): got %d want %d", c.q, c.count, got, c.want)
		}
	}
}

func TestISERoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for q := Quant2; q <= Quant256; q++ {
		for _, count := range []int{1, 2, 3, 4, 5, 6, 7, 13, 16, 31, 64} {
			for _, offset := range []int{0, 3, 17} {
				values := make([]uint8, count)
				for i := range values {
					values[i] = uint8(rng.Intn(q.Levels()))
				}

				data := make([]byte, 96)
				encodeISE(q, values, data, offset)

				// Nothing may be written past the sequence's bit count.
				end := offset + iseBitCount(q, count)
				for bit := 0; bit < len(data)*8; bit++ {
					if (bit < offset || bit >= end) && readBits(data, bit, 1) != 0 {
						t.Fatalf("%v count=%d offset=%d: stray bit %d outside [%d,%d)", q, count, offset, bit, offset, end)
					}
				}

				got := make([]uint8, count)
				decodeISE(q, count, data, offset, got)
				for i := range values {
					if got[i] != values[i] {
						t.Fatalf("%v count=%d offset=%d: value %d: got %d want %d", q, count, offset, i, got[i], values[i])
					}
				}
			}
		}
	}
}

func TestISEDecodeRejectsOversizedSequence(t *testing.T) {
	data := make([]byte, 16)
	for i := range data {
		data[i] = 0xFF
	}
	out := make([]uint8, 16)
	for i := range out {
		out[i] = 9
	}

	// The limit applies to the declared length, not to what fits in out.
	decodeISE(Quant6, blockMaxWeights+36, data, 0, out[:8])
	for i, v := range out[:8] {
		if v != 0 {
			t.Fatalf("value %d: got %d want 0", i, v)
		}
	}
	if out[8] != 9 {
		t.Fatalf("value past out was written: got %d want 9", out[8])
	}

	// Every bit set: each value's low bit is 1.
	decodeISE(Quant6, 4, data, 0, out[:8])
	for i, v := range out[:4] {
		if v&1 != 1 {
			t.Fatalf("short sequence value %d: got %d want an odd value", i, v)
		}
	}
}
