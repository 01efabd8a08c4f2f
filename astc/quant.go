package astc

import "fmt"

// QuantMethod is an ASTC integer-sequence quantization level.
//
// The numeric values are specified by the ASTC format and must not be reordered.
type QuantMethod uint8

const (
	Quant2   QuantMethod = 0
	Quant3   QuantMethod = 1
	Quant4   QuantMethod = 2
	Quant5   QuantMethod = 3
	Quant6   QuantMethod = 4
	Quant8   QuantMethod = 5
	Quant10  QuantMethod = 6
	Quant12  QuantMethod = 7
	Quant16  QuantMethod = 8
	Quant20  QuantMethod = 9
	Quant24  QuantMethod = 10
	Quant32  QuantMethod = 11
	Quant40  QuantMethod = 12
	Quant48  QuantMethod = 13
	Quant64  QuantMethod = 14
	Quant80  QuantMethod = 15
	Quant96  QuantMethod = 16
	Quant128 QuantMethod = 17
	Quant160 QuantMethod = 18
	Quant192 QuantMethod = 19
	Quant256 QuantMethod = 20

	quantLevelCount = 21

	// Weights never use more than 32 levels.
	maxWeightQuant = Quant32
)

// btqCount describes the element packing for a quantization level.
type btqCount struct {
	levels int
	bits   uint8
	trits  bool
	quints bool
}

var btqCounts = [quantLevelCount]btqCount{
	{levels: 2, bits: 1},
	{levels: 3, bits: 0, trits: true},
	{levels: 4, bits: 2},
	{levels: 5, bits: 0, quints: true},
	{levels: 6, bits: 1, trits: true},
	{levels: 8, bits: 3},
	{levels: 10, bits: 1, quints: true},
	{levels: 12, bits: 2, trits: true},
	{levels: 16, bits: 4},
	{levels: 20, bits: 2, quints: true},
	{levels: 24, bits: 3, trits: true},
	{levels: 32, bits: 5},
	{levels: 40, bits: 3, quints: true},
	{levels: 48, bits: 4, trits: true},
	{levels: 64, bits: 6},
	{levels: 80, bits: 4, quints: true},
	{levels: 96, bits: 5, trits: true},
	{levels: 128, bits: 7},
	{levels: 160, bits: 5, quints: true},
	{levels: 192, bits: 6, trits: true},
	{levels: 256, bits: 8},
}

// Valid reports whether q names one of the 21 ASTC levels.
func (q QuantMethod) Valid() bool { return q < quantLevelCount }

// Levels returns the number of representable values.
func (q QuantMethod) Levels() int {
	if !q.Valid() {
		return 0
	}
	return btqCounts[q].levels
}

// MaxValue returns the largest ISE value of the level.
func (q QuantMethod) MaxValue() int { return q.Levels() - 1 }

func (q QuantMethod) String() string {
	if !q.Valid() {
		return fmt.Sprintf("QuantMethod(%d)", uint8(q))
	}
	return fmt.Sprintf("QUANT_%d", btqCounts[q].levels)
}
