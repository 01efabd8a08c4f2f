package astc

// halfToFloat32Table maps every FP16 bit pattern to its float32 value for the
// F32 decode path.
var halfToFloat32Table [1 << 16]float32

func init() {
	for i := range halfToFloat32Table {
		halfToFloat32Table[i] = halfToFloat32(uint16(i))
	}
}
