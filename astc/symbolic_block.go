package astc

import (
	"encoding/binary"
	"fmt"
)

// BlockKind classifies a decoded block.
type BlockKind uint8

const (
	// BlockNormal is a weighted block with 1 to 4 partitions.
	BlockNormal BlockKind = iota
	// BlockVoidExtentLDR is a constant-color block storing UNORM16 values.
	BlockVoidExtentLDR
	// BlockVoidExtentHDR is a constant-color block storing FP16 values.
	BlockVoidExtentHDR
	// BlockError is a malformed block. It decodes to opaque black.
	BlockError
)

func (k BlockKind) String() string {
	switch k {
	case BlockNormal:
		return "normal"
	case BlockVoidExtentLDR:
		return "void-extent-ldr"
	case BlockVoidExtentHDR:
		return "void-extent-hdr"
	case BlockError:
		return "error"
	}
	return fmt.Sprintf("BlockKind(%d)", uint8(k))
}

const (
	// Bit positions of the block header fields.
	partitionCountPos = 11
	formatPos1        = 13
	partitionIndexPos = 13
	formatPosN        = partitionIndexPos + partitionIndexBits
	colorPos1         = 17
	colorPosN         = formatPosN + 6

	voidExtentMode = 0x1FC
	voidExtentHDR  = 0x200
)

// BlockInfo is the symbolic form of one physical block. Color values and
// weights hold ISE values; use the accessors for unquantized values.
type BlockInfo struct {
	Kind BlockKind

	// BlockMode is the 11-bit mode field and Mode its decoded form.
	BlockMode      int
	Mode           BlockMode
	PartitionCount int
	PartitionIndex int
	Formats        [blockMaxPartitions]EndpointFormat
	// FormatsMatched is set when every partition shares one format, which
	// the block stores in the short form.
	FormatsMatched bool
	ColorQuant     QuantMethod
	ColorValues    [blockMaxPartitions][blockMaxColorValues]uint8
	// Plane2Component is the channel driven by the second weight plane, or
	// -1 for single-plane blocks.
	Plane2Component int
	Weights         [2][blockMaxWeights]uint8

	// ConstantColor holds the void-extent color: UNORM16 for
	// BlockVoidExtentLDR, FP16 bits for BlockVoidExtentHDR.
	ConstantColor [4]uint16
	// Extent is the void-extent coordinate box: min/max S, T and (3D) P.
	Extent [6]int
}

// noExtent returns the all-ones extent that marks a void-extent block as
// carrying no coordinate box.
func noExtent(fp Footprint) [6]int {
	if fp.Is3D() {
		return [6]int{0x1FF, 0x1FF, 0x1FF, 0x1FF, 0x1FF, 0x1FF}
	}
	return [6]int{0x1FFF, 0x1FFF, 0x1FFF, 0x1FFF, 0, 0}
}

// ColorValueCount returns the number of color integers the block stores.
func (b *BlockInfo) ColorValueCount() int {
	n := 0
	for p := 0; p < b.PartitionCount; p++ {
		n += b.Formats[p].ValueCount()
	}
	return n
}

// UnquantizedColors returns partition p's color values in 0..255.
func (b *BlockInfo) UnquantizedColors(p int) []uint8 {
	n := b.Formats[p].ValueCount()
	out := make([]uint8, n)
	for i := 0; i < n; i++ {
		out[i] = colorUnquant[b.ColorQuant][b.ColorValues[p][i]]
	}
	return out
}

// unquantizedWeights returns the 0..64 grid weights of one plane.
func (b *BlockInfo) unquantizedWeights(plane int, out []uint8) []uint8 {
	n := b.Mode.WeightCount()
	for i := 0; i < n; i++ {
		out[i] = weightUnquant[b.Mode.WeightQuant][b.Weights[plane][i]]
	}
	return out[:n]
}

// colorBitBudget returns the bits left for color integers once the header,
// the weights, the dual-plane selector and the extra format bits are placed.
func colorBitBudget(partitionCount, weightBits int, dualPlane, matched bool) int {
	bits := 128 - colorPosN - weightBits
	if partitionCount == 1 {
		bits = 128 - colorPos1 - weightBits
	} else if !matched {
		bits -= 3*partitionCount - 4
	}
	if dualPlane {
		bits -= 2
	}
	return max(bits, 0)
}

// DecodeSymbolic unpacks a physical block of footprint fp. Malformed blocks
// return Kind == BlockError; it never fails otherwise.
func DecodeSymbolic(fp Footprint, block []byte) BlockInfo {
	if fp.Z == 0 {
		fp.Z = 1
	}
	if fp.Validate() != nil || len(block) < BlockBytes {
		return BlockInfo{Kind: BlockError, Plane2Component: -1}
	}
	return physicalToSymbolic(getBlockSizeDescriptor(fp), block)
}

func physicalToSymbolic(d *BlockSizeDescriptor, block []byte) (info BlockInfo) {
	info.Plane2Component = -1
	fail := func() BlockInfo {
		return BlockInfo{Kind: BlockError, BlockMode: info.BlockMode, Plane2Component: -1}
	}

	blockMode := int(readBits(block, 0, 11))
	info.BlockMode = blockMode
	if blockMode&0x1FF == voidExtentMode {
		return decodeVoidExtent(d.Footprint, block)
	}

	mode, ok := d.Mode(blockMode)
	if !ok {
		return fail()
	}
	info.Mode = mode
	info.PartitionCount = int(readBits(block, partitionCountPos, 2)) + 1
	if mode.DualPlane && info.PartitionCount == 4 {
		return fail()
	}

	// Weights are stored bit-reversed from the top of the block.
	rev := reverseBlock(block)
	weightCount := mode.WeightCount() * mode.PlaneCount()
	var raw [blockMaxWeights]uint8
	decodeISE(mode.WeightQuant, weightCount, rev[:], 0, raw[:weightCount])
	if mode.DualPlane {
		for i := 0; i < mode.WeightCount(); i++ {
			info.Weights[0][i] = raw[2*i]
			info.Weights[1][i] = raw[2*i+1]
		}
	} else {
		copy(info.Weights[0][:], raw[:weightCount])
	}

	weightBits := mode.WeightBits()
	belowWeights := 128 - weightBits
	if info.PartitionCount == 1 {
		info.Formats[0] = EndpointFormat(readBits(block, formatPos1, 4))
		info.FormatsMatched = true
	} else {
		info.PartitionIndex = int(readBits(block, partitionIndexPos, partitionIndexBits))
		encoded := int(readBits(block, formatPosN, 6))
		if encoded&3 == 0 {
			for p := 0; p < info.PartitionCount; p++ {
				info.Formats[p] = EndpointFormat(encoded >> 2 & 0xF)
			}
			info.FormatsMatched = true
		} else {
			extra := 3*info.PartitionCount - 4
			belowWeights -= extra
			encoded |= int(readBits(block, belowWeights, extra)) << 6
			base := encoded&3 - 1
			pos := 2
			for p := 0; p < info.PartitionCount; p++ {
				info.Formats[p] = EndpointFormat((encoded>>pos&1 + base) << 2)
				pos++
			}
			for p := 0; p < info.PartitionCount; p++ {
				info.Formats[p] |= EndpointFormat(encoded >> pos & 3)
				pos += 2
			}
		}
	}

	colorCount := info.ColorValueCount()
	if colorCount > blockMaxColorInts {
		return fail()
	}
	colorBits := colorBitBudget(info.PartitionCount, weightBits, mode.DualPlane, info.FormatsMatched)
	q := quantLevelForBits(colorCount, colorBits)
	if q < int(Quant6) {
		return fail()
	}
	info.ColorQuant = QuantMethod(q)

	colorPos := colorPos1
	if info.PartitionCount > 1 {
		colorPos = colorPosN
	}
	var values [blockMaxColorIntsBuf]uint8
	decodeISE(info.ColorQuant, colorCount, block, colorPos, values[:colorCount])
	off := 0
	for p := 0; p < info.PartitionCount; p++ {
		n := info.Formats[p].ValueCount()
		copy(info.ColorValues[p][:n], values[off:off+n])
		off += n
	}

	if mode.DualPlane {
		info.Plane2Component = int(readBits(block, belowWeights-2, 2))
	}
	return info
}

func decodeVoidExtent(fp Footprint, block []byte) BlockInfo {
	info := BlockInfo{Kind: BlockVoidExtentLDR, BlockMode: int(readBits(block, 0, 11)), Plane2Component: -1}
	if info.BlockMode&voidExtentHDR != 0 {
		info.Kind = BlockVoidExtentHDR
	}
	for i := range info.ConstantColor {
		info.ConstantColor[i] = binary.LittleEndian.Uint16(block[8+2*i:])
	}

	if !fp.Is3D() {
		if readBits(block, 10, 2) != 3 {
			return BlockInfo{Kind: BlockError, BlockMode: info.BlockMode, Plane2Component: -1}
		}
		for i := 0; i < 4; i++ {
			info.Extent[i] = int(readBits(block, 12+13*i, 13))
		}
	} else {
		for i := 0; i < 6; i++ {
			info.Extent[i] = int(readBits(block, 10+9*i, 9))
		}
	}

	if info.Extent != noExtent(fp) {
		axes := 2
		if fp.Is3D() {
			axes = 3
		}
		for a := 0; a < axes; a++ {
			if info.Extent[2*a] >= info.Extent[2*a+1] {
				return BlockInfo{Kind: BlockError, BlockMode: info.BlockMode, Plane2Component: -1}
			}
		}
	}
	return info
}
