package astc

import (
	"encoding/binary"
	"fmt"
)

// EncodeSymbolic packs a symbolic block into its physical form. It is the
// inverse of DecodeSymbolic for every block that does not decode as an error.
// ColorQuant must equal the level the layout implies.
func EncodeSymbolic(fp Footprint, info *BlockInfo) ([BlockBytes]byte, error) {
	if fp.Z == 0 {
		fp.Z = 1
	}
	if err := fp.Validate(); err != nil {
		return [BlockBytes]byte{}, err
	}
	return symbolicToPhysical(getBlockSizeDescriptor(fp), info)
}

func symbolicToPhysical(d *BlockSizeDescriptor, info *BlockInfo) ([BlockBytes]byte, error) {
	var out [BlockBytes]byte
	switch info.Kind {
	case BlockError:
		return out, newError(ErrBadData, "astc: cannot encode an error block")
	case BlockVoidExtentLDR, BlockVoidExtentHDR:
		return encodeVoidExtent(d.Footprint, info), nil
	}

	mode, ok := d.Mode(info.BlockMode)
	if !ok {
		return out, newError(ErrBadData, fmt.Sprintf("astc: block mode %#x is not legal for %s", info.BlockMode, d.Footprint))
	}
	pc := info.PartitionCount
	if pc < 1 || pc > blockMaxPartitions || (mode.DualPlane && pc == 4) {
		return out, newError(ErrBadData, fmt.Sprintf("astc: bad partition count %d", pc))
	}

	matched := true
	minClass, maxClass := 3, 0
	for p := 0; p < pc; p++ {
		f := info.Formats[p]
		if f >= endpointFormatCount {
			return out, newError(ErrBadData, fmt.Sprintf("astc: bad endpoint format %d", f))
		}
		matched = matched && f == info.Formats[0]
		minClass = min(minClass, f.Class())
		maxClass = max(maxClass, f.Class())
	}
	if !matched && maxClass-minClass > 1 {
		return out, newError(ErrBadData, "astc: partition format classes differ by more than one")
	}

	weightBits := mode.WeightBits()
	colorCount := info.ColorValueCount()
	q := quantLevelForBits(colorCount, colorBitBudget(pc, weightBits, mode.DualPlane, matched))
	if colorCount > blockMaxColorInts || q < int(Quant6) {
		return out, newError(ErrBadData, "astc: color endpoints do not fit the block")
	}
	if QuantMethod(q) != info.ColorQuant {
		return out, newError(ErrBadData, fmt.Sprintf("astc: color quant %s does not match layout level %s", info.ColorQuant, QuantMethod(q)))
	}

	// Weights go in first, bit-reversed, so the header bits below them can
	// be written on top of a clean block.
	weightCount := mode.WeightCount()
	var raw [blockMaxWeights]uint8
	if mode.DualPlane {
		for i := 0; i < weightCount; i++ {
			raw[2*i] = info.Weights[0][i]
			raw[2*i+1] = info.Weights[1][i]
		}
	} else {
		copy(raw[:weightCount], info.Weights[0][:weightCount])
	}
	var rev [BlockBytes]byte
	encodeISE(mode.WeightQuant, raw[:weightCount*mode.PlaneCount()], rev[:], 0)
	out = reverseBlock(rev[:])

	writeBits(out[:], 0, 11, uint32(info.BlockMode))
	writeBits(out[:], partitionCountPos, 2, uint32(pc-1))

	belowWeights := 128 - weightBits
	colorPos := colorPos1
	if pc == 1 {
		writeBits(out[:], formatPos1, 4, uint32(info.Formats[0]))
	} else {
		colorPos = colorPosN
		writeBits(out[:], partitionIndexPos, partitionIndexBits, uint32(info.PartitionIndex))
		if matched {
			writeBits(out[:], formatPosN, 6, uint32(info.Formats[0])<<2)
		} else {
			encoded := minClass + 1
			pos := 2
			for p := 0; p < pc; p++ {
				encoded |= (info.Formats[p].Class() - minClass) << pos
				pos++
			}
			for p := 0; p < pc; p++ {
				encoded |= int(info.Formats[p]&3) << pos
				pos += 2
			}
			extra := 3*pc - 4
			belowWeights -= extra
			writeBits(out[:], formatPosN, 6, uint32(encoded&0x3F))
			writeBits(out[:], belowWeights, extra, uint32(encoded>>6))
		}
	}

	var values [blockMaxColorIntsBuf]uint8
	off := 0
	for p := 0; p < pc; p++ {
		n := info.Formats[p].ValueCount()
		copy(values[off:off+n], info.ColorValues[p][:n])
		off += n
	}
	encodeISE(info.ColorQuant, values[:colorCount], out[:], colorPos)

	if mode.DualPlane {
		writeBits(out[:], belowWeights-2, 2, uint32(info.Plane2Component))
	}
	return out, nil
}

func encodeVoidExtent(fp Footprint, info *BlockInfo) [BlockBytes]byte {
	var out [BlockBytes]byte
	mode := uint32(voidExtentMode)
	if info.Kind == BlockVoidExtentHDR {
		mode |= voidExtentHDR
	}
	writeBits(out[:], 0, 10, mode)
	if fp.Is3D() {
		for i := 0; i < 6; i++ {
			writeBits(out[:], 10+9*i, 9, uint32(info.Extent[i]))
		}
	} else {
		writeBits(out[:], 10, 2, 3)
		for i := 0; i < 4; i++ {
			writeBits(out[:], 12+13*i, 13, uint32(info.Extent[i]))
		}
	}
	for i, c := range info.ConstantColor {
		binary.LittleEndian.PutUint16(out[8+2*i:], c)
	}
	return out
}
