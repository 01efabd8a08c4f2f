package astc

const (
	// BlockBytes is the size in bytes of a single ASTC block payload.
	BlockBytes = 16
)

// constBlock builds a void-extent block without a coordinate box. The all-ones
// box encodes to the same bytes for 2D and 3D footprints.
func constBlock(kind BlockKind, c [4]uint16) [BlockBytes]byte {
	info := BlockInfo{Kind: kind, ConstantColor: c, Extent: noExtent(Footprint{4, 4, 1})}
	return encodeVoidExtent(Footprint{4, 4, 1}, &info)
}

// EncodeConstBlockUNorm16 encodes a constant-color block storing UNORM16 RGBA values.
func EncodeConstBlockUNorm16(r, g, b, a uint16) [BlockBytes]byte {
	return constBlock(BlockVoidExtentLDR, [4]uint16{r, g, b, a})
}

// EncodeConstBlockRGBA8 encodes a constant-color block for an RGBA8 pixel.
// Channels are widened by bit replication (v*257), so LDR decoding returns
// the pixel exactly.
func EncodeConstBlockRGBA8(r, g, b, a uint8) [BlockBytes]byte {
	return EncodeConstBlockUNorm16(uint16(r)*257, uint16(g)*257, uint16(b)*257, uint16(a)*257)
}

// EncodeConstBlockF16 encodes a constant-color block storing FP16 RGBA values.
// Such blocks only decode in HDR profiles.
func EncodeConstBlockF16(r, g, b, a uint16) [BlockBytes]byte {
	return constBlock(BlockVoidExtentHDR, [4]uint16{r, g, b, a})
}

// DecodeConstBlockRGBA8 decodes a constant-color block into an RGBA8 value.
// FP16 blocks are clamped to 0..1.
func DecodeConstBlockRGBA8(block []byte) (r, g, b, a uint8, err error) {
	if len(block) < BlockBytes {
		return 0, 0, 0, 0, errUnexpectedEOF("astc block", BlockBytes, len(block))
	}
	if int(readBits(block, 0, 9)) != voidExtentMode {
		return 0, 0, 0, 0, newError(ErrBadData, "astc: not a constant-color block")
	}

	// The color does not depend on the footprint; 2D parsing also checks
	// the reserved bits.
	info := decodeVoidExtent(Footprint{4, 4, 1}, block)
	c := info.ConstantColor
	switch info.Kind {
	case BlockVoidExtentLDR:
		return unorm16ToUnorm8(c[0]), unorm16ToUnorm8(c[1]), unorm16ToUnorm8(c[2]), unorm16ToUnorm8(c[3]), nil
	case BlockVoidExtentHDR:
		return float01ToUnorm8(halfToFloat32(c[0])), float01ToUnorm8(halfToFloat32(c[1])),
			float01ToUnorm8(halfToFloat32(c[2])), float01ToUnorm8(halfToFloat32(c[3])), nil
	}
	return 0, 0, 0, 0, newError(ErrBadData, "astc: malformed constant-color block")
}
