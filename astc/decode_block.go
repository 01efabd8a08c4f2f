package astc

// decodedBlock holds one block's texels as interpolated 16-bit values:
// UNORM16 for LDR channels and LNS for HDR channels.
type decodedBlock struct {
	texels [blockMaxTexels]int4
	// Per-partition HDR flags, by texel via partitionOf.
	rgbHDR, alphaHDR [blockMaxPartitions]bool
	partitionOf      []uint8
}

func (db *decodedBlock) texelHDR(t int) (rgb, alpha bool) {
	p := 0
	if db.partitionOf != nil {
		p = int(db.partitionOf[t])
	}
	return db.rgbHDR[p], db.alphaHDR[p]
}

// decodeTexels interpolates every texel of a normal block. It returns false
// when the block cannot be decoded under the profile.
func decodeTexels(profile Profile, d *BlockSizeDescriptor, info *BlockInfo, out *decodedBlock) bool {
	if info.Kind != BlockNormal {
		return false
	}
	mode, ok := d.Mode(info.BlockMode)
	if !ok {
		return false
	}
	dt := d.modeDecimation(info.BlockMode)

	var e0, e1 [blockMaxPartitions]int4
	for p := 0; p < info.PartitionCount; p++ {
		var vals [blockMaxColorValues]uint8
		n := info.Formats[p].ValueCount()
		for i := 0; i < n; i++ {
			vals[i] = colorUnquant[info.ColorQuant][info.ColorValues[p][i]]
		}
		e0[p], e1[p], out.rgbHDR[p], out.alphaHDR[p], ok = unpackEndpoints(profile, info.Formats[p], vals[:n])
		if !ok {
			return false
		}
	}

	out.partitionOf = nil
	if info.PartitionCount > 1 {
		out.partitionOf = d.PartitionTable(info.PartitionCount, info.PartitionIndex).PartitionOf
	}

	var grid [2][blockMaxWeights]uint8
	info.unquantizedWeights(0, grid[0][:])
	if mode.DualPlane {
		info.unquantizedWeights(1, grid[1][:])
	}

	for t := 0; t < d.TexelCount; t++ {
		p := 0
		if out.partitionOf != nil {
			p = int(out.partitionOf[t])
		}
		w0 := dt.infill(grid[0][:], t)
		w1 := w0
		if mode.DualPlane {
			w1 = dt.infill(grid[1][:], t)
		}
		for c := 0; c < 4; c++ {
			w := w0
			if c == info.Plane2Component {
				w = w1
			}
			out.texels[t][c] = (e0[p][c]*(64-w) + e1[p][c]*w + 32) >> 6
		}
	}
	return true
}

func fillErrorRGBA8(dst []byte) {
	for i := 0; i+3 < len(dst); i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = 0, 0, 0, 0xFF
	}
}

func fillErrorF16(dst []uint16) {
	for i := 0; i+3 < len(dst); i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = 0, 0, 0, halfOne
	}
}

// decodeBlockRGBA8 decodes one block into texelCount RGBA8 texels in block
// scan order. HDR content is an error under the LDR profiles this serves.
func decodeBlockRGBA8(profile Profile, d *BlockSizeDescriptor, block []byte, out []byte) {
	dst := out[:d.TexelCount*4]
	info := physicalToSymbolic(d, block)
	switch info.Kind {
	case BlockVoidExtentLDR:
		c := info.ConstantColor
		for i := 0; i < len(dst); i += 4 {
			dst[i], dst[i+1], dst[i+2], dst[i+3] = uint8(c[0]>>8), uint8(c[1]>>8), uint8(c[2]>>8), uint8(c[3]>>8)
		}
		return
	case BlockNormal:
		var db decodedBlock
		if profile.IsHDR() || !decodeTexels(profile, d, &info, &db) {
			break
		}
		for t := 0; t < d.TexelCount; t++ {
			for c := 0; c < 4; c++ {
				dst[4*t+c] = uint8(db.texels[t][c] >> 8)
			}
		}
		return
	}
	fillErrorRGBA8(dst)
}

// decodeBlockF16 decodes one block into texelCount RGBA FP16 texels.
func decodeBlockF16(profile Profile, d *BlockSizeDescriptor, block []byte, out []uint16) {
	dst := out[:d.TexelCount*4]
	info := physicalToSymbolic(d, block)
	switch info.Kind {
	case BlockVoidExtentLDR:
		var h [4]uint16
		for c := 0; c < 4; c++ {
			h[c] = unorm16ToSF16(info.ConstantColor[c])
			if profile == ProfileLDRSRGB {
				h[c] = unorm16ToSF16(info.ConstantColor[c] >> 8 * 257)
			}
		}
		for i := 0; i < len(dst); i += 4 {
			copy(dst[i:i+4], h[:])
		}
		return
	case BlockVoidExtentHDR:
		if !profile.IsHDR() {
			break
		}
		for i := 0; i < len(dst); i += 4 {
			copy(dst[i:i+4], info.ConstantColor[:])
		}
		return
	case BlockNormal:
		var db decodedBlock
		if !decodeTexels(profile, d, &info, &db) {
			break
		}
		for t := 0; t < d.TexelCount; t++ {
			rgbHDR, alphaHDR := db.texelHDR(t)
			for c := 0; c < 4; c++ {
				v := uint16(clampInt(db.texels[t][c], 0, 0xFFFF))
				hdr := rgbHDR
				if c == 3 {
					hdr = alphaHDR
				}
				switch {
				case hdr:
					dst[4*t+c] = lnsToSF16(v)
				case profile == ProfileLDRSRGB:
					dst[4*t+c] = unorm16ToSF16(v >> 8 * 257)
				default:
					dst[4*t+c] = unorm16ToSF16(v)
				}
			}
		}
		return
	}
	fillErrorF16(dst)
}
