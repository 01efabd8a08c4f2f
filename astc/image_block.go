package astc

import "github.com/go-gl/mathgl/mgl32"

// imageBlock is the encoder's working copy of one block of texels in encoder
// space: 0..65535 per channel, UNORM16 for LDR channels and LNS for HDR ones.
type imageBlock struct {
	texels     [blockMaxTexels]mgl32.Vec4
	texelCount int

	// Per-channel bounds over the texels.
	dataMin, dataMax mgl32.Vec4

	// constant is set when every source texel is identical; constKind and
	// constColor then hold the void-extent payload for the block.
	constant   bool
	constKind  BlockKind
	constColor [4]uint16
}

// hdrAlpha reports whether the alpha channel is LNS under profile.
func hdrAlpha(profile Profile) bool { return profile == ProfileHDR }

func ldrEncoderValue(profile Profile, v uint8) float32 {
	if profile == ProfileLDRSRGB {
		return float32(int(v)<<8 | 0x80)
	}
	return float32(v) * 257
}

func unorm16Of(v float32) float32 {
	return float32(roundToInt(clampF32(v, 0, 1) * 65535))
}

// loadRGBA8 fills blk with the fp-sized block at (x0, y0, z0) of view.
func (blk *imageBlock) loadRGBA8(profile Profile, fp Footprint, view TexelView8, x0, y0, z0 int) {
	blk.texelCount = fp.TexelCount()
	first := view.At(x0, y0, z0)
	blk.constant = true

	t := 0
	for z := 0; z < fp.Z; z++ {
		for y := 0; y < fp.Y; y++ {
			for x := 0; x < fp.X; x++ {
				px := view.At(x0+x, y0+y, z0+z)
				if px != first {
					blk.constant = false
				}
				var v mgl32.Vec4
				for c := 0; c < 4; c++ {
					switch {
					case !profile.IsHDR():
						v[c] = ldrEncoderValue(profile, px[c])
					case c < 3 || hdrAlpha(profile):
						v[c] = float32(hdrTexelToLNS(float32(px[c]) * (1.0 / 255.0)))
					default:
						v[c] = float32(px[c]) * 257
					}
				}
				blk.texels[t] = v
				t++
			}
		}
	}

	if blk.constant {
		if profile.IsHDR() {
			blk.constKind = BlockVoidExtentHDR
			for c := 0; c < 4; c++ {
				blk.constColor[c] = float32ToHalf(float32(first[c]) * (1.0 / 255.0))
			}
		} else {
			blk.constKind = BlockVoidExtentLDR
			for c := 0; c < 4; c++ {
				blk.constColor[c] = uint16(blk.texels[0][c])
			}
		}
	}
	blk.computeBounds()
}

// loadF16 fills blk from an FP16 view. LDR profiles clamp to 0..1.
func (blk *imageBlock) loadF16(profile Profile, fp Footprint, view TexelViewF16, x0, y0, z0 int) {
	blk.texelCount = fp.TexelCount()
	first := view.At(x0, y0, z0)
	blk.constant = true

	t := 0
	for z := 0; z < fp.Z; z++ {
		for y := 0; y < fp.Y; y++ {
			for x := 0; x < fp.X; x++ {
				px := view.At(x0+x, y0+y, z0+z)
				if px != first {
					blk.constant = false
				}
				var v mgl32.Vec4
				for c := 0; c < 4; c++ {
					f := halfToFloat32(px[c])
					switch {
					case profile == ProfileLDRSRGB:
						v[c] = ldrEncoderValue(profile, float01ToUnorm8(f))
					case !profile.IsHDR():
						v[c] = unorm16Of(f)
					case c < 3 || hdrAlpha(profile):
						v[c] = float32(hdrTexelToLNS(f))
					default:
						v[c] = unorm16Of(f)
					}
				}
				blk.texels[t] = v
				t++
			}
		}
	}

	if blk.constant {
		if profile.IsHDR() {
			blk.constKind = BlockVoidExtentHDR
			blk.constColor = first
		} else {
			blk.constKind = BlockVoidExtentLDR
			for c := 0; c < 4; c++ {
				blk.constColor[c] = uint16(blk.texels[0][c])
			}
		}
	}
	blk.computeBounds()
}

func (blk *imageBlock) computeBounds() {
	lo := mgl32.Vec4{65535, 65535, 65535, 65535}
	hi := mgl32.Vec4{}
	for t := 0; t < blk.texelCount; t++ {
		for c := 0; c < 4; c++ {
			lo[c] = min(lo[c], blk.texels[t][c])
			hi[c] = max(hi[c], blk.texels[t][c])
		}
	}
	blk.dataMin, blk.dataMax = lo, hi
}

// mean returns the unweighted average texel.
func (blk *imageBlock) mean() mgl32.Vec4 {
	var sum mgl32.Vec4
	for t := 0; t < blk.texelCount; t++ {
		sum = sum.Add(blk.texels[t])
	}
	return sum.Mul(1 / float32(blk.texelCount))
}

// meanVoidExtent returns a void-extent block holding the block's mean color.
func (blk *imageBlock) meanVoidExtent(profile Profile, fp Footprint) BlockInfo {
	m := blk.mean()
	info := BlockInfo{Kind: BlockVoidExtentLDR, Plane2Component: -1, Extent: noExtent(fp)}
	if !profile.IsHDR() {
		for c := 0; c < 4; c++ {
			info.ConstantColor[c] = uint16(roundToInt(clampF32(m[c], 0, 65535)))
		}
		return info
	}
	info.Kind = BlockVoidExtentHDR
	for c := 0; c < 4; c++ {
		v := uint16(roundToInt(clampF32(m[c], 0, 65535)))
		if c < 3 || hdrAlpha(profile) {
			info.ConstantColor[c] = lnsToSF16(v)
		} else {
			info.ConstantColor[c] = unorm16ToSF16(v)
		}
	}
	return info
}

// flat reports whether channel c holds one value across the block.
func (blk *imageBlock) flat(c int) bool { return blk.dataMin[c] == blk.dataMax[c] }

// grayscale reports whether R, G and B agree on every texel.
func (blk *imageBlock) grayscale() bool {
	for t := 0; t < blk.texelCount; t++ {
		v := blk.texels[t]
		if v[0] != v[1] || v[1] != v[2] {
			return false
		}
	}
	return true
}
