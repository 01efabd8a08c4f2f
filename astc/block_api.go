package astc

import "fmt"

// encodeImageBlock compresses a loaded block. A search result that fails to
// pack falls back to a void extent of the block mean.
func encodeImageBlock(params *CompressionParams, d *BlockSizeDescriptor, blk *imageBlock) [BlockBytes]byte {
	info := compressBlock(params, d, blk)
	out, err := symbolicToPhysical(d, &info)
	if err != nil {
		mean := blk.meanVoidExtent(params.Profile, d.Footprint)
		return encodeVoidExtent(d.Footprint, &mean)
	}
	return out
}

func blockParams(params *CompressionParams) (*CompressionParams, *BlockSizeDescriptor, error) {
	if params == nil {
		return nil, nil, newError(ErrBadParam, "astc: nil compression params")
	}
	p := *params
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	return &p, getBlockSizeDescriptor(p.Block), nil
}

// EncodeBlockRGBA8 compresses one block of RGBA8 texels laid out x fastest,
// then y, then z, with params.Block texels.
func EncodeBlockRGBA8(params *CompressionParams, texels []byte) ([BlockBytes]byte, error) {
	p, d, err := blockParams(params)
	if err != nil {
		return [BlockBytes]byte{}, err
	}
	fp := p.Block
	if len(texels) < d.TexelCount*4 {
		return [BlockBytes]byte{}, errUnexpectedEOF("astc block texels", d.TexelCount*4, len(texels))
	}
	var blk imageBlock
	blk.loadRGBA8(p.Profile, fp, NewTexelView8(texels, fp.X, fp.Y, fp.Z), 0, 0, 0)
	return encodeImageBlock(p, d, &blk), nil
}

// EncodeBlockF16 compresses one block of RGBA FP16 texels.
func EncodeBlockF16(params *CompressionParams, texels []uint16) ([BlockBytes]byte, error) {
	p, d, err := blockParams(params)
	if err != nil {
		return [BlockBytes]byte{}, err
	}
	fp := p.Block
	if len(texels) < d.TexelCount*4 {
		return [BlockBytes]byte{}, errUnexpectedEOF("astc block texels", d.TexelCount*4, len(texels))
	}
	var blk imageBlock
	blk.loadF16(p.Profile, fp, NewTexelViewF16(texels, fp.X, fp.Y, fp.Z), 0, 0, 0)
	return encodeImageBlock(p, d, &blk), nil
}

func decodeArgs(profile Profile, fp Footprint, block []byte, outLen int) (*BlockSizeDescriptor, error) {
	if fp.Z == 0 {
		fp.Z = 1
	}
	if err := fp.Validate(); err != nil {
		return nil, err
	}
	if !profile.valid() {
		return nil, newError(ErrBadProfile, fmt.Sprintf("astc: invalid profile %v", profile))
	}
	if len(block) < BlockBytes {
		return nil, errUnexpectedEOF("astc block", BlockBytes, len(block))
	}
	if need := fp.TexelCount() * 4; outLen < need {
		return nil, newError(ErrBadParam, fmt.Sprintf("astc: output holds %d values, need %d", outLen, need))
	}
	return getBlockSizeDescriptor(fp), nil
}

// DecodeBlockRGBA8 decodes one block into RGBA8 texels in block scan order.
// Malformed blocks and HDR content decode as opaque black.
func DecodeBlockRGBA8(profile Profile, fp Footprint, block []byte, out []byte) error {
	d, err := decodeArgs(profile, fp, block, len(out))
	if err != nil {
		return err
	}
	decodeBlockRGBA8(profile, d, block, out)
	return nil
}

// DecodeBlockF16 decodes one block into RGBA FP16 texels in block scan order.
func DecodeBlockF16(profile Profile, fp Footprint, block []byte, out []uint16) error {
	d, err := decodeArgs(profile, fp, block, len(out))
	if err != nil {
		return err
	}
	decodeBlockF16(profile, d, block, out)
	return nil
}
