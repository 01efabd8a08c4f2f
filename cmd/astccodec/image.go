package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/arm-software/astc-codec/astc"

	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var spewConfig = spew.ConfigState{Indent: "  ", DisableCapacities: true, DisablePointerAddresses: true}

// loadImage decodes any registered image format into straight-alpha RGBA8.
func loadImage(data []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode input image")
	}
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba, nil
	}
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	return nrgba, nil
}

// encodeImage compresses img. HDR profiles take the texels as linear floats
// in 0..1.
func encodeImage(ctx context.Context, img *image.NRGBA, params *astc.CompressionParams) ([]byte, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if params.Profile.IsHDR() {
		pix := make([]float32, w*h*4)
		for y := 0; y < h; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+w*4]
			for i, v := range row {
				pix[y*w*4+i] = float32(v) / 255
			}
		}
		return astc.EncodeRGBAF32(ctx, pix, w, h, 1, params)
	}
	view := astc.TexelView8{Pix: img.Pix, Width: w, Height: h, Depth: 1, RowStride: img.Stride}
	return astc.EncodeImage(ctx, view, params)
}

// decodeImage decodes the first slice of a .astc file. HDR content is
// clamped to 0..1.
func decodeImage(data []byte, profile astc.Profile) (*image.NRGBA, error) {
	if !profile.IsHDR() {
		pix, w, h, err := astc.DecodeRGBA8WithProfile(data, profile)
		if err != nil {
			return nil, err
		}
		return &image.NRGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}, nil
	}

	pix, w, h, _, err := astc.DecodeRGBAF32WithProfile(data, profile)
	if err != nil {
		return nil, err
	}
	pix8 := make([]byte, w*h*4)
	for i := range pix8 {
		v := pix[i]
		if !(v >= 0) {
			v = 0
		} else if v > 1 {
			v = 1
		}
		pix8[i] = uint8(v*255 + 0.5)
	}
	return &image.NRGBA{Pix: pix8, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}, nil
}

func writePNG(w io.Writer, img image.Image) error {
	return errors.Wrap(png.Encode(w, img), "encode png")
}

// blockStats counts the block kinds, partition counts and dual-plane blocks
// of a .astc file.
type blockStats struct {
	Header     astc.Header
	Blocks     int
	Kinds      map[string]int
	Partitions [5]int
	DualPlane  int
}

func collectStats(data []byte) (*blockStats, error) {
	h, blocks, err := astc.ParseFile(data)
	if err != nil {
		return nil, err
	}
	fp := h.Footprint()
	st := &blockStats{Header: h, Kinds: make(map[string]int)}
	for off := 0; off+astc.BlockBytes <= len(blocks); off += astc.BlockBytes {
		info := astc.DecodeSymbolic(fp, blocks[off:off+astc.BlockBytes])
		st.Blocks++
		st.Kinds[info.Kind.String()]++
		if info.Kind == astc.BlockNormal {
			st.Partitions[info.PartitionCount]++
			if info.Plane2Component >= 0 {
				st.DualPlane++
			}
		}
	}
	return st, nil
}

func inspect(data []byte) (string, error) {
	st, err := collectStats(data)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintln(&sb, st.Header.String())
	fmt.Fprintf(&sb, "blocks: %d\n", st.Blocks)
	for _, k := range []astc.BlockKind{astc.BlockNormal, astc.BlockVoidExtentLDR, astc.BlockVoidExtentHDR, astc.BlockError} {
		if n := st.Kinds[k.String()]; n > 0 {
			fmt.Fprintf(&sb, "  %-16s %d\n", k.String()+":", n)
		}
	}
	for pc := 1; pc <= 4; pc++ {
		if n := st.Partitions[pc]; n > 0 {
			fmt.Fprintf(&sb, "  partitions=%d:    %d\n", pc, n)
		}
	}
	if st.DualPlane > 0 {
		fmt.Fprintf(&sb, "  dual-plane:       %d\n", st.DualPlane)
	}
	return sb.String(), nil
}

// dumpSymbolicBlock returns the symbolic form of block idx.
func dumpSymbolicBlock(data []byte, idx int) (string, error) {
	h, blocks, err := astc.ParseFile(data)
	if err != nil {
		return "", err
	}
	if idx < 0 || (idx+1)*astc.BlockBytes > len(blocks) {
		return "", errors.Errorf("block %d out of range (file has %d blocks)", idx, len(blocks)/astc.BlockBytes)
	}
	raw := blocks[idx*astc.BlockBytes : (idx+1)*astc.BlockBytes]
	info := astc.DecodeSymbolic(h.Footprint(), raw)
	return fmt.Sprintf("block %d: % x\n%s", idx, raw, spewConfig.Sdump(info)), nil
}
