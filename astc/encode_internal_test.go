package astc

import (
	"context"
	"testing"
)

func TestEncodeImageVolumeUses3DBlockModes(t *testing.T) {
	const w, h, d = 4, 4, 4

	pix := make([]byte, w*h*d*4)
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				off := ((z*h+y)*w + x) * 4
				pix[off+0] = uint8(x * 37)
				pix[off+1] = uint8(y * 53)
				pix[off+2] = uint8(z * 71)
				pix[off+3] = uint8(255 - x*11 - z*7)
			}
		}
	}

	fp := Footprint{X: 4, Y: 4, Z: 4}
	params, err := DefaultCompressionParams(ProfileLDR, EncodeMedium.Value(), fp)
	if err != nil {
		t.Fatalf("DefaultCompressionParams: %v", err)
	}
	out, err := EncodeImage(context.Background(), NewTexelView8(pix, w, h, d), &params)
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}

	hdr, blocks, err := ParseFile(out)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if hdr.BlockZ != 4 || hdr.SizeZ != d {
		t.Fatalf("unexpected header: block=%dx%dx%d size=%dx%dx%d", hdr.BlockX, hdr.BlockY, hdr.BlockZ, hdr.SizeX, hdr.SizeY, hdr.SizeZ)
	}
	if len(blocks) != BlockBytes {
		t.Fatalf("block payload: got %d bytes want %d", len(blocks), BlockBytes)
	}

	blockMode := int(readBits(blocks, 0, 11))
	m, ok := DecodeBlockMode(blockMode, true)
	if !ok {
		t.Fatalf("expected a valid 3D block mode, got mode=%#x", blockMode)
	}
	if m.ZWeights <= 0 {
		t.Fatalf("zWeights: got %d for mode %v", m.ZWeights, m)
	}

	info := physicalToSymbolic(getBlockSizeDescriptor(fp), blocks)
	if info.Kind != BlockNormal {
		t.Fatalf("block kind: got %v want %v", info.Kind, BlockNormal)
	}
}

func TestBlockModeTables(t *testing.T) {
	for _, fp := range LegalFootprints() {
		d := getBlockSizeDescriptor(fp)
		legal := 0
		for m := 0; m < blockModeCount; m++ {
			bm, ok := d.Mode(m)
			if !ok {
				continue
			}
			legal++
			if bm.XWeights > fp.X || bm.YWeights > fp.Y || bm.ZWeights > fp.Z {
				t.Fatalf("%v mode %#x: grid %v exceeds footprint", fp, m, bm)
			}
			if n := bm.WeightCount() * bm.PlaneCount(); n > blockMaxWeights {
				t.Fatalf("%v mode %#x: %d weights", fp, m, n)
			}
			if b := bm.WeightBits(); b < blockMinWeightBits || b > blockMaxWeightBits {
				t.Fatalf("%v mode %#x: %d weight bits", fp, m, b)
			}
		}
		if legal == 0 {
			t.Fatalf("%v: no legal block modes", fp)
		}
		if got := len(d.searchModes(false, 100)) + len(d.searchModes(true, 100)); got != legal {
			t.Fatalf("%v: search order holds %d modes want %d", fp, got, legal)
		}
		if got := len(d.searchModes(false, 0)); got != 1 {
			t.Fatalf("%v: searchModes(0%%): got %d modes want 1", fp, got)
		}
	}

	// The void-extent pattern is never a weight grid.
	if _, ok := DecodeBlockMode(voidExtentMode, false); ok {
		t.Fatalf("DecodeBlockMode(%#x) accepted the void-extent pattern", voidExtentMode)
	}
}

func TestDecimationFractionsSumTo16(t *testing.T) {
	for _, fp := range []Footprint{{4, 4, 1}, {6, 5, 1}, {12, 12, 1}, {4, 4, 4}, {6, 6, 5}} {
		d := getBlockSizeDescriptor(fp)
		for i := 0; i < d.DecimationCount(); i++ {
			dt := d.Decimation(i)
			for texel := 0; texel < dt.TexelCount; texel++ {
				idx, frac := dt.TexelContributions(texel)
				sum := 0
				for j := range idx {
					if int(idx[j]) >= dt.WeightCount {
						t.Fatalf("%v grid %dx%dx%d texel %d: weight index %d out of range", fp, dt.XWeights, dt.YWeights, dt.ZWeights, texel, idx[j])
					}
					sum += int(frac[j])
				}
				if sum != 16 {
					t.Fatalf("%v grid %dx%dx%d texel %d: fractions sum to %d", fp, dt.XWeights, dt.YWeights, dt.ZWeights, texel, sum)
				}
			}
		}
	}

	full := newDecimationTable(Footprint{4, 4, 1}, 4, 4, 1)
	if !full.identity {
		t.Fatalf("4x4 grid on a 4x4 block: want identity table")
	}
}

// The weight -> texel map drives the weight search; it must mirror the
// texel -> weight map the decoder infills with.
func TestDecimationWeightMapMatchesTexelMap(t *testing.T) {
	for _, fp := range []Footprint{{5, 4, 1}, {8, 6, 1}, {4, 4, 4}} {
		d := getBlockSizeDescriptor(fp)
		for i := 0; i < d.DecimationCount(); i++ {
			dt := d.Decimation(i)
			links := 0
			for w := 0; w < dt.WeightCount; w++ {
				texels, fracs := dt.WeightContributions(w)
				for j, texel := range texels {
					idx, frac := dt.TexelContributions(int(texel))
					found := false
					for k := range idx {
						if int(idx[k]) == w && frac[k] == fracs[j] {
							found = true
						}
					}
					if !found {
						t.Fatalf("%v grid %dx%dx%d: weight %d lists texel %d with fraction %d, texel map disagrees",
							fp, dt.XWeights, dt.YWeights, dt.ZWeights, w, texel, fracs[j])
					}
				}
				links += len(texels)
			}
			want := 0
			for texel := 0; texel < dt.TexelCount; texel++ {
				idx, _ := dt.TexelContributions(texel)
				want += len(idx)
			}
			if links != want {
				t.Fatalf("%v grid %dx%dx%d: %d weight links want %d", fp, dt.XWeights, dt.YWeights, dt.ZWeights, links, want)
			}
		}
	}
}

func TestDualPlaneChannelsOfGrayscaleBlock(t *testing.T) {
	const n = 4
	pix := make([]byte, n*n*4)
	for i := 0; i < n*n; i++ {
		g := uint8(i * 15)
		copy(pix[i*4:], []byte{g, g, g, 255 - g/2})
	}
	fp := Footprint{X: n, Y: n, Z: 1}
	var blk imageBlock
	blk.loadRGBA8(ProfileLDR, fp, NewTexelView8(pix, n, n, 1), 0, 0, 0)

	if !blk.grayscale() {
		t.Fatalf("grayscale: got false want true")
	}
	bc := &blockCompressor{blk: &blk}
	if got := bc.plane2Channels(); len(got) != 1 || got[0] != 3 {
		t.Fatalf("plane2Channels: got %v want [3]", got)
	}
	if c, _ := bc.leastCorrelatedChannel(); c != 3 {
		t.Fatalf("leastCorrelatedChannel: got %d want 3", c)
	}

	// A flat channel has no variance to correlate.
	for i := 0; i < n*n; i++ {
		pix[i*4+3] = 200
	}
	blk.loadRGBA8(ProfileLDR, fp, NewTexelView8(pix, n, n, 1), 0, 0, 0)
	if !blk.flat(3) || blk.flat(0) {
		t.Fatalf("flat: got alpha %v red %v want true, false", blk.flat(3), blk.flat(0))
	}
	if got := channelCorrelation(&blk, 3); got != 1 {
		t.Fatalf("channelCorrelation of a flat channel: got %v want 1", got)
	}
}
