package astc_test

import (
	"bytes"
	"testing"

	"github.com/arm-software/astc-codec/astc"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := astc.Header{
		BlockX: 4,
		BlockY: 4,
		BlockZ: 1,
		SizeX:  1024,
		SizeY:  768,
		SizeZ:  1,
	}

	enc, err := astc.MarshalHeader(h)
	if err != nil {
		t.Fatalf("MarshalHeader: %v", err)
	}
	got, err := astc.ParseHeader(enc[:])
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}

	if got != h {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, h)
	}

	// Sanity check magic.
	if !bytes.Equal(enc[0:4], []byte{0x13, 0xAB, 0xA1, 0x5C}) {
		t.Fatalf("unexpected magic: %x", enc[0:4])
	}
}

func TestHeaderBlockCount(t *testing.T) {
	h, err := astc.NewHeader(astc.Footprint{X: 6, Y: 5, Z: 1}, 13, 11, 1)
	if err != nil {
		t.Fatalf("NewHeader: %v", err)
	}
	bx, by, bz, total, err := h.BlockCount()
	if err != nil {
		t.Fatalf("BlockCount: %v", err)
	}
	if bx != 3 || by != 3 || bz != 1 || total != 9 {
		t.Fatalf("BlockCount: got %dx%dx%d (%d) want 3x3x1 (9)", bx, by, bz, total)
	}
}

func TestNewHeaderRejectsBadFootprint(t *testing.T) {
	_, err := astc.NewHeader(astc.Footprint{X: 7, Y: 7, Z: 1}, 16, 16, 1)
	if got := astc.ErrorCodeOf(err); got != astc.ErrBadBlockSize {
		t.Fatalf("NewHeader(7x7): got %v want %v", got, astc.ErrBadBlockSize)
	}
}

func TestParseFile(t *testing.T) {
	h, err := astc.NewHeader(astc.Footprint{X: 4, Y: 4, Z: 1}, 8, 4, 1)
	if err != nil {
		t.Fatalf("NewHeader: %v", err)
	}
	b0 := astc.EncodeConstBlockRGBA8(1, 2, 3, 4)
	b1 := astc.EncodeConstBlockRGBA8(5, 6, 7, 8)
	file, err := astc.MarshalFile(h, append(b0[:], b1[:]...))
	if err != nil {
		t.Fatalf("MarshalFile: %v", err)
	}

	got, blocks, err := astc.ParseFile(file)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if got != h {
		t.Fatalf("header: got %+v want %+v", got, h)
	}
	if !bytes.Equal(blocks[astc.BlockBytes:], b1[:]) {
		t.Fatalf("second block: got %x want %x", blocks[astc.BlockBytes:], b1)
	}

	// Zero padding is accepted, anything else is not.
	if _, _, err := astc.ParseFile(append(append([]byte{}, file...), 0, 0, 0)); err != nil {
		t.Fatalf("ParseFile(zero padded): %v", err)
	}
	if _, _, err := astc.ParseFile(append(append([]byte{}, file...), 1)); astc.ErrorCodeOf(err) != astc.ErrBadData {
		t.Fatalf("ParseFile(trailing data): got %v want %v", err, astc.ErrBadData)
	}
	if _, _, err := astc.ParseFile(file[:len(file)-1]); astc.ErrorCodeOf(err) != astc.ErrBadData {
		t.Fatalf("ParseFile(truncated): got %v want %v", err, astc.ErrBadData)
	}

	bad := append([]byte{}, file...)
	bad[0] ^= 0xFF
	if _, _, err := astc.ParseFile(bad); astc.ErrorCodeOf(err) != astc.ErrBadData {
		t.Fatalf("ParseFile(bad magic): got %v want %v", err, astc.ErrBadData)
	}
}
