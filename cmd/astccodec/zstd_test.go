package main

import (
	"bytes"
	"testing"

	"github.com/arm-software/astc-codec/astc"
)

func TestZstdRoundTrip(t *testing.T) {
	block := astc.EncodeConstBlockRGBA8(1, 2, 3, 4)
	h, err := astc.NewHeader(astc.Footprint{X: 4, Y: 4, Z: 1}, 64, 64, 1)
	if err != nil {
		t.Fatalf("NewHeader: %v", err)
	}
	blocks := bytes.Repeat(block[:], 256)
	data, err := astc.MarshalFile(h, blocks)
	if err != nil {
		t.Fatalf("MarshalFile: %v", err)
	}

	packed, err := compressZstd(data)
	if err != nil {
		t.Fatalf("compressZstd: %v", err)
	}
	if !bytes.HasPrefix(packed, zstdMagic) {
		t.Fatalf("compressed data starts with % x", packed[:4])
	}
	if len(packed) >= len(data) {
		t.Fatalf("compressed size %d not below %d", len(packed), len(data))
	}

	got, err := maybeDecompress(packed)
	if err != nil {
		t.Fatalf("maybeDecompress: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch")
	}

	// Plain .astc data passes through.
	plain, err := maybeDecompress(data)
	if err != nil {
		t.Fatalf("maybeDecompress(plain): %v", err)
	}
	if !bytes.Equal(plain, data) {
		t.Fatalf("plain data modified")
	}
}

func TestMaybeDecompressRejectsCorruptFrame(t *testing.T) {
	bad := append(append([]byte{}, zstdMagic...), 0xFF, 0xFF, 0xFF, 0xFF, 0x00)
	if _, err := maybeDecompress(bad); err == nil {
		t.Fatalf("maybeDecompress(corrupt): got nil error")
	}
}
