package astc

import (
	"fmt"

	"github.com/pkg/errors"
)

var astcMagic = [4]byte{0x13, 0xAB, 0xA1, 0x5C}

// HeaderSize is the size in bytes of an ASTC file header.
const HeaderSize = 16

// Header is the 16-byte header of a .astc file: the block footprint and the
// uncompressed image size.
type Header struct {
	BlockX uint8
	BlockY uint8
	BlockZ uint8

	SizeX uint32
	SizeY uint32
	SizeZ uint32
}

// NewHeader returns the header for an image of the given size compressed
// with footprint fp.
func NewHeader(fp Footprint, width, height, depth int) (Header, error) {
	if fp.Z == 0 {
		fp.Z = 1
	}
	if err := fp.Validate(); err != nil {
		return Header{}, err
	}
	h := Header{
		BlockX: uint8(fp.X), BlockY: uint8(fp.Y), BlockZ: uint8(fp.Z),
		SizeX: uint32(width), SizeY: uint32(height), SizeZ: uint32(depth),
	}
	if width > 0xFFFFFF || height > 0xFFFFFF || depth > 0xFFFFFF {
		return Header{}, newError(ErrBadParam, "astc: image dimension exceeds 24 bits")
	}
	return h, h.validate()
}

func (h Header) String() string {
	return fmt.Sprintf("ASTC %dx%dx%d blocks, %dx%dx%d texels",
		h.BlockX, h.BlockY, h.BlockZ,
		h.SizeX, h.SizeY, h.SizeZ)
}

// Footprint returns the block footprint recorded in the header.
func (h Header) Footprint() Footprint {
	return Footprint{X: int(h.BlockX), Y: int(h.BlockY), Z: int(h.BlockZ)}
}

func (h Header) validate() error {
	if h.BlockX == 0 || h.BlockY == 0 || h.BlockZ == 0 {
		return newError(ErrBadData, "astc: invalid header: zero block dimension")
	}
	if h.SizeX == 0 || h.SizeY == 0 || h.SizeZ == 0 {
		return newError(ErrBadData, "astc: invalid header: zero image dimension")
	}
	return nil
}

// BlockCount returns the number of compressed blocks along each axis and in total.
func (h Header) BlockCount() (blocksX, blocksY, blocksZ, total int, err error) {
	if err := h.validate(); err != nil {
		return 0, 0, 0, 0, err
	}

	blocksX = int((h.SizeX + uint32(h.BlockX) - 1) / uint32(h.BlockX))
	blocksY = int((h.SizeY + uint32(h.BlockY) - 1) / uint32(h.BlockY))
	blocksZ = int((h.SizeZ + uint32(h.BlockZ) - 1) / uint32(h.BlockZ))
	total = blocksX * blocksY * blocksZ
	if total/blocksX/blocksY != blocksZ {
		return 0, 0, 0, 0, newError(ErrBadData, "astc: invalid header: block count overflow")
	}
	return blocksX, blocksY, blocksZ, total, nil
}

// ParseHeader parses the 16-byte ASTC file header.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errUnexpectedEOF("astc header", HeaderSize, len(data))
	}
	if [4]byte(data[:4]) != astcMagic {
		return Header{}, newError(ErrBadData, "astc: invalid magic")
	}

	h := Header{
		BlockX: data[4],
		BlockY: data[5],
		BlockZ: data[6],
		SizeX:  decodeU24LE(data[7:10]),
		SizeY:  decodeU24LE(data[10:13]),
		SizeZ:  decodeU24LE(data[13:16]),
	}
	if err := h.validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// MarshalHeader returns the 16-byte encoding of h.
func MarshalHeader(h Header) ([HeaderSize]byte, error) {
	if err := h.validate(); err != nil {
		return [HeaderSize]byte{}, err
	}

	var out [HeaderSize]byte
	copy(out[0:4], astcMagic[:])
	out[4] = h.BlockX
	out[5] = h.BlockY
	out[6] = h.BlockZ
	encodeU24LE(out[7:10], h.SizeX)
	encodeU24LE(out[10:13], h.SizeY)
	encodeU24LE(out[13:16], h.SizeZ)
	return out, nil
}

// ParseFile parses a full .astc file and returns its header and block
// payload. The payload aliases data.
func ParseFile(data []byte) (Header, []byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return Header{}, nil, errors.Wrap(err, "astc: parse file")
	}
	if err := h.Footprint().Validate(); err != nil {
		return Header{}, nil, errors.Wrap(err, "astc: parse file")
	}

	_, _, _, total, err := h.BlockCount()
	if err != nil {
		return Header{}, nil, errors.Wrap(err, "astc: parse file")
	}

	need := HeaderSize + total*BlockBytes
	if len(data) < need {
		return Header{}, nil, errUnexpectedEOF("astc file", need, len(data))
	}
	// Zero padding is tolerated; anything else is most likely concatenated data.
	for _, b := range data[need:] {
		if b != 0 {
			return Header{}, nil, newError(ErrBadData, "astc: trailing non-zero data")
		}
	}
	return h, data[HeaderSize:need], nil
}

// MarshalFile returns a complete .astc file for h and its blocks.
func MarshalFile(h Header, blocks []byte) ([]byte, error) {
	hdr, err := MarshalHeader(h)
	if err != nil {
		return nil, err
	}
	_, _, _, total, err := h.BlockCount()
	if err != nil {
		return nil, err
	}
	if len(blocks) != total*BlockBytes {
		return nil, newError(ErrBadData, fmt.Sprintf("astc: %d block bytes for %d blocks", len(blocks), total))
	}
	out := make([]byte, 0, HeaderSize+len(blocks))
	out = append(out, hdr[:]...)
	return append(out, blocks...), nil
}

func decodeU24LE(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func encodeU24LE(dst []byte, v uint32) {
	_ = dst[2]
	if v > 0xFFFFFF {
		v = 0xFFFFFF
	}
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
}
