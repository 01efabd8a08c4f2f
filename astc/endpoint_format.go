package astc

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// EndpointFormat is one of the 16 ASTC color endpoint encodings.
// Values are specified by ASTC and must not be reordered.
type EndpointFormat uint8

const (
	FormatLuminance EndpointFormat = iota
	FormatLuminanceDelta
	FormatHDRLuminanceLargeRange
	FormatHDRLuminanceSmallRange
	FormatLuminanceAlpha
	FormatLuminanceAlphaDelta
	FormatRGBScale
	FormatHDRRGBScale
	FormatRGB
	FormatRGBDelta
	FormatRGBScaleAlpha
	FormatHDRRGB
	FormatRGBA
	FormatRGBADelta
	FormatHDRRGBLDRAlpha
	FormatHDRRGBA

	endpointFormatCount = 16
)

type int4 [4]int

// endpointCodec describes one endpoint format. unpack turns the unquantized
// color values into two endpoints: 0..255 for LDR channels and 0..65535 LNS
// (or 0x7800 for default HDR alpha) for HDR channels. pack takes endpoints in
// the same domains, fills out with ISE values at the given level and reports
// whether the format could represent them; see endpoints_pack.go.
type endpointCodec struct {
	name       string
	valueCount int
	hdrRGB     bool
	hdrAlpha   bool
	// defaultAlpha formats carry no alpha: opaque, HDR 1.0 under ProfileHDR.
	defaultAlpha bool

	unpack func(v []uint8) (e0, e1 int4)
	pack   func(c0, c1 mgl32.Vec4, q QuantMethod, out []uint8) bool
}

var endpointCodecs [endpointFormatCount]endpointCodec

func init() {
	endpointCodecs = [endpointFormatCount]endpointCodec{
		FormatLuminance:              {name: "luminance", valueCount: 2, unpack: luminanceUnpack, pack: luminancePack},
		FormatLuminanceDelta:         {name: "luminance-delta", valueCount: 2, unpack: luminanceDeltaUnpack, pack: luminanceDeltaPack},
		FormatHDRLuminanceLargeRange: {name: "hdr-luminance-large", valueCount: 2, hdrRGB: true, defaultAlpha: true, unpack: hdrLuminanceLargeRangeUnpack, pack: hdrLuminanceLargeRangePack},
		FormatHDRLuminanceSmallRange: {name: "hdr-luminance-small", valueCount: 2, hdrRGB: true, defaultAlpha: true, unpack: hdrLuminanceSmallRangeUnpack, pack: hdrLuminanceSmallRangePack},
		FormatLuminanceAlpha:         {name: "luminance-alpha", valueCount: 4, unpack: luminanceAlphaUnpack, pack: luminanceAlphaPack},
		FormatLuminanceAlphaDelta:    {name: "luminance-alpha-delta", valueCount: 4, unpack: luminanceAlphaDeltaUnpack, pack: luminanceAlphaDeltaPack},
		FormatRGBScale:               {name: "rgb-scale", valueCount: 4, unpack: rgbScaleUnpack, pack: rgbScalePack},
		FormatHDRRGBScale:            {name: "hdr-rgb-scale", valueCount: 4, hdrRGB: true, defaultAlpha: true, unpack: hdrRGBOUnpack, pack: hdrRGBOPack},
		FormatRGB:                    {name: "rgb", valueCount: 6, unpack: rgbUnpack, pack: rgbPack},
		FormatRGBDelta:               {name: "rgb-delta", valueCount: 6, unpack: rgbDeltaUnpack, pack: rgbDeltaPack},
		FormatRGBScaleAlpha:          {name: "rgb-scale-alpha", valueCount: 6, unpack: rgbScaleAlphaUnpack, pack: rgbScaleAlphaPack},
		FormatHDRRGB:                 {name: "hdr-rgb", valueCount: 6, hdrRGB: true, defaultAlpha: true, unpack: hdrRGBUnpack, pack: hdrRGBPack},
		FormatRGBA:                   {name: "rgba", valueCount: 8, unpack: rgbaUnpack, pack: rgbaPack},
		FormatRGBADelta:              {name: "rgba-delta", valueCount: 8, unpack: rgbaDeltaUnpack, pack: rgbaDeltaPack},
		FormatHDRRGBLDRAlpha:         {name: "hdr-rgb-ldr-alpha", valueCount: 8, hdrRGB: true, unpack: hdrRGBLDRAlphaUnpack, pack: hdrRGBLDRAlphaPack},
		FormatHDRRGBA:                {name: "hdr-rgba", valueCount: 8, hdrRGB: true, hdrAlpha: true, unpack: hdrRGBAUnpack, pack: hdrRGBAPack},
	}
}

func (f EndpointFormat) String() string {
	if f >= endpointFormatCount {
		return fmt.Sprintf("EndpointFormat(%d)", uint8(f))
	}
	return endpointCodecs[f].name
}

// ValueCount returns the number of color integers the format stores.
func (f EndpointFormat) ValueCount() int { return 2 * (int(f)>>2 + 1) }

// Class returns the format's integer-count class, 0..3.
func (f EndpointFormat) Class() int { return int(f) >> 2 }

// IsHDR reports whether any channel of the format is HDR.
func (f EndpointFormat) IsHDR() bool {
	return f < endpointFormatCount && endpointCodecs[f].hdrRGB
}

// unpackEndpoints expands the unquantized values of one partition to 16-bit
// endpoints for the decode profile. rgbHDR/alphaHDR report LNS channels. ok is
// false when the format is not decodable under the profile (HDR endpoints in
// an LDR profile).
func unpackEndpoints(profile Profile, f EndpointFormat, v []uint8) (e0, e1 int4, rgbHDR, alphaHDR, ok bool) {
	c := &endpointCodecs[f]
	e0, e1 = c.unpack(v)
	rgbHDR, alphaHDR = c.hdrRGB, c.hdrAlpha

	if c.defaultAlpha {
		if profile == ProfileHDR {
			e0[3], e1[3] = 0x7800, 0x7800
			alphaHDR = true
		} else {
			e0[3], e1[3] = 0xFF, 0xFF
		}
	}

	switch profile {
	case ProfileLDR, ProfileLDRSRGB:
		if rgbHDR || alphaHDR {
			return int4{}, int4{}, false, false, false
		}
		for i := 0; i < 4; i++ {
			e0[i] = expandLDR(profile, e0[i])
			e1[i] = expandLDR(profile, e1[i])
		}
	default:
		for i := 0; i < 4; i++ {
			hdr := rgbHDR
			if i == 3 {
				hdr = alphaHDR
			}
			if !hdr {
				e0[i] *= 257
				e1[i] *= 257
			}
		}
	}
	return e0, e1, rgbHDR, alphaHDR, true
}

// expandLDR widens an 8-bit endpoint channel to 16 bits.
func expandLDR(profile Profile, v int) int {
	if profile == ProfileLDRSRGB {
		return v<<8 | 0x80
	}
	return v * 257
}
