package astc

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile controls how endpoints are decoded and which formats the encoder
// may use.
//
// ASTC files do not store a profile; it is a usage convention the caller
// supplies on both sides.
type Profile uint8

const (
	// ProfileLDR decodes using linear LDR rules.
	ProfileLDR Profile = iota
	// ProfileLDRSRGB decodes using sRGB LDR rules.
	ProfileLDRSRGB
	// ProfileHDRRGBLDRAlpha decodes using HDR RGB and LDR alpha rules.
	ProfileHDRRGBLDRAlpha
	// ProfileHDR decodes using HDR RGBA rules.
	ProfileHDR
)

var profileNames = [...]string{
	ProfileLDR:            "ldr",
	ProfileLDRSRGB:        "srgb",
	ProfileHDRRGBLDRAlpha: "hdr-rgb-ldr-a",
	ProfileHDR:            "hdr",
}

func (p Profile) String() string {
	if int(p) < len(profileNames) {
		return profileNames[p]
	}
	return fmt.Sprintf("Profile(%d)", uint8(p))
}

// IsHDR reports whether the profile decodes HDR color endpoints.
func (p Profile) IsHDR() bool { return p == ProfileHDR || p == ProfileHDRRGBLDRAlpha }

func (p Profile) valid() bool { return int(p) < len(profileNames) }

// ParseProfile parses a profile name: ldr, srgb, hdr-rgb-ldr-a or hdr.
func ParseProfile(s string) (Profile, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range profileNames {
		if n == name {
			return Profile(i), nil
		}
	}
	return 0, newError(ErrBadProfile, fmt.Sprintf("astc: unknown profile %q (want ldr|srgb|hdr-rgb-ldr-a|hdr)", s))
}

// UnmarshalYAML accepts the profile name.
func (p *Profile) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseProfile(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalYAML writes the profile name.
func (p Profile) MarshalYAML() (interface{}, error) { return p.String(), nil }
