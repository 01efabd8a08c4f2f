package astc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EncodeQuality is a named point on the 0..100 quality scale.
type EncodeQuality uint8

const (
	EncodeFastest EncodeQuality = iota
	EncodeFast
	EncodeMedium
	EncodeThorough
	EncodeVeryThorough
	EncodeExhaustive
)

var encodeQualityNames = [...]string{
	EncodeFastest:      "fastest",
	EncodeFast:         "fast",
	EncodeMedium:       "medium",
	EncodeThorough:     "thorough",
	EncodeVeryThorough: "verythorough",
	EncodeExhaustive:   "exhaustive",
}

var encodeQualityValues = [...]float32{
	EncodeFastest:      0,
	EncodeFast:         10,
	EncodeMedium:       60,
	EncodeThorough:     98,
	EncodeVeryThorough: 99,
	EncodeExhaustive:   100,
}

func (q EncodeQuality) String() string {
	if int(q) < len(encodeQualityNames) {
		return encodeQualityNames[q]
	}
	return fmt.Sprintf("EncodeQuality(%d)", uint8(q))
}

// Value returns the quality on the 0..100 scale.
func (q EncodeQuality) Value() float32 {
	if int(q) < len(encodeQualityValues) {
		return encodeQualityValues[q]
	}
	return encodeQualityValues[EncodeMedium]
}

// ParseQuality accepts a preset name or a number in 0..100.
func ParseQuality(s string) (float32, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range encodeQualityNames {
		if n == name {
			return encodeQualityValues[i], nil
		}
	}
	v, err := strconv.ParseFloat(name, 32)
	if err != nil || v < 0 || v > 100 {
		return 0, newError(ErrBadQuality, fmt.Sprintf("astc: invalid quality %q (want fastest|fast|medium|thorough|verythorough|exhaustive or 0..100)", s))
	}
	return float32(v), nil
}

// qualityValue decodes a YAML quality given as a name or a number.
type qualityValue float32

func (q *qualityValue) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseQuality(value.Value)
	if err != nil {
		return err
	}
	*q = qualityValue(v)
	return nil
}

// UnmarshalYAML accepts a footprint string such as "6x6" or "4x4x4".
func (fp *Footprint) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseFootprint(value.Value)
	if err != nil {
		return err
	}
	*fp = v
	return nil
}

// MarshalYAML writes the footprint string.
func (fp Footprint) MarshalYAML() (interface{}, error) { return fp.String(), nil }

// CompressionParams controls the block encoder. DefaultCompressionParams
// fills every field; callers adjust individual fields afterwards.
type CompressionParams struct {
	Profile Profile   `yaml:"profile"`
	Block   Footprint `yaml:"block"`

	// ChannelWeights scale the error of R, G, B and A.
	ChannelWeights [4]float32 `yaml:"channel_weights,flow"`
	// AlphaScaledRGB scales RGB error by the texel's alpha.
	AlphaScaledRGB bool `yaml:"alpha_scaled_rgb"`
	// A non-zero MeanStdevRadius lowers the weight of texels in busy
	// neighbourhoods: weight /= 1 + MeanWeights*mean + StdevWeights*stdev,
	// with local statistics over a (2r+1)^d window inside the block.
	MeanStdevRadius int        `yaml:"mean_stdev_radius"`
	MeanWeights     [4]float32 `yaml:"mean_weights,flow"`
	StdevWeights    [4]float32 `yaml:"stdev_weights,flow"`

	PartitionCountLimit int `yaml:"partition_count_limit"`
	// Per partition count 2, 3 and 4.
	PartitionIndexLimit     [3]int `yaml:"partition_index_limit,flow"`
	PartitionCandidateLimit [3]int `yaml:"partition_candidate_limit,flow"`
	// BlockModeLimit is the percentage of block modes searched.
	BlockModeLimit       int `yaml:"block_mode_limit"`
	RefinementIterations int `yaml:"refinement_iterations"`
	CandidateLimit       int `yaml:"candidate_limit"`

	DualPlane bool `yaml:"dual_plane"`
	// Dual plane is skipped for a channel whose correlation with the others
	// exceeds this limit.
	DualPlaneCorrelationLimit float32 `yaml:"dual_plane_correlation_limit"`

	// TargetPSNR stops the search once a block reaches it, in dB. HDR
	// profiles default to an unreachable value.
	TargetPSNR float32 `yaml:"target_psnr"`
	// The search stops after 2 (then 3) partitions when the best error at
	// that count exceeds the previous count's best times these factors.
	PartitionEarlyOut [2]float32 `yaml:"partition_early_out,flow"`
}

type presetConfig struct {
	quality float32

	partitionCountLimit     int
	partitionIndexLimit     [3]int
	blockModeLimit          int
	refinementLimit         int
	candidateLimit          int
	partitionCandidateLimit [3]int
	dbLimitA, dbLimitB      float32
	partitionEarlyOut       [2]float32
	dualPlaneCorrelation    float32
}

var presetConfigsHigh = []presetConfig{
	{0, 2, [3]int{10, 6, 4}, 43, 2, 2, [3]int{2, 2, 2}, 85.2, 63.2, [2]float32{1.0, 1.0}, 0.85},
	{10, 3, [3]int{18, 10, 8}, 55, 3, 3, [3]int{2, 2, 2}, 85.2, 63.2, [2]float32{1.0, 1.0}, 0.90},
	{60, 4, [3]int{34, 28, 16}, 77, 3, 3, [3]int{2, 2, 2}, 95.0, 70.0, [2]float32{1.1, 1.05}, 0.95},
	{98, 4, [3]int{82, 60, 30}, 94, 4, 4, [3]int{3, 2, 2}, 105.0, 77.0, [2]float32{1.35, 1.15}, 0.97},
	{99, 4, [3]int{256, 128, 64}, 98, 4, 4, [3]int{8, 6, 4}, 200.0, 200.0, [2]float32{1.6, 1.4}, 0.98},
	{100, 4, [3]int{512, 512, 512}, 100, 4, 4, [3]int{8, 8, 8}, 200.0, 200.0, [2]float32{2.0, 2.0}, 0.99},
}

var presetConfigsMid = []presetConfig{
	{0, 2, [3]int{10, 6, 4}, 43, 2, 2, [3]int{2, 2, 2}, 85.2, 63.2, [2]float32{1.0, 1.0}, 0.80},
	{10, 3, [3]int{18, 12, 10}, 55, 3, 3, [3]int{2, 2, 2}, 85.2, 63.2, [2]float32{1.0, 1.0}, 0.85},
	{60, 3, [3]int{34, 28, 16}, 77, 3, 3, [3]int{2, 2, 2}, 95.0, 70.0, [2]float32{1.1, 1.05}, 0.90},
	{98, 4, [3]int{82, 60, 30}, 94, 4, 4, [3]int{3, 2, 2}, 105.0, 77.0, [2]float32{1.4, 1.2}, 0.95},
	{99, 4, [3]int{256, 128, 64}, 98, 4, 4, [3]int{8, 6, 3}, 200.0, 200.0, [2]float32{1.6, 1.4}, 0.98},
	{100, 4, [3]int{256, 256, 256}, 100, 4, 4, [3]int{8, 8, 8}, 200.0, 200.0, [2]float32{2.0, 2.0}, 0.99},
}

var presetConfigsLow = []presetConfig{
	{0, 2, [3]int{10, 6, 4}, 40, 2, 2, [3]int{2, 2, 2}, 85.0, 63.0, [2]float32{1.0, 1.0}, 0.80},
	{10, 2, [3]int{18, 12, 10}, 55, 3, 3, [3]int{2, 2, 2}, 85.0, 63.0, [2]float32{1.0, 1.0}, 0.85},
	{60, 3, [3]int{34, 28, 16}, 77, 3, 3, [3]int{2, 2, 2}, 95.0, 70.0, [2]float32{1.1, 1.05}, 0.90},
	{98, 4, [3]int{82, 60, 30}, 93, 4, 4, [3]int{3, 2, 2}, 105.0, 77.0, [2]float32{1.3, 1.2}, 0.97},
	{99, 4, [3]int{256, 128, 64}, 98, 4, 4, [3]int{8, 5, 2}, 200.0, 200.0, [2]float32{1.6, 1.4}, 0.98},
	{100, 4, [3]int{256, 256, 256}, 100, 4, 4, [3]int{8, 8, 8}, 200.0, 200.0, [2]float32{2.0, 2.0}, 0.99},
}

// DefaultCompressionParams returns the tuning for quality (0..100) on
// footprint fp, interpolated between the preset nodes for the footprint's
// texel count.
func DefaultCompressionParams(profile Profile, quality float32, fp Footprint) (CompressionParams, error) {
	if fp.Z == 0 {
		fp.Z = 1
	}
	if !profile.valid() {
		return CompressionParams{}, newError(ErrBadProfile, fmt.Sprintf("astc: invalid profile %v", profile))
	}
	if !(quality >= 0 && quality <= 100) {
		return CompressionParams{}, newError(ErrBadQuality, fmt.Sprintf("astc: invalid quality %v", quality))
	}
	if err := fp.Validate(); err != nil {
		return CompressionParams{}, err
	}

	texels := float64(fp.TexelCount())
	ltexels := math.Log10(texels)

	presets := presetConfigsLow
	if texels < 25 {
		presets = presetConfigsHigh
	} else if texels < 64 {
		presets = presetConfigsMid
	}

	end := 0
	for end < len(presets)-1 && presets[end].quality < quality {
		end++
	}
	start := max(end-1, 0)
	a, b := presets[start], presets[end]

	wtA, wtB := float32(1), float32(0)
	if a.quality != b.quality {
		wtA = (b.quality - quality) / (b.quality - a.quality)
		wtB = (quality - a.quality) / (b.quality - a.quality)
	}
	lerp := func(av, bv float32) float32 { return av*wtA + bv*wtB }
	lerpi := func(av, bv int) int { return int(float32(av)*wtA + float32(bv)*wtB + 0.5) }

	p := CompressionParams{
		Profile:                   profile,
		Block:                     fp,
		ChannelWeights:            [4]float32{1, 1, 1, 1},
		PartitionCountLimit:       lerpi(a.partitionCountLimit, b.partitionCountLimit),
		BlockModeLimit:            lerpi(a.blockModeLimit, b.blockModeLimit),
		RefinementIterations:      lerpi(a.refinementLimit, b.refinementLimit),
		CandidateLimit:            lerpi(a.candidateLimit, b.candidateLimit),
		DualPlane:                 true,
		DualPlaneCorrelationLimit: lerp(a.dualPlaneCorrelation, b.dualPlaneCorrelation),
		TargetPSNR: float32(math.Max(
			float64(lerp(a.dbLimitA, b.dbLimitA))-35*ltexels,
			float64(lerp(a.dbLimitB, b.dbLimitB))-19*ltexels,
		)),
	}
	for i := 0; i < 3; i++ {
		p.PartitionIndexLimit[i] = lerpi(a.partitionIndexLimit[i], b.partitionIndexLimit[i])
		p.PartitionCandidateLimit[i] = lerpi(a.partitionCandidateLimit[i], b.partitionCandidateLimit[i])
	}
	for i := 0; i < 2; i++ {
		p.PartitionEarlyOut[i] = lerp(a.partitionEarlyOut[i], b.partitionEarlyOut[i])
	}
	if profile.IsHDR() {
		p.TargetPSNR = 999
	}
	return p, p.Validate()
}

// Validate checks p and clamps the search limits into their legal ranges.
func (p *CompressionParams) Validate() error {
	if p.Block.Z == 0 {
		p.Block.Z = 1
	}
	if !p.Profile.valid() {
		return newError(ErrBadProfile, fmt.Sprintf("astc: invalid profile %v", p.Profile))
	}
	if err := p.Block.Validate(); err != nil {
		return err
	}

	maxWeight := max(p.ChannelWeights[0], p.ChannelWeights[1], p.ChannelWeights[2], p.ChannelWeights[3])
	if !(maxWeight > 0) {
		return newError(ErrBadParam, "astc: invalid channel weights")
	}
	for c := range p.ChannelWeights {
		p.ChannelWeights[c] = max(p.ChannelWeights[c], maxWeight/1000)
	}
	if p.MeanStdevRadius < 0 || p.MeanStdevRadius > 12 {
		return newError(ErrBadParam, fmt.Sprintf("astc: invalid mean/stdev radius %d", p.MeanStdevRadius))
	}

	p.PartitionCountLimit = clampInt(p.PartitionCountLimit, 1, blockMaxPartitions)
	for i := range p.PartitionIndexLimit {
		p.PartitionIndexLimit[i] = clampInt(p.PartitionIndexLimit[i], 1, partitionIndexCount)
		p.PartitionCandidateLimit[i] = clampInt(p.PartitionCandidateLimit[i], 1, 8)
	}
	p.BlockModeLimit = clampInt(p.BlockModeLimit, 1, 100)
	p.RefinementIterations = max(p.RefinementIterations, 1)
	p.CandidateLimit = clampInt(p.CandidateLimit, 1, maxWeightModes)
	p.DualPlaneCorrelationLimit = clampF32(p.DualPlaneCorrelationLimit, 0, 1)
	p.TargetPSNR = max(p.TargetPSNR, 0)
	for i := range p.PartitionEarlyOut {
		p.PartitionEarlyOut[i] = max(p.PartitionEarlyOut[i], 0)
	}
	return nil
}

// mseLimit converts TargetPSNR to a per-channel mean squared error in
// encoder space. Zero disables the early out.
func (p *CompressionParams) mseLimit() float32 {
	if p.Profile.IsHDR() || p.TargetPSNR <= 0 {
		return 0
	}
	return float32(math.Pow(0.1, float64(p.TargetPSNR)*0.1) * 65535.0 * 65535.0)
}

// LoadCompressionParams reads YAML parameters. The profile, quality and block
// keys select the defaults; any other key present overrides its default.
func LoadCompressionParams(data []byte) (CompressionParams, error) {
	head := struct {
		Profile Profile      `yaml:"profile"`
		Quality qualityValue `yaml:"quality"`
		Block   Footprint    `yaml:"block"`
	}{Quality: qualityValue(encodeQualityValues[EncodeMedium]), Block: Footprint{4, 4, 1}}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return CompressionParams{}, errors.Wrap(err, "astc: parse params")
	}

	p, err := DefaultCompressionParams(head.Profile, float32(head.Quality), head.Block)
	if err != nil {
		return CompressionParams{}, errors.Wrap(err, "astc: parse params")
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return CompressionParams{}, errors.Wrap(err, "astc: parse params")
	}
	if err := p.Validate(); err != nil {
		return CompressionParams{}, errors.Wrap(err, "astc: parse params")
	}
	return p, nil
}

// String returns the parameters as YAML.
func (p CompressionParams) String() string {
	out, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Sprintf("CompressionParams(%v)", err)
	}
	return string(out)
}
