// Command astcbench measures codec throughput on synthetic images and
// existing .astc files. Encode runs also report the PSNR reached by each
// quality preset, so speed and quality can be compared side by side.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/arm-software/astc-codec/astc"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("astcbench: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "encode":
		err = encodeCmd(os.Args[2:])
	case "decode":
		err = decodeCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  astcbench encode [-w W -h H -d D] [-block 6x6|4x4x4] [-profile ldr] [-quality medium,thorough|all]
                   [-params file.yaml] [-format u8|f32] [-iters N] [-out file.astc] [-cpuprofile file]
  astcbench decode -in file.astc[.zst] [-profile ldr] [-format u8|f16|f32] [-iters N]
                   [-cpuprofile file] [-memprofile file] [-memprofilerate N]`)
}

// run is one timed measurement.
type run struct {
	iters   int
	texels  int
	elapsed time.Duration
}

func (r run) mtexelsPerSecond() float64 {
	return float64(r.texels) * float64(r.iters) / r.elapsed.Seconds() / 1e6
}

// timeIters calls fn iters times and reports the total wall time.
func timeIters(iters, texels int, fn func() error) (run, error) {
	start := time.Now()
	for i := 0; i < iters; i++ {
		if err := fn(); err != nil {
			return run{}, err
		}
	}
	return run{iters: iters, texels: texels, elapsed: time.Since(start)}, nil
}

// profiling owns the optional pprof outputs for one command.
type profiling struct {
	cpu     *os.File
	memPath string
}

func startProfiling(cpuPath, memPath string, memRate int) (*profiling, error) {
	if memRate > 0 {
		runtime.MemProfileRate = memRate
	}
	p := &profiling{memPath: memPath}
	if cpuPath == "" {
		return p, nil
	}
	f, err := os.Create(cpuPath)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "start CPU profile")
	}
	p.cpu = f
	return p, nil
}

func (p *profiling) stop() error {
	if p.cpu != nil {
		pprof.StopCPUProfile()
		if err := p.cpu.Close(); err != nil {
			return err
		}
	}
	if p.memPath == "" {
		return nil
	}
	f, err := os.Create(p.memPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return errors.Wrap(pprof.WriteHeapProfile(f), "write heap profile")
}

// benchSet is one labelled parameter set.
type benchSet struct {
	label  string
	params astc.CompressionParams
}

// benchSets lists the parameter sets to benchmark: the YAML file if one is
// given, otherwise one preset per entry of the comma-separated quality list.
func benchSets(paramsPath, block, profile, qualities string) ([]benchSet, error) {
	if paramsPath != "" {
		data, err := os.ReadFile(paramsPath)
		if err != nil {
			return nil, err
		}
		p, err := astc.LoadCompressionParams(data)
		if err != nil {
			return nil, errors.Wrapf(err, "load %s", paramsPath)
		}
		return []benchSet{{label: paramsPath, params: p}}, nil
	}

	fp, err := astc.ParseFootprint(block)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid -block %q", block)
	}
	prof, err := astc.ParseProfile(profile)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid -profile %q", profile)
	}
	if qualities == "all" {
		qualities = "fastest,fast,medium,thorough,verythorough,exhaustive"
	}
	var out []benchSet
	for _, name := range strings.Split(qualities, ",") {
		name = strings.TrimSpace(name)
		q, err := astc.ParseQuality(name)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid -quality %q", name)
		}
		p, err := astc.DefaultCompressionParams(prof, q, fp)
		if err != nil {
			return nil, err
		}
		out = append(out, benchSet{label: name, params: p})
	}
	return out, nil
}

func encodeCmd(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	var (
		width, height, depth int
		block, profile       string
		qualities            string
		paramsPath           string
		format               string
		iters                int
		outPath              string
		cpuprofile           string
	)
	fs.IntVar(&width, "w", 256, "image width")
	fs.IntVar(&height, "h", 256, "image height")
	fs.IntVar(&depth, "d", 1, "image depth")
	fs.StringVar(&block, "block", "4x4", "block footprint, e.g. 6x6 or 4x4x4")
	fs.StringVar(&profile, "profile", "ldr", "profile: ldr|srgb|hdr|hdr-rgb-ldr-a")
	fs.StringVar(&qualities, "quality", "medium", "comma-separated quality presets or 0..100 values, or all")
	fs.StringVar(&paramsPath, "params", "", "YAML compression parameters; overrides -block, -profile and -quality")
	fs.StringVar(&format, "format", "u8", "source texels: u8|f32")
	fs.IntVar(&iters, "iters", 10, "iterations per parameter set")
	fs.StringVar(&outPath, "out", "", "write the last encoded file here")
	fs.StringVar(&cpuprofile, "cpuprofile", "", "CPU profile output path")
	_ = fs.Parse(args)

	if width <= 0 || height <= 0 || depth <= 0 || iters <= 0 {
		return errors.New("dimensions and -iters must be positive")
	}
	sets, err := benchSets(paramsPath, block, profile, qualities)
	if err != nil {
		return err
	}

	var src source
	switch format {
	case "u8":
		src = newSourceU8(width, height, depth)
	case "f32":
		src = newSourceF32(width, height, depth, sets[0].params.Profile.IsHDR())
	default:
		return errors.Errorf("invalid -format %q (want u8|f32)", format)
	}

	prof, err := startProfiling(cpuprofile, "", 0)
	if err != nil {
		return err
	}
	var last []byte
	for i := range sets {
		p := &sets[i].params
		r, err := timeIters(iters, width*height*depth, func() error {
			out, err := src.encode(context.Background(), p)
			last = out
			return err
		})
		if err != nil {
			return errors.Wrapf(err, "encode %v", p.Block)
		}
		psnr, err := src.psnr(last, p.Profile)
		if err != nil {
			return err
		}
		fmt.Printf("RESULT op=encode format=%s profile=%v block=%v params=%s size=%dx%dx%d iters=%d seconds=%.4f mtexel/s=%.3f psnr=%.2f\n",
			format, p.Profile, p.Block, sets[i].label, width, height, depth, r.iters, r.elapsed.Seconds(), r.mtexelsPerSecond(), psnr)
	}
	if err := prof.stop(); err != nil {
		return err
	}

	if outPath != "" {
		return os.WriteFile(outPath, last, 0o644)
	}
	return nil
}

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// readASTC reads an .astc file, unwrapping it first if it is zstd-compressed.
func readASTC(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	return out, errors.Wrapf(err, "zstd %s", path)
}

func decodeCmd(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	var (
		inPath      string
		profile     string
		format      string
		iters       int
		cpuprofile  string
		memprofile  string
		memprofRate int
	)
	fs.StringVar(&inPath, "in", "", "input .astc file, optionally zstd-compressed")
	fs.StringVar(&profile, "profile", "ldr", "profile: ldr|srgb|hdr|hdr-rgb-ldr-a")
	fs.StringVar(&format, "format", "u8", "decoded texels: u8|f16|f32")
	fs.IntVar(&iters, "iters", 200, "iterations")
	fs.StringVar(&cpuprofile, "cpuprofile", "", "CPU profile output path")
	fs.StringVar(&memprofile, "memprofile", "", "heap profile output path")
	fs.IntVar(&memprofRate, "memprofilerate", 0, "runtime.MemProfileRate override; 0 keeps the default")
	_ = fs.Parse(args)

	if inPath == "" {
		return errors.New("missing -in")
	}
	if iters <= 0 {
		return errors.New("-iters must be positive")
	}
	prof, err := astc.ParseProfile(profile)
	if err != nil {
		return err
	}
	data, err := readASTC(inPath)
	if err != nil {
		return err
	}
	h, _, err := astc.ParseFile(data)
	if err != nil {
		return err
	}

	decode, err := decoderFor(format, prof)
	if err != nil {
		return err
	}
	p, err := startProfiling(cpuprofile, memprofile, memprofRate)
	if err != nil {
		return err
	}
	sum := newChecksum()
	r, err := timeIters(iters, int(h.SizeX)*int(h.SizeY)*int(h.SizeZ), func() error {
		return decode(data, sum)
	})
	if err != nil {
		return err
	}
	if err := p.stop(); err != nil {
		return err
	}

	fmt.Printf("RESULT op=decode format=%s profile=%v block=%v size=%dx%dx%d iters=%d seconds=%.4f mtexel/s=%.3f checksum=%x\n",
		format, prof, h.Footprint(), h.SizeX, h.SizeY, h.SizeZ, r.iters, r.elapsed.Seconds(), r.mtexelsPerSecond(), sum.Sum64())
	return nil
}
