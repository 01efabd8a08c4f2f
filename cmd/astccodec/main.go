package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/arm-software/astc-codec/astc"
)

func main() {
	var (
		inPath     string
		outPath    string
		block      string
		profile    string
		quality    string
		paramsPath string
		useZstd    bool
		encode     bool
		decode     bool
		dumpInfo   bool
		dumpBlock  int
		serveAddr  string
		verbose    bool
	)
	flag.StringVar(&inPath, "in", "", "input file")
	flag.StringVar(&outPath, "out", "", "output file")
	flag.StringVar(&block, "block", "4x4", "ASTC block footprint (e.g. 4x4 or 4x4x4)")
	flag.StringVar(&profile, "profile", "ldr", "decode/encode profile: ldr|srgb|hdr|hdr-rgb-ldr-a")
	flag.StringVar(&quality, "quality", "medium", "encode quality preset (fastest|fast|medium|thorough|verythorough|exhaustive) or 0..100")
	flag.StringVar(&paramsPath, "params", "", "YAML file with compression parameters; overrides -block, -profile and -quality")
	flag.BoolVar(&useZstd, "zstd", false, "zstd-compress the encoded .astc file")
	flag.BoolVar(&encode, "encode", false, "encode input image -> .astc")
	flag.BoolVar(&decode, "decode", false, "decode input .astc -> .png")
	flag.BoolVar(&dumpInfo, "info", false, "print .astc header info and block statistics and exit")
	flag.IntVar(&dumpBlock, "dump", -1, "dump the symbolic form of the block with this index and exit")
	flag.StringVar(&serveAddr, "serve", "", "serve the HTTP decode API on this address (e.g. :8080)")
	flag.BoolVar(&verbose, "v", false, "log timings")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("astccodec: ")

	if serveAddr != "" {
		prof, err := astc.ParseProfile(profile)
		if err != nil {
			usageError(err)
		}
		if err := startServer(serveAddr, prof); err != nil {
			fatal(err)
		}
		return
	}

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: astccodec -in <input> [-out <output>] [-encode|-decode|-info|-dump N] [-block 4x4]")
		fmt.Fprintln(os.Stderr, "       astccodec -serve :8080")
		os.Exit(2)
	}

	inData, err := os.ReadFile(inPath)
	if err != nil {
		fatal(err)
	}

	if dumpInfo || dumpBlock >= 0 {
		data, err := maybeDecompress(inData)
		if err != nil {
			fatal(err)
		}
		if dumpInfo {
			info, err := inspect(data)
			if err != nil {
				fatal(err)
			}
			fmt.Print(info)
		}
		if dumpBlock >= 0 {
			dump, err := dumpSymbolicBlock(data, dumpBlock)
			if err != nil {
				fatal(err)
			}
			fmt.Print(dump)
		}
		return
	}

	if encode == decode {
		usageError(errors.New("specify exactly one of -encode or -decode"))
	}
	if outPath == "" {
		usageError(errors.New("missing -out"))
	}

	if encode {
		params, err := loadParams(paramsPath, block, profile, quality)
		if err != nil {
			usageError(err)
		}
		img, err := loadImage(inData)
		if err != nil {
			fatal(err)
		}

		start := time.Now()
		astcData, err := encodeImage(context.Background(), img, &params)
		if err != nil {
			fatal(err)
		}
		if verbose {
			b := img.Bounds()
			log.Printf("encoded %dx%d with %v/%v in %v", b.Dx(), b.Dy(), params.Block, params.Profile, time.Since(start))
		}
		if useZstd {
			if astcData, err = compressZstd(astcData); err != nil {
				fatal(err)
			}
		}
		if err := os.WriteFile(outPath, astcData, 0o644); err != nil {
			fatal(err)
		}
		return
	}

	// decode
	prof, err := astc.ParseProfile(profile)
	if err != nil {
		usageError(err)
	}
	data, err := maybeDecompress(inData)
	if err != nil {
		fatal(err)
	}
	start := time.Now()
	img, err := decodeImage(data, prof)
	if err != nil {
		fatal(err)
	}
	if verbose {
		b := img.Bounds()
		log.Printf("decoded %dx%d with %v in %v", b.Dx(), b.Dy(), prof, time.Since(start))
	}

	out, err := os.Create(outPath)
	if err != nil {
		fatal(err)
	}
	defer out.Close()
	if err := writePNG(out, img); err != nil {
		fatal(err)
	}
}

// loadParams returns the compression parameters from a YAML file, or the
// preset named by the -block, -profile and -quality flags.
func loadParams(path, block, profile, quality string) (astc.CompressionParams, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return astc.CompressionParams{}, err
		}
		return astc.LoadCompressionParams(data)
	}

	fp, err := astc.ParseFootprint(block)
	if err != nil {
		return astc.CompressionParams{}, errors.Wrapf(err, "invalid -block %q", block)
	}
	prof, err := astc.ParseProfile(profile)
	if err != nil {
		return astc.CompressionParams{}, errors.Wrapf(err, "invalid -profile %q", profile)
	}
	q, err := astc.ParseQuality(quality)
	if err != nil {
		return astc.CompressionParams{}, errors.Wrapf(err, "invalid -quality %q", quality)
	}
	return astc.DefaultCompressionParams(prof, q, fp)
}

func usageError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, strings.TrimSpace(err.Error()))
	os.Exit(1)
}
