package main

import(
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/abworrall/ircontrast/pkg/irpipeline"
)

var(
	fVerbosity int
	fWidth int
	fHeight int
	fByteOrder string
	fTonemapper string
	fPalette string
	fOutputDir string
	fOutputScale float64
	fWriteHDR bool
	fWorkers int
	fFailFast bool
	fThreshold int
	fGainFactor float64
	fOnDegenerate string
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get (>0 also dumps curve plots)")
	flag.IntVar(&fWidth, "w", 640, "raw frame width, in pixels")
	flag.IntVar(&fHeight, "h", 512, "raw frame height, in pixels")
	flag.StringVar(&fByteOrder, "byteorder", "bigendian", "raw sample layout: bigendian (sensor) or native")

	flag.StringVar(&fTonemapper, "tonemapper", "ace", "how to tonemap from 14 bits to 8: "+irpipeline.ListTonemappers()+", or all")
	flag.StringVar(&fPalette, "palette", "gray", "false-colour palette for the output: gray, ironbow, rainbow")
	flag.StringVar(&fOutputDir, "o", ".", "directory to write output images into")
	flag.Float64Var(&fOutputScale, "scale", 1.0, "resize output images by this factor")
	flag.BoolVar(&fWriteHDR, "hdr", false, "also write each normalized frame as a Radiance .hdr")

	flag.IntVar(&fWorkers, "workers", 0, "frames to process in parallel (0 = one per CPU)")
	flag.BoolVar(&fFailFast, "failfast", false, "stop at the first frame that fails")

	flag.IntVar(&fThreshold, "threshold", 5, "ace: back-difference threshold for the histogram")
	flag.Float64Var(&fGainFactor, "gain", 10, "ace: gain factor g for the blending coefficient")
	flag.StringVar(&fOnDegenerate, "ondegenerate", "fail", "ace: what to do with flat frames: fail, fallback")
	flag.Parse()

	log.Printf("irenhance starting\n")
}

func main() {
	cfg := irpipeline.NewConfig()
	files, err := cfg.LoadFilesAndDirs(flag.Args()...)
	if err != nil {
		log.Fatal(err)
	}
	if len(files) == 0 {
		log.Fatal("no input frames; usage: irenhance [flags] [config.yaml] frame.raw|dir ...")
	}

	// Override the config file with command line args, if they were set
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":            cfg.Verbosity = fVerbosity
		case "w":            cfg.Width = fWidth
		case "h":            cfg.Height = fHeight
		case "byteorder":    cfg.ByteOrder = fByteOrder
		case "tonemapper":   cfg.Tonemapper = fTonemapper
		case "palette":      cfg.Palette = fPalette
		case "o":            cfg.OutputDir = fOutputDir
		case "scale":        cfg.OutputScale = fOutputScale
		case "hdr":          cfg.WriteHDR = fWriteHDR
		case "workers":      cfg.Workers = fWorkers
		case "failfast":     cfg.FailFast = fFailFast
		case "threshold":    cfg.Ace.Threshold = fThreshold
		case "gain":         cfg.Ace.GainFactor = fGainFactor
		case "ondegenerate": cfg.Ace.OnDegenerate = fOnDegenerate
		}
	})

	if err := cfg.Finalize(); err != nil {
		log.Fatal(err)
	}
	if cfg.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", cfg.AsYaml())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := irpipeline.RunBatch(ctx, cfg, files)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("%s\n", report)

	if len(report.Failed) > 0 {
		for _, f := range report.FailedFiles() {
			log.Printf("  failed: %s: %v", f, report.Failed[f])
		}
		os.Exit(1)
	}
}
