// Command ringmerge generates a synthetic fragmented disk, merges its chains
// and prints a per-pass summary.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"

	"github.com/disintegration/imaging"

	"github.com/banshee-data/growthrings/internal/config"
	"github.com/banshee-data/growthrings/internal/fsutil"
	"github.com/banshee-data/growthrings/internal/rings/chain"
	"github.com/banshee-data/growthrings/internal/rings/debug"
	"github.com/banshee-data/growthrings/internal/rings/merge"
	"github.com/banshee-data/growthrings/internal/rings/synth"
	"github.com/banshee-data/growthrings/internal/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr, fsutil.OSFileSystem{}); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("ringmerge: %v", err)
	}
}

type options struct {
	configPath string
	imagePath  string
	outputDir  string
	nr         int
	rings      int
	cuts       int
	seed       int64
	debugOn    bool
	verbose    bool
	trace      bool
	check      bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("ringmerge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "path to a tuning JSON file (defaults built in)")
	fs.StringVar(&o.imagePath, "image", "", "reference image drawn under debug plots")
	fs.StringVar(&o.outputDir, "out", "debug", "directory for debug output")
	fs.IntVar(&o.nr, "nr", 360, "number of rays")
	fs.IntVar(&o.rings, "rings", 5, "number of synthetic rings")
	fs.IntVar(&o.cuts, "cuts", 4, "gaps cut into each ring")
	fs.Int64Var(&o.seed, "seed", 1, "generator seed")
	fs.BoolVar(&o.debugOn, "debug", false, "write a plot per checkpoint and a convergence report")
	fs.BoolVar(&o.verbose, "v", false, "log per-pass diagnostics")
	fs.BoolVar(&o.trace, "trace", false, "log every merge")
	fs.BoolVar(&o.check, "check", false, "validate the merge state after every change")
	fs.BoolVar(&o.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.nr < 4 {
		return o, fmt.Errorf("-nr must be at least 4, got %d", o.nr)
	}
	if o.rings < 0 || o.cuts < 0 {
		return o, fmt.Errorf("-rings and -cuts must be non-negative")
	}
	return o, nil
}

func run(args []string, stdout, stderr io.Writer, fsys fsutil.FileSystem) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.version {
		fmt.Fprintln(stdout, version.String("ringmerge"))
		return nil
	}

	setupLogging(o, stderr)

	cfg := merge.DefaultConfig()
	if o.configPath != "" {
		tc, err := config.LoadTuningConfigFS(fsys, o.configPath)
		if err != nil {
			return err
		}
		cfg = merge.ConfigFromTuning(tc)
	}
	cfg.CheckInvariants = o.check

	disk := synth.DefaultDisk(o.nr)
	disk.Rings = disk.Rings[:0]
	for i := 0; i < o.rings; i++ {
		disk.Rings = append(disk.Rings, synth.RingSpec{
			Radius: 60 + 45*float64(i),
			Cuts:   o.cuts,
			Gap:    max(o.nr/120, 1),
			Wobble: 2,
		})
	}
	disk.BorderRadius = 60 + 45*float64(o.rings) + 15
	chains, err := synth.Generate(disk, o.seed)
	if err != nil {
		return err
	}

	var observer *debug.PlotObserver
	if o.debugOn {
		var img image.Image
		if o.imagePath != "" {
			img, err = imaging.Open(o.imagePath)
			if err != nil {
				return fmt.Errorf("open image: %w", err)
			}
		}
		observer, err = debug.NewPlotObserver(fsys, o.outputDir, img)
		if err != nil {
			return err
		}
		cfg.Observer = observer
	}

	m, err := merge.NewMerger(cfg)
	if err != nil {
		return err
	}
	res, err := m.Run(chains, disk.Center, o.nr)
	if observer != nil {
		if ferr := observer.Flush(); ferr != nil {
			fmt.Fprintf(stderr, "debug report: %v\n", ferr)
		}
	}
	if err != nil {
		return err
	}

	printSummary(stdout, chains, res, o.nr)
	if observer != nil {
		fmt.Fprintf(stdout, "debug output: %s (%d images)\n", observer.Dir(), observer.Rendered())
	}
	return nil
}

func setupLogging(o options, stderr io.Writer) {
	var diag, trace io.Writer
	if o.verbose {
		diag = stderr
	}
	if o.trace {
		trace = stderr
	}
	merge.SetLogWriters(merge.LogWriters{Ops: stderr, Diag: diag, Trace: trace})
	debug.SetLogWriters(stderr, diag, trace)
}

func printSummary(w io.Writer, in []*chain.Chain, res merge.Result, nr int) {
	fmt.Fprintf(w, "%-5s %8s %8s %7s %7s %10s\n", "pass", "before", "after", "merges", "closed", "elapsed")
	for _, p := range res.Passes {
		fmt.Fprintf(w, "%-5d %8d %8d %7d %7d %10v\n", p.Pass, p.ChainsBefore, p.ChainsAfter, p.Merges, p.Closed, p.Elapsed)
	}
	complete := 0
	for _, c := range res.Chains {
		if c.Size() == nr {
			complete++
		}
	}
	fmt.Fprintf(w, "%d chains in, %d chains out, %d complete rings\n", len(in), len(res.Chains), complete)
}
