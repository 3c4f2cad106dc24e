// Package main provides the entry point for a32sim.
// a32sim is a functional ARMv4 data-processing emulator.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sarchlab/a32sim/config"
	"github.com/sarchlab/a32sim/emu"
	"github.com/sarchlab/a32sim/loader"
)

var (
	configPath  = flag.String("config", "", "Path to configuration JSON file")
	entry       = flag.String("entry", "", "Override entry point (e.g. 0x8000)")
	maxInsts    = flag.Uint64("max", 0, "Stop after this many instructions (0 = no limit)")
	trace       = flag.Bool("trace", false, "Print each executed instruction to stderr")
	step        = flag.Bool("step", false, "Single-step interactively")
	statsviewOn = flag.Bool("statsview", false, "Serve runtime statistics while running")
	verbose     = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: a32sim [options] <program>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath, cfg.LoadAddress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Entry point: 0x%X\n", prog.EntryPoint)
		fmt.Printf("Segments: %d (%d bytes)\n", len(prog.Segments), prog.Size())
	}

	if *statsviewOn {
		if statsviewAvailable() {
			launchStatsview(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "statsview not available in this build\n")
		}
	}

	var traceOut io.Writer
	if cfg.Trace {
		traceOut = os.Stderr
	}
	emulator := newEmulator(cfg, prog, traceOut)

	var result emu.StepResult
	if *step {
		result, err = runInteractive(emulator)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		result = emulator.Run()
	}

	if *verbose {
		printSummary(os.Stdout, emulator, result)
	}

	if result.Err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", result.Err)
		os.Exit(1)
	}

	os.Exit(int(result.ExitCode))
}

// buildConfig loads the configuration file, if any, and applies the
// command-line overrides that were explicitly set.
func buildConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}

	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "entry":
			var v uint64
			v, err = strconv.ParseUint(*entry, 0, 32)
			if err != nil {
				err = fmt.Errorf("invalid entry point %q: %w", *entry, err)
				return
			}
			cfg.EntryPoint = uint32(v)
		case "max":
			cfg.MaxInstructions = *maxInsts
		case "trace":
			cfg.Trace = *trace
		}
	})
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newEmulator creates an emulator for prog and points the PC at its entry.
// Non-zero config values override the entry point and stack pointer of the
// image.
func newEmulator(cfg *config.Config, prog *loader.Program, traceOut io.Writer) *emu.Emulator {
	sp := prog.InitialSP
	if cfg.StackPointer != 0 {
		sp = cfg.StackPointer
	}

	opts := []emu.EmulatorOption{
		emu.WithStackPointer(sp),
		emu.WithMaxInstructions(cfg.MaxInstructions),
	}
	if cfg.DecodeCache.Enabled {
		opts = append(opts, emu.WithDecodeCache(cfg.DecodeCache.Sets, cfg.DecodeCache.Ways))
	}
	if traceOut != nil {
		opts = append(opts, emu.WithTrace(traceOut))
	}

	emulator := emu.NewEmulator(opts...)
	prog.LoadInto(emulator.Memory())

	pc := prog.EntryPoint
	if cfg.EntryPoint != 0 {
		pc = cfg.EntryPoint
	}
	emulator.RegFile().SetPC(pc)

	return emulator
}

func printSummary(w io.Writer, emulator *emu.Emulator, result emu.StepResult) {
	fmt.Fprintf(w, "\nInstructions executed: %d\n", emulator.InstructionCount())
	if result.Exited {
		fmt.Fprintf(w, "Exit code: %d\n", result.ExitCode)
	}
	if cache := emulator.DecodeCache(); cache != nil {
		stats := cache.Stats()
		fmt.Fprintf(w, "Decode cache: %d hits, %d misses, %d evictions, %d stale\n",
			stats.Hits, stats.Misses, stats.Evictions, stats.Stale)
	}
	fmt.Fprintf(w, "%s\n", emulator.RegFile())
}
