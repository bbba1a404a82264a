package main

import (
	"os"

	"github.com/QuangTung97/mylloc/allocator"
	"github.com/QuangTung97/mylloc/simulate"
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"
)

var (
	simConfigPath string
	simFlags      = simulate.DefaultConfig()
)

func init() {
	rootCmd.AddCommand(newSimulateCmd())
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a random allocation workload",
		Long: `The simulate command allocates and releases randomly sized blocks over a
fixed set of slots. After every round it prints how far the heap top moved and
the memory statistics of the allocator.

Example:
  mylloc simulate
  mylloc simulate --rounds 10 --steps 100 --seed 7
  mylloc simulate --config workload.toml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			return runSimulate(conf)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&simConfigPath, "config", "c", "", "TOML file with the workload settings")
	f.IntVar(&simFlags.Rounds, "rounds", simFlags.Rounds, "Number of rounds")
	f.IntVar(&simFlags.Slots, "slots", simFlags.Slots, "Number of pointer slots")
	f.IntVar(&simFlags.Steps, "steps", simFlags.Steps, "Steps per round")
	f.Uint64Var(&simFlags.Seed, "seed", simFlags.Seed, "Random seed")
	f.Uint32Var(&simFlags.MinSize, "min-size", simFlags.MinSize, "Smallest request in bytes")
	f.Uint32Var(&simFlags.MaxSize, "max-size", simFlags.MaxSize, "Largest request in bytes")
	f.Uint32Var(&simFlags.HeapLimit, "heap-limit", simFlags.HeapLimit, "Maximum heap size in bytes")
	f.BoolVar(&simFlags.Mmap, "mmap", simFlags.Mmap, "Back the heap with an anonymous mapping")
	f.BoolVar(&simFlags.CheckReleases, "check-releases", simFlags.CheckReleases, "Reject invalid and double releases")
	return cmd
}

// buildConfig loads the config file if any, then applies the flags set on the command line.
func buildConfig(cmd *cobra.Command) (simulate.Config, error) {
	conf := simulate.DefaultConfig()
	if simConfigPath != "" {
		loaded, err := simulate.LoadConfig(simConfigPath)
		if err != nil {
			return simulate.Config{}, err
		}
		conf = loaded
	}

	f := cmd.Flags()
	if f.Changed("rounds") {
		conf.Rounds = simFlags.Rounds
	}
	if f.Changed("slots") {
		conf.Slots = simFlags.Slots
	}
	if f.Changed("steps") {
		conf.Steps = simFlags.Steps
	}
	if f.Changed("seed") {
		conf.Seed = simFlags.Seed
	}
	if f.Changed("min-size") {
		conf.MinSize = simFlags.MinSize
	}
	if f.Changed("max-size") {
		conf.MaxSize = simFlags.MaxSize
	}
	if f.Changed("heap-limit") {
		conf.HeapLimit = simFlags.HeapLimit
	}
	if f.Changed("mmap") {
		conf.Mmap = simFlags.Mmap
	}
	if f.Changed("check-releases") {
		conf.CheckReleases = simFlags.CheckReleases
	}
	return conf, conf.Validate()
}

func runSimulate(conf simulate.Config) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}

	report, err := simulate.Run(conf, logger)
	if errors.Is(err, simulate.ErrAllocationFailed) {
		return errors.Wrap(err, "malloc failed")
	}
	if err != nil {
		return err
	}

	if jsonOut {
		return printReportJSON(report)
	}
	printReport(report)
	return nil
}

func printReportJSON(report simulate.Report) error {
	w := jwriter.NewWriter()
	report.WriteJSON(&w)
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "encode report")
	}
	if _, err := os.Stdout.Write(append(w.Bytes(), '\n')); err != nil {
		return errors.Wrap(err, "write report")
	}
	return nil
}

func printReport(report simulate.Report) {
	printInfo("Starting test..\n")
	printInfo("The initial top of the heap is 0x%x.\n", report.InitBreak)

	for _, round := range report.Rounds {
		printInfo("---------------\n")
		printInfo("%v\n", plain(round.Index))
		for _, e := range round.Events {
			if e.Kind == simulate.EventAlloc {
				printVerbose("Allocating %v bytes at index %v\n", plain(e.Size), plain(e.Slot))
			} else {
				printVerbose("Freeing %v bytes at index %v\n", plain(e.Size), plain(e.Slot))
			}
		}
		printInfo("The new top of the heap is 0x%x.\n", round.BreakAfter)
		printInfo("Increased by %v (0x%x) bytes\n", plain(round.Growth()), round.Growth())
		printMemStats(round.Stats)
	}

	printInfo("---------------\n")
	printInfo("Released all slots, the heap top stays at 0x%x.\n", report.FinalBreak)
	printMemStats(report.FinalStats)

	c := report.Counters
	printVerbose("Allocations: %d (reused %d, grown %d), releases: %d\n",
		c.AllocCalls, c.Reused, c.Grown, c.ReleaseCalls)
	printInfo("Time is %.6f seconds\n", report.Elapsed.Seconds())
}

func printMemStats(s allocator.Stats) {
	printInfo("Total blocks: %v Free blocks: %v Used blocks: %v\n",
		plain(s.TotalBlocks), plain(s.FreeBlocks), plain(s.UsedBlocks))
	printInfo("Total memory allocated: %v Free memory: %v Used memory: %v\n",
		plain(s.TotalMemory), plain(s.FreeMemory), plain(s.UsedMemory))
	printInfo("Underutilized memory: %.2f\n", s.UnderutilizationRatio())
}
