package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ============================================================================
// ARTCHECK CLI — ART roll-out checks for CDM batch output
// ============================================================================

const version = "0.1.0"

// cli holds flag values and the logger shared by every subcommand.
type cli struct {
	configPath string
	outDir     string
	plotFormat string
	noPlots    bool
	verbose    bool

	logger *zap.Logger
	out    io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "artcheck [year] [time_step] [path] [demographic]",
		Short: "Check ARTRollOut exports against the Miami care continuum",
		Long: `artcheck finds every ARTRollOut export under path, runs the check catalog
on each and writes check_summary_passfail.txt, check_summary_numerics.txt and
one comparison plot per care-continuum ratio.

year and time_step anchor simulation time to the calendar (default 1990 12).
path defaults to the current directory. demographic is one of
TOTAL, WHITE, BLACK, HISPANIC, OTHER; when given, output files carry the
group as a suffix, e.g. check_summary_passfail_WHITE.txt.`,
		Args:          cobra.MaximumNArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if c.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: c.runChecks,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&c.outDir, "out", "", "Output directory (or set ARTCHECK_OUTPUT_DIR)")
	root.PersistentFlags().StringVar(&c.plotFormat, "plot-format", "", "Plot format: pdf, png, svg (or set ARTCHECK_PLOT_FORMAT)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	root.Flags().BoolVar(&c.noPlots, "no-plots", false, "Skip plot rendering")

	root.AddCommand(
		&cobra.Command{
			Use:   "replot <numerics_file> [demographic]",
			Short: "Re-render comparison plots from a numerics report",
			Args:  cobra.RangeArgs(1, 2),
			RunE:  c.runReplot,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version and exit",
			Args:  cobra.NoArgs,
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
				return nil
			},
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(c.out, "artcheck %s\n", version)
			},
		},
	)

	return root
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
