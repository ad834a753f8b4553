// run.go implements the "cfabatch run" command which drives a full batch:
// launch the emulator, walk every input record through the menu tree, and
// collect screenshots.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cfa-tools/cfabatch/internal/artifact"
	"github.com/cfa-tools/cfabatch/internal/cleanup"
	"github.com/cfa-tools/cfabatch/internal/clock"
	"github.com/cfa-tools/cfabatch/internal/config"
	"github.com/cfa-tools/cfabatch/internal/desktop"
	"github.com/cfa-tools/cfabatch/internal/input"
	"github.com/cfa-tools/cfabatch/internal/log"
	"github.com/cfa-tools/cfabatch/internal/scan"
	"github.com/cfa-tools/cfabatch/internal/screen"
	"github.com/cfa-tools/cfabatch/internal/script"
	"github.com/cfa-tools/cfabatch/internal/session"
	"github.com/cfa-tools/cfabatch/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full batch over the input directory",
	Long: `Run the full batch: launch the emulator, bootstrap the legacy
program, walk every .prn record through the menu tree, and save a
screenshot per analysis stage.

The run owns the keyboard for its whole duration. Do not type while it
is in progress.`,
	RunE: runRun,
}

var (
	dryRunFlag bool
	policyFlag string
	inputFlag  string
	outputFlag string
)

func init() {
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "List records and planned artifacts without touching the desktop")
	runCmd.Flags().StringVar(&policyFlag, "policy", "", "Override session policy (per-batch|per-record)")
	runCmd.Flags().StringVar(&inputFlag, "input", "", "Override the configured input directory")
	runCmd.Flags().StringVar(&outputFlag, "output", "", "Override the configured screenshot directory")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Validate: .cfabatch/ must exist.
	if _, err := os.Stat(".cfabatch"); os.IsNotExist(err) {
		return fmt.Errorf(".cfabatch/ not found. Run 'cfabatch init' first")
	}

	cfg, err := config.ReadConfig(".")
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if policyFlag != "" {
		cfg.Session.Policy = policyFlag
	}
	if inputFlag != "" {
		cfg.Paths.InputDir = inputFlag
	}
	if outputFlag != "" {
		cfg.Paths.ScreenshotDir = outputFlag
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if dryRunFlag {
		return dryRun(cfg)
	}

	// Auto-prune old screenshots.
	if cfg.Cleanup.MaxAgeDays > 0 {
		pruned, pruneErr := cleanup.PruneByAge(cfg.Paths.ScreenshotDir, cfg.Cleanup.MaxAgeDays, false)
		if pruneErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: cleanup failed: %v\n", pruneErr)
		} else if len(pruned) > 0 {
			fmt.Fprintf(os.Stderr, "Cleaned up %d old screenshot(s)\n", len(pruned))
		}
	}

	records, err := scan.Records(cfg.Paths.InputDir)
	if err != nil {
		return fmt.Errorf("scanning input directory: %w", err)
	}

	saver, err := artifact.NewSaver(cfg.Paths.ScreenshotDir)
	if err != nil {
		return fmt.Errorf("creating screenshot directory: %w", err)
	}

	logger, err := log.NewLogger(".")
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	sys := desktop.NewSystem()
	clk := clock.Real{}
	driver := input.New(sys, sys, clk, cfg.DOSBox.WindowTitle)

	waiter := screen.NewWaiter(sys, clk)
	waiter.Tolerance = cfg.Stability.PixelTolerance

	walker := &script.Walker{
		Driver:    driver,
		Waiter:    waiter,
		Saver:     saver,
		Logger:    logger,
		Clock:     clk,
		Timing:    cfg.Timing,
		Stability: cfg.Stability,
		Bounds: func() (desktop.Rect, error) {
			return sys.Bounds(cfg.DOSBox.WindowTitle)
		},
	}

	orch := &session.Orchestrator{
		Cfg:    cfg,
		Win:    sys,
		Driver: driver,
		Walker: walker,
		Logger: logger,
		Clock:  clk,
		Launcher: session.ExecLauncher{
			Path: cfg.DOSBox.Path,
			Conf: cfg.DOSBox.Conf,
		},
	}

	var display *ui.Display
	if !Verbose() {
		display = ui.NewDisplay(fmt.Sprintf("%d record(s), %s", len(records), cfg.Session.Policy))
		for _, r := range records {
			display.AddRecord(r)
		}
		display.Start()
		orch.Progress = display
	}

	fmt.Printf("Starting batch: %d record(s) from %s\n", len(records), cfg.Paths.InputDir)

	processed, runErr := orch.RunBatch()

	if display != nil {
		display.Finish()
	}
	if runErr != nil {
		return fmt.Errorf("batch aborted after %d record(s): %w", processed, runErr)
	}

	fmt.Printf("Screenshots written to %s\n", cfg.Paths.ScreenshotDir)
	return nil
}

// dryRun lists the discovered records and the artifacts each would produce,
// without launching anything.
func dryRun(cfg *config.Config) error {
	records, err := scan.Records(cfg.Paths.InputDir)
	if err != nil {
		return fmt.Errorf("scanning input directory: %w", err)
	}
	if len(records) == 0 {
		fmt.Printf("No .prn files found in %s\n", cfg.Paths.InputDir)
		return nil
	}

	fmt.Printf("Dry run: %d record(s), policy %s, script %s\n\n", len(records), cfg.Session.Policy, script.Version)

	fmt.Println("Bootstrap:")
	for _, s := range script.Bootstrap(cfg.DOSBox.MountDir) {
		fmt.Printf("  %s\n", s.Describe())
	}
	fmt.Printf("\nSteps for %s:\n", records[0])
	for _, s := range script.ForRecord(records[0], cfg.Resolution) {
		fmt.Printf("  %s\n", s.Describe())
	}

	fmt.Println("\nPlanned artifacts:")
	for i, record := range records {
		// Under per-batch scoping only the first record answers the
		// one-time resolution prompt; per-record repeats it every launch.
		withPrompt := i == 0 || cfg.Session.Policy == config.PolicyPerRecord

		fmt.Printf("%s:\n", record)
		for _, name := range script.ArtifactNames(record, withPrompt) {
			fmt.Printf("  %s\n", name)
		}
	}

	return nil
}
