// clean.go implements the "cfabatch clean" command for manual screenshot cleanup.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cfa-tools/cfabatch/internal/cleanup"
	"github.com/cfa-tools/cfabatch/internal/config"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old screenshots",
	Long: `Remove old screenshots from the configured screenshot directory.

By default, removes files older than the configured max_age_days (default 30).
Use --keep to keep only the N most recent screenshots instead.
Use --dry-run to preview what would be removed.`,
	RunE: runClean,
}

var (
	keepFlag     int
	cleanDryFlag bool
)

func init() {
	cleanCmd.Flags().IntVar(&keepFlag, "keep", 0, "Keep only the last N screenshots (0 = use age-based cleanup)")
	cleanCmd.Flags().BoolVar(&cleanDryFlag, "dry-run", false, "Preview what would be removed without deleting")
}

func runClean(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(".cfabatch"); os.IsNotExist(err) {
		return fmt.Errorf(".cfabatch/ not found. Run 'cfabatch init' first")
	}

	cfg, err := config.ReadConfig(".")
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if cfg.Paths.ScreenshotDir == "" {
		return fmt.Errorf("paths.screenshot_dir is not configured")
	}

	var pruned []string

	if keepFlag > 0 {
		pruned, err = cleanup.PruneKeepRecent(cfg.Paths.ScreenshotDir, keepFlag, cleanDryFlag)
	} else {
		maxAge := cfg.Cleanup.MaxAgeDays
		if maxAge <= 0 {
			maxAge = 30
		}
		pruned, err = cleanup.PruneByAge(cfg.Paths.ScreenshotDir, maxAge, cleanDryFlag)
	}

	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if len(pruned) == 0 {
		fmt.Println("No screenshots to clean up.")
		return nil
	}

	verb := "Removed"
	if cleanDryFlag {
		verb = "Would remove"
	}

	for _, name := range pruned {
		fmt.Printf("  %s %s\n", verb, name)
	}
	fmt.Printf("%s %d screenshot(s).\n", verb, len(pruned))

	return nil
}
