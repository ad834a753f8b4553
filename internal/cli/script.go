// script.go implements the "cfabatch script" command which prints the
// versioned keystroke table so an operator can audit it against the legacy
// program's menus.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cfa-tools/cfabatch/internal/script"
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Print the menu walk as a step listing",
	Long: `Print every step of the bootstrap sequence and the per-record menu
walk. The listing is the exact replay order; use it to verify the script
against the legacy program after any menu change.`,
	RunE: runScript,
}

var recordFlag string

func init() {
	scriptCmd.Flags().StringVar(&recordFlag, "record", "EXAMPLE.prn", "Record name to substitute into the listing")
}

func runScript(cmd *cobra.Command, args []string) error {
	fmt.Printf("Script version: %s\n\n", script.Version)

	fmt.Println("Bootstrap (once per emulator launch):")
	for i, s := range script.Bootstrap("<mount_dir>") {
		fmt.Printf("  %2d. %s\n", i+1, s.Describe())
	}

	fmt.Printf("\nPer record (%s):\n", recordFlag)
	for i, s := range script.ForRecord(recordFlag, "<resolution>") {
		marker := "  "
		if s.OneTime {
			marker = " *"
		}
		fmt.Printf("  %2d.%s %s\n", i+1, marker, s.Describe())
	}

	fmt.Println("\n  * runs only while the session's one-time resolution prompt is unanswered")
	return nil
}
