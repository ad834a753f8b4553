// Package cli defines Cobra command definitions for the cfabatch CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	version = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "cfabatch",
	Short: "Batch automation for the CFA flood-frequency console program",
	Long: `Cfabatch drives the legacy CFA flood-frequency analysis program
running inside a DOSBox emulator. It walks every .prn input record through
the program's text menus with synthesized keystrokes and saves a screenshot
of each analysis screen.

The target window must keep keyboard focus for the whole run.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Verbose returns true if --verbose flag is set.
func Verbose() bool {
	return verbose
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Plain line-per-event output instead of the progress display")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cleanCmd)
}
