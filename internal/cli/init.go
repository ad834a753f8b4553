// init.go implements the "cfabatch init" command.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cfa-tools/cfabatch/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize cfabatch in the current directory",
	Long: `Initialize the .cfabatch/ directory with a default configuration.
The generated config.yaml has the emulator and directory paths left empty;
fill those in before the first run.`,
	RunE: runInit,
}

var guidedFlag bool

func init() {
	initCmd.Flags().BoolVar(&guidedFlag, "guided", false, "Interactive prompts for configuration values")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	// Check for an existing .cfabatch/ directory.
	cfgDir := filepath.Join(dir, ".cfabatch")
	if info, statErr := os.Stat(cfgDir); statErr == nil && info.IsDir() {
		fmt.Println("Warning: .cfabatch/ directory already exists.")
		fmt.Print("Reinitialize? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	if guidedFlag {
		cfg, err = guidedOverrides(cfg)
		if err != nil {
			return fmt.Errorf("guided setup: %w", err)
		}
	}

	if writeErr := config.WriteConfig(dir, cfg); writeErr != nil {
		return fmt.Errorf("writing config: %w", writeErr)
	}

	fmt.Println()
	fmt.Println("Cfabatch initialized")
	fmt.Println("Configuration written to .cfabatch/config.yaml")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Edit .cfabatch/config.yaml to point at the emulator and data directories")
	fmt.Println("  2. Run: cfabatch run")

	return nil
}

// guidedOverrides prompts the user for the configuration values that have
// no usable defaults.
func guidedOverrides(cfg *config.Config) (*config.Config, error) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println()
	fmt.Println("--- Guided Configuration ---")

	ask := func(prompt, current string, dst *string) {
		if current == "" {
			current = "unset"
		}
		fmt.Printf("%s [%s]: ", prompt, current)
		if line, err := reader.ReadString('\n'); err == nil {
			line = strings.TrimSpace(line)
			if line != "" {
				*dst = line
			}
		}
	}

	ask("Emulator executable", cfg.DOSBox.Path, &cfg.DOSBox.Path)
	ask("Emulator conf file", cfg.DOSBox.Conf, &cfg.DOSBox.Conf)
	ask("Window title", cfg.DOSBox.WindowTitle, &cfg.DOSBox.WindowTitle)
	ask("Mount directory (becomes C:)", cfg.DOSBox.MountDir, &cfg.DOSBox.MountDir)
	ask("Input directory (.prn files)", cfg.Paths.InputDir, &cfg.Paths.InputDir)
	ask("Screenshot directory", cfg.Paths.ScreenshotDir, &cfg.Paths.ScreenshotDir)
	ask("Session policy (per-batch|per-record)", cfg.Session.Policy, &cfg.Session.Policy)

	fmt.Println("--- End Guided Configuration ---")
	fmt.Println()

	return cfg, nil
}
