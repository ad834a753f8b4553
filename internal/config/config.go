// Package config handles reading and writing .cfabatch/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Session scoping policies. PolicyPerBatch launches the emulator once and
// walks every record in that single session; PolicyPerRecord relaunches it
// for every record, which repeats the one-time resolution prompt each time.
// The two are never mixed within a run.
const (
	PolicyPerBatch  = "per-batch"
	PolicyPerRecord = "per-record"
)

// Config is the top-level structure for .cfabatch/config.yaml.
type Config struct {
	Version   int             `yaml:"version"`
	DOSBox    DOSBoxConfig    `yaml:"dosbox"`
	Paths     PathsConfig     `yaml:"paths"`
	Session   SessionConfig   `yaml:"session"`
	Timing    TimingConfig    `yaml:"timing"`
	Stability StabilityConfig `yaml:"stability"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	// Resolution is the answer to the legacy program's one-time screen
	// resolution prompt.
	Resolution string `yaml:"resolution"`
}

// DOSBoxConfig locates the emulator hosting the legacy program.
type DOSBoxConfig struct {
	Path        string `yaml:"path"`         // emulator executable
	Conf        string `yaml:"conf"`         // emulator configuration file
	WindowTitle string `yaml:"window_title"` // title used for lookup and focus
	MountDir    string `yaml:"mount_dir"`    // host directory mounted as C:
}

// PathsConfig holds the externally supplied input and output directories.
type PathsConfig struct {
	InputDir      string `yaml:"input_dir"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// SessionConfig controls session scoping.
type SessionConfig struct {
	Policy string `yaml:"policy"` // "per-batch" | "per-record"
}

// TimingConfig holds keystroke pacing and settle delays. The target drops
// input sent faster than it renders, so these are floors, not hints.
type TimingConfig struct {
	KeyIntervalMs  int `yaml:"key_interval_ms"`
	TypeIntervalMs int `yaml:"type_interval_ms"`
	SettleMs       int `yaml:"settle_ms"`
	LaunchSettleMs int `yaml:"launch_settle_ms"`
}

// StabilityConfig tunes the visual-quiescence detector.
type StabilityConfig struct {
	PollMs         int `yaml:"poll_ms"`
	TimeoutS       int `yaml:"timeout_s"`       // menu screens
	GraphTimeoutS  int `yaml:"graph_timeout_s"` // multi-second graph renders
	PixelTolerance int `yaml:"pixel_tolerance"` // changed pixels still counted as "no change"
}

// CleanupConfig controls pruning of old screenshot artifacts before a run.
type CleanupConfig struct {
	MaxAgeDays int `yaml:"max_age_days"` // 0 disables pruning
}

const configDir = ".cfabatch"
const configFile = "config.yaml"

// ReadConfig reads .cfabatch/config.yaml from the given directory.
// dir is the working root (not .cfabatch/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to .cfabatch/config.yaml in the given directory.
// Creates the .cfabatch/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
// Paths are environment-specific and left empty for the user to fill in.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		DOSBox: DOSBoxConfig{
			WindowTitle: "DOSBox",
		},
		Session: SessionConfig{
			Policy: PolicyPerBatch,
		},
		Timing: TimingConfig{
			KeyIntervalMs:  100,
			TypeIntervalMs: 10,
			SettleMs:       500,
			LaunchSettleMs: 2000,
		},
		Stability: StabilityConfig{
			PollMs:         250,
			TimeoutS:       5,
			GraphTimeoutS:  15,
			PixelTolerance: 0,
		},
		Resolution: "97,97",
	}
}

// Validate checks that cfg is complete enough to drive a batch run.
func (c *Config) Validate() error {
	if c.DOSBox.Path == "" {
		return fmt.Errorf("dosbox.path is required")
	}
	if c.DOSBox.Conf == "" {
		return fmt.Errorf("dosbox.conf is required")
	}
	if c.DOSBox.WindowTitle == "" {
		return fmt.Errorf("dosbox.window_title is required")
	}
	if c.DOSBox.MountDir == "" {
		return fmt.Errorf("dosbox.mount_dir is required")
	}
	if c.Paths.InputDir == "" {
		return fmt.Errorf("paths.input_dir is required")
	}
	if c.Paths.ScreenshotDir == "" {
		return fmt.Errorf("paths.screenshot_dir is required")
	}
	switch c.Session.Policy {
	case PolicyPerBatch, PolicyPerRecord:
	default:
		return fmt.Errorf("session.policy must be %q or %q, got %q",
			PolicyPerBatch, PolicyPerRecord, c.Session.Policy)
	}
	if c.Stability.PollMs <= 0 {
		return fmt.Errorf("stability.poll_ms must be positive")
	}
	if c.Stability.PixelTolerance < 0 {
		return fmt.Errorf("stability.pixel_tolerance must not be negative")
	}
	if c.Resolution == "" {
		return fmt.Errorf("resolution is required")
	}
	return nil
}

// Duration helpers so callers never convert units inline.

func (t TimingConfig) KeyInterval() time.Duration  { return time.Duration(t.KeyIntervalMs) * time.Millisecond }
func (t TimingConfig) TypeInterval() time.Duration { return time.Duration(t.TypeIntervalMs) * time.Millisecond }
func (t TimingConfig) Settle() time.Duration       { return time.Duration(t.SettleMs) * time.Millisecond }
func (t TimingConfig) LaunchSettle() time.Duration { return time.Duration(t.LaunchSettleMs) * time.Millisecond }

func (s StabilityConfig) Poll() time.Duration         { return time.Duration(s.PollMs) * time.Millisecond }
func (s StabilityConfig) Timeout() time.Duration      { return time.Duration(s.TimeoutS) * time.Second }
func (s StabilityConfig) GraphTimeout() time.Duration { return time.Duration(s.GraphTimeoutS) * time.Second }
