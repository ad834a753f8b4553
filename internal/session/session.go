// Package session owns the emulator process lifecycle and iterates the menu
// script once per discovered input record.
package session

import (
	"fmt"
	"os"
	"time"

	"github.com/cfa-tools/cfabatch/internal/clock"
	"github.com/cfa-tools/cfabatch/internal/config"
	"github.com/cfa-tools/cfabatch/internal/desktop"
	"github.com/cfa-tools/cfabatch/internal/input"
	"github.com/cfa-tools/cfabatch/internal/log"
	"github.com/cfa-tools/cfabatch/internal/scan"
	"github.com/cfa-tools/cfabatch/internal/script"
)

// State is the session-scoped mutable state. It is created at session start,
// mutated exactly once when the one-time resolution prompt is answered, and
// discarded at session end. It is never persisted across runs.
type State struct {
	WindowTitle     string
	MountDir        string
	PromptSatisfied bool
}

// Reporter receives per-record progress callbacks.
type Reporter interface {
	RecordStarted(record string)
	RecordFinished(record string, err error)
}

// Orchestrator drives whole batch runs. All waiting is blocking sleeps and
// blocking poll loops; nothing here is safe to run concurrently with other
// foreground interaction, because the automation assumes exclusive control
// of keyboard focus for its entire run.
type Orchestrator struct {
	Cfg      *config.Config
	Win      desktop.Windower
	Driver   *input.Driver
	Walker   *script.Walker
	Logger   *log.Logger
	Clock    clock.Clock
	Launcher Launcher
	Progress Reporter
}

// RunBatch enumerates the input records once and walks each of them through
// the legacy program, returning the number of records fully processed.
//
// A missing emulator executable or a vanished target window is fatal: the
// whole batch halts, because keystroke-position desynchronization cannot be
// detected or repaired blind. There is no per-record retry.
func (o *Orchestrator) RunBatch() (int, error) {
	if _, err := os.Stat(o.Cfg.DOSBox.Path); err != nil {
		return 0, fmt.Errorf("emulator not found at %s: %w", o.Cfg.DOSBox.Path, err)
	}

	records, err := scan.Records(o.Cfg.Paths.InputDir)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		fmt.Printf("No .prn files found in %s\n", o.Cfg.Paths.InputDir)
		return 0, nil
	}

	o.logEvent(log.LogEvent{
		Event:   log.EventBatchStarted,
		Records: len(records),
		Policy:  o.Cfg.Session.Policy,
	})

	start := o.Clock.Now()
	processed, err := o.runPolicy(records)
	if err != nil {
		o.logEvent(log.LogEvent{
			Event:     log.EventBatchAborted,
			Processed: processed,
			Records:   len(records),
			Error:     err.Error(),
		})
		return processed, err
	}

	o.logEvent(log.LogEvent{
		Event:      log.EventBatchComplete,
		Processed:  processed,
		Records:    len(records),
		DurationMs: o.Clock.Now().Sub(start).Milliseconds(),
	})
	return processed, nil
}

func (o *Orchestrator) runPolicy(records []string) (int, error) {
	switch o.Cfg.Session.Policy {
	case config.PolicyPerRecord:
		// One emulator lifetime per record; the one-time prompt repeats
		// because State is recreated on every launch.
		processed := 0
		for _, record := range records {
			n, err := o.runSession([]string{record})
			processed += n
			if err != nil {
				return processed, err
			}
		}
		return processed, nil
	default:
		// Per-batch: a single emulator lifetime spanning all records.
		return o.runSession(records)
	}
}

// runSession launches the emulator, replays the bootstrap sequence once,
// walks every given record, and closes the process.
func (o *Orchestrator) runSession(records []string) (int, error) {
	title := o.Cfg.DOSBox.WindowTitle

	proc, err := o.Launcher.Start()
	if err != nil {
		return 0, err
	}
	o.Clock.Sleep(o.Cfg.Timing.LaunchSettle())

	// Focus must succeed after every launch; an absent window here means
	// the emulator died before showing anything.
	if err := o.Win.Focus(title); err != nil {
		return 0, fmt.Errorf("focusing %q after launch: %w", title, err)
	}
	o.Clock.Sleep(500 * time.Millisecond)

	state := &State{
		WindowTitle: title,
		MountDir:    o.Cfg.DOSBox.MountDir,
	}

	o.logEvent(log.LogEvent{Event: log.EventSessionStarted, Policy: o.Cfg.Session.Policy})

	if err := o.Walker.Run("", script.Bootstrap(state.MountDir), nil); err != nil {
		return 0, fmt.Errorf("bootstrap: %w", err)
	}

	processed := 0
	for _, record := range records {
		if o.Progress != nil {
			o.Progress.RecordStarted(record)
		}
		o.logEvent(log.LogEvent{Event: log.EventRecordStarted, Record: record})

		start := o.Clock.Now()
		err := o.Walker.Run(record, script.ForRecord(record, o.Cfg.Resolution), &state.PromptSatisfied)
		if o.Progress != nil {
			o.Progress.RecordFinished(record, err)
		}
		if err != nil {
			// Fatal: the window is in an unknown menu state (or gone).
			// No cleanup is attempted; resynchronizing blind is not
			// possible.
			return processed, err
		}

		o.logEvent(log.LogEvent{
			Event:      log.EventRecordCompleted,
			Record:     record,
			DurationMs: o.Clock.Now().Sub(start).Milliseconds(),
		})
		processed++
	}

	o.closeSession(proc)
	return processed, nil
}

// closeSession sends the process-close key combination, then falls back to
// killing the process if the window outlives it.
func (o *Orchestrator) closeSession(proc Process) {
	if err := o.Driver.Hotkey("f4", "alt"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: close keys failed: %v\n", err)
	}
	o.Clock.Sleep(o.Cfg.Timing.Settle())

	if o.Win.Exists(o.Cfg.DOSBox.WindowTitle) {
		if err := proc.Kill(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: killing emulator: %v\n", err)
		}
	}
	o.logEvent(log.LogEvent{Event: log.EventSessionClosed})
}

func (o *Orchestrator) logEvent(e log.LogEvent) {
	if o.Logger == nil {
		return
	}
	if err := o.Logger.Append(e); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to log %s: %v\n", e.Event, err)
	}
}
