// walk.go executes a step list against the live target window. Exactly one
// record is ever in flight; the walker is strictly sequential.
package script

import (
	"fmt"
	"os"

	"github.com/cfa-tools/cfabatch/internal/artifact"
	"github.com/cfa-tools/cfabatch/internal/clock"
	"github.com/cfa-tools/cfabatch/internal/config"
	"github.com/cfa-tools/cfabatch/internal/desktop"
	"github.com/cfa-tools/cfabatch/internal/input"
	"github.com/cfa-tools/cfabatch/internal/log"
	"github.com/cfa-tools/cfabatch/internal/screen"
)

// Walker replays steps for one record at a time.
//
// Failure semantics: a vanished window inside any step is fatal and
// propagates (the whole batch aborts — there is no way to resynchronize
// with an unknown menu position). A screenshot save failure is logged and
// skipped: the keystroke sequence must not desynchronize just because an
// artifact failed to hit disk. A stability timeout is soft; the best
// available frame is saved anyway.
type Walker struct {
	Driver    *input.Driver
	Waiter    *screen.Waiter
	Saver     *artifact.Saver
	Logger    *log.Logger
	Clock     clock.Clock
	Timing    config.TimingConfig
	Stability config.StabilityConfig

	// Bounds reports the target window's current geometry for captures.
	Bounds func() (desktop.Rect, error)
}

// Run replays steps for record. promptSatisfied is the session-scoped
// one-time-prompt guard, owned by the orchestrator and shared by every
// record in the session: OneTime steps run only while it is false, and
// completing the one-time capture flips it (false to true, never back).
func (w *Walker) Run(record string, steps []Step, promptSatisfied *bool) error {
	// Decided once per walk so a mid-group flip cannot skip the tail of
	// the one-time step group.
	runOneTime := promptSatisfied != nil && !*promptSatisfied

	for _, step := range steps {
		if step.OneTime && !runOneTime {
			continue
		}

		var err error
		switch step.Kind {
		case StepPress:
			err = w.press(step)
		case StepType:
			err = w.typeStep(step)
		case StepCapture:
			err = w.capture(record, step, promptSatisfied)
		default:
			err = fmt.Errorf("unknown step kind %d", step.Kind)
		}
		if err != nil {
			return fmt.Errorf("record %s: step %q: %w", record, step.Describe(), err)
		}

		if step.Settle > 0 {
			w.Clock.Sleep(step.Settle)
		}
	}
	return nil
}

func (w *Walker) press(step Step) error {
	interval := step.KeyInterval
	if interval == 0 {
		interval = w.Timing.KeyInterval()
	}
	return w.Driver.PressKeys(interval, step.Keys...)
}

func (w *Walker) typeStep(step Step) error {
	return w.Driver.TypeCommand(step.Text, w.Timing.TypeInterval(), step.PressEnter, w.Timing.Settle())
}

func (w *Walker) capture(record string, step Step, promptSatisfied *bool) error {
	timeout := w.Stability.Timeout()
	if step.GraphWait {
		timeout = w.Stability.GraphTimeout()
	}

	frame, stable, err := w.Waiter.WaitUntilStable(w.Bounds, w.Stability.Poll(), timeout)
	if err != nil {
		return err
	}
	if !stable {
		w.logEvent(log.LogEvent{
			Event:  log.EventStabilityTimeout,
			Record: record,
			Stage:  step.Stage,
		})
	}

	name := artifact.Name(step.Seq, record, step.Stage)
	path, saveErr := w.Saver.Save(name, frame.Img)
	if saveErr != nil {
		// Non-fatal: the walk continues so the keystroke sequence stays
		// aligned with the menu.
		w.logEvent(log.LogEvent{
			Event:  log.EventScreenshotError,
			Record: record,
			Stage:  step.Stage,
			Error:  saveErr.Error(),
		})
		fmt.Fprintf(os.Stderr, "Warning: screenshot %s not saved: %v\n", name, saveErr)
	} else {
		w.logEvent(log.LogEvent{
			Event:    log.EventScreenshotSaved,
			Record:   record,
			Stage:    step.Stage,
			Artifact: path,
		})
	}

	if step.OneTime && promptSatisfied != nil && !*promptSatisfied {
		*promptSatisfied = true
		w.logEvent(log.LogEvent{Event: log.EventPromptAnswered, Record: record})
	}
	return nil
}

func (w *Walker) logEvent(e log.LogEvent) {
	if w.Logger == nil {
		return
	}
	if err := w.Logger.Append(e); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to log %s: %v\n", e.Event, err)
	}
}
