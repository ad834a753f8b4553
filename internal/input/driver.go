// Package input synthesizes paced keystrokes and literal text entry against
// the target window. The target is unbuffered and drops input sent faster
// than it can render, so every key and character is emitted with a fixed
// inter-symbol delay.
package input

import (
	"fmt"
	"time"

	"github.com/cfa-tools/cfabatch/internal/clock"
	"github.com/cfa-tools/cfabatch/internal/desktop"
)

// Default pacing. The target renders each keystroke before accepting the
// next, so intervals below ~10ms lose input.
const (
	DefaultKeyInterval  = 100 * time.Millisecond
	DefaultTypeInterval = 10 * time.Millisecond
	DefaultSettle       = 500 * time.Millisecond
)

// Driver sends keystrokes to the window identified by Title. It never
// inspects what was typed; the channel is write-only.
type Driver struct {
	KB    desktop.Keyboard
	Win   desktop.Windower
	Clock clock.Clock
	Title string
}

// New returns a Driver for the given window title.
func New(kb desktop.Keyboard, win desktop.Windower, clk clock.Clock, title string) *Driver {
	return &Driver{KB: kb, Win: win, Clock: clk, Title: title}
}

// PressKeys presses each key in order, sleeping interval after every press.
func (d *Driver) PressKeys(interval time.Duration, keys ...string) error {
	for _, key := range keys {
		if err := d.KB.Tap(key); err != nil {
			return fmt.Errorf("pressing %q: %w", key, err)
		}
		d.Clock.Sleep(interval)
	}
	return nil
}

// Hotkey presses a single key with modifiers held (e.g. alt+f4).
func (d *Driver) Hotkey(key string, mods ...string) error {
	if err := d.KB.Tap(key, mods...); err != nil {
		return fmt.Errorf("pressing %q with %v: %w", key, mods, err)
	}
	return nil
}

// TypeText enters text literally, pausing interval between characters.
func (d *Driver) TypeText(text string, interval time.Duration) error {
	for _, r := range text {
		if err := d.KB.Type(string(r)); err != nil {
			return fmt.Errorf("typing: %w", err)
		}
		d.Clock.Sleep(interval)
	}
	return nil
}

// TypeCommand types text, waits settle, optionally presses enter, and then
// re-validates window liveness. This is the single choke point where a
// vanished window is detected early, keeping failures close to their cause.
// On a failed liveness check it returns desktop.ErrWindowGone wrapped; no
// further keystrokes are emitted after that.
func (d *Driver) TypeCommand(text string, interval time.Duration, pressEnter bool, settle time.Duration) error {
	if err := d.TypeText(text, interval); err != nil {
		return err
	}
	d.Clock.Sleep(settle)
	if pressEnter {
		if err := d.KB.Tap("enter"); err != nil {
			return fmt.Errorf("pressing enter after %q: %w", text, err)
		}
	}
	if !d.Win.Exists(d.Title) {
		return fmt.Errorf("after typing %q: %w", text, desktop.ErrWindowGone)
	}
	return nil
}
