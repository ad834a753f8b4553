// Package desktop is the OS boundary: window lookup and focus, synthesized
// keyboard input, and pixel capture. Everything above this package talks to
// these interfaces so it can run against fakes in tests.
package desktop

import (
	"errors"
	"image"
)

// ErrWindowGone indicates the target window no longer exists. Once the window
// is gone there is no way to resynchronize with the menu position, so callers
// treat this as fatal for the whole batch.
var ErrWindowGone = errors.New("target window not found")

// Rect is a window's on-screen geometry in pixels.
type Rect struct {
	X, Y, W, H int
}

// Windower locates and focuses the target window by title.
// Bounds must be re-read per capture; the window may move between calls.
type Windower interface {
	Exists(title string) bool
	Focus(title string) error
	Bounds(title string) (Rect, error)
}

// Keyboard synthesizes key presses and literal text entry.
// The channel is write-only: nothing is ever read back from the target.
type Keyboard interface {
	// Tap presses a single symbolic key, optionally with modifiers
	// (e.g. Tap("f4", "alt")).
	Tap(key string, mods ...string) error
	// Type enters text literally, one character at a time.
	Type(text string) error
}

// Capturer grabs the pixel region bounded by r.
type Capturer interface {
	Capture(r Rect) (image.Image, error)
}
