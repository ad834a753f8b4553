// robotgo.go is the only file in the repository that touches the OS. All
// window, keyboard, and capture calls funnel through robotgo here.
package desktop

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
)

// System implements Windower, Keyboard, and Capturer against the real
// desktop via robotgo. It steals input focus when focusing the target
// window and is not safe to run alongside other foreground interaction.
type System struct{}

// NewSystem returns the robotgo-backed desktop implementation.
func NewSystem() *System {
	return &System{}
}

func (s *System) pid(title string) (int32, error) {
	ids, err := robotgo.FindIds(title)
	if err != nil || len(ids) == 0 {
		return 0, ErrWindowGone
	}
	return ids[0], nil
}

// Exists reports whether a window matching title is present.
func (s *System) Exists(title string) bool {
	_, err := s.pid(title)
	return err == nil
}

// Focus raises and activates the target window.
func (s *System) Focus(title string) error {
	pid, err := s.pid(title)
	if err != nil {
		return err
	}
	if err := robotgo.ActivePid(pid); err != nil {
		return fmt.Errorf("activating window %q: %w", title, err)
	}
	return nil
}

// Bounds returns the target window's current on-screen geometry.
func (s *System) Bounds(title string) (Rect, error) {
	pid, err := s.pid(title)
	if err != nil {
		return Rect{}, err
	}
	x, y, w, h := robotgo.GetBounds(pid)
	return Rect{X: x, Y: y, W: w, H: h}, nil
}

// Tap presses a single key with optional modifiers.
func (s *System) Tap(key string, mods ...string) error {
	args := make([]interface{}, len(mods))
	for i, m := range mods {
		args[i] = m
	}
	if err := robotgo.KeyTap(key, args...); err != nil {
		return fmt.Errorf("key tap %q: %w", key, err)
	}
	return nil
}

// Type enters text literally.
func (s *System) Type(text string) error {
	robotgo.TypeStr(text)
	return nil
}

// Capture grabs the pixel region bounded by r.
func (s *System) Capture(r Rect) (image.Image, error) {
	img := robotgo.CaptureImg(r.X, r.Y, r.W, r.H)
	if img == nil {
		return nil, fmt.Errorf("capturing %dx%d region at (%d,%d)", r.W, r.H, r.X, r.Y)
	}
	return img, nil
}
