package screen

import (
	"fmt"
	"image"
	"time"

	"github.com/cfa-tools/cfabatch/internal/clock"
	"github.com/cfa-tools/cfabatch/internal/desktop"
)

// Waiter polls captures until the screen stops changing.
//
// Tolerance is the number of changed pixels still treated as "no change".
// A blinking cursor or on-screen clock would otherwise keep every wait
// running to its timeout; zero means strict pixel identity.
type Waiter struct {
	Cap       desktop.Capturer
	Clock     clock.Clock
	Tolerance int
}

// NewWaiter returns a Waiter with strict (zero-tolerance) comparison.
func NewWaiter(cap desktop.Capturer, clk clock.Clock) *Waiter {
	return &Waiter{Cap: cap, Clock: clk}
}

// WaitUntilStable captures frames every poll until two consecutive captures
// differ by at most Tolerance pixels, then returns the latest frame and true.
// If timeout elapses first it returns the last captured frame and false:
// a slightly premature artifact still beats failing the whole batch.
//
// bounds is re-read before every capture since the window may move. A bounds
// or capture failure is returned as an error; the window disappearing
// mid-wait is not a condition the caller can recover from.
func (w *Waiter) WaitUntilStable(bounds func() (desktop.Rect, error), poll, timeout time.Duration) (Frame, bool, error) {
	prev, err := w.capture(bounds)
	if err != nil {
		return Frame{}, false, err
	}

	deadline := w.Clock.Now().Add(timeout)
	for {
		if !w.Clock.Now().Before(deadline) {
			return prev, false, nil
		}
		w.Clock.Sleep(poll)

		cur, err := w.capture(bounds)
		if err != nil {
			return Frame{}, false, err
		}
		if Diff(prev.Img, cur.Img) <= w.Tolerance {
			return cur, true, nil
		}
		prev = cur
	}
}

func (w *Waiter) capture(bounds func() (desktop.Rect, error)) (Frame, error) {
	r, err := bounds()
	if err != nil {
		return Frame{}, fmt.Errorf("reading window geometry: %w", err)
	}
	img, err := w.Cap.Capture(r)
	if err != nil {
		return Frame{}, fmt.Errorf("capturing frame: %w", err)
	}
	return Frame{
		Img:     img,
		TakenAt: w.Clock.Now(),
		Bounds:  image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H),
	}, nil
}
