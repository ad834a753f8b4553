package screen

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/cfa-tools/cfabatch/internal/clock"
	"github.com/cfa-tools/cfabatch/internal/desktop"
)

// solid returns a 4x4 frame filled with the given gray value.
func solid(v uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// withPixel returns a copy of base with one pixel changed.
func withPixel(base image.Image, v uint8) image.Image {
	img := image.NewRGBA(base.Bounds())
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, base.At(x, y))
		}
	}
	img.Set(0, 0, color.RGBA{v, v, v, 255})
	return img
}

// seqCapturer serves a fixed sequence of frames, repeating the last one.
type seqCapturer struct {
	frames []image.Image
	calls  int
}

func (s *seqCapturer) Capture(r desktop.Rect) (image.Image, error) {
	i := s.calls
	if i >= len(s.frames) {
		i = len(s.frames) - 1
	}
	s.calls++
	return s.frames[i], nil
}

func fixedBounds() (desktop.Rect, error) {
	return desktop.Rect{X: 0, Y: 0, W: 4, H: 4}, nil
}

func TestDiffCountsChangedPixels(t *testing.T) {
	a := solid(10)
	if got := Diff(a, solid(10)); got != 0 {
		t.Errorf("Diff(identical) = %d, want 0", got)
	}
	if got := Diff(a, withPixel(a, 200)); got != 1 {
		t.Errorf("Diff(one pixel) = %d, want 1", got)
	}
	if got := Diff(a, solid(200)); got != 16 {
		t.Errorf("Diff(all pixels) = %d, want 16", got)
	}
}

func TestDiffDimensionMismatchIsFullyDifferent(t *testing.T) {
	a := solid(10)
	b := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if got := Diff(a, b); got == 0 {
		t.Error("Diff of differently sized frames should be nonzero")
	}
}

func TestWaitUntilStableReturnsOnFirstIdenticalPair(t *testing.T) {
	cap := &seqCapturer{frames: []image.Image{solid(1), solid(2), solid(2)}}
	clk := clock.NewFake()
	w := NewWaiter(cap, clk)

	frame, stable, err := w.WaitUntilStable(fixedBounds, 50*time.Millisecond, 10*time.Second)
	if err != nil {
		t.Fatalf("WaitUntilStable failed: %v", err)
	}
	if !stable {
		t.Fatal("expected stable result")
	}
	if cap.calls != 3 {
		t.Errorf("captures = %d, want 3 (initial + two polls)", cap.calls)
	}
	if Diff(frame.Img, solid(2)) != 0 {
		t.Error("returned frame should be the last capture")
	}
}

func TestWaitUntilStableTimeoutReturnsBestEffortFrame(t *testing.T) {
	// Frames that never repeat: every capture differs from the previous one.
	frames := make([]image.Image, 64)
	for i := range frames {
		frames[i] = solid(uint8(i * 3))
	}
	cap := &seqCapturer{frames: frames}
	clk := clock.NewFake()
	w := NewWaiter(cap, clk)

	start := clk.Now()
	frame, stable, err := w.WaitUntilStable(fixedBounds, 100*time.Millisecond, 1*time.Second)
	if err != nil {
		t.Fatalf("WaitUntilStable failed: %v", err)
	}
	if stable {
		t.Fatal("expected timeout, got stable")
	}
	if frame.Img == nil {
		t.Fatal("timeout must still return the last frame")
	}
	if elapsed := clk.Now().Sub(start); elapsed > 1100*time.Millisecond {
		t.Errorf("waited %v, should not exceed timeout by more than one poll", elapsed)
	}
}

func TestWaitUntilStableTolerance(t *testing.T) {
	// A single blinking pixel on an otherwise stable screen.
	base := solid(7)
	cap := &seqCapturer{frames: []image.Image{base, withPixel(base, 200)}}
	clk := clock.NewFake()
	w := &Waiter{Cap: cap, Clock: clk, Tolerance: 1}

	_, stable, err := w.WaitUntilStable(fixedBounds, 50*time.Millisecond, 10*time.Second)
	if err != nil {
		t.Fatalf("WaitUntilStable failed: %v", err)
	}
	if !stable {
		t.Error("one changed pixel within tolerance should count as stable")
	}
	if cap.calls != 2 {
		t.Errorf("captures = %d, want 2", cap.calls)
	}
}

func TestWaitUntilStablePropagatesGeometryFailure(t *testing.T) {
	cap := &seqCapturer{frames: []image.Image{solid(1)}}
	clk := clock.NewFake()
	w := NewWaiter(cap, clk)

	gone := func() (desktop.Rect, error) {
		return desktop.Rect{}, desktop.ErrWindowGone
	}
	_, _, err := w.WaitUntilStable(gone, 50*time.Millisecond, time.Second)
	if !errors.Is(err, desktop.ErrWindowGone) {
		t.Fatalf("err = %v, want ErrWindowGone", err)
	}
}

func TestWaitUntilStableRereadsBoundsPerCapture(t *testing.T) {
	cap := &seqCapturer{frames: []image.Image{solid(1), solid(1)}}
	clk := clock.NewFake()
	w := NewWaiter(cap, clk)

	reads := 0
	bounds := func() (desktop.Rect, error) {
		reads++
		return desktop.Rect{W: 4, H: 4}, nil
	}
	if _, _, err := w.WaitUntilStable(bounds, 50*time.Millisecond, time.Second); err != nil {
		t.Fatalf("WaitUntilStable failed: %v", err)
	}
	if reads != cap.calls {
		t.Errorf("geometry reads = %d, captures = %d; want one read per capture", reads, cap.calls)
	}
}
