// Package screen captures window pixels and detects visual quiescence. The
// target program exposes no completion event for its multi-second plotting
// routine; two consecutive pixel-identical captures are the only observable
// proxy for "rendering finished".
package screen

import (
	"image"
	"time"
)

// Frame is one capture of the target window.
type Frame struct {
	Img     image.Image
	TakenAt time.Time
	Bounds  image.Rectangle
}

// Diff returns the number of pixels that differ between a and b. Frames of
// differing dimensions count as entirely different.
func Diff(a, b image.Image) int {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return ab.Dx()*ab.Dy() + bb.Dx()*bb.Dy()
	}

	changed := 0
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			ar, ag, abl, aa := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			br, bg, bbl, ba := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			if ar != br || ag != bg || abl != bbl || aa != ba {
				changed++
			}
		}
	}
	return changed
}
