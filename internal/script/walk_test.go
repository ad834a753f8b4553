package script

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/cfa-tools/cfabatch/internal/artifact"
	"github.com/cfa-tools/cfabatch/internal/clock"
	"github.com/cfa-tools/cfabatch/internal/config"
	"github.com/cfa-tools/cfabatch/internal/desktop"
	"github.com/cfa-tools/cfabatch/internal/input"
	"github.com/cfa-tools/cfabatch/internal/log"
	"github.com/cfa-tools/cfabatch/internal/screen"
)

type fakeKeyboard struct {
	events []string
}

func (f *fakeKeyboard) Tap(key string, mods ...string) error {
	f.events = append(f.events, "tap:"+key)
	return nil
}

func (f *fakeKeyboard) Type(text string) error {
	f.events = append(f.events, "type:"+text)
	return nil
}

type fakeWindow struct {
	alive bool
}

func (f *fakeWindow) Exists(title string) bool { return f.alive }
func (f *fakeWindow) Focus(title string) error {
	if !f.alive {
		return desktop.ErrWindowGone
	}
	return nil
}
func (f *fakeWindow) Bounds(title string) (desktop.Rect, error) {
	if !f.alive {
		return desktop.Rect{}, desktop.ErrWindowGone
	}
	return desktop.Rect{W: 4, H: 4}, nil
}

// steadyCapturer always returns the same frame, so every wait stabilizes
// on the second capture.
type steadyCapturer struct{}

func (steadyCapturer) Capture(r desktop.Rect) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

// churnCapturer never returns two identical frames.
type churnCapturer struct {
	n uint8
}

func (c *churnCapturer) Capture(r desktop.Rect) (image.Image, error) {
	c.n++
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{c.n, 0, 0, 255})
	return img, nil
}

type walkEnv struct {
	walker *Walker
	kb     *fakeKeyboard
	win    *fakeWindow
	logger *log.Logger
	logDir string
	shots  string
}

func newWalkEnv(t *testing.T, cap desktop.Capturer, alive bool) *walkEnv {
	t.Helper()

	tmp := t.TempDir()
	shots := filepath.Join(tmp, "shots")
	saver, err := artifact.NewSaver(shots)
	if err != nil {
		t.Fatalf("NewSaver failed: %v", err)
	}
	logger, err := log.NewLogger(tmp)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	kb := &fakeKeyboard{}
	win := &fakeWindow{alive: alive}
	clk := clock.NewFake()
	cfg := config.DefaultConfig()

	w := &Walker{
		Driver:    input.New(kb, win, clk, "DOSBox"),
		Waiter:    screen.NewWaiter(cap, clk),
		Saver:     saver,
		Logger:    logger,
		Clock:     clk,
		Timing:    cfg.Timing,
		Stability: cfg.Stability,
		Bounds:    func() (desktop.Rect, error) { return win.Bounds("DOSBox") },
	}
	return &walkEnv{walker: w, kb: kb, win: win, logger: logger, logDir: tmp, shots: shots}
}

func savedArtifacts(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading artifact dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func countEvents(t *testing.T, logger *log.Logger, event string) int {
	t.Helper()
	events, err := logger.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	n := 0
	for _, e := range events {
		if e.Event == event {
			n++
		}
	}
	return n
}

func TestWalkBatchAnswersPromptExactlyOnce(t *testing.T) {
	env := newWalkEnv(t, steadyCapturer{}, true)

	satisfied := false
	for _, record := range []string{"site12.prn", "site45.prn"} {
		if err := env.walker.Run(record, ForRecord(record, "97,97"), &satisfied); err != nil {
			t.Fatalf("walk of %s failed: %v", record, err)
		}
	}

	if !satisfied {
		t.Error("one-time prompt flag should be set after the first record")
	}
	if got := countEvents(t, env.logger, log.EventPromptAnswered); got != 1 {
		t.Errorf("prompt answered %d times, want exactly 1", got)
	}

	// The first record produced the prompt-bound LP3 graph artifact, the
	// second did not.
	want := append(ArtifactNames("site12.prn", true), ArtifactNames("site45.prn", false)...)
	sort.Strings(want)
	got := savedArtifacts(t, env.shots)
	if len(got) != len(want) {
		t.Fatalf("artifacts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("artifact[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWalkResolutionTypedOnlyOnFirstRecord(t *testing.T) {
	env := newWalkEnv(t, steadyCapturer{}, true)

	typedResolution := func() int {
		n := 0
		for _, e := range env.kb.events {
			// TypeText emits one event per character; count the "9" runs
			// via the leading digit of "97,97".
			if e == "type:," {
				n++
			}
		}
		return n
	}

	satisfied := false
	if err := env.walker.Run("a.prn", ForRecord("a.prn", "97,97"), &satisfied); err != nil {
		t.Fatalf("first walk failed: %v", err)
	}
	afterFirst := typedResolution()
	if afterFirst != 1 {
		t.Fatalf("resolution typed %d times after first record, want 1", afterFirst)
	}

	if err := env.walker.Run("b.prn", ForRecord("b.prn", "97,97"), &satisfied); err != nil {
		t.Fatalf("second walk failed: %v", err)
	}
	if typedResolution() != afterFirst {
		t.Error("resolution prompt steps ran again on the second record")
	}
}

func TestWalkAbortsWhenWindowVanishes(t *testing.T) {
	env := newWalkEnv(t, steadyCapturer{}, false)

	satisfied := false
	err := env.walker.Run("site12.prn", ForRecord("site12.prn", "97,97"), &satisfied)
	if !errors.Is(err, desktop.ErrWindowGone) {
		t.Fatalf("err = %v, want ErrWindowGone", err)
	}
	if satisfied {
		t.Error("prompt flag must not be set on an aborted walk")
	}
	if got := savedArtifacts(t, env.shots); len(got) != 0 {
		t.Errorf("no artifacts expected after abort, got %v", got)
	}
}

func TestWalkContinuesPastScreenshotFailure(t *testing.T) {
	env := newWalkEnv(t, steadyCapturer{}, true)

	// Pre-create the first artifact so its save fails (write-once).
	blocked := artifact.Name(1, "site12.prn", StageLP3)
	if err := os.WriteFile(filepath.Join(env.shots, blocked), []byte("x"), 0644); err != nil {
		t.Fatalf("pre-creating artifact: %v", err)
	}

	satisfied := false
	if err := env.walker.Run("site12.prn", ForRecord("site12.prn", "97,97"), &satisfied); err != nil {
		t.Fatalf("walk should survive a screenshot failure: %v", err)
	}

	if got := countEvents(t, env.logger, log.EventScreenshotError); got != 1 {
		t.Errorf("screenshot_error events = %d, want 1", got)
	}
	// The remaining artifacts were still produced.
	if got := savedArtifacts(t, env.shots); len(got) != len(ArtifactNames("site12.prn", true)) {
		t.Errorf("artifacts = %v, want full set (with placeholder)", got)
	}
}

func TestWalkStabilityTimeoutIsSoft(t *testing.T) {
	env := newWalkEnv(t, &churnCapturer{}, true)

	satisfied := false
	if err := env.walker.Run("site12.prn", ForRecord("site12.prn", "97,97"), &satisfied); err != nil {
		t.Fatalf("walk should survive stability timeouts: %v", err)
	}

	// Every capture step timed out, yet every artifact was still written.
	if got := countEvents(t, env.logger, log.EventStabilityTimeout); got != 6 {
		t.Errorf("stability_timeout events = %d, want 6", got)
	}
	if got := savedArtifacts(t, env.shots); len(got) != 6 {
		t.Errorf("artifacts = %v, want 6 best-effort frames", got)
	}
}
