// Package script encodes the legacy CFA program's text-menu protocol as
// data. The keystroke order was reverse-engineered and must be reproduced
// bit-for-bit: a single stray prompt shifts every subsequent keystroke by
// one screen, so the walk is a fixed, versioned table rather than control
// flow scattered through the orchestrator.
package script

import (
	"fmt"
	"strings"
	"time"

	"github.com/cfa-tools/cfabatch/internal/artifact"
)

// Version identifies the menu topology this script was written against.
// Any change to the legacy program's menu layout invalidates the whole
// script and requires a new version.
const Version = "cfa-menu-1"

// Analysis stage names and their fixed artifact sequence numbers.
const (
	StageLP3         = "LP3"
	StageLP3Graph    = "LP3_GRAPH"
	StageWakeby      = "WAKEBY"
	StageWakebyGraph = "WAKEBY_GRAPH"
	StageGEV         = "GEV"
	StageGEVGraph    = "GEV_GRAPH"
)

// StepKind discriminates the three declarative step types.
type StepKind int

const (
	// StepPress sends symbolic keys with an inter-key delay.
	StepPress StepKind = iota
	// StepType enters literal text, optionally followed by enter.
	StepType
	// StepCapture waits for visual stability and saves one screenshot.
	StepCapture
)

// Step is one declarative unit of the menu walk.
type Step struct {
	Kind StepKind

	// StepPress
	Keys        []string
	KeyInterval time.Duration // 0 means the configured default

	// StepType
	Text       string
	PressEnter bool

	// StepCapture
	Stage     string
	Seq       int
	GraphWait bool // graph renders take multiple seconds; use the long timeout

	// Settle is an extra pause after the step completes.
	Settle time.Duration

	// OneTime marks the resolution-prompt steps that run only while the
	// session's one-time prompt is still unsatisfied.
	OneTime bool
}

// Describe renders a step for the script listing and dry runs.
func (s Step) Describe() string {
	switch s.Kind {
	case StepPress:
		return fmt.Sprintf("press %s", strings.Join(s.Keys, " "))
	case StepType:
		if s.PressEnter {
			return fmt.Sprintf("type %q + enter", s.Text)
		}
		return fmt.Sprintf("type %q", s.Text)
	case StepCapture:
		return fmt.Sprintf("wait-stable + capture %02d %s", s.Seq, s.Stage)
	}
	return "unknown step"
}

func press(keys ...string) Step {
	return Step{Kind: StepPress, Keys: keys}
}

func pressThenSettle(settle time.Duration, keys ...string) Step {
	return Step{Kind: StepPress, Keys: keys, Settle: settle}
}

func pressSlow(interval time.Duration, keys ...string) Step {
	return Step{Kind: StepPress, Keys: keys, KeyInterval: interval}
}

func typeEnter(text string) Step {
	return Step{Kind: StepType, Text: text, PressEnter: true}
}

func capture(seq int, stage string, graph bool) Step {
	return Step{Kind: StepCapture, Seq: seq, Stage: stage, GraphWait: graph}
}

func oneTime(steps ...Step) []Step {
	for i := range steps {
		steps[i].OneTime = true
	}
	return steps
}

// Bootstrap returns the session-initialization steps replayed exactly once
// per emulator launch: mount the host directory, switch drive, start the
// legacy program, and dismiss its splash prompts.
func Bootstrap(mountDir string) []Step {
	return []Step{
		typeEnter("mount c " + mountDir),
		typeEnter("c:"),
		{Kind: StepType, Text: "CFA", PressEnter: false},
		press("enter", "enter", "enter"),
	}
}

// ForRecord returns the full per-record walk through the menu tree, from
// the top-level menu back to the top-level menu. resolution answers the
// one-time screen resolution prompt on the first record of a session.
func ForRecord(record, resolution string) []Step {
	steps := []Step{
		// Idle -> FileSelect: option 1 then 6 from the main menu.
		pressThenSettle(500*time.Millisecond, "1", "enter"),
		pressThenSettle(500*time.Millisecond, "6", "enter"),

		// File name and drive letter.
		typeEnter(record),
		{Kind: StepType, Text: "C:", PressEnter: true, Settle: 500 * time.Millisecond},
		press("enter"),

		// Frequency analysis menus, then the LP3 fit.
		press("7", "enter", "enter", "enter"),
		press("3", "enter", "enter", "enter", "enter"),
		capture(1, StageLP3, false),
		press("enter", "enter"),
	}

	// The resolution prompt fires once per session, not once per record.
	steps = append(steps, oneTime(
		typeEnter(resolution),
		press("enter", "enter", "enter"),
		capture(2, StageLP3Graph, true),
		pressSlow(time.Second, "enter"),
		press("enter", "enter"),
	)...)

	steps = append(steps,
		// Wakeby fit and its graph.
		press("4", "enter", "enter", "enter", "enter"),
		capture(3, StageWakeby, false),
		press("enter", "enter", "enter", "enter"),
		capture(4, StageWakebyGraph, true),
		pressSlow(time.Second, "enter"),
		press("enter", "enter"),

		// GEV fit and its graph.
		press("1", "enter", "enter", "enter", "enter"),
		capture(5, StageGEV, false),
		press("enter", "enter", "enter", "enter"),
		capture(6, StageGEVGraph, true),
		pressSlow(time.Second, "enter"),
		press("enter", "enter"),

		// ReturnToMain so the next record's walk starts from a known state.
		press("1"),
	)

	return steps
}

// ArtifactNames returns the artifact filenames one record's walk produces.
// withPrompt includes the LP3 graph screenshot taken while answering the
// one-time resolution prompt; records walked after the prompt is satisfied
// do not produce it.
func ArtifactNames(record string, withPrompt bool) []string {
	var names []string
	for _, s := range ForRecord(record, "0,0") {
		if s.Kind != StepCapture {
			continue
		}
		if s.OneTime && !withPrompt {
			continue
		}
		names = append(names, artifact.Name(s.Seq, record, s.Stage))
	}
	return names
}
