// Package ui provides terminal UI components for cfabatch.
// This file implements the progress display shown during a batch run.
package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// RecordStatus represents the processing status of a single input record.
type RecordStatus int

const (
	StatusPending    RecordStatus = iota // Not yet reached
	StatusProcessing                     // Currently walking the menu tree
	StatusCompleted                      // All artifacts captured
	StatusFailed                         // Batch aborted on this record
)

// recordState holds the display state of a single record.
type recordState struct {
	Name    string
	Status  RecordStatus
	Elapsed time.Duration
}

// Display manages a live-updating terminal progress view of a batch.
type Display struct {
	mu          sync.Mutex
	batchDesc   string
	records     []*recordState
	index       map[string]int
	started     bool
	isTTY       bool
	linesDrawn  int
	startTimes  map[string]time.Time
	lastPrinted map[string]RecordStatus // tracks last printed status (non-TTY)
}

// NewDisplay creates a Display for the given batch description.
func NewDisplay(batchDesc string) *Display {
	return &Display{
		batchDesc:   batchDesc,
		index:       make(map[string]int),
		startTimes:  make(map[string]time.Time),
		lastPrinted: make(map[string]RecordStatus),
		isTTY:       term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// AddRecord registers a record for progress tracking.
func (d *Display) AddRecord(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.index[name] = len(d.records)
	d.records = append(d.records, &recordState{Name: name, Status: StatusPending})
}

// Start draws the initial progress display.
func (d *Display) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.started = true
	d.render()
}

// RecordStarted marks a record as in flight.
func (d *Display) RecordStarted(name string) {
	d.update(name, StatusProcessing)
}

// RecordFinished marks a record done or failed.
func (d *Display) RecordFinished(name string, err error) {
	if err != nil {
		d.update(name, StatusFailed)
		return
	}
	d.update(name, StatusCompleted)
}

func (d *Display) update(name string, status RecordStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, ok := d.index[name]
	if !ok {
		return
	}

	rec := d.records[idx]
	rec.Status = status

	switch status {
	case StatusProcessing:
		d.startTimes[name] = time.Now()
	case StatusCompleted, StatusFailed:
		if start, ok := d.startTimes[name]; ok {
			rec.Elapsed = time.Since(start)
		}
	}

	if d.started {
		d.render()
	}
}

// Finish finalizes the display by moving the cursor below all output
// and printing a summary line.
func (d *Display) Finish() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isTTY && d.linesDrawn > 0 {
		fmt.Print("\n")
	}

	completed := 0
	failed := 0
	for _, r := range d.records {
		switch r.Status {
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		}
	}

	fmt.Printf("\nDone: %d/%d records processed", completed, len(d.records))
	if failed > 0 {
		fmt.Printf(", aborted on %d", failed)
	}
	fmt.Println()
}

// render draws or redraws the progress display.
func (d *Display) render() {
	if !d.isTTY {
		d.renderPlain()
		return
	}
	d.renderTTY()
}

// renderTTY draws the progress display using ANSI escape codes for in-place updates.
func (d *Display) renderTTY() {
	if d.linesDrawn > 0 {
		fmt.Printf("\033[%dA", d.linesDrawn)
	}

	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("\033[2K\033[1mcfabatch - %s\033[0m\n", d.batchDesc))
	buf.WriteString("\033[2K\n")

	for _, rec := range d.records {
		buf.WriteString("\033[2K")
		buf.WriteString(formatRecordLine(rec, d.startTimes))
		buf.WriteString("\n")
	}

	fmt.Print(buf.String())
	d.linesDrawn = len(d.records) + 2 // header + blank + records
}

// renderPlain writes non-TTY output (for CI/piping).
// Only prints on status transitions to avoid duplicate lines.
func (d *Display) renderPlain() {
	for _, rec := range d.records {
		if rec.Status == StatusPending {
			continue
		}
		if prev, seen := d.lastPrinted[rec.Name]; seen && prev == rec.Status {
			continue
		}
		fmt.Println(formatRecordLinePlain(rec))
		d.lastPrinted[rec.Name] = rec.Status
	}
}

// formatRecordLine formats a single record line with ANSI colors and status icons.
func formatRecordLine(rec *recordState, startTimes map[string]time.Time) string {
	icon := statusIcon(rec.Status)
	detail := statusDetail(rec, startTimes)
	return fmt.Sprintf("  %s %s  %s", icon, rec.Name, detail)
}

// formatRecordLinePlain formats a record line for non-TTY output.
func formatRecordLinePlain(rec *recordState) string {
	var status string
	switch rec.Status {
	case StatusProcessing:
		status = "RUNNING"
	case StatusCompleted:
		status = fmt.Sprintf("DONE [%s]", formatDuration(rec.Elapsed))
	case StatusFailed:
		status = "ABORTED"
	default:
		status = "PENDING"
	}
	return fmt.Sprintf("[%s] %s", status, rec.Name)
}

// statusIcon returns the status icon for a record.
func statusIcon(status RecordStatus) string {
	switch status {
	case StatusCompleted:
		return "\033[32m✅\033[0m" // green checkmark
	case StatusProcessing:
		return "\033[33m⏳\033[0m" // yellow hourglass
	case StatusFailed:
		return "\033[31m❌\033[0m" // red X
	default:
		return "\033[90m○\033[0m" // dim circle
	}
}

// statusDetail returns the right-side detail text for a record.
func statusDetail(rec *recordState, startTimes map[string]time.Time) string {
	switch rec.Status {
	case StatusCompleted:
		return fmt.Sprintf("\033[90m[%s]\033[0m", formatDuration(rec.Elapsed))
	case StatusProcessing:
		elapsed := time.Since(startTimes[rec.Name])
		return fmt.Sprintf("\033[33m[%s]\033[0m", formatDuration(elapsed))
	case StatusFailed:
		return "\033[31m[aborted]\033[0m"
	default:
		return "\033[90m[pending]\033[0m"
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", h, m, s)
}
