// status.go implements the "cfabatch status" command summarizing the most
// recent batch from the event log.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cfa-tools/cfabatch/internal/log"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the most recent batch result",
	Long: `Display a summary of the most recent batch run from the event log,
including per-record outcomes and any screenshot failures.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger, err := log.NewLogger(".")
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}

	events, err := logger.ReadAll()
	if err != nil {
		return fmt.Errorf("reading log: %w", err)
	}

	// Find the last batch_started and summarize everything after it.
	start := -1
	for i, e := range events {
		if e.Event == log.EventBatchStarted {
			start = i
		}
	}
	if start == -1 {
		return fmt.Errorf("no batches found; start one with: cfabatch run")
	}

	batch := events[start:]
	head := batch[0]

	fmt.Println("Cfabatch Status")
	fmt.Printf("Last batch: %s (%d record(s), policy %s)\n\n",
		head.Time.Local().Format(time.RFC1123), head.Records, head.Policy)

	completed := map[string]int64{}
	var order []string
	failures := map[string]int{}
	timeouts := map[string]int{}
	var outcome *log.LogEvent

	for i := range batch {
		e := batch[i]
		switch e.Event {
		case log.EventRecordStarted:
			order = append(order, e.Record)
		case log.EventRecordCompleted:
			completed[e.Record] = e.DurationMs
		case log.EventScreenshotError:
			failures[e.Record]++
		case log.EventStabilityTimeout:
			timeouts[e.Record]++
		case log.EventBatchComplete, log.EventBatchAborted:
			outcome = &batch[i]
		}
	}

	for _, record := range order {
		ms, done := completed[record]
		state := "aborted"
		extra := ""
		if done {
			state = "done"
			extra = fmt.Sprintf("  [%s]", (time.Duration(ms) * time.Millisecond).Round(time.Second))
		}
		if n := failures[record]; n > 0 {
			extra += fmt.Sprintf("  [%d screenshot error(s)]", n)
		}
		if n := timeouts[record]; n > 0 {
			extra += fmt.Sprintf("  [%d stability timeout(s)]", n)
		}
		fmt.Printf("  %-10s %s%s\n", state, record, extra)
	}

	fmt.Println()
	switch {
	case outcome == nil:
		fmt.Println("Batch still in progress (or interrupted without a final event).")
	case outcome.Event == log.EventBatchAborted:
		fmt.Printf("Aborted after %d/%d record(s): %s\n", outcome.Processed, outcome.Records, outcome.Error)
	default:
		fmt.Printf("Complete: %d/%d record(s) in %s\n", outcome.Processed, outcome.Records,
			(time.Duration(outcome.DurationMs) * time.Millisecond).Round(time.Second))
	}

	return nil
}
