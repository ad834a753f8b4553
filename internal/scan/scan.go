// Package scan discovers the input records for a batch run.
package scan

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// recordSuffix is the fixed input-file suffix the legacy program understands.
const recordSuffix = ".prn"

// Records lists the .prn files directly inside dir, sorted by name.
// The listing is non-recursive and is taken exactly once per batch; the
// record set never changes mid-run.
func Records(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var records []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), recordSuffix) {
			continue
		}
		records = append(records, name)
	}

	sort.Strings(records)
	return records, nil
}
