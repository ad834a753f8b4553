// Package cleanup implements pruning of old screenshot artifacts.
package cleanup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// PruneByAge removes .png artifacts older than maxAgeDays from dir.
// If dryRun is true, no files are deleted; the function only returns
// the names that would be removed. Returns the list of pruned file names.
func PruneByAge(dir string, maxAgeDays int, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading screenshot directory: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	var pruned []string

	for _, entry := range entries {
		if entry.IsDir() || !isArtifact(entry.Name()) {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if !dryRun {
				path := filepath.Join(dir, entry.Name())
				if rmErr := os.Remove(path); rmErr != nil {
					return pruned, fmt.Errorf("removing %s: %w", entry.Name(), rmErr)
				}
			}
			pruned = append(pruned, entry.Name())
		}
	}

	return pruned, nil
}

// PruneKeepRecent removes all .png artifacts except the keep most recently
// modified ones. If dryRun is true, no files are deleted. Returns the list
// of pruned file names.
func PruneKeepRecent(dir string, keep int, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading screenshot directory: %w", err)
	}

	type candidate struct {
		name string
		mod  time.Time
	}
	var files []candidate
	for _, entry := range entries {
		if entry.IsDir() || !isArtifact(entry.Name()) {
			continue
		}
		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}
		files = append(files, candidate{name: entry.Name(), mod: info.ModTime()})
	}

	// Oldest first.
	sort.Slice(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })

	if len(files) <= keep {
		return nil, nil
	}

	toRemove := files[:len(files)-keep]
	var pruned []string

	for _, f := range toRemove {
		if !dryRun {
			path := filepath.Join(dir, f.name)
			if rmErr := os.Remove(path); rmErr != nil {
				return pruned, fmt.Errorf("removing %s: %w", f.name, rmErr)
			}
		}
		pruned = append(pruned, f.name)
	}

	return pruned, nil
}

// isArtifact reports whether name looks like a saved screenshot.
func isArtifact(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".png")
}
