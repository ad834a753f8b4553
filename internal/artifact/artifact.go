// Package artifact persists screenshot artifacts. Artifacts are write-once:
// their existence is the evidence of step completion, and a later record must
// never clobber an earlier one.
package artifact

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// Name builds the deterministic artifact filename for a capture step.
func Name(seq int, record, stage string) string {
	return fmt.Sprintf("%02d_%s_%s.png", seq, record, stage)
}

// Saver writes PNG artifacts into a single directory.
type Saver struct {
	Dir string
}

// NewSaver creates the artifact directory if needed and returns a Saver.
func NewSaver(dir string) (*Saver, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating screenshot directory: %w", err)
	}
	return &Saver{Dir: dir}, nil
}

// Save encodes img as PNG under name. It fails if the artifact already
// exists rather than overwrite it.
func (s *Saver) Save(name string, img image.Image) (string, error) {
	path := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("creating artifact %s: %w", name, err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding artifact %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing artifact %s: %w", name, err)
	}
	return path, nil
}
