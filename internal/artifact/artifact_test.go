package artifact

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestName(t *testing.T) {
	tests := []struct {
		seq    int
		record string
		stage  string
		want   string
	}{
		{1, "site12.prn", "LP3", "01_site12.prn_LP3.png"},
		{2, "site12.prn", "LP3_GRAPH", "02_site12.prn_LP3_GRAPH.png"},
		{6, "site45.prn", "GEV_GRAPH", "06_site45.prn_GEV_GRAPH.png"},
		{10, "x.prn", "LP3", "10_x.prn_LP3.png"},
	}
	for _, tc := range tests {
		if got := Name(tc.seq, tc.record, tc.stage); got != tc.want {
			t.Errorf("Name(%d, %q, %q) = %q, want %q", tc.seq, tc.record, tc.stage, got, tc.want)
		}
	}
}

func TestSaverCreatesDirectoryAndWritesPNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")

	s, err := NewSaver(dir)
	if err != nil {
		t.Fatalf("NewSaver failed: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	path, err := s.Save("01_site12.prn_LP3.png", img)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("artifact is empty")
	}
}

func TestSaverNeverOverwrites(t *testing.T) {
	s, err := NewSaver(t.TempDir())
	if err != nil {
		t.Fatalf("NewSaver failed: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if _, err := s.Save("01_a.prn_LP3.png", img); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if _, err := s.Save("01_a.prn_LP3.png", img); err == nil {
		t.Error("second Save of the same artifact should fail, not overwrite")
	}
}
