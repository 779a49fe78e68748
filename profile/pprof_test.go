//go:build pprof

package profile

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestProfiler_CPU(t *testing.T) {
	if !slices.Contains(Modes(), "cpu") {
		t.Fatalf("cpu missing from %v", Modes())
	}

	dir := t.TempDir()

	Profiler{Mode: "cpu", Path: dir, Quiet: true}.Start().Stop()

	if _, err := os.Stat(filepath.Join(dir, "cpu.pprof")); err != nil {
		t.Errorf("expected a cpu profile: %v", err)
	}
}
