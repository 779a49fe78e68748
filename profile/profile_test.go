package profile

import (
	"slices"
	"testing"
)

func TestProfiler_Disabled(t *testing.T) {
	stop := Profiler{}.Start()
	if _, ok := stop.(nop); !ok {
		t.Fatalf("expected no-op stopper without a mode, got %T", stop)
	}

	stop.Stop()

	unknown := Profiler{Mode: "bogus", Path: t.TempDir()}.Start()
	if _, ok := unknown.(nop); !ok {
		t.Fatalf("expected no-op stopper for unknown mode, got %T", unknown)
	}

	unknown.Stop()
}

func TestModes_Sorted(t *testing.T) {
	modes := Modes()
	if !slices.IsSorted(modes) {
		t.Errorf("Modes() not sorted: %v", modes)
	}

	if slices.Contains(modes, "") {
		t.Error("empty mode listed")
	}
}
