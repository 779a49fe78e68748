package repl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestHistory_AddLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("load of a missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"1 + 2", modeEval},
		{"list", modeCtrl},
		{"  ", modeEval},
		{"let x = 1", modeEval},
		{"let x = 1", modeEval},
		{"1 + 2", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("add %q: %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"list", modeCtrl},
		{"let x = 1", modeEval},
		{"1 + 2", modeEval},
	}

	check := func(t *testing.T, h *History) {
		t.Helper()

		if h.Len() != len(want) {
			t.Fatalf("Len() = %d, want %d: %v", h.Len(), len(want), h.Entries())
		}

		for i, w := range want {
			got, err := h.Entry(i)
			if err != nil {
				t.Fatalf("Entry(%d): %v", i, err)
			}

			if got != w {
				t.Errorf("Entry(%d) = %+v, want %+v", i, got, w)
			}
		}
	}

	check(t, h)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}

	if got := string(data); got != "C:list\nE:let x = 1\nE:1 + 2\n" {
		t.Errorf("history file = %q", got)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	check(t, reloaded)
}

func TestHistory_Entry(t *testing.T) {
	h := NewHistory("")

	if err := h.Add("quit", modeCtrl); err != nil {
		t.Fatalf("add: %v", err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d): expected ErrOutOfBounds, got %v", i, err)
		}
	}

	entries := h.Entries()
	entries[0].Line = "changed"

	if e, _ := h.Entry(0); e.Line != "quit" {
		t.Error("Entries must return a copy")
	}

	if s := (HistoryEntry{Line: "quit", Mode: modeCtrl}).String(); s != "C:quit" {
		t.Errorf("String() = %q", s)
	}
}

func TestHistory_LoadUnprefixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	if err := os.WriteFile(path, []byte("$.a\n\nC:help\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	if e, _ := h.Entry(0); e != (HistoryEntry{"$.a", modeEval}) {
		t.Errorf("Entry(0) = %+v", e)
	}

	if e, _ := h.Entry(1); e != (HistoryEntry{"help", modeCtrl}) {
		t.Errorf("Entry(1) = %+v", e)
	}
}
