package repl

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/udx/lang"
)

func typeLine(t *testing.T, m model, line string) model {
	t.Helper()

	m.input.SetValue(line)
	m.input.CursorEnd()

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})

	return m
}

func TestModel_Execute(t *testing.T) {
	m := newModel(t.Context(), testSession(t), "", NewHistory(""))

	m = typeLine(t, m, "let total = 5")
	m = typeLine(t, m, "total + 1")

	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	if m.history.Len() != 2 {
		t.Fatalf("history length = %d, want 2", m.history.Len())
	}

	if v, ok := m.sess.interp.Lookup("total"); !ok || lang.FormatLiteral(v) != "5" {
		t.Errorf("total not bound: %v %v", v, ok)
	}
}

func TestModel_Modes(t *testing.T) {
	m := newModel(t.Context(), testSession(t), "", NewHistory(""))

	m.input.SetValue("1 +")
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})

	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("expected an empty command line, got mode %d %q", m.mode, m.input.Value())
	}

	m = typeLine(t, m, "help")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeEval || m.input.Value() != "1 +" {
		t.Errorf("expected the eval line restored, got mode %d %q", m.mode, m.input.Value())
	}

	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd != nil || m.input.Value() != "" {
		t.Error("Ctrl+C on a non-empty line must only clear it")
	}

	m, cmd = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlD})
	if cmd == nil || !m.quitting {
		t.Error("Ctrl+D on an empty line must quit")
	}
}

func TestModel_History(t *testing.T) {
	h := NewHistory("")
	for _, e := range []HistoryEntry{
		{"1", modeEval},
		{"list", modeCtrl},
		{"2", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m := newModel(t.Context(), testSession(t), "", h)

	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	steps := []struct {
		key  tea.KeyMsg
		mode inputMode
		line string
	}{
		{up, modeEval, "2"},
		{up, modeCtrl, "list"},
		{up, modeEval, "1"},
		{up, modeEval, "1"},
		{down, modeCtrl, "list"},
		{down, modeEval, "2"},
		{down, modeEval, ""},
		{tea.KeyMsg{Type: tea.KeyShiftUp}, modeEval, "2"},
		{tea.KeyMsg{Type: tea.KeyShiftUp}, modeEval, "1"},
	}

	for i, s := range steps {
		m, _ = m.handleKey(s.key)

		if m.mode != s.mode || m.input.Value() != s.line {
			t.Fatalf("step %d: got mode %d %q, want mode %d %q",
				i, m.mode, m.input.Value(), s.mode, s.line)
		}
	}
}

func TestModel_AltHistory(t *testing.T) {
	h := NewHistory("")
	for _, e := range []HistoryEntry{{"list", modeCtrl}, {"2", modeEval}} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m := newModel(t.Context(), testSession(t), "", h)
	m.input.SetValue("draft")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyUp, Alt: true})
	if m.mode != modeCtrl || m.input.Value() != "list" {
		t.Fatalf("got mode %d %q, want the command entry", m.mode, m.input.Value())
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyDown, Alt: true})
	if m.mode != modeEval || m.input.Value() != "draft" {
		t.Errorf("got mode %d %q, want the original draft", m.mode, m.input.Value())
	}
}

func TestModel_TabCycle(t *testing.T) {
	sess := testSession(t)

	for _, line := range []string{"let alpha = 1", "let alpine = 2"} {
		if _, err := sess.eval(t.Context(), line); err != nil {
			t.Fatal(err)
		}
	}

	m := newModel(t.Context(), sess, "", NewHistory(""))
	m.input.SetValue("alp")
	m.input.CursorEnd()
	refreshMatches(&m, false)

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if !m.tabActive {
		t.Fatal("expected tab-cycling to start")
	}

	first := m.input.Value()

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if m.input.Value() == first {
		t.Errorf("second Tab did not move to another candidate: %q", first)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.tabActive || m.input.Value() != "alp" {
		t.Errorf("Esc must restore the typed word, got %q", m.input.Value())
	}
}
