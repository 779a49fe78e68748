package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefault_PackageFunctions(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithFormat(FormatJSON), WithLevel(LevelTrace), WithTimeLayout("none")))

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			rec := decodeRecord(t, buf.Bytes())
			if rec["level"] != tt.level || rec["key"] != "value" {
				t.Errorf("unexpected record: %v", rec)
			}
		})
	}

	buf.Reset()

	ctx := context.Background()
	TraceContext(ctx, "a")
	DebugContext(ctx, "b")
	InfoContext(ctx, "c")
	WarnContext(ctx, "d")
	ErrorContext(ctx, "e")

	if got := strings.Count(buf.String(), "\n"); got != 5 {
		t.Errorf("expected 5 records, got %d", got)
	}
}

func TestDefault_Config(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	var buf bytes.Buffer

	SetDefault(Make(&buf))
	Config(WithLevel(LevelError), WithFormat(FormatJSON))

	Info("dropped")

	if buf.Len() != 0 {
		t.Fatalf("expected Config to raise the level, got %q", buf.String())
	}

	With(slog.String("cmd", "run")).Error("failed")

	rec := decodeRecord(t, buf.Bytes())
	if rec["cmd"] != "run" || rec["msg"] != "failed" {
		t.Errorf("unexpected record: %v", rec)
	}
}
