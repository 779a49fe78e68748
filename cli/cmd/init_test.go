package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/udx/lang"
	"github.com/ardnew/udx/udm"
)

type initCLI struct {
	Verbose   bool     `help:"Enable verbose output."`
	Output    string   `help:"Output file."`
	Count     int      `help:"Number of items."`
	Tags      []string `help:"Tags."`
	LogLevel  string   `default:"info"                 help:"Log level." name:"log-level"`
	PprofMode string   `help:"Profiling mode."         name:"pprof-mode"`
	Secret    string   `help:"Never written."          hidden:""`
}

func initContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(t.Context(), ktx)
}

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.udx")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing content"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			ctx := initContext(t, confPath, "--count=3")

			err := (&Init{Force: tt.force}).Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			// The generated file is itself a script that evaluates to the
			// flag values.
			v, err := lang.Evaluate(t.Context(), string(content))
			if err != nil {
				t.Fatalf("generated config does not evaluate: %v\n%s", err, content)
			}

			obj, ok := v.(*udm.Object)
			if !ok {
				t.Fatalf("expected an object, got %s", lang.FormatLiteral(v))
			}

			if count, _ := obj.Get("count"); !udm.Equal(count, udm.Number(3)) {
				t.Errorf("count = %s", lang.FormatLiteral(count))
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	t.Parallel()

	ctx := initContext(t, "unused",
		"--verbose", "--output=test.txt", "--count=5", "--tags=a,b",
		"--pprof-mode=cpu", "--secret=x")

	got := (&Init{}).config(kongContextFrom(ctx))

	want, err := lang.ParseLiteral(`{verbose: true, output: "test.txt", count: 5, tags: ["a", "b"], log_level: "info"}`)
	if err != nil {
		t.Fatal(err)
	}

	if !udm.Equal(got, want) {
		t.Errorf("config = %s", lang.FormatLiteral(got))
	}
}

func TestFlagValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want udm.Value
	}{
		{nil, nil},
		{"", nil},
		{[]string{}, nil},
		{false, udm.Bool(false)},
		{0, udm.Number(0)},
		{"x", udm.String("x")},
		{[]string{"a"}, udm.Array{udm.String("a")}},
	}

	for _, tt := range tests {
		got := flagValue(tt.in)

		switch {
		case tt.want == nil && got != nil:
			t.Errorf("flagValue(%#v) = %s, want nil", tt.in, lang.FormatLiteral(got))
		case tt.want != nil && (got == nil || !udm.Equal(got, tt.want)):
			t.Errorf("flagValue(%#v) = %v, want %s", tt.in, got, lang.FormatLiteral(tt.want))
		}
	}
}
