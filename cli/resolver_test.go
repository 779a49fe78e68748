package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	val, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
	if err != nil {
		t.Fatalf("Resolve(%s) failed: %v", name, err)
	}

	return val
}

func TestResolve_FlattensObject(t *testing.T) {
	source := `{
		log: { level: "debug", pretty: true },
		output_format: "yaml",
		max_depth: 64,
		ratio: 0.5,
		input: ["a.json", "b.csv"],
	}`

	r, err := resolve(t.Context())(strings.NewReader(source))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log-pretty", true},
		{"output-format", "yaml"},
		{"max-depth", "64"},
		{"ratio", "0.5"},
		{"missing", nil},
	}

	for _, tt := range tests {
		if got := resolveFlag(t, r, tt.flag); got != tt.want {
			t.Errorf("%s: expected %v (%T), got %v (%T)", tt.flag, tt.want, tt.want, got, got)
		}
	}

	in, ok := resolveFlag(t, r, "input").([]any)
	if !ok || len(in) != 2 || in[0] != "a.json" || in[1] != "b.csv" {
		t.Errorf("input: unexpected value %#v", resolveFlag(t, r, "input"))
	}
}

func TestResolve_Script(t *testing.T) {
	source := "let level = \"warn\"\n{ log: { level: level, format: upper(\"json\") |> lower } }"

	r, err := resolve(t.Context())(strings.NewReader(source))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if got := resolveFlag(t, r, "log-level"); got != "warn" {
		t.Errorf("expected warn, got %v", got)
	}

	if got := resolveFlag(t, r, "log-format"); got != "json" {
		t.Errorf("expected json, got %v", got)
	}
}

func TestResolve_Ignored(t *testing.T) {
	for name, source := range map[string]string{
		"syntax":  `{ log: `,
		"runtime": `1 / 0`,
		"scalar":  `"debug"`,
		"array":   `[1, 2]`,
	} {
		t.Run(name, func(t *testing.T) {
			r, err := resolve(t.Context())(strings.NewReader(source))
			if err != nil {
				t.Fatalf("expected configuration to be ignored, got %v", err)
			}

			if got := resolveFlag(t, r, "log-level"); got != nil {
				t.Errorf("expected no value, got %v", got)
			}
		})
	}
}

func TestResolve_Kong(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.udx")

	err := os.WriteFile(path, []byte(`{ name: "from-config", count: 3, tag_list: ["x", "y"] }`), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	var cli struct {
		Name    string   `default:"default"`
		Count   int      `default:"1"`
		TagList []string `name:"tag-list"`
		Other   string   `default:"kept"`
	}

	parser, err := kong.New(&cli,
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
		kong.Configuration(resolve(t.Context()), path),
	)
	if err != nil {
		t.Fatalf("kong.New failed: %v", err)
	}

	if _, err := parser.Parse([]string{"--count=7"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cli.Name != "from-config" {
		t.Errorf("name: expected from-config, got %q", cli.Name)
	}

	if cli.Count != 7 {
		t.Errorf("count: command line should override config, got %d", cli.Count)
	}

	if len(cli.TagList) != 2 || cli.TagList[1] != "y" {
		t.Errorf("tag-list: unexpected %v", cli.TagList)
	}

	if cli.Other != "kept" {
		t.Errorf("other: expected default, got %q", cli.Other)
	}
}

func BenchmarkResolve(b *testing.B) {
	source := `{ log: { level: "debug", format: "json" }, output_format: "yaml", max_depth: 64 }`
	load := resolve(b.Context())

	for b.Loop() {
		if _, err := load(strings.NewReader(source)); err != nil {
			b.Fatal(err)
		}
	}
}
