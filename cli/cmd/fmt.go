package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/udx/lang"
)

// Fmt parses a script and writes it back in the chosen form.
type Fmt struct {
	Literal Literal `cmd:"" default:"withargs" help:"Format as normalized udx source (default)."`
	JSON    JSON    `cmd:""                    help:"Format the syntax tree as JSON."`
	YAML    YAML    `cmd:""                    help:"Format the syntax tree as YAML."`
	AST     AST     `cmd:""                    help:"Print an outline of the syntax tree."`
}

// SourceArgs are the arguments shared by the fmt subcommands.
type SourceArgs struct {
	Indent int    `default:"2"  help:"Indent width (0 writes one line)." short:"n"`
	Source string `arg:""        default:"-"                              help:"Source input file or '-' for stdin." name:"source"`
}

// format parses the source and hands it to write with the context's
// stdout.
func (f *SourceArgs) format(
	ctx context.Context,
	form string,
	write func(*lang.Script, streams) error,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	script, err := readScript(ctx, f.Source)
	if err != nil {
		return err
	}

	if err := write(script, streamsFrom(ctx)); err != nil {
		return ErrWriteOutput.With(slog.String("format", form)).Wrap(err)
	}

	return nil
}

// Literal formats input as normalized udx source.
type Literal struct{ SourceArgs }

// Run executes the fmt literal command.
func (l *Literal) Run(ctx context.Context) error {
	return l.format(ctx, "literal", func(s *lang.Script, std streams) error {
		return s.Format(ctx, std.out, l.Indent)
	})
}

// JSON formats the syntax tree as JSON.
type JSON struct{ SourceArgs }

// Run executes the fmt json command.
func (j *JSON) Run(ctx context.Context) error {
	return j.format(ctx, "json", func(s *lang.Script, std streams) error {
		return s.FormatJSON(ctx, std.out, j.Indent)
	})
}

// YAML formats the syntax tree as YAML.
type YAML struct{ SourceArgs }

// Run executes the fmt yaml command.
func (y *YAML) Run(ctx context.Context) error {
	return y.format(ctx, "yaml", func(s *lang.Script, std streams) error {
		return s.FormatYAML(ctx, std.out, y.Indent)
	})
}

// AST prints an indented outline of the syntax tree.
type AST struct{ SourceArgs }

// Run executes the fmt ast command.
func (a *AST) Run(ctx context.Context) error {
	return a.format(ctx, "ast", func(s *lang.Script, std streams) error {
		return s.PrintIndent(std.out, 0)
	})
}
