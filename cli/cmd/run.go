package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/udx/format"
	"github.com/ardnew/udx/lang"
	"github.com/ardnew/udx/log"
	"github.com/ardnew/udx/udm"
)

// Run evaluates a script against its inputs and writes the result.
type Run struct {
	Script       string  `arg:""                                          help:"Script file or '-' for stdin."`
	Input        []Input `help:"Bind an input as [name=][format:]location." placeholder:"INPUT"             sep:"none" short:"i"`
	Output       string  `help:"Output file (default stdout)."            short:"o"                          type:"path"`
	OutputFormat string  `help:"Output format (default from the header, the output file extension, or json)." short:"F"`
	MaxDepth     int     `help:"Limit on nested calls and template applications (0 uses the default)."`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts := langOptions(r.MaxDepth)

	script, err := readScript(ctx, r.Script, opts...)
	if err != nil {
		return err
	}

	inputs, err := inputSet{
		header: script.Header,
		flags:  r.Input,
		stdin:  r.Script == stdinSource,
	}.resolve(ctx)
	if err != nil {
		return err
	}

	if err := r.checkOutput(); err != nil {
		return err
	}

	v, err := script.Evaluate(ctx, append(opts, lang.WithInputs(inputs))...)
	if err != nil {
		return err
	}

	out := output{Path: r.Output, Format: r.OutputFormat}
	if script.Header != nil {
		out.Spec = script.Header.Output
	}

	return out.write(ctx, v)
}

// checkOutput refuses to write the result over the script or an input.
func (r *Run) checkOutput() error {
	if r.Output == "" {
		return nil
	}

	sources := []string{r.Script}
	for _, in := range r.Input {
		sources = append(sources, in.Location)
	}

	for _, src := range sources {
		if src != stdinSource && sameFile(src, r.Output) {
			return ErrWriteOutput.With(slog.String("file", r.Output)).
				Wrap(NewError("output would overwrite " + src))
		}
	}

	return nil
}

// output describes where and how a result is written.
type output struct {
	Path   string // empty writes to the context's stdout
	Format string // empty defers to Spec, then the file extension, then json
	Spec   *lang.FormatSpec
}

func (o output) format() string {
	switch {
	case o.Format != "":
		return o.Format
	case o.Spec != nil:
		return o.Spec.Format
	}

	if f := format.ForPath(o.Path); f != "" {
		return f
	}

	return "json"
}

func (o output) write(ctx context.Context, v udm.Value) (err error) {
	name := o.format()

	fail := func(err error) error {
		return ErrWriteOutput.With(
			slog.String("format", name),
			slog.String("file", o.Path),
		).Wrap(err)
	}

	if _, err := format.Lookup(name); err != nil {
		return fail(err)
	}

	opts := udm.EmptyObject()

	if o.Spec != nil && o.Spec.Format == name {
		if opts, err = o.Spec.Evaluate(ctx); err != nil {
			return fail(err)
		}
	}

	var w io.Writer = streamsFrom(ctx).out

	if o.Path != "" {
		f, err := os.Create(o.Path)
		if err != nil {
			return fail(err)
		}

		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fail(cerr)
			}
		}()

		w = f
	}

	if err := format.Encode(ctx, name, w, v, opts); err != nil {
		return fail(err)
	}

	log.DebugContext(ctx, "wrote output",
		slog.String("format", name),
		slog.String("file", o.Path),
	)

	return nil
}
