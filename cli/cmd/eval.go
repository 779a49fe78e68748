package cmd

import (
	"context"
	"fmt"

	"github.com/ardnew/udx/lang"
)

// Eval evaluates an inline expression and prints the result.
type Eval struct {
	Expr     string  `arg:""                                              help:"Expression or script text to evaluate."`
	Input    []Input `help:"Bind an input as [name=][format:]location." placeholder:"INPUT" sep:"none" short:"i"`
	Format   string  `help:"Print the result with this codec instead of literal syntax." short:"F"`
	MaxDepth int     `help:"Limit on nested calls and template applications (0 uses the default)."`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts := langOptions(e.MaxDepth)

	script, err := lang.ParseString(ctx, e.Expr, opts...)
	if err != nil {
		return err
	}

	inputs, err := inputSet{header: script.Header, flags: e.Input}.resolve(ctx)
	if err != nil {
		return err
	}

	v, err := script.Evaluate(ctx, append(opts, lang.WithInputs(inputs))...)
	if err != nil {
		return err
	}

	if e.Format != "" {
		return output{Format: e.Format}.write(ctx, v)
	}

	_, err = fmt.Fprintln(streamsFrom(ctx).out, lang.FormatLiteral(v))

	return err
}
