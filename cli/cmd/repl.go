package cmd

import (
	"context"

	"github.com/ardnew/udx/cli/cmd/repl"
	"github.com/ardnew/udx/lang"
	"github.com/ardnew/udx/log"
)

// Repl starts an interactive session.
type Repl struct {
	Script   string  `arg:""                                          help:"Script whose declarations and inputs seed the session." optional:"" type:"existingfile"`
	Input    []Input `help:"Bind an input as [name=][format:]location." placeholder:"INPUT"                                           sep:"none"   short:"i"`
	MaxDepth int     `help:"Limit on nested calls and template applications (0 uses the default)."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts := langOptions(r.MaxDepth)

	var (
		script *lang.Script
		header *lang.Header
	)

	if r.Script != "" {
		if script, err = readScript(ctx, r.Script, opts...); err != nil {
			return err
		}

		header = script.Header
	}

	// The terminal owns stdin, so no input may read from it.
	inputs, err := inputSet{header: header, flags: r.Input, stdin: true}.resolve(ctx)
	if err != nil {
		return err
	}

	interp := lang.NewInterpreter(append(opts, lang.WithInputs(inputs))...)

	return repl.Run(ctx, interp, script, r.cacheDir(ctx), log.Default())
}

// cacheDir returns the directory holding the REPL history, or "" when the
// command runs outside a kong context.
func (r *Repl) cacheDir(ctx context.Context) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	return ktx.Model.Vars()[CacheIdentifier]
}
