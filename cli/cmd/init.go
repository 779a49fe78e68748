package cmd

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/udx/lang"
	"github.com/ardnew/udx/log"
	"github.com/ardnew/udx/profile"
	"github.com/ardnew/udx/udm"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	// Format through the parser so the file gets the indented layout.
	script, err := lang.ParseString(ctx, lang.FormatLiteral(i.config(ktx)))
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	err = script.Format(ctx, file, defaultConfigIndent)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// config returns an object holding the current value of every application
// flag, keyed by flag name with underscores for hyphens.
func (*Init) config(ktx *kong.Context) *udm.Object {
	ignore := []string{"help", "version", profile.Tag}
	b := udm.NewBuilder()

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := flagValue(ktx.FlagValue(flag)); v != nil {
			b.Set(strings.ReplaceAll(flag.Name, "-", "_"), v)
		}
	}

	return b.Build()
}

// flagValue converts a parsed flag value to a config value, or nil if it is
// empty.
func flagValue(val any) udm.Value {
	v := udm.FromNative(val)

	switch x := v.(type) {
	case udm.Null:
		return nil
	case udm.String:
		if x == "" {
			return nil
		}
	case udm.Array:
		if len(x) == 0 {
			return nil
		}
	}

	return v
}
