package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/udx/lang"
	"github.com/ardnew/udx/log"
	"github.com/ardnew/udx/udm"
)

// resolve returns a [kong.ConfigurationLoader] for configuration files
// written in udx.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.udx")
//
// The file is a script whose result is an object, usually just an object
// literal. Its properties are matched to flag names:
//   - Either hyphens or underscores may separate words ("log_level").
//   - Nested objects join their keys with a hyphen, so {log: {level: "debug"}}
//     sets --log-level.
//   - Numbers are passed to Kong as their shortest decimal text.
//   - Arrays set repeatable flags.
//
// Example config file:
//
//	{
//	  log: { level: "debug", pretty: true },
//	  output_format: "yaml",
//	}
//
// Command-line flags override config file values. A file that does not
// evaluate to an object is logged and ignored.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		script, err := lang.ParseReader(ctx, r)
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration", slog.Any("error", err))

			return config{}, nil
		}

		v, err := script.Evaluate(ctx)
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration", slog.Any("error", err))

			return config{}, nil
		}

		obj, ok := v.(*udm.Object)
		if !ok {
			log.WarnContext(ctx, "ignoring configuration",
				slog.String("type", lang.TypeOf(v)))

			return config{}, nil
		}

		cfg := config{}
		cfg.flatten("", obj)

		return cfg, nil
	}
}

// config implements [kong.Resolver] for udx configuration files.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	// Not found: Kong uses the default.
	return nil, nil
}

// flatten copies the properties of obj into r, keyed by their hyphenated
// path below prefix.
func (r config) flatten(prefix string, obj *udm.Object) {
	for k, v := range obj.All() {
		key := strings.ReplaceAll(k, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := v.(*udm.Object); ok {
			r.flatten(key, sub)

			continue
		}

		r[key] = flagValue(v)
	}
}

// flagValue converts v to what Kong expects from a resolver. Kong parses
// numbers from their text, so they are returned as strings.
func flagValue(v udm.Value) any {
	switch x := v.(type) {
	case udm.Number:
		return strconv.FormatFloat(float64(x), 'f', -1, 64)
	case udm.Array:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = flagValue(e)
		}

		return out
	}

	return udm.ToNative(v)
}
