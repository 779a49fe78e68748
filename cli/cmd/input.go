package cmd

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/udx/format"
	"github.com/ardnew/udx/lang"
	"github.com/ardnew/udx/log"
	"github.com/ardnew/udx/udm"
)

// defaultInput is the input name bound to $ when no name is given.
const defaultInput = "input"

// Input names one script input on the command line:
//
//	[name=][format:]location
//
// The format prefix is recognized only when it names a codec or a SQL
// driver. A SQL location has the form DSN#QUERY.
type Input struct {
	Name     string
	Format   string
	Location string
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (in *Input) UnmarshalText(text []byte) error {
	s := string(text)
	*in = Input{Name: defaultInput}

	if name, rest, ok := strings.Cut(s, "="); ok && udm.IsIdentifier(name) {
		in.Name, s = name, rest
	}

	if f, rest, ok := strings.Cut(s, ":"); ok && isSource(f) {
		in.Format, s = strings.ToLower(f), rest
	}

	if s == "" {
		return ErrInvalidInput.With(slog.String("input", string(text))).
			Wrap(NewError("empty location"))
	}

	in.Location = s

	return nil
}

func (in Input) String() string {
	var b strings.Builder

	b.WriteString(in.Name + "=")

	if in.Format != "" {
		b.WriteString(in.Format + ":")
	}

	b.WriteString(in.Location)

	return b.String()
}

func isSource(name string) bool {
	name = strings.ToLower(name)

	return slices.Contains(format.Names(), name) || format.IsSQLDriver(name)
}

// inputSet binds the inputs named on the command line and those declared
// in a script header.
type inputSet struct {
	header *lang.Header
	flags  []Input
	stdin  bool // stdin is already taken, usually by the script
}

// resolve decodes every input, declared ones first in declaration order.
// A declared input missing from the command line is read from stdin when
// it is the only one and nothing else reads stdin.
func (s inputSet) resolve(ctx context.Context) (*udm.Object, error) {
	given := make(map[string]Input, len(s.flags))

	stdin := 0
	if s.stdin {
		stdin++
	}

	for _, in := range s.flags {
		if _, dup := given[in.Name]; dup {
			return nil, ErrInvalidInput.With(slog.String("name", in.Name)).
				Wrap(NewError("given more than once"))
		}

		given[in.Name] = in

		if in.Location == stdinSource {
			stdin++
		}
	}

	var order, missing []string

	if s.header != nil {
		for _, spec := range s.header.Inputs {
			order = append(order, spec.Name)

			if _, ok := given[spec.Name]; !ok {
				missing = append(missing, spec.Name)
			}
		}
	}

	for _, in := range s.flags {
		if !slices.Contains(order, in.Name) {
			order = append(order, in.Name)
		}
	}

	if len(missing) == 1 && stdin == 0 {
		given[missing[0]] = Input{Name: missing[0], Location: stdinSource}
		stdin++
		missing = nil
	}

	if len(missing) > 0 {
		return nil, ErrMissingInput.With(slog.Any("names", missing))
	}

	if stdin > 1 {
		return nil, ErrInvalidInput.Wrap(NewError("stdin can be read only once"))
	}

	b := udm.NewBuilder()

	for _, name := range order {
		spec, _ := s.header.Input(name)

		v, err := decodeInput(ctx, given[name], spec)
		if err != nil {
			return nil, err
		}

		b.Set(name, v)
	}

	return b.Build(), nil
}

// decodeInput reads one input. The format comes from the command line,
// then the header declaration, then the file extension; stdin defaults to
// JSON. Declared options apply only when the declared format is used.
func decodeInput(ctx context.Context, in Input, spec *lang.InputSpec) (udm.Value, error) {
	name := in.Format
	if name == "" && spec != nil {
		name = spec.Format
	}

	if name == "" {
		name = format.ForPath(in.Location)
	}

	if name == "" && in.Location == stdinSource {
		name = "json"
	}

	fail := func(err error) error {
		return ErrReadInput.With(
			slog.String("name", in.Name),
			slog.String("format", name),
			slog.String("location", in.Location),
		).Wrap(err)
	}

	if name == "" {
		return nil, fail(NewError("cannot infer format"))
	}

	opts := udm.EmptyObject()

	if spec != nil && spec.Format == name {
		var err error
		if opts, err = spec.Evaluate(ctx); err != nil {
			return nil, fail(err)
		}
	}

	log.DebugContext(ctx, "read input",
		slog.String("name", in.Name),
		slog.String("format", name),
		slog.String("location", in.Location),
	)

	if format.IsSQLDriver(name) {
		dsn, query, _ := strings.Cut(in.Location, "#")
		if query == "" {
			if q, ok := opts.Get("query"); ok {
				query = udm.Text(q)
			}
		}

		if query == "" {
			return nil, fail(NewError("no query (use DSN#QUERY)"))
		}

		rows, err := format.Query(ctx, name, dsn, query)
		if err != nil {
			return nil, fail(err)
		}

		return rows, nil
	}

	r, err := openSource(ctx, in.Location)
	if err != nil {
		return nil, fail(err)
	}
	defer r.Close()

	v, err := format.Decode(ctx, name, r, opts)
	if err != nil {
		return nil, fail(err)
	}

	return v, nil
}
