package lang

import (
	"context"
	"log/slog"

	"github.com/ardnew/udx/format"
	"github.com/ardnew/udx/udm"
)

// Input returns the declared input named name.
func (h *Header) Input(name string) (*InputSpec, bool) {
	if h == nil {
		return nil, false
	}

	for _, in := range h.Inputs {
		if in.Name == name {
			return in, true
		}
	}

	return nil, false
}

// validate checks that every declared format is known and that input names
// are unique.
func (h *Header) validate() error {
	seen := make(map[string]bool, len(h.Inputs))

	for _, in := range h.Inputs {
		if seen[in.Name] {
			return newSignal(ErrInvalidHeader, "duplicate input "+in.Name, in.At)
		}

		seen[in.Name] = true

		if err := in.validate(); err != nil {
			return err
		}
	}

	if h.Output != nil {
		if format.IsSQLDriver(h.Output.Format) {
			return newSignal(ErrInvalidHeader, h.Output.Format+" is an input source only", h.Output.At)
		}

		return h.Output.validate()
	}

	return nil
}

func (f *FormatSpec) validate() error {
	if format.IsSQLDriver(f.Format) {
		return nil
	}

	if _, err := format.Lookup(f.Format); err != nil {
		return newSignal(ErrInvalidHeader, "unknown format "+f.Format, f.At)
	}

	return nil
}

// Evaluate returns the format's options object. Option values may be any
// expression that does not refer to inputs; a spec without options gives
// an empty object.
func (f *FormatSpec) Evaluate(ctx context.Context, opts ...Option) (*udm.Object, error) {
	if f == nil || f.Options == nil {
		return udm.EmptyObject(), nil
	}

	cfg := makeConfig(opts...)
	cfg.inputs = nil

	rt := &Runtime{ctx: ctx, cfg: cfg, inputs: udm.EmptyObject(), rules: new(TemplateRegistry)}

	v, err := rt.eval(f.Options, NewEnvironment(nil))
	if err != nil {
		return nil, err
	}

	obj, _ := v.(*udm.Object)

	cfg.logger.TraceContext(ctx, "header resolved",
		slog.String("format", f.Format),
		slog.Int("option_count", obj.Len()))

	return obj, nil
}
