package lang

import (
	"github.com/ardnew/udx/log"
	"github.com/ardnew/udx/udm"
)

// DefaultMaxDepth is the default limit on nested function calls and
// template applications.
// Users may modify this before parsing to change the default.
var DefaultMaxDepth = 512

// optionsKey holds the options that take part in the parse cache key.
// This type is gob-encodable for cache key hashing.
type optionsKey struct {
	MaxDepth int
}

// config holds parse and evaluation options.
type config struct {
	opts   optionsKey
	logger log.Logger // outside optionsKey, doesn't affect cache
	inputs []namedInput
}

type namedInput struct {
	name  string
	value udm.Value
}

// Option configures parsing or evaluation behavior.
type Option func(*config)

// WithMaxDepth sets the maximum depth of nested calls and template
// applications before evaluation fails with [ErrRecursionLimit].
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.opts.MaxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithInput binds a named input, read in scripts as $name. Binding the same
// name twice replaces the earlier value.
func WithInput(name string, value udm.Value) Option {
	return func(c *config) {
		for i, in := range c.inputs {
			if in.name == name {
				c.inputs[i].value = value

				return
			}
		}

		c.inputs = append(c.inputs, namedInput{name: name, value: value})
	}
}

// WithInputs binds every property of inputs as a named input.
func WithInputs(inputs *udm.Object) Option {
	return func(c *config) {
		if inputs == nil {
			return
		}

		for name, value := range inputs.All() {
			WithInput(name, value)(c)
		}
	}
}

func makeConfig(opts ...Option) config {
	c := config{opts: optionsKey{MaxDepth: DefaultMaxDepth}}

	return c.with(opts...)
}

// with returns a copy of c with opts applied.
func (c config) with(opts ...Option) config {
	c.inputs = append([]namedInput(nil), c.inputs...)

	for _, opt := range opts {
		opt(&c)
	}

	return c
}
