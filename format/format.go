// Package format implements the codecs that move data between concrete
// serialization formats and the Universal Data Model.
//
// Each [Codec] decodes a byte stream into a [udm.Value] and encodes a
// [udm.Value] back into bytes. The transformation engine only ever sees UDM
// values; everything format-specific lives here.
package format

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/udx/udm"
)

// Codec converts between a serialization format and UDM values.
// Options are format-specific; a nil options object selects the defaults.
type Codec interface {
	Decode(ctx context.Context, r io.Reader, opts *udm.Object) (udm.Value, error)
	Encode(ctx context.Context, w io.Writer, v udm.Value, opts *udm.Object) error
}

// Sentinel errors.
var (
	ErrUnknownFormat = errors.New("unknown format")
	ErrDecode        = errors.New("decode failed")
	ErrEncode        = errors.New("encode failed")
	ErrQuery         = errors.New("query failed")
)

// Error carries a format failure with structured logging attributes.
type Error struct {
	Format string
	Err    error
}

func (e *Error) Error() string { return e.Format + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("format", e.Format),
		slog.String("error", e.Err.Error()),
	)
}

func wrap(name string, sentinel, err error) error {
	return &Error{Format: name, Err: errors.Join(sentinel, err)}
}

var registry = map[string]Codec{
	"json": JSON{},
	"yaml": YAML{},
	"xml":  XML{},
	"csv":  CSV{},
}

var extensions = map[string]string{
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".xml":  "xml",
	".csv":  "csv",
}

// Lookup returns the codec registered under name (case-insensitive).
func Lookup(name string) (Codec, error) {
	c, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, wrap(name, ErrUnknownFormat,
			errors.New("valid formats: "+strings.Join(Names(), ", ")))
	}

	return c, nil
}

// Names returns the registered codec names, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}

// ForPath infers a codec name from a file extension. It returns "" when
// the extension is not recognized.
func ForPath(path string) string {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Decode decodes r with the named codec.
func Decode(
	ctx context.Context,
	name string,
	r io.Reader,
	opts *udm.Object,
) (udm.Value, error) {
	c, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	return c.Decode(ctx, r, opts)
}

// Encode encodes v to w with the named codec.
func Encode(
	ctx context.Context,
	name string,
	w io.Writer,
	v udm.Value,
	opts *udm.Object,
) error {
	c, err := Lookup(name)
	if err != nil {
		return err
	}

	return c.Encode(ctx, w, v, opts)
}

// option helpers read typed values out of an options object.

func optString(opts *udm.Object, key, def string) string {
	if opts == nil {
		return def
	}

	if v, ok := opts.Get(key); ok {
		if s, ok := v.(udm.String); ok {
			return string(s)
		}
	}

	return def
}

func optBool(opts *udm.Object, key string, def bool) bool {
	if opts == nil {
		return def
	}

	if v, ok := opts.Get(key); ok && !udm.IsNull(v) {
		return udm.Truthy(v)
	}

	return def
}

func optInt(opts *udm.Object, key string, def int) int {
	if opts == nil {
		return def
	}

	if v, ok := opts.Get(key); ok {
		if n, ok := udm.Int(v); ok {
			return n
		}
	}

	return def
}
