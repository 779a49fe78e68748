package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every failure raised while lexing, parsing or evaluating a script is a
// [*Signal] wrapping one of these. Test with errors.Is.
var (
	ErrLex                 = NewError("lex error")
	ErrParse               = NewError("parse error")
	ErrUndefinedIdentifier = NewError("undefined identifier")
	ErrTypeMismatch        = NewError("type mismatch")
	ErrArity               = NewError("wrong number of arguments")
	ErrIndexOutOfRange     = NewError("index out of range")
	ErrNoMatchingCase      = NewError("no matching case")
	ErrNoMatchingTemplate  = NewError("no matching template")
	ErrRecursionLimit      = NewError("recursion limit exceeded")
	ErrDivisionByZero      = NewError("division by zero")
	ErrUserRaised          = NewError("error raised")
	ErrReadInput           = NewError("failed to read input")
	ErrInvalidHeader       = NewError("invalid header")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error derived from the same sentinel,
// so that values produced by [Error.With] and [Error.Wrap] still match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// Signal is a failure raised by the lexer, the parser or the interpreter.
// Runtime signals can be intercepted by try/catch; lex and parse signals
// are raised before evaluation starts.
type Signal struct {
	Kind *Error   // sentinel
	Msg  string   // detail; bound by catch
	Pos  Position // zero when unknown
	// Source is the script text, set when the signal leaves the package so
	// the message can show the offending line.
	Source string
}

func newSignal(kind *Error, msg string, pos Position) *Signal {
	return &Signal{Kind: kind, Msg: msg, Pos: pos}
}

// Message returns the text bound by a catch clause. A message raised with
// error() is returned as written.
func (s *Signal) Message() string {
	if s.Kind == ErrUserRaised && s.Msg != "" {
		return s.Msg
	}

	if s.Msg == "" {
		return s.Kind.msg
	}

	return s.Kind.msg + ": " + s.Msg
}

// Error implements the error interface.
func (s *Signal) Error() string {
	var sb strings.Builder

	sb.WriteString(s.Message())

	if s.Pos.Line > 0 {
		sb.WriteString(" at line ")
		sb.WriteString(strconv.Itoa(s.Pos.Line))
		sb.WriteString(", column ")
		sb.WriteString(strconv.Itoa(s.Pos.Column))

		if snippet := s.snippet(); snippet != "" {
			sb.WriteString(":\n")
			sb.WriteString(snippet)
		}
	}

	return sb.String()
}

// Unwrap returns the sentinel.
func (s *Signal) Unwrap() error { return s.Kind }

// LogValue implements slog.LogValuer.
func (s *Signal) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("error", s.Message())}

	if s.Pos.Line > 0 {
		attrs = append(attrs,
			slog.Int("line", s.Pos.Line),
			slog.Int("column", s.Pos.Column),
		)
	}

	return slog.GroupValue(append(attrs, s.Kind.attrs...)...)
}

// snippet renders the offending source line with a caret under the column.
func (s *Signal) snippet() string {
	if s.Source == "" {
		return ""
	}

	lines := strings.Split(s.Source, "\n")
	if s.Pos.Line < 1 || s.Pos.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	num := strconv.Itoa(s.Pos.Line)

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(lines[s.Pos.Line-1])
	src.WriteRune('\n')

	// 2 leading spaces + " | "
	padding := strings.Repeat(" ", len(num)+5)
	if s.Pos.Column > 0 {
		padding += strings.Repeat(" ", s.Pos.Column-1)
	}

	src.WriteString(padding + "^")

	return src.String()
}

// withSource attaches source text to err when it is a [*Signal].
func withSource(err error, source string) error {
	var sig *Signal
	if errors.As(err, &sig) && sig.Source == "" {
		sig.Source = source
	}

	return err
}
