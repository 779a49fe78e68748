package cmd

import "github.com/ardnew/udx/lang"

// Error is a command failure carrying structured logging attributes. It
// shares its representation with interpreter errors so both log alike.
type Error = lang.Error

// NewError returns an Error with the given message.
func NewError(msg string) *Error { return lang.NewError(msg) }

// Sentinel errors returned by commands. Values derived from them with
// With and Wrap still match under errors.Is.
var (
	ErrInvalidInput = NewError("invalid input")
	ErrMissingInput = NewError("missing input")
	ErrReadInput    = NewError("read input")
	ErrWriteOutput  = NewError("write output")
	ErrWriteConfig  = NewError("write configuration file")
	ErrFileExists   = NewError("file exists (use --force to overwrite)")
)
