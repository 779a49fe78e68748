// Package pkg holds the identity of the udx program: its name, summary,
// version and the per-user directories it reads and writes.
//
//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the program name used in help output and default paths.
	Name = "udx"
	// Description summarizes the program for help output.
	Description = "Format-agnostic data transformation language"
	// FileExt is the conventional extension of udx scripts.
	FileExt = ".udx"
)

// AuthorInfo is an author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary authors.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
