// Package cmd implements the udx subcommands: run, eval, fmt, init and
// repl.
//
// Commands read the [kong.Context] and their standard streams from the
// [context.Context] they run with; see [WithContext] and [WithStreams].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
