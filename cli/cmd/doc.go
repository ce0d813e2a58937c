// Package cmd implements the masexpr subcommands: compile, eval, fmt,
// symbols, init, and repl.
//
// Commands read expressions from their positional arguments or, when none
// are given, one per line from the --source files or stdin. Values shared by
// all commands (the kong context, the active symbol table, the input files,
// and the output writer) travel in the [context.Context] passed to Run.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the YAML configuration file written by init.
	ConfigIdentifier = "config"
)
