// Package cli contains the command line interface for masexpr.
//
// # Usage
//
// Expressions are given as arguments, or read one per line from --source
// files or stdin:
//
//	masexpr 'fc.GetThrottle() * 100'
//	masexpr eval -v alt=1200 'alt / 2'
//	masexpr fmt json < expressions.txt
//
// # Configuration
//
// Flags may also be set in a YAML file in the configuration directory,
// written with the init command. Keys are flag names, and nested mappings
// join their keys with a hyphen:
//
//	log:
//	  level: debug
//	  format: text
//	symbols: avionics.yaml
//
// A config.json file in the same directory is read as well. Command-line
// flags override both.
//
// # Symbol Tables
//
// The --symbols file replaces or extends the punctuation recognized by the
// scanner. A bare file name is searched for in the --symbol-path
// directories, then in MASEXPR_SYMBOL_PATH, then in the configuration
// directory. Without --symbols, a symbols.yaml file found there is used if
// present.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize output on terminals
//
// # Profiling Options
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/masexpr/pprof)
package cli
