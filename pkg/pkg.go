//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// version is the raw contents of the VERSION file embedded at build time.
//
//go:embed VERSION
var version string

// Version is the semantic version of the masexpr module.
// It is printed by the CLI when users pass --version.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text and default config paths.
	Name = "masexpr"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Avionics expression compiler"
)

// EnvPrefix returns the prefix of environment variables read by the CLI,
// e.g. "MASEXPR_".
func EnvPrefix() string {
	return strings.ToUpper(Name) + "_"
}
