// Package buildinfo exposes version metadata for the CLI. Values are set at
// build time, e.g.
//
//	-ldflags "-X 'github.com/flarebyte/jsoncsv/internal/buildinfo.Version=1.2.3'"
//
// When Version is unset, the module version recorded by `go install` is used.
package buildinfo

import (
	"runtime/debug"
	"strings"
)

var (
	// Version is the semantic version or custom string.
	Version = ""
	// Commit is the VCS commit hash (optional).
	Commit = ""
	// Date is the build time in RFC3339 or similar (optional).
	Date = ""
	// BuiltBy is an optional builder identifier.
	BuiltBy = ""
)

var readBuildInfo = debug.ReadBuildInfo

// Summary returns a concise single-line version string.
func Summary() string {
	v := Version
	if v == "" {
		v = moduleVersion()
	}
	if v == "" {
		v = "dev"
	}

	parts := make([]string, 0, 2)
	if Commit != "" {
		c := Commit
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if Date != "" {
		parts = append(parts, "date="+Date)
	}
	if len(parts) > 0 {
		v += " (" + strings.Join(parts, ", ") + ")"
	}
	return v
}

func moduleVersion() string {
	bi, ok := readBuildInfo()
	if !ok || bi.Main.Version == "" || bi.Main.Version == "(devel)" {
		return ""
	}
	return bi.Main.Version
}
