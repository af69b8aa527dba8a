// Package version holds the CRE release version.
package version

// Version is the current CRE version, overridable at build time via
// -ldflags "-X cre/internal/version.Version=...".
var Version = "0.4.0"
