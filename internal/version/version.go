// Package version holds the seqnet release, set at build time with
// -ldflags "-X github.com/born-ml/seqnet/internal/version.Version=...".
package version

// Version is the seqnet release.
var Version = "0.1.0"
