// Package buildinfo carries the finwatch version metadata stamped in at
// build time.
package buildinfo

var (
	// Version is the release tag, set via ldflags during build.
	Version = "dev"
	// Commit is the source revision, set via ldflags during build.
	Commit = "none"
	// Date is the build timestamp, set via ldflags during build.
	Date = "unknown"
)
