// Package version exposes build metadata of the zone binaries.
//
// Version, Commit and BuildTime are injected with -ldflags. When Commit or
// BuildTime are left at their defaults they are filled from the VCS stamp the
// Go toolchain embeds in the binary.
package version
