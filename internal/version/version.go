// Package version is the single source of the build's version identity,
// shared by the CLI's version command and the root --version flag.
package version

// Set at build time via
// -ldflags "-X cuml/internal/version.Version=... -X cuml/internal/version.Commit=...".
var (
	// Version is the semantic version of the release.
	Version = "1.2.0"

	// Commit is the git commit the binary was built from.
	Commit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// Info returns the version, with an abbreviated commit when one was stamped.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns the multi-line version report printed by the version command.
func Full() string {
	return "cuml version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}
