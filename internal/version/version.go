package version

import "fmt"

// Set at build time via -ldflags "-X github.com/neox5/scrapebox/internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
)

// String returns the version with the short commit appended when known.
func String() string {
	if Commit == "none" || Commit == "" {
		return Version
	}
	short := Commit
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s)", Version, short)
}
