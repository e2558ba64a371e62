package app

import "fmt"

// Set via ldflags:
//
//	go build -ldflags "-X github.com/heartmarshall/captionmap/internal/app.Version=1.0.0" ./cmd/captionmap
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion formats the build metadata for the named binary.
func BuildVersion(binary string) string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s)", binary, Version, Commit, BuildTime)
}
