// Package buildinfo holds release metadata stamped in with
//
//	go build -ldflags "-X github.com/faheemho18/monefy-pwa-clone/internal/buildinfo.Version=v0.3.0"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String is the text printed by --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
