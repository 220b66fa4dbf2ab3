// Package buildinfo carries the version stamped into the jirascope binary.
// `jirascope --version` prints it through [Template].
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/jirascope/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/jirascope/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/jirascope/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/jirascope
package buildinfo

import "fmt"

// Left at their defaults, the values mark a local `go build`.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}
