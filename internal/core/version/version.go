// Package version reports build information stamped at link time
package version

// BuildInfo describes the running binary
type BuildInfo struct {
	Service string `json:"service" example:"gitplanet-api"`
	Version string `json:"version" example:"v0.3.0"`
	Commit  string `json:"commit" example:"4f2a9c1"`
	Date    string `json:"date" example:"2026-05-01"`
}

// set with -ldflags "-X gitplanet/internal/core/version.version=v0.3.0"
var (
	service = "gitplanet"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetService names the binary, mains call it before serving
func SetService(name string) {
	if name != "" {
		service = name
	}
}

// Info returns the stamped build information
func Info() BuildInfo {
	return BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
}
