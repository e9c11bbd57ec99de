// Package version reports build information for allsky binaries
package version

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. version, commit and date are set at
// build time:
//
//	-ldflags "-X 'allsky/internal/core/version.version=v0.1.0' -X 'allsky/internal/core/version.commit=abcd'"
func Info() BuildInfo {
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// Service names the running binary in BuildInfo; mains override it
func Service(name string) {
	if name != "" {
		service = name
	}
}

var (
	service = "allsky-api"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
