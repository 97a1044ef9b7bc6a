// Package version carries build metadata injected via -ldflags.
package version

import (
	"runtime"
	"time"
)

var (
	// Version is the semantic version, injected at build time via -ldflags
	Version = "dev"
	// GitCommit is the git commit hash, injected at build time
	GitCommit = "unknown"
	// BuildDate is the build timestamp, injected at build time
	BuildDate = "unknown"
	GoVersion = runtime.Version()
	Platform  = runtime.GOOS + "/" + runtime.GOARCH
)

// BuildInfo is reported by `loghtml version` and GET /api/version.
type BuildInfo struct {
	Version   string     `json:"version" yaml:"version"`
	GitCommit string     `json:"gitCommit" yaml:"gitCommit"`
	BuildDate string     `json:"buildDate" yaml:"buildDate"`
	GoVersion string     `json:"goVersion" yaml:"goVersion"`
	Platform  string     `json:"platform" yaml:"platform"`
	BuildTime *time.Time `json:"buildTime,omitempty" yaml:"buildTime,omitempty"`
}

func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
		Platform:  Platform,
	}
	if t, err := time.Parse(time.RFC3339, BuildDate); err == nil {
		info.BuildTime = &t
	}
	return info
}

// String renders the one-line form printed by the CLI.
func (b BuildInfo) String() string {
	return "loghtml " + b.Version + " (" + shortCommit(b.GitCommit) + ", " + b.Platform + ", " + b.GoVersion + ")"
}

// UserAgent identifies HTTP clients built from this binary.
func UserAgent() string {
	return "loghtml/" + Version
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
