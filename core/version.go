package core

import (
	"runtime"
	"runtime/debug"
)

// Build metadata, injected with
//
//	go build -ldflags "-X go_pdfium/core.Version=$(git describe --tags --always) \
//	  -X go_pdfium/core.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" .
//
// A binary built without ldflags falls back to what the Go toolchain
// embedded (module version and VCS revision), see GetBuildInfo.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
	GoVersion string
	Platform  string
}

// GetBuildInfo combines the ldflags values with the toolchain's embedded
// build information. Ldflags win when set.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		applyBuildSettings(&info, bi)
	}
	return info
}

func applyBuildSettings(info *BuildInfo, bi *debug.BuildInfo) {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" && len(s.Value) >= 7 {
				info.GitCommit = s.Value[:7]
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		}
	}
}

// String formats the info for -version output, e.g.
// "v1.2.0 (built 2026-01-15T10:30:00Z, commit abc1234, go1.24.0 linux/amd64)".
func (b BuildInfo) String() string {
	return b.Version + " (built " + b.BuildTime + ", commit " + b.GitCommit + ", " + b.GoVersion + " " + b.Platform + ")"
}

// GetVersionInfo returns GetBuildInfo formatted for display.
func GetVersionInfo() string {
	return GetBuildInfo().String()
}
