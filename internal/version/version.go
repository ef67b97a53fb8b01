package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const devVersion = "0.1.0-dev"

// Set via -ldflags "-X github.com/openmined/assetextract/internal/version.Version=..."
var (
	AppName   = "assetextract"
	Version   = devVersion
	Revision  = "HEAD"
	BuildDate = ""
)

// fillFromBuild fills any value that ldflags left at its placeholder using the
// module version and VCS settings embedded by the Go toolchain.
func fillFromBuild(moduleVersion string, vcs map[string]string) {
	if (Version == devVersion || Version == "") && moduleVersion != "" && moduleVersion != "(devel)" {
		Version = strings.TrimPrefix(moduleVersion, "v")
	}

	if rev := vcs["vcs.revision"]; rev != "" && (Revision == "HEAD" || Revision == "") {
		if vcs["vcs.modified"] == "true" {
			rev += "-dirty"
		}
		Revision = rev
	}

	if BuildDate == "" {
		BuildDate = vcs["vcs.time"]
	}
}

// Short returns `0.1.0 (5e23a4)`
func Short() string {
	return fmt.Sprintf("%s (%s)", Version, Revision)
}

// Detailed returns `0.1.0 (5e23a4; go1.23.6; linux/amd64; 2025-01-01T00:00:00Z)`
func Detailed() string {
	buildDate := BuildDate
	if buildDate == "" {
		buildDate = "unknown"
	}
	return fmt.Sprintf("%s (%s; %s; %s/%s; %s)", Version, Revision, runtime.Version(), runtime.GOOS, runtime.GOARCH, buildDate)
}

func DetailedWithApp() string {
	return AppName + " " + Detailed()
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return
	}
	vcs := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		vcs[s.Key] = s.Value
	}
	fillFromBuild(info.Main.Version, vcs)
}
