package build

import "runtime"

// Set at link time with -ldflags "-X github.com/tracetool/tracetool/internal/tracetool/build.ReleaseVersion=..."
var (
	ReleaseVersion = "UNKNOWN_VERSION"
	GitCommit      = "UNKNOWN_GIT_COMMIT"
	BuildTime      = "UNKNOWN_BUILD_TIME"
	GoVersion      = runtime.Version()
)
