// Package build holds build information injected at link time, e.g.,
//
//	go build -ldflags "-X github.com/armadaproject/sweeprun/internal/sweepctl/build.ReleaseVersion=v0.1.0"
package build

var (
	ReleaseVersion = "UNKNOWN_RELEASE_VERSION"
	GitCommit      = "UNKNOWN_GIT_COMMIT"
	GoVersion      = "UNKNOWN_GO_VERSION"
	BuildTime      = "UNKNOWN_BUILD_TIME"
)
