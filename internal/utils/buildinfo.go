package utils

import (
	"runtime/debug"
)

const (
	unknownVersion     = "unknown"
	develVersion       = "(devel)"
	vcsRevisionKey     = "vcs.revision"
	vcsModifiedKey     = "vcs.modified"
	shortRevisionWidth = 12
	dirtySuffix        = "-dirty"
)

// GetApplicationVersion returns the module version stamped into the binary. Development
// builds fall back to the VCS revision recorded by the Go toolchain, or "unknown".
func GetApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return unknownVersion
	}
	return versionFromBuildInfo(buildInfo)
}

func versionFromBuildInfo(buildInfo *debug.BuildInfo) string {
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}

	var revision string
	var modified bool
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case vcsRevisionKey:
			revision = setting.Value
		case vcsModifiedKey:
			modified = setting.Value == "true"
		}
	}
	if revision == "" {
		return unknownVersion
	}
	if len(revision) > shortRevisionWidth {
		revision = revision[:shortRevisionWidth]
	}
	if modified {
		revision += dirtySuffix
	}
	return revision
}
