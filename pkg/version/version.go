package version

import "runtime/debug"

// Populated via -ldflags "-X github.com/vinodismyname/sellerscope/pkg/version.version=...".
var version = "dev"

// Version returns the build string embedded via -ldflags, the module version
// recorded in build info, or "dev".
func Version() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
		return info.Main.Version
	}
	return version
}

// Set assigns the version when ldflags are not provided (e.g. tests).
func Set(v string) {
	if v != "" {
		version = v
	}
}
