// Package platform derives the OS and architecture facts the installer needs:
// release asset naming, archive format, and the executable file name. The facts
// are captured once per run into an immutable Info so no other package has to
// read runtime.GOOS/GOARCH directly.
package platform

import (
	"fmt"
	"runtime"

	"github.com/beacon-hq/setup-beacon/internal/messages"
)

// Info describes the host platform for release asset selection.
type Info struct {
	// OS is one of linux, darwin, windows.
	OS string
	// Arch is one of x64, arm64 (release asset naming, not GOARCH).
	Arch string
	// ArchiveExt is the release archive extension including the leading dot.
	ArchiveExt string
	// ExeName is the executable file name for the tool on this platform.
	ExeName string
}

// Describe returns the Info for the running host.
// Unsupported platforms are a configuration error; callers must fail fast.
func Describe() (Info, error) {
	return describeFor(runtime.GOOS, runtime.GOARCH)
}

// describeFor maps a GOOS/GOARCH pair to an Info.
func describeFor(goos string, goarch string) (Info, error) {
	var arch string
	switch goarch {
	case "amd64":
		arch = "x64"
	case "arm64":
		arch = "arm64"
	default:
		return Info{}, fmt.Errorf(messages.ConfigUnsupportedArchFmt, goarch)
	}

	switch goos {
	case "linux", "darwin":
		return Info{OS: goos, Arch: arch, ArchiveExt: ".tar.gz", ExeName: "beacon"}, nil
	case "windows":
		return Info{OS: goos, Arch: arch, ArchiveExt: ".zip", ExeName: "beacon.exe"}, nil
	default:
		return Info{}, fmt.Errorf(messages.ConfigUnsupportedOSFmt, goos)
	}
}

// AssetName returns the release asset stem for the platform, without extension.
func (i Info) AssetName() string {
	return fmt.Sprintf("beacon-cli-%s-%s", i.OS, i.Arch)
}

// Windows reports whether the platform is Windows.
func (i Info) Windows() bool {
	return i.OS == "windows"
}
