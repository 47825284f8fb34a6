// Package version validates and compares requested tool versions.
// A version spec is either the literal "latest" or a strict semantic version.
// Validation happens before any network or filesystem work so malformed input
// never triggers I/O.
package version

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-semver/semver"

	"github.com/beacon-hq/setup-beacon/internal/messages"
)

// Latest is the version spec token requesting the pinned fallback release.
const Latest = "latest"

// ErrInvalidSpec marks a malformed version spec. It is never retried.
var ErrInvalidSpec = errors.New("invalid version spec")

// ValidateSpec checks that raw is "latest" or MAJOR.MINOR.PATCH[-PRERELEASE].
// It returns the trimmed spec on success.
func ValidateSpec(raw string) (string, error) {
	spec := strings.TrimSpace(raw)
	if spec == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidSpec, messages.InstallVersionRequired)
	}
	if spec == Latest {
		return spec, nil
	}
	if _, err := semver.NewVersion(spec); err != nil {
		return "", fmt.Errorf("%w: "+messages.InstallInvalidVersionSpecFmt, ErrInvalidSpec, raw)
	}
	return spec, nil
}

// IsLatest reports whether spec requests the pinned fallback release.
func IsLatest(spec string) bool {
	return strings.TrimSpace(spec) == Latest
}

// Normalize strips release-tag prefixes and validates the remainder.
// Accepted forms: "1.2.3", "v1.2.3", "cli-v1.2.3", each with an optional
// prerelease suffix.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "cli-")
	trimmed = strings.TrimPrefix(trimmed, "v")
	parsed, err := semver.NewVersion(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: "+messages.InstallInvalidVersionSpecFmt, ErrInvalidSpec, raw)
	}
	return parsed.String(), nil
}

// Compare returns -1, 0, or 1 ordering a relative to b.
// Both arguments must be valid semantic versions.
func Compare(a string, b string) (int, error) {
	av, err := semver.NewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("%w: "+messages.InstallInvalidVersionSpecFmt, ErrInvalidSpec, a)
	}
	bv, err := semver.NewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("%w: "+messages.InstallInvalidVersionSpecFmt, ErrInvalidSpec, b)
	}
	return av.Compare(*bv), nil
}
