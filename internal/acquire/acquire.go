// Package acquire obtains the beacon executable when the cache cannot supply
// it. Two strategies exist behind one contract: a direct release download and
// an npm global install. Their failure modes and search spaces are disjoint,
// so they stay independent units; the installer chains them with explicit
// fallback and never mixes partial state between them.
package acquire

import (
	"context"

	"github.com/beacon-hq/setup-beacon/internal/messages"
	"github.com/beacon-hq/setup-beacon/internal/platform"
)

// Strategy obtains the tool executable for a validated version spec.
// It returns the absolute path to the executable on success.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string
	Acquire(ctx context.Context, spec string, plat platform.Info) (string, error)
}

// Error wraps any acquisition failure with the stable prefix downstream
// tooling pattern-matches on. Attempted records the operation that failed
// (download URL, install command, or searched roots) so remediation is
// actionable.
type Error struct {
	Attempted string
	Err       error
}

func (e *Error) Error() string {
	return messages.InstallFailedPrefix + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError wraps err as an acquisition failure for the attempted operation.
func newError(attempted string, err error) *Error {
	return &Error{Attempted: attempted, Err: err}
}
