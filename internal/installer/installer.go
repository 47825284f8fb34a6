// Package installer runs the end-to-end setup pipeline: validate the version
// spec, probe the cache, acquire the executable when the cache cannot supply
// it, verify whatever was produced, persist it for reuse, and report the
// resolved version and path. The pipeline is strictly sequential; nothing here
// runs concurrently with anything else.
package installer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/beacon-hq/setup-beacon/internal/acquire"
	"github.com/beacon-hq/setup-beacon/internal/cache"
	"github.com/beacon-hq/setup-beacon/internal/locate"
	"github.com/beacon-hq/setup-beacon/internal/messages"
	"github.com/beacon-hq/setup-beacon/internal/platform"
	"github.com/beacon-hq/setup-beacon/internal/verify"
	"github.com/beacon-hq/setup-beacon/internal/version"
)

// ErrVerification marks a binary that exists but fails the version probe.
// It is deliberately distinct from acquisition failures: the remediation for
// a broken binary differs from the remediation for a missing one.
var ErrVerification = errors.New("binary failed verification")

// Options configures a run.
type Options struct {
	// VersionSpec is the raw requested version: "latest" or semver.
	VersionSpec string
	Platform    platform.Info
	Cache       *cache.Cache
	// Strategies are tried in order after a cache miss or rejected hit.
	Strategies []acquire.Strategy
	Log        *logrus.Logger
}

// Result is the outcome handed to the reporting layer. The resolved version
// always comes from probing the installed binary, never from the request.
type Result struct {
	// Version is the probed tool version, or "unknown".
	Version string
	// Path is the absolute path to the verified executable.
	Path string
	// FromCache reports whether the executable came from the cache.
	FromCache bool
}

// Run executes the pipeline for opts. The version spec is validated before any
// cache or network work happens.
func Run(ctx context.Context, opts Options) (Result, error) {
	spec, err := version.ValidateSpec(opts.VersionSpec)
	if err != nil {
		return Result{}, err
	}
	log := opts.Log
	key := cache.Key(spec, opts.Platform.OS, opts.Platform.Arch)

	if dir, hit := opts.Cache.Restore(ctx, key); hit {
		// A restored entry that does not resolve or verify is never trusted;
		// fall through to acquisition.
		switch exe := locate.Find(dir, opts.Platform.ExeName); {
		case exe == "":
			log.WithField("key", key).Warnf(messages.InstallCacheEntryEmptyFmt, dir)
		case verify.Run(ctx, log, exe):
			resolved := verify.ProbeVersion(ctx, log, exe)
			warnOnVersionDrift(log, spec, resolved)
			log.WithFields(logrus.Fields{"key": key, "path": exe}).
				Infof(messages.InstallCacheHitFmt, resolved)
			return Result{Version: resolved, Path: exe, FromCache: true}, nil
		default:
			log.WithField("key", key).Warnf(messages.InstallCacheRejectedFmt, exe)
		}
	}

	var lastErr error
	for _, strategy := range opts.Strategies {
		exe, err := strategy.Acquire(ctx, spec, opts.Platform)
		if err != nil {
			log.WithField("strategy", strategy.Name()).WithError(err).
				Warn("acquisition strategy failed")
			lastErr = err
			continue
		}
		if !verify.Run(ctx, log, exe) {
			lastErr = fmt.Errorf("%w: "+messages.InstallVerifyFailedFmt, ErrVerification, exe)
			log.WithField("strategy", strategy.Name()).Warn(lastErr.Error())
			continue
		}

		opts.Cache.Save(ctx, key, exe, opts.Platform.ExeName)
		resolved := verify.ProbeVersion(ctx, log, exe)
		return Result{Version: resolved, Path: exe, FromCache: false}, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no acquisition strategy configured")
	}
	return Result{}, lastErr
}

// warnOnVersionDrift flags a cache entry whose probed version disagrees with
// the requested spec. The probed version still wins; the warning exists so a
// mislabeled shared cache is visible in the job log.
func warnOnVersionDrift(log *logrus.Logger, spec string, resolved string) {
	if version.IsLatest(spec) || resolved == verify.UnknownVersion {
		return
	}
	normalized, err := version.Normalize(resolved)
	if err != nil {
		return
	}
	if cmp, err := version.Compare(normalized, spec); err == nil && cmp != 0 {
		log.WithFields(logrus.Fields{"requested": spec, "probed": normalized}).
			Warn("cached binary reports a different version than requested")
	}
}

// Cleanup removes the run's staging directory. It always runs safely, even
// when nothing was staged, and converts failures into logged warnings.
func Cleanup(c *cache.Cache) {
	if c == nil {
		return
	}
	c.Cleanup()
}
