// Package cache stores verified tool executables keyed by (tool, version, OS,
// arch) so later runs can skip acquisition. Caching is a performance
// optimization: every transport failure degrades to a miss or a skipped save
// with a warning, and a restored entry is still re-verified before it is
// trusted.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/beacon-hq/setup-beacon/internal/messages"
)

// Backend is the cache transport. Fetch populates destDir with the entry for
// key and reports whether the entry existed; a genuine miss is (false, nil).
// Store persists the executable at srcPath under key as destName,
// all-or-nothing from the perspective of subsequent fetches.
type Backend interface {
	Fetch(ctx context.Context, key string, destDir string) (bool, error)
	Store(ctx context.Context, key string, srcPath string, destName string) error
}

// Key builds the deterministic cache key for a resolved version spec and
// platform. Identical inputs always produce identical keys.
func Key(versionSpec string, osName string, arch string) string {
	return fmt.Sprintf("beacon-cli-%s-%s-%s", versionSpec, osName, arch)
}

// Cache wraps a Backend with the degrade-to-miss policy and a staging area.
type Cache struct {
	backend Backend
	staging string
	log     *logrus.Logger
}

// New returns a Cache using backend, staging files under stagingDir.
func New(backend Backend, stagingDir string, log *logrus.Logger) *Cache {
	return &Cache{backend: backend, staging: stagingDir, log: log}
}

// Restore attempts to populate a staging directory from the cache entry for
// key. It returns the populated directory and whether the entry existed.
// Transport failures are logged as warnings and reported as a miss.
func (c *Cache) Restore(ctx context.Context, key string) (string, bool) {
	destDir := filepath.Join(c.staging, key)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		c.log.WithField("key", key).WithError(err).Warnf(messages.CacheRestoreFailedFmt, key)
		return "", false
	}
	hit, err := c.backend.Fetch(ctx, key, destDir)
	if err != nil {
		c.log.WithField("key", key).WithError(err).Warnf(messages.CacheRestoreFailedFmt, key)
		return "", false
	}
	if !hit {
		return "", false
	}
	return destDir, true
}

// Save persists the executable at srcPath under key as destName. The entry is
// stored under the canonical executable name, not the source basename, so a
// later Restore resolves it regardless of what the acquisition produced.
// Failures are logged as warnings; a failed save never fails the overall run.
func (c *Cache) Save(ctx context.Context, key string, srcPath string, destName string) {
	if _, err := os.Stat(srcPath); err != nil {
		c.log.WithField("key", key).WithError(err).Warnf(messages.CacheSaveFailedFmt, key)
		return
	}
	if err := c.backend.Store(ctx, key, srcPath, destName); err != nil {
		c.log.WithField("key", key).WithError(err).Warnf(messages.CacheSaveFailedFmt, key)
	}
}

// Cleanup removes the staging directory. It is idempotent and best-effort:
// failures are logged as warnings, never returned.
func (c *Cache) Cleanup() {
	if c.staging == "" {
		return
	}
	if err := os.RemoveAll(c.staging); err != nil {
		c.log.Warnf(messages.CleanupRemoveFailedFmt, c.staging, err)
	}
}
