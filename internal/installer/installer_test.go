package installer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beacon-hq/setup-beacon/internal/acquire"
	"github.com/beacon-hq/setup-beacon/internal/cache"
	"github.com/beacon-hq/setup-beacon/internal/platform"
	"github.com/beacon-hq/setup-beacon/internal/testutil"
	"github.com/beacon-hq/setup-beacon/internal/version"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func linuxPlatform() platform.Info {
	return platform.Info{OS: "linux", Arch: "x64", ArchiveExt: ".tar.gz", ExeName: "beacon"}
}

// stubStrategy hands out a pre-built executable and counts invocations.
type stubStrategy struct {
	path  string
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return "stub" }

func (s *stubStrategy) Acquire(_ context.Context, _ string, _ platform.Info) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.path, nil
}

// countingBackend wraps a DirBackend and records transport activity.
type countingBackend struct {
	inner   cache.Backend
	fetches int
	stores  int
}

func (b *countingBackend) Fetch(ctx context.Context, key string, destDir string) (bool, error) {
	b.fetches++
	return b.inner.Fetch(ctx, key, destDir)
}

func (b *countingBackend) Store(ctx context.Context, key string, srcPath string, destName string) error {
	b.stores++
	return b.inner.Store(ctx, key, srcPath, destName)
}

func newTestCache(t *testing.T) (*cache.Cache, *countingBackend) {
	t.Helper()
	backend := &countingBackend{inner: cache.NewDirBackend(t.TempDir())}
	return cache.New(backend, filepath.Join(t.TempDir(), "staging"), quietLogger()), backend
}

// seedCache stores a probe stub with the given output under the key for spec.
func seedCache(t *testing.T, c *cache.Cache, spec string, output string, exitCode int) {
	t.Helper()
	dir := t.TempDir()
	if exitCode == 0 {
		testutil.WriteStubWithOutput(t, dir, "beacon", output)
	} else {
		testutil.WriteStubWithExit(t, dir, "beacon", exitCode)
	}
	key := cache.Key(spec, "linux", "x64")
	c.Save(context.Background(), key, filepath.Join(dir, "beacon"), "beacon")
}

func TestRunRejectsInvalidSpecBeforeAnyIO(t *testing.T) {
	c, backend := newTestCache(t)
	strategy := &stubStrategy{}

	_, err := Run(context.Background(), Options{
		VersionSpec: "garbage",
		Platform:    linuxPlatform(),
		Cache:       c,
		Strategies:  []acquire.Strategy{strategy},
		Log:         quietLogger(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, version.ErrInvalidSpec)
	assert.Zero(t, backend.fetches)
	assert.Zero(t, strategy.calls)
}

func TestRunCacheHitShortCircuitsAcquisition(t *testing.T) {
	c, _ := newTestCache(t)
	seedCache(t, c, "1.2.3", "beacon-cli 1.2.3", 0)
	strategy := &stubStrategy{}

	result, err := Run(context.Background(), Options{
		VersionSpec: "1.2.3",
		Platform:    linuxPlatform(),
		Cache:       c,
		Strategies:  []acquire.Strategy{strategy},
		Log:         quietLogger(),
	})
	require.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Equal(t, "1.2.3", result.Version)
	assert.Zero(t, strategy.calls, "cache hit must not trigger acquisition")
}

func TestRunReportsProbedVersionNotRequestedSpec(t *testing.T) {
	// A misconfigured environment can hold a different patch build under the
	// same key; the reported version must come from the probe.
	c, _ := newTestCache(t)
	seedCache(t, c, "1.2.3", "beacon-cli 1.2.4", 0)

	result, err := Run(context.Background(), Options{
		VersionSpec: "1.2.3",
		Platform:    linuxPlatform(),
		Cache:       c,
		Strategies:  nil,
		Log:         quietLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "1.2.4", result.Version)
}

func TestRunRejectsBrokenCacheEntry(t *testing.T) {
	c, _ := newTestCache(t)
	seedCache(t, c, "1.2.3", "", 7)

	freshDir := t.TempDir()
	testutil.WriteStubWithOutput(t, freshDir, "beacon", "beacon-cli 1.2.3")
	strategy := &stubStrategy{path: filepath.Join(freshDir, "beacon")}

	result, err := Run(context.Background(), Options{
		VersionSpec: "1.2.3",
		Platform:    linuxPlatform(),
		Cache:       c,
		Strategies:  []acquire.Strategy{strategy},
		Log:         quietLogger(),
	})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 1, strategy.calls, "broken cache entry must fall through to acquisition")
}

func TestRunSavesFreshInstallToCache(t *testing.T) {
	c, backend := newTestCache(t)
	freshDir := t.TempDir()
	testutil.WriteStubWithOutput(t, freshDir, "beacon", "beacon-cli 1.0.0")
	strategy := &stubStrategy{path: filepath.Join(freshDir, "beacon")}

	result, err := Run(context.Background(), Options{
		VersionSpec: "latest",
		Platform:    linuxPlatform(),
		Cache:       c,
		Strategies:  []acquire.Strategy{strategy},
		Log:         quietLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", result.Version)
	assert.False(t, result.FromCache)
	assert.Equal(t, 1, backend.stores)
}

func TestRunCacheHitAfterQualifiedNameInstall(t *testing.T) {
	// Release archives extract to platform-qualified filenames. The save must
	// still produce an entry the next run resolves under the canonical name,
	// otherwise the cache never hits for downloaded installs.
	c, backend := newTestCache(t)
	freshDir := t.TempDir()
	testutil.WriteStubWithOutput(t, freshDir, "beacon-cli-linux-x64", "beacon-cli 1.2.3")
	first := &stubStrategy{path: filepath.Join(freshDir, "beacon-cli-linux-x64")}

	result, err := Run(context.Background(), Options{
		VersionSpec: "1.2.3",
		Platform:    linuxPlatform(),
		Cache:       c,
		Strategies:  []acquire.Strategy{first},
		Log:         quietLogger(),
	})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	require.Equal(t, 1, backend.stores)

	second := &stubStrategy{}
	result, err = Run(context.Background(), Options{
		VersionSpec: "1.2.3",
		Platform:    linuxPlatform(),
		Cache:       c,
		Strategies:  []acquire.Strategy{second},
		Log:         quietLogger(),
	})
	require.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Equal(t, "1.2.3", result.Version)
	assert.Equal(t, "beacon", filepath.Base(result.Path))
	assert.Zero(t, second.calls, "second run must not re-acquire")
}

func TestRunEmptyCacheEntryWarnsWithStagingDir(t *testing.T) {
	c, _ := newTestCache(t)
	unrelatedDir := t.TempDir()
	testutil.WriteStub(t, unrelatedDir, "other-tool")
	key := cache.Key("1.2.3", "linux", "x64")
	c.Save(context.Background(), key, filepath.Join(unrelatedDir, "other-tool"), "other-tool")

	freshDir := t.TempDir()
	testutil.WriteStubWithOutput(t, freshDir, "beacon", "beacon-cli 1.2.3")
	strategy := &stubStrategy{path: filepath.Join(freshDir, "beacon")}

	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	result, err := Run(context.Background(), Options{
		VersionSpec: "1.2.3",
		Platform:    linuxPlatform(),
		Cache:       c,
		Strategies:  []acquire.Strategy{strategy},
		Log:         log,
	})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Contains(t, buf.String(), "no executable found in cache entry")
	assert.Contains(t, buf.String(), key)
	assert.NotContains(t, buf.String(), "cached binary at  failed")
}

func TestRunAcquisitionFailurePropagates(t *testing.T) {
	c, _ := newTestCache(t)
	strategy := &stubStrategy{err: &acquire.Error{
		Attempted: "https://example.invalid/archive.tar.gz",
		Err:       errors.New("download rejected"),
	}}

	_, err := Run(context.Background(), Options{
		VersionSpec: "1.2.3",
		Platform:    linuxPlatform(),
		Cache:       c,
		Strategies:  []acquire.Strategy{strategy},
		Log:         quietLogger(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to install")

	var acqErr *acquire.Error
	assert.True(t, errors.As(err, &acqErr))
}

func TestRunFallsBackToSecondStrategy(t *testing.T) {
	c, _ := newTestCache(t)
	failing := &stubStrategy{err: &acquire.Error{Attempted: "url", Err: errors.New("boom")}}
	freshDir := t.TempDir()
	testutil.WriteStubWithOutput(t, freshDir, "beacon", "beacon-cli 2.0.0")
	working := &stubStrategy{path: filepath.Join(freshDir, "beacon")}

	result, err := Run(context.Background(), Options{
		VersionSpec: "2.0.0",
		Platform:    linuxPlatform(),
		Cache:       c,
		Strategies:  []acquire.Strategy{failing, working},
		Log:         quietLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, working.calls)
	assert.Equal(t, "2.0.0", result.Version)
}

func TestRunVerificationFailureIsDistinctFromAcquisition(t *testing.T) {
	c, _ := newTestCache(t)
	brokenDir := t.TempDir()
	testutil.WriteStubWithExit(t, brokenDir, "beacon", 1)
	strategy := &stubStrategy{path: filepath.Join(brokenDir, "beacon")}

	_, err := Run(context.Background(), Options{
		VersionSpec: "1.2.3",
		Platform:    linuxPlatform(),
		Cache:       c,
		Strategies:  []acquire.Strategy{strategy},
		Log:         quietLogger(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVerification)

	var acqErr *acquire.Error
	assert.False(t, errors.As(err, &acqErr))
}

func TestWarnOnVersionDrift(t *testing.T) {
	capture := func(spec, resolved string) string {
		var buf bytes.Buffer
		log := logrus.New()
		log.SetOutput(&buf)
		warnOnVersionDrift(log, spec, resolved)
		return buf.String()
	}

	assert.Contains(t, capture("1.2.3", "1.2.4"), "different version")
	assert.Contains(t, capture("1.2.3", "v1.2.4"), "different version")
	assert.Empty(t, capture("1.2.3", "1.2.3"))
	assert.Empty(t, capture("latest", "1.2.4"))
	assert.Empty(t, capture("1.2.3", "unknown"))
	assert.Empty(t, capture("1.2.3", "not-a-version"))
}

func TestCleanupNilCache(t *testing.T) {
	Cleanup(nil)
}

func TestCleanupRemovesStaging(t *testing.T) {
	staging := filepath.Join(t.TempDir(), "staging")
	require.NoError(t, os.MkdirAll(staging, 0o755))
	c := cache.New(cache.NewDirBackend(t.TempDir()), staging, quietLogger())

	Cleanup(c)
	_, err := os.Stat(staging)
	assert.True(t, os.IsNotExist(err))
}
