package messages

// Cache adapter messages. Cache failures are warnings by policy: a cache
// outage degrades to a fresh install and must never abort the run.
const (
	CacheRestoreFailedFmt  = "cache restore for key %s failed; treating as miss"
	CacheSaveFailedFmt     = "cache save for key %s failed; continuing without caching"
	CacheCopyFmt           = "copy %s to %s: %w"
	CacheOpenLockFmt       = "open cache lock %s: %w"
	CacheLockFmt           = "lock %s: %w"
	CacheLockTimeoutFmt    = "timed out waiting for cache lock after %s"
	CacheCreateDirFmt      = "create cache directory %s: %w"
	CacheCommitFmt         = "commit cache entry %s: %w"
	CacheS3ClientFmt       = "create s3 cache client for %s: %w"
	CacheKeyRequired       = "cache key is required"
	CacheSourceMissingFmt  = "cache save source %s: %w"
)
