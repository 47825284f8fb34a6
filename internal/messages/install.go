package messages

// Installer and acquisition messages.
const (
	// InstallFailedPrefix is the stable prefix downstream tooling matches on.
	InstallFailedPrefix = "Failed to install beacon: "

	InstallVersionRequired       = "version input is required"
	InstallInvalidVersionSpecFmt = "invalid version %q: expected \"latest\" or MAJOR.MINOR.PATCH"
	InstallVerifyFailedFmt       = "installed binary at %s failed the version probe"
	InstallCacheHitFmt           = "restored beacon %s from cache"
	InstallCacheRejectedFmt      = "cached binary at %s failed verification; reinstalling"
	InstallCacheEntryEmptyFmt    = "no executable found in cache entry under %s; reinstalling"
	InstallDownloadFailedFmt     = "download %s: %w"
	InstallDownloadStatusFmt     = "download %s: unexpected status %s"
	InstallDownloadTimeoutFmt    = "download %s: timed out"
	InstallDownloadTooLargeFmt   = "download %s: response exceeds %d bytes"
	InstallExtractFailedFmt      = "extract %s: %w"
	InstallUnsupportedArchiveFmt = "unsupported archive extension %q"
	InstallExecutableNotFoundFmt = "no %s executable found under %s"
	InstallNpmCommandFailedFmt   = "npm install failed (%s): %w"
	InstallNpmBinaryNotFoundFmt  = "npm install succeeded but %s was not found in any of: %s"
	InstallChmodFailedFmt        = "mark %s executable: %w"
	InstallCreateStagingFmt      = "create staging directory %s: %w"

	CleanupRemoveFailedFmt = "cleanup: failed to remove staging directory %s: %v"
)
