package messages

// CLI output and configuration messages.
const (
	CLIInstalledFmt          = "beacon %s ready at %s\n"
	CLIFromCacheSuffix       = " (from cache)"
	CLICleanupDone           = "staging directory removed\n"
	CLIVersionOutputName     = "cli-version"
	CLIPathOutputName        = "cli-path"
	CLIPostStateName         = "post-required"
	VersionTemplate          = "setup-beacon {{.Version}}\n"
	ConfigReadFailedFmt      = "read config %s: %w"
	ConfigParseFailedFmt     = "parse config %s: %w"
	ConfigUnsupportedOSFmt   = "unsupported operating system %q"
	ConfigUnsupportedArchFmt = "unsupported architecture %q"
	OutputWriteFailedFmt     = "write %s output: %w"
	StateWriteFailedFmt      = "write %s state: %w"
)
