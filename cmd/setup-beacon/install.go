package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/beacon-hq/setup-beacon/internal/acquire"
	"github.com/beacon-hq/setup-beacon/internal/action"
	"github.com/beacon-hq/setup-beacon/internal/cache"
	"github.com/beacon-hq/setup-beacon/internal/config"
	"github.com/beacon-hq/setup-beacon/internal/installer"
	"github.com/beacon-hq/setup-beacon/internal/messages"
	"github.com/beacon-hq/setup-beacon/internal/platform"
)

var (
	getenvFunc   = os.Getenv
	describeFunc = platform.Describe
	installerRun = installer.Run
	successStyle = color.New(color.FgGreen)
)

// runInstall wires configuration, cache, and strategies, runs the pipeline,
// and publishes the outputs.
func runInstall(cmd *cobra.Command) error {
	log := newLogger(cmd)

	cfg, err := config.Load(getenvFunc)
	if err != nil {
		return err
	}
	plat, err := describeFunc()
	if err != nil {
		return err
	}

	backend, err := newCacheBackend(cfg)
	if err != nil {
		return err
	}
	store := cache.New(backend, cfg.StagingDir, log)

	strategies := []acquire.Strategy{
		&acquire.DownloadStrategy{
			BaseURL:    cfg.ReleaseBaseURL,
			StagingDir: cfg.StagingDir,
			Log:        log,
		},
		&acquire.NpmStrategy{
			Token:       cfg.Token,
			InstallPath: cfg.InstallPath,
			Log:         log,
		},
	}

	result, err := installerRun(cmd.Context(), installer.Options{
		VersionSpec: cfg.Version,
		Platform:    plat,
		Cache:       store,
		Strategies:  strategies,
		Log:         log,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := action.SetOutput(cfg.OutputPath, out, messages.CLIVersionOutputName, result.Version); err != nil {
		return err
	}
	if err := action.SetOutput(cfg.OutputPath, out, messages.CLIPathOutputName, result.Path); err != nil {
		return err
	}
	if err := action.SaveState(cfg.StatePath, out, messages.CLIPostStateName, "true"); err != nil {
		return err
	}

	suffix := ""
	if result.FromCache {
		suffix = messages.CLIFromCacheSuffix
	}
	_, _ = successStyle.Fprintf(out, messages.CLIInstalledFmt, result.Version+suffix, result.Path)
	return nil
}

// runCleanup removes the staging directory. It never fails the post step.
func runCleanup(cmd *cobra.Command) error {
	log := newLogger(cmd)

	cfg, err := config.Load(getenvFunc)
	if err != nil {
		// Even a broken configuration must not fail the post step.
		log.WithError(err).Warn("cleanup: could not load configuration")
		return nil
	}
	store := cache.New(cache.NewDirBackend(cfg.ToolCacheDir), cfg.StagingDir, log)
	installer.Cleanup(store)
	_, _ = fmt.Fprint(cmd.OutOrStdout(), messages.CLICleanupDone)
	return nil
}

// newCacheBackend selects the cache transport from configuration.
func newCacheBackend(cfg config.Config) (cache.Backend, error) {
	switch cfg.CacheBackend {
	case "s3":
		return cache.NewS3Backend(cache.S3Options{
			Endpoint:  cfg.S3.Endpoint,
			Bucket:    cfg.S3.Bucket,
			AccessKey: getenvFunc(cfg.S3.AccessKeyEnv),
			SecretKey: getenvFunc(cfg.S3.SecretKeyEnv),
			UseSSL:    cfg.S3.UseSSL,
		})
	default:
		return cache.NewDirBackend(cfg.ToolCacheDir), nil
	}
}

// newLogger builds the run logger writing to the command's error stream.
func newLogger(cmd *cobra.Command) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if getenvFunc("RUNNER_DEBUG") == "1" {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
