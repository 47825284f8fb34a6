// Package config captures everything the run needs from the ambient
// environment, exactly once at startup: action inputs, runner paths, and an
// optional TOML override file. Every other package receives the result
// explicitly instead of reading process state itself.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/beacon-hq/setup-beacon/internal/messages"
)

// EnvConfigFile overrides the location of the optional override file.
const EnvConfigFile = "SETUP_BEACON_CONFIG"

// defaultConfigFile is probed in the working directory when no override is set.
const defaultConfigFile = "setup-beacon.toml"

var userCacheDirFunc = os.UserCacheDir

// Config is the immutable run configuration.
type Config struct {
	// Version is the raw requested version spec (required input).
	Version string
	// Token is an opaque registry token, passed through to npm only.
	// It must never be logged.
	Token string
	// InstallPath optionally overrides the npm global install prefix.
	InstallPath string

	// StagingDir is the per-run scratch directory removed by the post step.
	StagingDir string
	// ToolCacheDir is the shared local cache root for the dir backend.
	ToolCacheDir string
	// OutputPath and StatePath are the runner's output/state files.
	OutputPath string
	StatePath  string

	// ReleaseBaseURL overrides the release download root when set.
	ReleaseBaseURL string

	// CacheBackend selects "dir" (default) or "s3".
	CacheBackend string
	S3           S3Settings
}

// S3Settings configures the S3-compatible cache backend. Credentials are
// named indirectly: the file stores env var names, never secrets.
type S3Settings struct {
	Endpoint     string `toml:"endpoint"`
	Bucket       string `toml:"bucket"`
	UseSSL       bool   `toml:"use_ssl"`
	AccessKeyEnv string `toml:"access_key_env"`
	SecretKeyEnv string `toml:"secret_key_env"`
}

// fileConfig is the TOML override file schema.
type fileConfig struct {
	Release struct {
		BaseURL string `toml:"base_url"`
	} `toml:"release"`
	Cache struct {
		Backend string     `toml:"backend"`
		Dir     string     `toml:"dir"`
		S3      S3Settings `toml:"s3"`
	} `toml:"cache"`
}

// Load builds the Config from getenv and the optional override file.
// getenv is injected so tests never touch real process state.
func Load(getenv func(string) string) (Config, error) {
	cfg := Config{
		Version:      strings.TrimSpace(getenv("INPUT_VERSION")),
		Token:        getenv("INPUT_TOKEN"),
		InstallPath:  strings.TrimSpace(getenv("INPUT_INSTALL-PATH")),
		OutputPath:   getenv("GITHUB_OUTPUT"),
		StatePath:    getenv("GITHUB_STATE"),
		CacheBackend: "dir",
	}
	if cfg.Version == "" {
		cfg.Version = "latest"
	}

	tempBase := getenv("RUNNER_TEMP")
	if tempBase == "" {
		tempBase = os.TempDir()
	}
	cfg.StagingDir = filepath.Join(tempBase, "setup-beacon")

	if toolCache := getenv("RUNNER_TOOL_CACHE"); toolCache != "" {
		cfg.ToolCacheDir = filepath.Join(toolCache, "setup-beacon")
	} else {
		base, err := userCacheDirFunc()
		if err != nil {
			return Config{}, fmt.Errorf("resolve user cache dir: %w", err)
		}
		cfg.ToolCacheDir = filepath.Join(base, "setup-beacon")
	}

	path := getenv(EnvConfigFile)
	if path == "" {
		path = defaultConfigFile
	}
	if err := applyFile(&cfg, path, getenv(EnvConfigFile) != ""); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyFile merges the override file at path into cfg. A missing default file
// is fine; a missing explicitly configured file is an error.
func applyFile(cfg *Config, path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf(messages.ConfigReadFailedFmt, path, err)
	}
	var file fileConfig
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf(messages.ConfigParseFailedFmt, path, err)
	}

	if file.Release.BaseURL != "" {
		cfg.ReleaseBaseURL = strings.TrimRight(file.Release.BaseURL, "/")
	}
	if file.Cache.Dir != "" {
		cfg.ToolCacheDir = file.Cache.Dir
	}
	if file.Cache.Backend != "" {
		cfg.CacheBackend = file.Cache.Backend
	}
	cfg.S3 = file.Cache.S3
	return nil
}
