package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/beacon-hq/setup-beacon/internal/locate"
	"github.com/beacon-hq/setup-beacon/internal/messages"
	"github.com/beacon-hq/setup-beacon/internal/platform"
	"github.com/beacon-hq/setup-beacon/internal/version"
)

// DefaultReleaseBaseURL is the beacon release download root.
const DefaultReleaseBaseURL = "https://github.com/beacon-hq/beacon/releases/download"

// FallbackLatestTag is the release tag used for the "latest" spec. It is a
// fixed pin, not a dynamic lookup, so repeated runs stay reproducible.
const FallbackLatestTag = "cli-v0.11.2"

// toolShortName feeds the fuzzy resolver fallback; release archives extract
// to platform-qualified filenames like beacon-cli-linux-x64.
const toolShortName = "beacon"

const (
	defaultMaxDownloadBytes = int64(100 * 1024 * 1024) // 100 MiB
	downloadRetryCount      = 1
	downloadRetryBackoff    = 250 * time.Millisecond
)

var downloadSleep = time.Sleep

// DownloadStrategy fetches a release archive, extracts it, and resolves the
// executable inside the extraction root.
type DownloadStrategy struct {
	// BaseURL overrides the release download root; empty means the default.
	BaseURL string
	// StagingDir receives the downloaded archive and extraction tree.
	StagingDir string
	// MaxBytes caps the archive size; zero means the default.
	MaxBytes int64
	// Client overrides the HTTP client; nil means a 30s-timeout default.
	Client *http.Client

	Log *logrus.Logger
}

// Name identifies the strategy in logs.
func (s *DownloadStrategy) Name() string {
	return "download"
}

// Acquire downloads and extracts the release archive for spec, then locates
// the executable. On POSIX platforms the discovered file is marked executable
// before it is returned.
func (s *DownloadStrategy) Acquire(ctx context.Context, spec string, plat platform.Info) (string, error) {
	url := s.downloadURL(spec, plat)
	workDir := filepath.Join(s.StagingDir, "download")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", newError(url, fmt.Errorf(messages.InstallCreateStagingFmt, workDir, err))
	}

	archivePath := filepath.Join(workDir, plat.AssetName()+plat.ArchiveExt)
	s.Log.WithField("url", url).Info("downloading beacon release")
	if err := s.downloadToFile(ctx, url, archivePath); err != nil {
		return "", newError(url, err)
	}

	extractDir := filepath.Join(workDir, "extracted")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", newError(url, fmt.Errorf(messages.InstallCreateStagingFmt, extractDir, err))
	}
	if err := extractArchive(archivePath, extractDir, plat.ArchiveExt); err != nil {
		return "", newError(url, fmt.Errorf(messages.InstallExtractFailedFmt, archivePath, err))
	}

	exe := locate.Find(extractDir, plat.ExeName)
	if exe == "" {
		// Release archives often extract to the qualified asset name rather
		// than the canonical one; this strategy controls the naming, so the
		// substring fallback is safe here.
		exe = locate.FindFuzzy(extractDir, toolShortName)
	}
	if exe == "" {
		return "", newError(url, fmt.Errorf(messages.InstallExecutableNotFoundFmt, plat.ExeName, extractDir))
	}

	if !plat.Windows() {
		if err := os.Chmod(exe, 0o755); err != nil {
			return "", newError(url, fmt.Errorf(messages.InstallChmodFailedFmt, exe, err))
		}
	}
	return exe, nil
}

// downloadURL computes the deterministic release URL for spec and plat.
func (s *DownloadStrategy) downloadURL(spec string, plat platform.Info) string {
	base := s.BaseURL
	if base == "" {
		base = DefaultReleaseBaseURL
	}
	tag := FallbackLatestTag
	if !version.IsLatest(spec) {
		tag = "cli-v" + spec
	}
	return fmt.Sprintf("%s/%s/%s%s", base, tag, plat.AssetName(), plat.ArchiveExt)
}

// downloadToFile fetches url into dest with one retry on transient failures
// and a size cap on the response body.
func (s *DownloadStrategy) downloadToFile(ctx context.Context, url string, dest string) error {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	maxBytes := s.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxDownloadBytes
	}

	for attempt := 0; attempt <= downloadRetryCount; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf(messages.InstallDownloadFailedFmt, url, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			if shouldRetryDownload(attempt, err, 0) {
				downloadSleep(downloadRetryBackoff)
				continue
			}
			if isTimeoutError(err) {
				return fmt.Errorf(messages.InstallDownloadTimeoutFmt, url)
			}
			return fmt.Errorf(messages.InstallDownloadFailedFmt, url, err)
		}
		if resp.StatusCode != http.StatusOK {
			status := resp.StatusCode
			statusText := resp.Status
			_ = resp.Body.Close()
			if shouldRetryDownload(attempt, nil, status) {
				downloadSleep(downloadRetryBackoff)
				continue
			}
			return fmt.Errorf(messages.InstallDownloadStatusFmt, url, statusText)
		}

		file, err := os.Create(dest)
		if err != nil {
			_ = resp.Body.Close()
			return fmt.Errorf(messages.InstallDownloadFailedFmt, url, err)
		}
		n, copyErr := io.Copy(file, io.LimitReader(resp.Body, maxBytes+1))
		_ = resp.Body.Close()
		if closeErr := file.Close(); copyErr == nil {
			copyErr = closeErr
		}
		if copyErr != nil {
			if shouldRetryDownload(attempt, copyErr, 0) {
				downloadSleep(downloadRetryBackoff)
				continue
			}
			return fmt.Errorf(messages.InstallDownloadFailedFmt, url, copyErr)
		}
		if n > maxBytes {
			return fmt.Errorf(messages.InstallDownloadTooLargeFmt, url, maxBytes)
		}
		return nil
	}
	return fmt.Errorf(messages.InstallDownloadFailedFmt, url, errors.New("retry budget exhausted"))
}

// isTimeoutError reports whether err is a network timeout.
func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func shouldRetryDownload(attempt int, err error, statusCode int) bool {
	if attempt >= downloadRetryCount {
		return false
	}
	if err != nil {
		var netErr net.Error
		return errors.As(err, &netErr)
	}
	return statusCode >= 500 && statusCode <= 599
}
