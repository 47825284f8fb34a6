// Package verify gates every installed binary, cached or fresh, behind a live
// version probe. No cheaper check (existence, size, checksum) substitutes for
// actually running the executable.
package verify

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// probeArg is the single argument passed to the candidate binary.
const probeArg = "--version"

// probeTimeout bounds a single probe execution.
const probeTimeout = 30 * time.Second

// UnknownVersion is reported when the probe output yields no version token.
const UnknownVersion = "unknown"

// Run executes the candidate at path with the version probe and reports
// whether it exited zero. Spawn failures (missing execute bit, corrupt binary)
// collapse to false; they are diagnostics, not errors.
func Run(ctx context.Context, log *logrus.Logger, path string) bool {
	out, err := probe(ctx, path)
	if err != nil {
		log.WithFields(logrus.Fields{"path": path, "output": out}).
			WithError(err).Warn("version probe failed")
		return false
	}
	log.WithFields(logrus.Fields{"path": path, "output": out}).Debug("version probe ok")
	return true
}

// ProbeVersion runs the version probe and returns the last whitespace-delimited
// token of stdout as the version string. Any execution or parse failure yields
// UnknownVersion; failing to report a version is never fatal to the run.
func ProbeVersion(ctx context.Context, log *logrus.Logger, path string) string {
	out, err := probe(ctx, path)
	if err != nil {
		log.WithField("path", path).WithError(err).Warn("could not read tool version")
		return UnknownVersion
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return UnknownVersion
	}
	return fields[len(fields)-1]
}

// probe runs the binary with the probe argument and returns trimmed stdout.
func probe(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, probeArg)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		combined := strings.TrimSpace(stdout.String() + "\n" + stderr.String())
		return combined, err
	}
	return strings.TrimSpace(stdout.String()), nil
}
