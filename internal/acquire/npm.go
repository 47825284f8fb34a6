package acquire

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"

	"github.com/beacon-hq/setup-beacon/internal/messages"
	"github.com/beacon-hq/setup-beacon/internal/platform"
	"github.com/beacon-hq/setup-beacon/internal/version"
)

// DefaultPackage is the scoped npm package for the beacon CLI.
const DefaultPackage = "@beacon-hq/beacon-cli"

// npmInstallTimeout bounds a single npm install invocation.
const npmInstallTimeout = 5 * time.Minute

var (
	npmBinary   = "npm"
	homeDirFunc = homedir.Dir
	getenvFunc  = os.Getenv
)

// NpmStrategy installs the tool through a global npm install, then searches
// the conventional global-bin directories for the executable. npm decides the
// install prefix, so the final location is not knowable up front.
type NpmStrategy struct {
	// Package overrides the npm package name; empty means DefaultPackage.
	Package string
	// Token, when set, is passed to npm through the environment only. It is
	// never logged and never appears in the command line.
	Token string
	// InstallPath, when set, overrides the npm global prefix and is searched
	// ahead of the conventional bin directories.
	InstallPath string

	Log *logrus.Logger
}

// Name identifies the strategy in logs.
func (s *NpmStrategy) Name() string {
	return "npm"
}

// Acquire runs the global install and resolves the executable from the
// candidate global-bin directories.
func (s *NpmStrategy) Acquire(ctx context.Context, spec string, plat platform.Info) (string, error) {
	pkg := s.Package
	if pkg == "" {
		pkg = DefaultPackage
	}
	if !version.IsLatest(spec) {
		pkg = pkg + "@" + spec
	}

	args := []string{"install", "-g", pkg}
	if s.InstallPath != "" {
		args = append(args, "--prefix", s.InstallPath)
	}
	command := npmBinary + " " + strings.Join(args, " ")

	s.Log.WithField("package", pkg).Info("installing beacon via npm")
	if err := s.runInstall(ctx, args); err != nil {
		return "", newError(command, fmt.Errorf(messages.InstallNpmCommandFailedFmt, command, err))
	}

	dirs := s.candidateBinDirs(plat)
	for _, dir := range dirs {
		for _, name := range candidateExeNames(plat) {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate, nil
			}
		}
	}
	searched := strings.Join(dirs, ", ")
	return "", newError(command, fmt.Errorf(messages.InstallNpmBinaryNotFoundFmt, plat.ExeName, searched))
}

// runInstall executes the npm command with the token exposed via env only.
func (s *NpmStrategy) runInstall(ctx context.Context, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, npmInstallTimeout)
	defer cancel()

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, npmBinary, args...)
	cmd.Stdout = &output
	cmd.Stderr = &output
	cmd.Env = os.Environ()
	if s.Token != "" {
		cmd.Env = append(cmd.Env, "NODE_AUTH_TOKEN="+s.Token)
	}
	if err := cmd.Run(); err != nil {
		trimmed := strings.TrimSpace(output.String())
		if trimmed != "" {
			s.Log.WithField("output", trimmed).Debug("npm install output")
		}
		return err
	}
	return nil
}

// candidateBinDirs lists the global-bin directories searched after a global
// install, in priority order.
func (s *NpmStrategy) candidateBinDirs(plat platform.Info) []string {
	var dirs []string
	if s.InstallPath != "" {
		dirs = append(dirs, filepath.Join(s.InstallPath, "bin"), s.InstallPath)
	}
	if plat.Windows() {
		if appData := getenvFunc("APPDATA"); appData != "" {
			dirs = append(dirs, filepath.Join(appData, "npm"))
		}
		if programFiles := getenvFunc("ProgramFiles"); programFiles != "" {
			dirs = append(dirs, filepath.Join(programFiles, "nodejs"))
		}
		return dirs
	}
	dirs = append(dirs, "/usr/local/bin", "/usr/bin", "/opt/homebrew/bin")
	if home, err := homeDirFunc(); err == nil && home != "" {
		dirs = append(dirs,
			filepath.Join(home, ".npm-global", "bin"),
			filepath.Join(home, "node_modules", ".bin"),
		)
	}
	return dirs
}

// candidateExeNames lists the executable names npm may produce. Windows
// global installs create a .cmd shim next to the .exe when one exists.
func candidateExeNames(plat platform.Info) []string {
	if plat.Windows() {
		return []string{plat.ExeName, "beacon.cmd"}
	}
	return []string{plat.ExeName}
}
