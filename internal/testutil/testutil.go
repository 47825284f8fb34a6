// Package testutil provides shell-stub helpers shared by installer tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteStub writes an executable shell stub that exits successfully.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStub(t *testing.T, dir string, name string) {
	t.Helper()
	WriteStubWithExit(t, dir, name, 0)
}

// WriteStubWithExit writes an executable shell stub that exits with the provided code.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStubWithExit(t *testing.T, dir string, name string, exitCode int) {
	t.Helper()
	WriteFileMode(t, dir, name, fmt.Sprintf("#!/bin/sh\nexit %d\n", exitCode), 0o755)
}

// WriteStubWithOutput writes an executable shell stub that prints output to
// stdout and exits successfully. Installer tests use it to fake version probes.
func WriteStubWithOutput(t *testing.T, dir string, name string, output string) {
	t.Helper()
	WriteFileMode(t, dir, name, fmt.Sprintf("#!/bin/sh\necho %q\nexit 0\n", output), 0o755)
}

// WriteStubRecordingArgs writes an executable shell stub that appends its
// arguments to logPath and exits successfully. Tests use it to observe
// package-manager invocations.
func WriteStubRecordingArgs(t *testing.T, dir string, name string, logPath string) {
	t.Helper()
	WriteFileMode(t, dir, name, fmt.Sprintf("#!/bin/sh\necho \"$@\" >> %q\nexit 0\n", logPath), 0o755)
}

// WriteFileMode writes content to dir/name with the given permissions.
func WriteFileMode(t *testing.T, dir string, name string, content string, perm os.FileMode) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for stub: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}
