// Package action is the thin I/O layer between the installer core and the CI
// runner: it writes step outputs and state using the runner's file-append
// protocol. Values containing secrets never pass through here.
package action

import (
	"fmt"
	"io"
	"os"

	"github.com/beacon-hq/setup-beacon/internal/messages"
)

// SetOutput records a step output. When the runner did not provide an output
// file, the value is echoed to fallback so local runs stay inspectable.
func SetOutput(path string, fallback io.Writer, name string, value string) error {
	return appendLine(path, fallback, name, value, messages.OutputWriteFailedFmt)
}

// SaveState records a value for the post step.
func SaveState(path string, fallback io.Writer, name string, value string) error {
	return appendLine(path, fallback, name, value, messages.StateWriteFailedFmt)
}

// IsPost reports whether this invocation is the post step, based on the state
// saved by the install step. The runner republishes saved state as
// STATE_-prefixed environment variables.
func IsPost(getenv func(string) string) bool {
	return getenv("STATE_"+messages.CLIPostStateName) == "true"
}

// appendLine writes name=value to the runner file at path, or to fallback
// when no file was provided.
func appendLine(path string, fallback io.Writer, name string, value string, errFmt string) error {
	if path == "" {
		_, err := fmt.Fprintf(fallback, "%s=%s\n", name, value)
		if err != nil {
			return fmt.Errorf(errFmt, name, err)
		}
		return nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf(errFmt, name, err)
	}
	if _, err := fmt.Fprintf(file, "%s=%s\n", name, value); err != nil {
		_ = file.Close()
		return fmt.Errorf(errFmt, name, err)
	}
	return file.Close()
}
