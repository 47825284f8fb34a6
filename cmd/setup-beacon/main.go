package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beacon-hq/setup-beacon/internal/messages"
)

var executeFunc = execute

// Version, Commit, and BuildDate are overridden at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	runMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

// execute runs the CLI command with the provided args and output writers.
func execute(args []string, stdout io.Writer, stderr io.Writer) error {
	cmd := newRootCmd()
	cmd.Version = versionString()
	cmd.SetVersionTemplate(messages.VersionTemplate)
	if len(args) > 1 {
		cmd.SetArgs(args[1:])
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}

// runMain executes the CLI, exiting non-zero on any error. An uncaught error
// must surface as a failed step, never a silent success.
func runMain(args []string, stdout io.Writer, stderr io.Writer, exit func(int)) {
	if err := executeFunc(args, stdout, stderr); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		exit(1)
	}
}

// versionString formats the build metadata for --version output. Commit and
// build date are omitted when the build did not stamp them.
func versionString() string {
	var details []string
	if Commit != "" && Commit != "unknown" {
		details = append(details, "commit "+Commit)
	}
	if BuildDate != "" && BuildDate != "unknown" {
		details = append(details, "built "+BuildDate)
	}
	if len(details) == 0 {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, strings.Join(details, ", "))
}
