package main

import (
	"github.com/spf13/cobra"

	"github.com/beacon-hq/setup-beacon/internal/action"
)

// newRootCmd builds the CLI. The bare invocation performs the install; the
// cleanup subcommand is the runner's post step.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "setup-beacon",
		Short:         "Install the beacon CLI for the current CI job",
		Long:          "setup-beacon obtains a beacon CLI executable (cache, release download, or npm install), verifies it runs, caches it for reuse, and reports the resolved version and path.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if action.IsPost(getenvFunc) {
				return runCleanup(cmd)
			}
			return runInstall(cmd)
		},
	}
	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newCleanupCmd())
	return cmd
}

// newInstallCmd exposes the install explicitly for local invocations.
func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Install and verify the beacon CLI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd)
		},
	}
}

// newCleanupCmd removes the staging directory; failures are warnings only.
func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove the per-run staging directory (post step)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCleanup(cmd)
		},
	}
}
