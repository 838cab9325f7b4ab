package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "centival",
		Short:         "Validate computed Centiloid values against a published reference",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default is ./centival.yaml when present)")
	pf.String("profile", "", "deployment profile: local, drive or flat")
	pf.String("project-root", "", "project root the profile layout is resolved against")
	pf.String("log-level", "", "log level: error, warn, info, debug or trace")

	rootCmd.AddCommand(
		newValidateCmd(),
		newFixSidecarCmd(),
		newQCReportCmd(),
		newConfigCmd(),
	)
	return rootCmd
}
