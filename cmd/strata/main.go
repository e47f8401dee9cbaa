package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "strata",
		Short: "Manifest-driven hierarchical page renderer",
		Long: `Strata resolves URLs against a JSON route manifest and renders
hierarchical pages in HTML or Markdown.

Routes are declared in routes.json; each route level contributes a
template or a registered module, and child content is composed into
the parent's slot. Widgets embedded in templates are expanded at
render time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		renderCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
