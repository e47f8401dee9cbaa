package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func renderCmd() *cobra.Command {
	var (
		configPath string
		format     string
		output     string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "render <url>",
		Short: "Render a single URL to stdout",
		Long: `Render one URL through the route manifest and print the result.

The exit code is non-zero when the URL resolves to an error status
(4xx or 5xx) or to a redirect.

Examples:
  strata render /about
  strata render /docs/intro --format=markdown
  strata render /docs/intro -o intro.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(configPath, args[0], format, output, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to strata.json (default: search upward from cwd)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: html or markdown (default from strata.json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	return cmd
}

func runRender(configPath, url, format, output string, verbose bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(verbose)
	app, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	result, err := app.Render(context.Background(), url, format)
	if err != nil {
		return err
	}

	if result.Redirect != "" {
		return fmt.Errorf("%s redirects to %s (%d)", url, result.Redirect, result.Status)
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(result.Content), 0o644); err != nil {
			return err
		}
	} else {
		fmt.Print(result.Content)
	}

	if result.Status >= 400 {
		return fmt.Errorf("%s rendered with status %d", url, result.Status)
	}
	return nil
}
