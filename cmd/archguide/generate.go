// cmd/archguide/generate.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/julianshen/archguide/internal/config"
	"github.com/julianshen/archguide/internal/generate"
	"github.com/julianshen/archguide/internal/pipeline"
)

func generateCmd() *cobra.Command {
	var (
		configFlag  string
		outputFlag  string
		guidesFlag  string
		timeoutFlag time.Duration
		skipGenFlag bool
	)

	cmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Analyze a project and generate its documentation guides",
		Long: `Scan a project tree, detect its technology stack and architectural
patterns, extract validated code examples, and generate one guide per
architectural domain through the configured content service.

Exits non-zero only when the configuration fails to parse or the project
root is unreadable; every other condition degrades to a partial,
explicitly flagged result.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}

			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			if err := pipeline.Preflight(root); err != nil {
				return err
			}

			var guideIDs []string
			if guidesFlag != "" {
				for _, id := range strings.Split(guidesFlag, ",") {
					guideIDs = append(guideIDs, strings.TrimSpace(id))
				}
			}

			var svc generate.Service
			if !skipGenFlag {
				svc = generate.NewClient(cfg.Generation.Endpoint, cfg.Generation.Model, cfg.RequestTimeout)
			}

			outcome, err := pipeline.Run(cmd.Context(), cfg, pipeline.Options{
				Root:           root,
				OutputDir:      outputFlag,
				GuideIDs:       guideIDs,
				Timeout:        timeoutFlag,
				SkipGeneration: skipGenFlag,
			}, svc)
			if err != nil {
				return err
			}

			printSummary(cmd, outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&configFlag, "config", "", "analysis configuration file (YAML); defaults built in")
	cmd.Flags().StringVar(&outputFlag, "output", "docs/architecture", "output directory")
	cmd.Flags().StringVar(&guidesFlag, "guides", "", "comma-separated guide subset (e.g. authentication,components)")
	cmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "overall wall-clock timeout (0 = none)")
	cmd.Flags().BoolVar(&skipGenFlag, "skip-generation", false, "run analysis only, without the content service")

	return cmd
}

// loadConfig returns the built-in defaults when no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return config.Load(path)
}

func printSummary(cmd *cobra.Command, outcome *pipeline.Outcome) {
	result := outcome.Result
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "analyzed %d files: %d capabilities, %d pattern matches, %d examples\n",
		result.Run.FilesScanned, len(result.Capabilities), len(result.Matches), len(result.Examples))
	if result.Run.Partial {
		fmt.Fprintln(out, "result is PARTIAL (timeout hit before all detectors finished)")
	}

	review := 0
	for _, s := range result.Scores {
		if s.ReviewRequired {
			review++
		}
	}
	fmt.Fprintf(out, "domains flagged for review: %d/%d\n", review, len(result.Scores))

	if len(outcome.Guides) > 0 || len(outcome.Failures) > 0 {
		fmt.Fprintf(out, "guides generated: %d, failed: %d\n", len(outcome.Guides), len(outcome.Failures))
		for _, f := range outcome.Failures {
			fmt.Fprintf(out, "  failed %s: %s\n", f.GuideID, f.Reason)
		}
	}
	for _, report := range outcome.Reports {
		if !report.Clean() {
			fmt.Fprintf(out, "guide %s needs review: %d validation issues\n", report.GuideID, len(report.Issues))
		}
	}
}
