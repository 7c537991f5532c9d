// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/devwork/gh-activity/internal/archive"
	"github.com/devwork/gh-activity/internal/config"
	"github.com/devwork/gh-activity/internal/dates"
	"github.com/devwork/gh-activity/internal/gateway"
	"github.com/devwork/gh-activity/internal/report"
	"github.com/devwork/gh-activity/internal/usecase"
)

// defaultSince mirrors the tool's original behavior: with no --since, the
// range opens far enough back to cover any active project.
const defaultSince = "2020-01-01T00:00:00Z"

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Aggregates GitHub activity and writes per-author Quarto reports",
	Long: `Aggregates the issues created or updated in the date range, walks their
sub-issues, linked pull requests and commits, groups everything by canonical
author (USER_MAP) and writes one Quarto markdown report per author, rendered
with the external quarto CLI when available.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose || cfg.Verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		sinceStr, _ := cmd.Flags().GetString("since")
		untilStr, _ := cmd.Flags().GetString("until")
		formats, _ := cmd.Flags().GetStringSlice("formats")

		if sinceStr == "" {
			sinceStr = defaultSince
		}
		since, err := dates.ParseInput(sinceStr, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --since date: %v\n", err)
			os.Exit(1)
		}
		until := time.Now().In(dates.Location())
		if untilStr != "" {
			until, err = dates.ParseInput(untilStr, false)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid --until date: %v\n", err)
				os.Exit(1)
			}
		}

		fmt.Printf("Fetching activity from %s to %s for %d repositories of %s...\n",
			dates.GitHubTime(since), dates.GitHubTime(until), len(cfg.RepoList()), cfg.Owner)

		// Inject dependencies and run the main business logic.
		arch := archive.New(cfg.ResponsesDir, cfg.SaveResponses, logger)
		githubGateway, err := gateway.NewGitHubGateway(cfg.Token, cfg.Owner, arch, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		aggregator := usecase.NewAggregator(githubGateway, arch, logger)

		activities, repoCommits, err := aggregator.Aggregate(ctx, cfg.RepoList(), since, until)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to aggregate activity: %v\n", err)
			os.Exit(1)
		}

		grouped := usecase.GroupByAuthor(activities, repoCommits, cfg.UserMap, cfg.UserMapOnly)

		generator := &report.Generator{
			Owner:   cfg.Owner,
			Repos:   cfg.Repos,
			Authors: cfg.UserMap,
			Formats: formats,
			OutDir:  cfg.ReportsDir,
			Logger:  logger,
		}
		paths, err := generator.Generate(since, until, grouped)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate reports: %v\n", err)
			os.Exit(1)
		}

		if len(formats) > 0 {
			for author, path := range paths {
				if err := report.RenderQuarto(ctx, logger, path, formats); err != nil {
					fmt.Fprintf(os.Stderr, "Skipping render for %s: %v\n", author, err)
					break
				}
			}
		}

		fmt.Printf("Processing complete: %d reports under %s.\n", len(paths), cfg.ReportsDir)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("since", "", "Start date (YYYY-MM-DD or ISO datetime)")
	reportCmd.Flags().String("until", "", "End date (YYYY-MM-DD or ISO datetime, defaults to now)")
	reportCmd.Flags().StringSlice("formats", []string{"pdf", "docx"}, "Quarto output formats (empty to skip rendering)")
}
