package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/botverse-dev/botverse/internal/extract"
	"github.com/botverse-dev/botverse/internal/source/github"
)

var (
	ingestBotID string
	ghOwner     string
	ghRepo      string
	ghBasePath  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest a local file into a bot's knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}

		content, err := extract.Extract(ctx, path, data)
		if err != nil {
			return err
		}

		summary, err := a.ingest.Ingest(ctx, ingestBotID, filepath.Base(path), "upload", content.Text)
		if err != nil {
			return err
		}

		fmt.Printf("Ingested %s: %d/%d chunks stored (backend: %s)\n",
			path, summary.ChunksStored, summary.ChunksCreated, summary.Backend)
		return nil
	},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrape a web page into a bot's knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		url := args[0]

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		content, err := a.scraper.Fetch(ctx, url)
		if err != nil {
			return err
		}

		summary, err := a.ingest.Ingest(ctx, ingestBotID, content.Title, "scrape", content.Text)
		if err != nil {
			return err
		}

		fmt.Printf("Scraped %s: %d/%d chunks stored (backend: %s)\n",
			url, summary.ChunksStored, summary.ChunksCreated, summary.Backend)
		return nil
	},
}

var syncGithubCmd = &cobra.Command{
	Use:   "sync-github",
	Short: "Ingest all documentation files from a GitHub repository directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		start := time.Now()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		src, err := github.NewSource(os.Getenv("GITHUB_TOKEN"), ghOwner, ghRepo, ghBasePath)
		if err != nil {
			return err
		}

		result, err := github.Sync(ctx, src, a.ingest, ingestBotID, a.logger)
		if err != nil {
			return err
		}

		fmt.Println("Sync complete!")
		fmt.Printf("  Documents: %d/%d\n", result.Ingested, result.TotalDocs)
		fmt.Printf("  Chunks: %d\n", result.TotalChunks)
		fmt.Printf("  Commit: %s\n", result.CommitSHA)
		fmt.Printf("  Duration: %s\n", time.Since(start).Round(time.Second))

		if len(result.Failed) > 0 {
			fmt.Println("Failed documents:")
			for _, failed := range result.Failed {
				fmt.Printf("  - %s: %s\n", failed.Path, failed.Reason)
			}
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{ingestCmd, scrapeCmd, syncGithubCmd} {
		cmd.Flags().StringVar(&ingestBotID, "bot", "", "bot id (required)")
		_ = cmd.MarkFlagRequired("bot")
	}

	syncGithubCmd.Flags().StringVar(&ghOwner, "owner", "", "repository owner (required)")
	syncGithubCmd.Flags().StringVar(&ghRepo, "repo", "", "repository name (required)")
	syncGithubCmd.Flags().StringVar(&ghBasePath, "path", "", "directory within the repository")
	_ = syncGithubCmd.MarkFlagRequired("owner")
	_ = syncGithubCmd.MarkFlagRequired("repo")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(syncGithubCmd)
}
