package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmarques/newsstory/internal/config"
	"github.com/rmarques/newsstory/internal/curation"
	"github.com/rmarques/newsstory/internal/feed"
	"github.com/rmarques/newsstory/internal/observability"
)

var curateCmd = &cobra.Command{
	Use:   "curate",
	Short: "Pick news candidates from RSS feeds",
	Long:  "Fetches every configured feed, filters entries by keyword relevance and recency, deduplicates by normalized URL, and emits a ranked candidate list as JSON.",
	RunE:  runCurate,
}

var (
	curateFeeds   string
	curateHours   int
	curateLimit   int
	curateKeyword []string
	curateOutput  string
	curateVerbose bool
)

func init() {
	curateCmd.Flags().StringVarP(&curateFeeds, "feeds", "f", "", "Path to feeds file, one URL per line (# comments allowed)")
	curateCmd.Flags().IntVar(&curateHours, "hours", 0, "Recency window in hours (default from config)")
	curateCmd.Flags().IntVar(&curateLimit, "limit", 0, "Maximum number of candidates (default from config)")
	curateCmd.Flags().StringSliceVarP(&curateKeyword, "keyword", "k", nil, "Keyword pattern; repeatable (default from config)")
	curateCmd.Flags().StringVarP(&curateOutput, "out", "o", "", "Path for the candidates JSON (default stdout)")
	curateCmd.Flags().BoolVarP(&curateVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(curateCmd)
}

// curationConfig merges subcommand flags over the effective config.
func curationConfig() (config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.Config{}, err
	}
	if curateFeeds != "" {
		cfg.Feeds = curateFeeds
	}
	if curateHours > 0 {
		cfg.WindowHours = curateHours
	}
	if curateLimit > 0 {
		cfg.Limit = curateLimit
	}
	if len(curateKeyword) > 0 {
		cfg.Keywords = curateKeyword
	}
	if curateVerbose {
		cfg.Verbose = true
	}
	if cfg.Feeds == "" {
		return config.Config{}, fmt.Errorf("no feeds file: pass --feeds or set 'feeds' in the config")
	}
	return cfg, nil
}

func runCurate(cmd *cobra.Command, _ []string) error {
	cfg, err := curationConfig()
	if err != nil {
		return err
	}

	candidates, err := curate(cmd, cfg)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stderr).PrintCandidates(candidates)
	}

	return writeCandidates(candidates, curateOutput)
}

// curate runs the curation engine against the configured feeds.
func curate(cmd *cobra.Command, cfg config.Config) ([]curation.Candidate, error) {
	feedURLs, err := feed.ReadFeedList(cfg.Feeds)
	if err != nil {
		return nil, err
	}
	if len(feedURLs) == 0 {
		return nil, fmt.Errorf("feeds file %s contains no feed URLs", cfg.Feeds)
	}

	source := feed.NewSource(feed.DefaultTimeout)
	engine := curation.NewEngine(source)
	engine.SetVerbose(cfg.Verbose)

	return engine.Curate(cmd.Context(), feedURLs, curation.Options{
		Keywords: cfg.Keywords,
		Window:   time.Duration(cfg.WindowHours) * time.Hour,
		Limit:    cfg.Limit,
	}), nil
}

// writeCandidates marshals the candidates to path, or stdout when path is
// empty.
func writeCandidates(candidates []curation.Candidate, path string) error {
	out, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal candidates: %w", err)
	}
	out = append(out, '\n')

	if path == "" {
		_, err = os.Stdout.Write(out)
		return err
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write candidates to %s: %w", path, err)
	}

	fmt.Printf("Wrote %d candidates to %s\n", len(candidates), path)
	return nil
}
