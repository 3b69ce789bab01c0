// Package main provides the newsstory CLI: curating AI/tech news from RSS
// feeds and rendering selected items as story images.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rmarques/newsstory/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "newsstory",
	Short: "Curate AI news and render story images",
	Long:  "newsstory curates recent AI/tech news items from RSS feeds and renders selected items as 1080x1920 story images: a page screenshot as background with title, subtitle, and impact text on top.",
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
}

// loadConfig resolves the effective configuration: file values (when --config
// is given) over package defaults. Subcommand flags are applied on top by the
// callers.
func loadConfig() (config.Config, error) {
	cfg := config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}
	merged := cfg.MergeWithDefaults(config.Default())
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
