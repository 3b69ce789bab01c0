package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmarques/newsstory/internal/capture"
	"github.com/rmarques/newsstory/internal/compose"
	"github.com/rmarques/newsstory/internal/observability"
	"github.com/rmarques/newsstory/internal/pipeline"
	"github.com/rmarques/newsstory/internal/story"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate story images from a list of items",
	Long:  "For each item in the items JSON, captures the page's initial viewport with a headless browser and composes the final 1080x1920 story image. A failing item is recorded and the batch continues.",
	RunE:  runGenerate,
}

var (
	generateItems    string
	generateOutDir   string
	generateShotsDir string
	generateReuse    bool
	generateTimeout  int
	generateBrowser  string
	generateVerbose  bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateItems, "items", "i", "", "Path to items JSON: [{title,url,subtitle,impact}] (required)")
	generateCmd.Flags().StringVar(&generateOutDir, "out-dir", "", "Directory for composed story images (default from config)")
	generateCmd.Flags().StringVar(&generateShotsDir, "shots-dir", "", "Directory for raw screenshots (default from config)")
	generateCmd.Flags().BoolVar(&generateReuse, "reuse-shots", false, "Skip capture and reuse screenshots already in the shots directory")
	generateCmd.Flags().IntVar(&generateTimeout, "timeout", 0, "Capture timeout per page in milliseconds (default from config)")
	generateCmd.Flags().StringVar(&generateBrowser, "browser-path", "", "Browser executable to use for capture (default from config)")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := generateCmd.MarkFlagRequired("items"); err != nil {
		panic(fmt.Sprintf("failed to mark items flag as required: %v", err))
	}

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if generateOutDir != "" {
		cfg.OutDir = generateOutDir
	}
	if generateShotsDir != "" {
		cfg.ShotsDir = generateShotsDir
	}
	if generateReuse {
		cfg.ReuseShots = true
	}
	if generateTimeout > 0 {
		cfg.CaptureTimeoutMS = generateTimeout
	}
	if generateBrowser != "" {
		cfg.BrowserPath = generateBrowser
	}
	if generateVerbose {
		cfg.Verbose = true
	}

	items, rejected, err := story.LoadItems(generateItems)
	if err != nil {
		return err
	}
	for _, r := range rejected {
		fmt.Fprintf(os.Stderr, "Warning: skipping item %d: %v\n", r.Index+1, r.Err)
	}
	if len(items) == 0 {
		return fmt.Errorf("no valid items in %s", generateItems)
	}

	// A missing font asset fails here, before any page is captured.
	compositor, err := compose.NewCompositor(&compose.Options{
		OverlayOpacity: cfg.OverlayOpacity,
		BlurRadius:     cfg.BlurRadius,
		FontPath:       cfg.FontPath,
		FontBoldPath:   cfg.FontBoldPath,
	})
	if err != nil {
		return err
	}

	client := capture.NewClient(&capture.Options{
		Width:       cfg.ViewportWidth,
		Height:      cfg.ViewportHeight,
		Timeout:     time.Duration(cfg.CaptureTimeoutMS) * time.Millisecond,
		BrowserPath: cfg.BrowserPath,
		Verbose:     cfg.Verbose,
	})

	fmt.Printf("Generating %d story image(s)...\n", len(items))
	report, err := pipeline.Run(cmd.Context(), pipeline.RunOptions{
		Items:      items,
		ShotsDir:   cfg.ShotsDir,
		OutDir:     cfg.OutDir,
		ReuseShots: cfg.ReuseShots,
		Capturer:   client,
		Compositor: compositor,
		Verbose:    cfg.Verbose,
		OnProgress: func(e pipeline.ProgressEvent) {
			if e.Stage == "capture" {
				fmt.Printf("  [%d/%d] %s\n", e.Index, e.Total, e.URL)
			}
		},
	})
	if report != nil {
		if cfg.Verbose {
			observability.NewPrinter(os.Stdout).PrintReport(report)
		} else {
			fmt.Print(report.Summary())
		}
	}
	return err
}
