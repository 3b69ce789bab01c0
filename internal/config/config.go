// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults for the curation and composition knobs. These mirror the values
// the feeds and layout were tuned against.
const (
	DefaultWindowHours      = 24
	DefaultLimit            = 15
	DefaultViewportWidth    = 1080
	DefaultViewportHeight   = 1920
	DefaultCaptureTimeoutMS = 30000
	DefaultOverlayOpacity   = 0.55
	DefaultBlurRadius       = 2.0
	DefaultShotsDir         = "shots"
	DefaultOutDir           = "out"
)

// DefaultKeywords is the keyword set used when the config supplies none.
var DefaultKeywords = []string{
	"ai", "artificial intelligence", "llm", "agent", "agents", "copilot",
	"gemini", "openai", "anthropic", "deepmind", "model", "models",
	"inference", "training", "chip", "gpu", "nvidia",
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Curation
	Feeds       string   `json:"feeds,omitempty"`        // Path to feeds file (one URL per line, # comments)
	Keywords    []string `json:"keywords,omitempty"`     // Keyword patterns matched against entry titles/summaries
	WindowHours int      `json:"window_hours,omitempty"` // Recency window in hours
	Limit       int      `json:"limit,omitempty"`        // Maximum number of candidates emitted

	// Capture
	ViewportWidth    int    `json:"viewport_width,omitempty"`     // Screenshot viewport width in pixels
	ViewportHeight   int    `json:"viewport_height,omitempty"`    // Screenshot viewport height in pixels
	CaptureTimeoutMS int    `json:"capture_timeout_ms,omitempty"` // Per-page capture timeout in milliseconds
	BrowserPath      string `json:"browser_path,omitempty"`       // Optional browser executable (affects fidelity only)
	ReuseShots       bool   `json:"reuse_shots,omitempty"`        // Skip capture and reuse existing screenshots
	ShotsDir         string `json:"shots_dir,omitempty"`          // Directory for raw screenshots
	OutDir           string `json:"out_dir,omitempty"`            // Directory for composed story images

	// Composition
	OverlayOpacity float64 `json:"overlay_opacity,omitempty"` // Darkening overlay opacity (0.0-1.0)
	BlurRadius     float64 `json:"blur_radius,omitempty"`     // Background gaussian blur radius; negative disables
	FontPath       string  `json:"font_path,omitempty"`       // Optional TTF for body text
	FontBoldPath   string  `json:"font_bold_path,omitempty"`  // Optional TTF for title/impact text

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Default returns a Config populated with the package defaults.
func Default() Config {
	return Config{
		Keywords:         DefaultKeywords,
		WindowHours:      DefaultWindowHours,
		Limit:            DefaultLimit,
		ViewportWidth:    DefaultViewportWidth,
		ViewportHeight:   DefaultViewportHeight,
		CaptureTimeoutMS: DefaultCaptureTimeoutMS,
		ShotsDir:         DefaultShotsDir,
		OutDir:           DefaultOutDir,
		OverlayOpacity:   DefaultOverlayOpacity,
		BlurRadius:       DefaultBlurRadius,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are not checked here; CLI flag validation handles those
// after merging.
func (c *Config) Validate() error {
	if c.WindowHours < 0 {
		return fmt.Errorf("config error: 'window_hours' must be non-negative")
	}
	if c.ViewportWidth < 0 || c.ViewportHeight < 0 {
		return fmt.Errorf("config error: viewport dimensions must be non-negative")
	}
	if c.CaptureTimeoutMS < 0 {
		return fmt.Errorf("config error: 'capture_timeout_ms' must be non-negative")
	}
	if c.OverlayOpacity < 0 || c.OverlayOpacity > 1 {
		return fmt.Errorf("config error: 'overlay_opacity' must be between 0.0 and 1.0")
	}

	// Validate file paths exist (if specified)
	if c.Feeds != "" {
		if _, err := os.Stat(c.Feeds); os.IsNotExist(err) {
			return fmt.Errorf("config error: feeds file not found: %s", c.Feeds)
		}
	}
	if c.FontPath != "" {
		if _, err := os.Stat(c.FontPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: font file not found: %s", c.FontPath)
		}
	}
	if c.FontBoldPath != "" {
		if _, err := os.Stat(c.FontBoldPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: bold font file not found: %s", c.FontBoldPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Feeds == "" {
		result.Feeds = defaults.Feeds
	}
	if result.BrowserPath == "" {
		result.BrowserPath = defaults.BrowserPath
	}
	if result.ShotsDir == "" {
		result.ShotsDir = defaults.ShotsDir
	}
	if result.OutDir == "" {
		result.OutDir = defaults.OutDir
	}
	if result.FontPath == "" {
		result.FontPath = defaults.FontPath
	}
	if result.FontBoldPath == "" {
		result.FontBoldPath = defaults.FontBoldPath
	}

	// Slice fields: use default if empty
	if len(result.Keywords) == 0 {
		result.Keywords = defaults.Keywords
	}

	// Int fields: use default if zero
	if result.WindowHours == 0 {
		result.WindowHours = defaults.WindowHours
	}
	if result.Limit == 0 {
		result.Limit = defaults.Limit
	}
	if result.ViewportWidth == 0 {
		result.ViewportWidth = defaults.ViewportWidth
	}
	if result.ViewportHeight == 0 {
		result.ViewportHeight = defaults.ViewportHeight
	}
	if result.CaptureTimeoutMS == 0 {
		result.CaptureTimeoutMS = defaults.CaptureTimeoutMS
	}

	// Float fields: use default if zero
	if result.OverlayOpacity == 0 {
		result.OverlayOpacity = defaults.OverlayOpacity
	}
	if result.BlurRadius == 0 {
		result.BlurRadius = defaults.BlurRadius
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
