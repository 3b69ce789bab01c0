package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := writeTempConfig(t, `{
			"keywords": ["ai", "gpu"],
			"window_hours": 48,
			"limit": 5,
			"overlay_opacity": 0.4,
			"reuse_shots": true
		}`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"ai", "gpu"}, cfg.Keywords)
		assert.Equal(t, 48, cfg.WindowHours)
		assert.Equal(t, 5, cfg.Limit)
		assert.InDelta(t, 0.4, cfg.OverlayOpacity, 0.001)
		assert.True(t, cfg.ReuseShots)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := LoadConfig("")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := writeTempConfig(t, `{not json`)
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero config", Config{}, false},
		{"defaults", Default(), false},
		{"negative window", Config{WindowHours: -1}, true},
		{"negative timeout", Config{CaptureTimeoutMS: -5}, true},
		{"negative viewport", Config{ViewportWidth: -1}, true},
		{"opacity above one", Config{OverlayOpacity: 1.5}, true},
		{"missing feeds file", Config{Feeds: "/no/such/feeds.md"}, true},
		{"missing font file", Config{FontPath: "/no/such/font.ttf"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	t.Run("empty config takes all defaults", func(t *testing.T) {
		cfg := Config{}
		merged := cfg.MergeWithDefaults(Default())

		assert.Equal(t, DefaultWindowHours, merged.WindowHours)
		assert.Equal(t, DefaultLimit, merged.Limit)
		assert.Equal(t, DefaultViewportWidth, merged.ViewportWidth)
		assert.Equal(t, DefaultViewportHeight, merged.ViewportHeight)
		assert.Equal(t, DefaultCaptureTimeoutMS, merged.CaptureTimeoutMS)
		assert.Equal(t, DefaultShotsDir, merged.ShotsDir)
		assert.Equal(t, DefaultOutDir, merged.OutDir)
		assert.InDelta(t, DefaultOverlayOpacity, merged.OverlayOpacity, 0.001)
		assert.InDelta(t, DefaultBlurRadius, merged.BlurRadius, 0.001)
		assert.Equal(t, DefaultKeywords, merged.Keywords)
	})

	t.Run("negative blur radius survives merging", func(t *testing.T) {
		cfg := Config{BlurRadius: -1}
		merged := cfg.MergeWithDefaults(Default())
		assert.Equal(t, -1.0, merged.BlurRadius)
	})

	t.Run("set fields win over defaults", func(t *testing.T) {
		cfg := Config{
			Keywords:    []string{"quantum"},
			WindowHours: 6,
			OutDir:      "stories",
		}
		merged := cfg.MergeWithDefaults(Default())

		assert.Equal(t, []string{"quantum"}, merged.Keywords)
		assert.Equal(t, 6, merged.WindowHours)
		assert.Equal(t, "stories", merged.OutDir)
		// Unset fields still take defaults
		assert.Equal(t, DefaultLimit, merged.Limit)
	})
}
